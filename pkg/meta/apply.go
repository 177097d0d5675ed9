package meta

import (
	"strings"

	"github.com/fulmenhq/fcman/pkg/collection"
	"github.com/fulmenhq/fcman/pkg/pattern"
)

// compiledRule pairs a rule with its precompiled pattern alternatives.
// All patterns compile once per run, before any tree walk.
type compiledRule struct {
	rule *Rule
	alts [][]*pattern.Segment
}

// Apply clears all node metadata and re-applies every rule. The result
// is false when any rule had a bad target or pattern; other rules still
// apply. Re-running is idempotent because the whole map is rebuilt.
func Apply(coll *collection.Collection, rules []*Rule, rep Reporter) bool {
	clearMeta(coll.RootNode)

	ok := true
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		cr := compiledRule{rule: rule}
		good := true
		alts := splitAlternatives(rule.Pattern)
		if len(alts) == 0 {
			rep.Status(rule.Source.PrettyPath(), "BADPATTERN", rule.Name+": empty pattern")
			ok = false
			continue
		}
		for _, alt := range alts {
			segs, err := pattern.Compile(alt)
			if err != nil {
				rep.Status(rule.Source.PrettyPath(), "BADPATTERN", rule.Name+": "+err.Error())
				ok = false
				good = false
				break
			}
			cr.alts = append(cr.alts, segs)
		}
		if good {
			compiled = append(compiled, cr)
		}
	}

	for _, cr := range compiled {
		start := findTarget(coll, cr.rule)
		if start == nil {
			rep.Status(cr.rule.Source.PrettyPath(), "BADTARGET", cr.rule.Name)
			ok = false
			continue
		}
		for _, segs := range cr.alts {
			applyWalk(start, segs, cr.rule, "")
		}
	}

	return ok
}

// ReportUnused emits a diagnostic for every rule that matched nothing,
// catching stale or misspelled patterns.
func ReportUnused(rules []*Rule, rep Reporter) {
	for _, rule := range rules {
		if len(rule.Users) == 0 {
			rep.Status(rule.Source.PrettyPath(), "UNUSEDMETA", rule.Name)
		}
	}
}

func clearMeta(node *collection.Node) {
	node.ClearMeta()
	if node.Kind == collection.KindDirectory {
		for _, child := range node.Children {
			clearMeta(child)
		}
	}
}

// findTarget resolves the rule's target to the directory its patterns
// are evaluated against: the tree root for absolute targets, otherwise
// the rule file's parent, then "."/".."/child steps. Nil when any step
// cannot resolve.
func findTarget(coll *collection.Collection, rule *Rule) *collection.Node {
	parts := strings.Split(strings.TrimSpace(rule.Target), "/")

	node := rule.Source.Parent
	if strings.HasPrefix(rule.Target, "/") {
		node = coll.RootNode
	}

	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if node.Parent != nil {
				node = node.Parent
			}
			// Clamped at root.
		default:
			child, ok := node.Children[part]
			if !ok || child.Kind != collection.KindDirectory {
				return nil
			}
			node = child
		}
	}
	return node
}

// applyWalk descends the tree one pattern segment per level. When the
// segment list is exhausted at a node, the rule's records attach there;
// a version captured anywhere along the walk feeds auto-registered
// provides at the matched node.
func applyWalk(node *collection.Node, segs []*pattern.Segment, rule *Rule, version string) {
	if len(segs) == 0 {
		return
	}

	head := segs[0]

	// Structural segments adjust the walk position without consuming a
	// tree level. A pattern ending on one attaches static records only:
	// captured versions feed auto-provides at glob-matched nodes.
	if head.Dot {
		if len(segs) == 1 {
			attach(node, rule, "")
			return
		}
		applyWalk(node, segs[1:], rule, version)
		return
	}
	if head.DotDot {
		parent := node.Parent
		if parent == nil {
			parent = node
		}
		if len(segs) == 1 {
			attach(parent, rule, "")
			return
		}
		applyWalk(parent, segs[1:], rule, version)
		return
	}

	if node.Kind != collection.KindDirectory {
		return
	}

	for _, name := range node.ChildNames() {
		child := node.Children[name]

		matched, captured := head.Match(name)
		if !matched {
			continue
		}
		childVersion := version
		if captured != "" {
			childVersion = captured
		}

		if len(segs) == 1 {
			attach(child, rule, childVersion)
		} else if child.Kind == collection.KindDirectory {
			applyWalk(child, segs[1:], rule, childVersion)
		}
	}
}

func attach(node *collection.Node, rule *Rule, version string) {
	rule.Users = append(rule.Users, node)
	for _, rec := range rule.Records {
		node.AddMeta(rec)
	}
	if version != "" {
		for _, rec := range rule.AutoProvides(version) {
			node.AddMeta(rec)
		}
	}
}

func splitAlternatives(pat string) []string {
	var alts []string
	for _, alt := range strings.Split(pat, ",") {
		if alt = strings.TrimSpace(alt); alt != "" {
			alts = append(alts, alt)
		}
	}
	return alts
}
