// Package meta loads declarative metadata rules from fcmeta.ini files
// tracked inside the collection, binds them to matching nodes, and
// checks declared dependencies against declared packages.
package meta

import (
	"fmt"
	"strings"

	ini "github.com/go-ini/ini"

	"github.com/fulmenhq/fcman/pkg/collection"
)

// RuleFileName is the conventional rule file name. A directory bearing
// this name instead forces every .ini file beneath it to load.
const RuleFileName = "fcmeta.ini"

// OptionsSection is the reserved section carrying rule-file-wide
// options; every other section is one rule.
const OptionsSection = "fcman:fcmeta"

// Reporter consumes rule-engine status lines.
type Reporter interface {
	Status(path, code, detail string)
}

// Rule is one declarative metadata rule, bound to the node of the file
// that declared it.
type Rule struct {
	Source   *collection.Node
	Name     string
	Pattern  string
	Target   string
	AutoName []string
	Records  []collection.Record

	// Users are the nodes the rule actually matched; rules with no
	// users are reported after application.
	Users []*collection.Node
}

// AutoProvides expands the rule's autoname entries into provides
// records carrying a captured version.
func (r *Rule) AutoProvides(version string) []collection.Record {
	recs := make([]collection.Record, 0, len(r.AutoName))
	for _, name := range r.AutoName {
		recs = append(recs, collection.ProvidesRecord(name, version))
	}
	return recs
}

// LoadRules scans the tree for rule files and parses them. Bad rule
// files are reported and skipped; the boolean result is false when any
// file failed.
func LoadRules(coll *collection.Collection, rep Reporter) ([]*Rule, bool) {
	var rules []*Rule
	ok := loadRulesWalk(coll.RootNode, false, &rules, rep)
	return rules, ok
}

func loadRulesWalk(dir *collection.Node, force bool, rules *[]*Rule, rep Reporter) bool {
	ok := true
	for _, name := range dir.ChildNames() {
		child := dir.Children[name]

		switch {
		case name == RuleFileName:
			if child.Kind == collection.KindDirectory {
				// A directory named fcmeta.ini forces loading of every
				// ini file in its subtree.
				if !loadRulesWalk(child, true, rules, rep) {
					ok = false
				}
			} else if !loadRuleFile(child, rules, rep) {
				ok = false
			}
		case child.Kind == collection.KindDirectory:
			if !loadRulesWalk(child, force, rules, rep) {
				ok = false
			}
		case force && isRuleCandidate(name):
			if !loadRuleFile(child, rules, rep) {
				ok = false
			}
		}
	}
	return ok
}

// isRuleCandidate filters force-loaded files: ini extension, skipping
// dotfiles and editor backups.
func isRuleCandidate(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".ini") {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "~")
}

func loadRuleFile(node *collection.Node, rules *[]*Rule, rep Reporter) bool {
	// Python-style indented continuations are common in description
	// values, so enable them.
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowPythonMultilineValues: true}, node.Path())
	if err != nil {
		rep.Status(node.PrettyPath(), "LOADERROR", err.Error())
		return false
	}

	opts, err := cfg.GetSection(OptionsSection)
	if err != nil {
		rep.Status(node.PrettyPath(), "NOTMETAINFO", "")
		return false
	}
	target := opts.Key("target").MustString(".")

	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == OptionsSection || name == ini.DefaultSection {
			continue
		}
		*rules = append(*rules, parseRule(node, name, target, section))
	}
	return true
}

// parseRule builds a rule from one ini section. The section name
// doubles as the pattern when no pattern key is present, so a file can
// just say [*.iso] instead of naming the rule separately.
func parseRule(source *collection.Node, name, target string, section *ini.Section) *Rule {
	rule := &Rule{
		Source:  source,
		Name:    name,
		Pattern: name,
		Target:  target,
	}

	if section.HasKey("pattern") {
		rule.Pattern = section.Key("pattern").String()
	}
	if section.HasKey("autoname") {
		rule.AutoName = splitList(section.Key("autoname").String())
	}

	for _, entry := range splitList(section.Key("provides").String()) {
		name, version, _ := splitVersioned(entry)
		rule.Records = append(rule.Records, collection.ProvidesRecord(name, version))
	}

	for _, entry := range splitList(section.Key("depends").String()) {
		name, minVersion, maxVersion := splitVersioned(entry)
		rule.Records = append(rule.Records, collection.DependsRecord(name, minVersion, maxVersion))
	}

	for _, tag := range splitList(section.Key("tags").String()) {
		rule.Records = append(rule.Records, collection.TagRecord(tag))
	}

	if desc := collapseWhitespace(section.Key("description").String()); desc != "" {
		rule.Records = append(rule.Records, collection.DescriptionRecord(desc))
	}

	for _, glob := range splitList(section.Key("ignore").String()) {
		rule.Records = append(rule.Records, collection.IgnoreRecord(glob))
	}

	return rule
}

// splitList splits comma- or whitespace-separated values.
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// splitVersioned parses name[:a[:b]] entries.
func splitVersioned(entry string) (name, a, b string) {
	parts := strings.SplitN(entry, ":", 3)
	name = parts[0]
	if len(parts) > 1 {
		a = parts[1]
	}
	if len(parts) > 2 {
		b = parts[2]
	}
	return name, a, b
}

// collapseWhitespace joins description lines into one space-separated
// string.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ref names a rule for diagnostics: source file plus section.
func (r *Rule) Ref() string {
	return fmt.Sprintf("%s:%s", r.Source.PrettyPath(), r.Name)
}
