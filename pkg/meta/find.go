package meta

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"

	"github.com/fulmenhq/fcman/pkg/collection"
)

var folder = cases.Fold()

// FindTags walks the subtree reporting nodes whose tags intersect the
// requested set; with matchAll, every requested tag must be present.
// Matching is Unicode case-insensitive. Returns true when any node
// matched.
func FindTags(node *collection.Node, tags []string, matchAll bool, rep Reporter) bool {
	want := map[string]bool{}
	for _, tag := range tags {
		want[folder.String(tag)] = true
	}
	return findTagsWalk(node, want, matchAll, rep)
}

func findTagsWalk(node *collection.Node, want map[string]bool, matchAll bool, rep Reporter) bool {
	have := map[string]bool{}
	for _, rec := range node.GetMeta(collection.TypeTag) {
		have[folder.String(rec.Tag)] = true
	}

	var found []string
	for tag := range want {
		if have[tag] {
			found = append(found, tag)
		}
	}

	matched := len(found) > 0
	if matchAll {
		matched = len(found) == len(want)
	}

	ok := false
	if matched {
		ok = true
		rep.Status(node.PrettyPath(), "FINDTAG", strings.Join(sorted(found), ","))
	}

	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			if findTagsWalk(node.Children[name], want, matchAll, rep) {
				ok = true
			}
		}
	}
	return ok
}

// FindDescs reports nodes whose descriptions contain the requested
// substrings (all of them with matchAll), case-folded.
func FindDescs(node *collection.Node, descs []string, matchAll bool, rep Reporter) bool {
	want := make([]string, 0, len(descs))
	for _, d := range descs {
		want = append(want, folder.String(d))
	}
	return findDescsWalk(node, want, matchAll, rep)
}

func findDescsWalk(node *collection.Node, want []string, matchAll bool, rep Reporter) bool {
	var parts []string
	for _, rec := range node.GetMeta(collection.TypeDescription) {
		parts = append(parts, folder.String(rec.Description))
	}
	haystack := strings.Join(parts, " ")

	var found []string
	for _, needle := range want {
		if strings.Contains(haystack, needle) {
			found = append(found, needle)
		}
	}

	matched := len(found) > 0
	if matchAll {
		matched = len(found) == len(want)
	}

	ok := false
	if matched {
		ok = true
		rep.Status(node.PrettyPath(), "FINDDESC", strings.Join(sorted(found), ","))
	}

	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			if findDescsWalk(node.Children[name], want, matchAll, rep) {
				ok = true
			}
		}
	}
	return ok
}

// FindPath reports nodes whose display path matches the pattern: an
// "r:"-prefixed regular expression, or a glob matched against the full
// pretty path (optionally case-folded).
func FindPath(node *collection.Node, patternText string, noCase bool, rep Reporter) (bool, error) {
	if strings.HasPrefix(patternText, "r:") {
		re, err := regexp.Compile(patternText[2:])
		if err != nil {
			return false, err
		}
		return findPathWalk(node, func(path string) bool {
			return re.FindStringIndex(path) != nil
		}, rep), nil
	}

	glob := patternText
	if noCase {
		glob = folder.String(glob)
	}
	// Validate once before walking.
	if _, err := doublestar.Match(glob, "/"); err != nil {
		return false, err
	}
	return findPathWalk(node, func(path string) bool {
		if noCase {
			path = folder.String(path)
		}
		ok, _ := doublestar.Match(glob, path)
		return ok
	}, rep), nil
}

func findPathWalk(node *collection.Node, match func(string) bool, rep Reporter) bool {
	ok := false
	if match(node.PrettyPath()) {
		ok = true
		rep.Status(node.PrettyPath(), "FINDPATH", "")
	}
	if node.Kind == collection.KindDirectory {
		for _, name := range node.ChildNames() {
			if findPathWalk(node.Children[name], match, rep) {
				ok = true
			}
		}
	}
	return ok
}

func sorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
