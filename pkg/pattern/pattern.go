// Package pattern compiles metadata rule patterns. A rule pattern is a
// list of "/"-separated segments; each non-structural segment is a
// shell-style glob scoped to a single directory level, optionally
// containing the version placeholder "(@)" which captures a
// dotted-numeric group from the matched name.
package pattern

import (
	"regexp"
	"strings"
)

// VersionToken is the placeholder captured as a dotted-numeric group.
const VersionToken = "(@)"

const versionGroup = `([0-9.]+)`

// Segment is one compiled pattern segment. Dot and DotDot segments are
// structural: they adjust the walk position instead of matching names.
type Segment struct {
	Dot      bool
	DotDot   bool
	Captures bool

	raw string
	re  *regexp.Regexp
}

// String returns the original segment text.
func (s *Segment) String() string { return s.raw }

// Match tests a directory entry name against the segment. When the
// segment carries the version placeholder and the name matches, version
// holds the captured group.
func (s *Segment) Match(name string) (matched bool, version string) {
	if s.re == nil {
		return false, ""
	}
	m := s.re.FindStringSubmatch(name)
	if m == nil {
		return false, ""
	}
	if s.Captures && len(m) > 1 {
		return true, m[1]
	}
	return true, ""
}

// Compile translates one pattern into compiled segments. Globs are
// compiled once per run, before any tree walk.
func Compile(pat string) ([]*Segment, error) {
	if pat == "" {
		return nil, errEmptyPattern
	}

	var segments []*Segment
	for _, part := range strings.Split(pat, "/") {
		switch part {
		case ".":
			segments = append(segments, &Segment{Dot: true, raw: part})
		case "..":
			segments = append(segments, &Segment{DotDot: true, raw: part})
		default:
			expr, captures := globToRegexp(part)
			re, err := regexp.Compile("^" + expr + "$")
			if err != nil {
				return nil, err
			}
			segments = append(segments, &Segment{Captures: captures, raw: part, re: re})
		}
	}
	return segments, nil
}

// globToRegexp translates a single-level glob to a regexp body. Names
// never contain a separator so "*" and "?" stay level-scoped by
// construction. "[...]" classes pass through, with the shell negation
// "[!" rewritten to "[^" and a literal leading "^" escaped.
func globToRegexp(glob string) (expr string, captures bool) {
	var result strings.Builder

	for i := 0; i < len(glob); i++ {
		if strings.HasPrefix(glob[i:], VersionToken) {
			result.WriteString(versionGroup)
			captures = true
			i += len(VersionToken) - 1
			continue
		}

		c := glob[i]
		switch c {
		case '*':
			result.WriteString(".*")
		case '?':
			result.WriteString(".")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end > 0 {
				inner := glob[i+1 : i+1+end]
				switch {
				case strings.HasPrefix(inner, "!"):
					inner = "^" + inner[1:]
				case strings.HasPrefix(inner, "^"):
					inner = `\^` + inner[1:]
				}
				result.WriteString("[" + inner + "]")
				i += end + 1
			} else {
				result.WriteString(`\[`)
			}
		case '.', '+', '(', ')', ']', '{', '}', '^', '$', '|', '\\':
			result.WriteByte('\\')
			result.WriteByte(c)
		default:
			result.WriteByte(c)
		}
	}

	return result.String(), captures
}

var errEmptyPattern = errorString("empty pattern")

type errorString string

func (e errorString) Error() string { return string(e) }
