package agent

import (
	"regexp"
	"sort"
	"strings"
)

// labelAt matches "LABEL:" at the start of a line, tolerating markdown
// bullets, headings and bold markers around the label.
func labelAt(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:[-*>#]+[ \t]*)?(?:\*\*|__)?` + regexp.QuoteMeta(label) +
		`(?:\*\*|__)?[ \t]*:[ \t]*(?:\*\*|__)?[ \t]*`)
}

// labelAnywhere is the fallback for replies that run fields together on one line.
func labelAnywhere(label string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(label) + `:\s*`)
}

type labelSpan struct {
	label        string
	start, value int
}

// sections splits reply into labeled fields. A field runs from its label to
// the next recognized label or the end of the reply. Only the first
// occurrence of each label counts. Missing labels are absent from the map.
func sections(reply string, labels []*fieldLabel) map[string]string {
	var spans []labelSpan
	for _, l := range labels {
		loc := l.anchored.FindStringIndex(reply)
		if loc == nil {
			loc = l.loose.FindStringIndex(reply)
		}
		if loc != nil {
			spans = append(spans, labelSpan{label: l.name, start: loc[0], value: loc[1]})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make(map[string]string, len(spans))
	for i, s := range spans {
		end := len(reply)
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		if end < s.value {
			continue
		}
		out[s.label] = strings.TrimSpace(reply[s.value:end])
	}
	return out
}

type fieldLabel struct {
	name     string
	anchored *regexp.Regexp
	loose    *regexp.Regexp
}

func newFieldLabels(names ...string) []*fieldLabel {
	out := make([]*fieldLabel, len(names))
	for i, n := range names {
		out[i] = &fieldLabel{name: n, anchored: labelAt(n), loose: labelAnywhere(n)}
	}
	return out
}

var nonLetters = regexp.MustCompile(`[^A-Z]+`)

// tokens upper-cases s and splits it into letter-only words.
func tokens(s string) []string {
	return strings.Fields(nonLetters.ReplaceAllString(strings.ToUpper(s), " "))
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// stripMarkdown removes bold/italic markers and surrounding brackets.
func stripMarkdown(s string) string {
	s = strings.NewReplacer("**", "", "__", "").Replace(s)
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
