package reassemble

import (
	"strings"

	"github.com/dgallion1/templatizer/internal/parser"
)

// entry is one line destined for the blank output.
type entry struct {
	kind parser.LineKind
	text string
	body bool // verbatim keep_content body line
}

// Space lays out blank-output entries with normalized blank lines:
//   - one blank line around attribute groups,
//   - one blank line after a heading unless a heading or anchor follows,
//   - one blank line after a See-also paragraph,
//   - one blank line between body text and a following heading or anchor,
//   - never a blank line after an anchor.
//
// Blank lines inside keep_content bodies are kept, collapsed to one.
func Space(entries []entry) []string {
	entries = trimTrailingEntries(entries)

	var out []string
	prev := parser.KindBlank
	started := false
	for _, e := range entries {
		if e.kind == parser.KindBlank {
			if started && out[len(out)-1] != "" {
				out = append(out, "")
			}
			prev = parser.KindBlank
			continue
		}
		if started && out[len(out)-1] != "" && needsBlank(prev, e.kind) {
			out = append(out, "")
		}
		out = append(out, e.text)
		prev = e.kind
		started = true
	}
	return trimTrailingBlank(out)
}

func needsBlank(prev, cur parser.LineKind) bool {
	switch {
	case prev == parser.KindAnchor:
		return false
	case prev == parser.KindAttribute:
		return cur != parser.KindAttribute
	case cur == parser.KindAttribute:
		return true
	case prev == parser.KindHeading:
		return cur != parser.KindHeading && cur != parser.KindAnchor
	case prev == parser.KindSeeAlso:
		return true
	case cur == parser.KindHeading || cur == parser.KindAnchor:
		return prev == parser.KindOther
	}
	return false
}

func trimTrailingEntries(entries []entry) []entry {
	for len(entries) > 0 && strings.TrimSpace(entries[len(entries)-1].text) == "" {
		entries = entries[:len(entries)-1]
	}
	return entries
}
