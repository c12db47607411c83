package links

import (
	"fmt"
	"strings"

	"github.com/dgallion1/templatizer/internal/doctree"
	"golang.org/x/text/language"
)

var (
	verbTags  = []language.Tag{language.English, language.French}
	verbs     = []string{"See also", "Voir aussi"}
	verbMatch = language.NewMatcher(verbTags)
)

// Verb returns the localized "See also" phrase for a language code.
// Unknown or malformed codes fall back to English.
func Verb(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return verbs[0]
	}
	_, i, conf := verbMatch.Match(tag)
	if conf == language.No || i < 0 || i >= len(verbs) {
		return verbs[0]
	}
	return verbs[i]
}

// Directive is what the reassembler inserts around a heading line.
type Directive struct {
	Anchor  string // e.g. "[#intro]"
	SeeAlso string // e.g. "TIP: See also <<intro,Introduction>>."
}

// Resolver renders anchors and See-also paragraphs for one part.
type Resolver struct {
	Index Index
	File  string
	verb  string
}

func NewResolver(idx Index, file, lang string) *Resolver {
	return &Resolver{Index: idx, File: file, verb: Verb(lang)}
}

// Anchor returns the anchor line for a section with an id.
func (r *Resolver) Anchor(s *doctree.Section) string {
	if id := s.ID(); id != "" {
		return "[#" + id + "]"
	}
	return ""
}

// Ref renders a single cross-reference, or "" when id is unknown.
func (r *Resolver) Ref(id string) string {
	t, ok := r.Index[id]
	if !ok {
		return ""
	}
	if t.File == r.File {
		return fmt.Sprintf("<<%s,%s>>", id, t.Title)
	}
	return fmt.Sprintf("xref:%s#%s[%s]", t.File, id, strings.ReplaceAll(t.Title, "]", `\]`))
}

// SeeAlso returns the TIP paragraph for a section's link_to targets, or ""
// when none resolve.
func (r *Resolver) SeeAlso(s *doctree.Section) string {
	var refs []string
	for _, id := range s.LinkTo() {
		if ref := r.Ref(id); ref != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return ""
	}
	return fmt.Sprintf("TIP: %s %s.", r.verb, strings.Join(refs, ", "))
}

// Directives computes the directive for every heading line in a forest.
func (r *Resolver) Directives(forest []*doctree.Section) map[int]Directive {
	out := make(map[int]Directive)
	doctree.Walk(forest, func(s *doctree.Section) bool {
		d := Directive{Anchor: r.Anchor(s), SeeAlso: r.SeeAlso(s)}
		if d.Anchor != "" || d.SeeAlso != "" {
			out[s.HeadingLine] = d
		}
		return true
	})
	return out
}
