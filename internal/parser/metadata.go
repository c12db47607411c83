package parser

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dgallion1/templatizer/internal/doctree"
	"golang.org/x/net/html"
)

// MetadataGlyph introduces a section metadata payload inside a comment.
const MetadataGlyph = "🏷"

// metadataPayload extracts the text following the glyph from either a line
// comment (//🏷{...}) or an HTML comment (<!--🏷{...}-->).
func metadataPayload(trimmed string) (string, bool) {
	if rest, ok := strings.CutPrefix(trimmed, "//"); ok {
		rest = strings.TrimSpace(rest)
		if payload, ok := strings.CutPrefix(rest, MetadataGlyph); ok {
			return strings.TrimSpace(payload), true
		}
		return "", false
	}
	if strings.HasPrefix(trimmed, "<!--") && strings.HasSuffix(trimmed, "-->") {
		return htmlCommentPayload(trimmed)
	}
	return "", false
}

// htmlCommentPayload accepts a line holding exactly one HTML comment.
func htmlCommentPayload(trimmed string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(trimmed))
	if z.Next() != html.CommentToken {
		return "", false
	}
	data := strings.TrimSpace(z.Token().Data)
	if z.Next() != html.ErrorToken || z.Err() != io.EOF {
		return "", false
	}
	payload, ok := strings.CutPrefix(data, MetadataGlyph)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(payload), true
}

// DecodeMetadata parses a metadata payload. Anything that is not a JSON
// object yields ok=false and is treated as absent metadata.
func DecodeMetadata(payload string) (*doctree.Metadata, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil || raw == nil {
		return nil, false
	}

	md := &doctree.Metadata{Raw: raw}
	if id, ok := raw["id"].(string); ok {
		md.ID = strings.TrimSpace(id)
	}
	if labels, ok := raw["labels"].([]any); ok {
		for _, v := range labels {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				md.Labels = append(md.Labels, strings.TrimSpace(s))
			}
		}
	}
	link, ok := raw["link_to"]
	if !ok {
		link = raw["links"]
	}
	md.LinkTo = stringList(link)
	if keep, ok := raw["keep_content"].(bool); ok {
		md.KeepContent = keep
	}
	return md, true
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}
