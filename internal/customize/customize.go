// Package customize loads a base document template from a source and
// produces customized renditions of its parts for a label selection.
package customize

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/dgallion1/templatizer/internal/bundle"
	"github.com/dgallion1/templatizer/internal/catalog"
	"github.com/dgallion1/templatizer/internal/fetch"
	"github.com/dgallion1/templatizer/internal/filter"
	"github.com/dgallion1/templatizer/internal/labels"
	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/manifest"
	"github.com/dgallion1/templatizer/internal/parser"
)

// Output trees inside a bundle.
const (
	TemplateDir = "template"
	BlankDir    = "blank-template"
)

// Options configures Load.
type Options struct {
	ManifestName string
	Concurrency  int
	Log          *slog.Logger
}

// Template is a loaded base template. It is immutable and safe for
// concurrent Customize calls.
type Template struct {
	Manifest *manifest.Manifest
	Catalog  *catalog.Catalog
	Index    links.Index

	parts       []part
	fetcher     fetch.Fetcher
	concurrency int
	log         *slog.Logger
}

type part struct {
	Name string
	File string
	Text string
}

// Load fetches the manifest and every part, parses the parts and builds the
// cross-document link index and the label catalog.
func Load(ctx context.Context, f fetch.Fetcher, opts Options) (*Template, error) {
	name := opts.ManifestName
	if name == "" {
		name = manifest.DefaultName
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("manifest", f.Location(name))

	raw, err := f.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	m, err := manifest.Parse(raw)
	if err != nil {
		return nil, &ManifestError{Location: f.Location(name), Err: err}
	}

	files := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		file := strings.TrimSpace(p.File)
		if _, err := parser.FormatForFile(file); err != nil {
			return nil, &ManifestError{Location: f.Location(name), Err: fmt.Errorf("part %s: %w", file, err)}
		}
		files = append(files, file)
	}

	docs, err := fetch.FetchAll(ctx, f, files, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	t := &Template{
		Manifest:    m,
		fetcher:     f,
		concurrency: opts.Concurrency,
		log:         log,
	}
	parsed := make([]links.Part, 0, len(files))
	for i, file := range files {
		text := string(docs[file])
		t.parts = append(t.parts, part{Name: m.Parts[i].Name, File: file, Text: text})
		parsed = append(parsed, links.Part{File: file, Sections: parser.ParseSections(text)})
	}
	if err := links.FindDuplicates(parsed); err != nil {
		return nil, err
	}
	t.Index = links.BuildIndex(parsed)
	t.Catalog = catalog.New(m, parsed)

	log.Info("template loaded", "parts", len(files), "ids", len(t.Index), "labels", len(t.Catalog.KnownLabels()))
	return t, nil
}

// ManifestError reports a manifest that cannot be used.
type ManifestError struct {
	Location string
	Err      error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// Request selects what a customization keeps.
type Request struct {
	Labels         []string `json:"labels"`
	DropTitles     []string `json:"drop_titles"`
	IncludeAnchors bool     `json:"include_anchors"`
	Language       string   `json:"language"`
	ExactLabels    bool     `json:"exact_labels,omitempty"`

	// OnPart, when set, is called after each part is filtered.
	OnPart func(PartResult) `json:"-"`
}

// PartResult is one filtered part.
type PartResult struct {
	Name string
	File string
	filter.Result
}

// Import is an extra file copied into both output trees.
type Import struct {
	Path string
	Data []byte
}

// Result is a complete customization.
type Result struct {
	Parts        []PartResult
	Imports      []Import
	KeptSections int
}

// Customize filters every part in manifest order.
func (t *Template) Customize(ctx context.Context, req Request) (*Result, error) {
	sel := labels.NewSelection(req.Labels)
	if err := t.Catalog.Validate(sel.Sorted()); err != nil {
		return nil, err
	}
	include := sel.Sorted()
	if t.Catalog.IsFullSelection(sel) {
		include = nil
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = t.Manifest.Language
	}

	res := &Result{Parts: make([]PartResult, 0, len(t.parts))}
	for _, p := range t.parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pr := PartResult{
			Name: p.Name,
			File: p.File,
			Result: filter.FilterContent(p.Text, filter.Options{
				IncludeLabels:  include,
				DropTitles:     req.DropTitles,
				LinkIndex:      t.Index,
				CurrentFile:    p.File,
				IncludeAnchors: req.IncludeAnchors,
				Language:       lang,
				ExactLabels:    req.ExactLabels,
			}),
		}
		res.Parts = append(res.Parts, pr)
		res.KeptSections += pr.KeptSections
		if req.OnPart != nil {
			req.OnPart(pr)
		}
	}

	imports, err := t.resolveImports(ctx)
	if err != nil {
		return nil, err
	}
	res.Imports = imports

	t.log.Info("customized template",
		"labels", include,
		"parts", len(res.Parts),
		"kept_sections", res.KeptSections,
		"imports", len(imports),
	)
	return res, nil
}

// PartCount returns the number of parts in the template.
func (t *Template) PartCount() int {
	return len(t.parts)
}

// Files returns the bundle contents. Parts whose filtered content is empty
// are left out; imports go under both trees.
func (r *Result) Files() []bundle.File {
	var out []bundle.File
	for _, p := range r.Parts {
		if strings.TrimSpace(p.TemplateContent) != "" {
			out = append(out, bundle.File{Path: path.Join(TemplateDir, p.File), Data: []byte(p.TemplateContent)})
		}
		if strings.TrimSpace(p.BlankContent) != "" {
			out = append(out, bundle.File{Path: path.Join(BlankDir, p.File), Data: []byte(p.BlankContent)})
		}
	}
	for _, imp := range r.Imports {
		out = append(out,
			bundle.File{Path: path.Join(TemplateDir, imp.Path), Data: imp.Data},
			bundle.File{Path: path.Join(BlankDir, imp.Path), Data: imp.Data},
		)
	}
	return out
}
