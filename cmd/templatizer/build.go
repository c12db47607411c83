package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/templatizer/internal/bundle"
	"github.com/dgallion1/templatizer/internal/catalog"
	"github.com/dgallion1/templatizer/internal/contextstore"
	"github.com/dgallion1/templatizer/internal/customize"
)

// buildFlags are shared by build and watch.
type buildFlags struct {
	labels      []string
	drop        []string
	anchors     bool
	lang        string
	output      string
	outDir      string
	context     string
	saveContext string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.labels, "label", "l", nil, "Keep sections carrying this label (repeatable, ns::* allowed)")
	fl.StringArrayVar(&f.drop, "drop", nil, "Drop sections with this title (repeatable, case-insensitive)")
	fl.BoolVar(&f.anchors, "anchors", false, "Emit [#id] anchors above sections that declare an id")
	fl.StringVar(&f.lang, "lang", "", "Language for See also tips (default: manifest language)")
	fl.StringVarP(&f.output, "output", "o", "template.zip", "Write a zip archive to this path")
	fl.StringVar(&f.outDir, "out-dir", "", "Write the template trees to this directory instead of a zip")
	fl.StringVar(&f.context, "context", "", "Start from a saved context")
	fl.StringVar(&f.saveContext, "save-context", "", "Save the effective options under this name")
	cmd.MarkFlagsMutuallyExclusive("output", "out-dir")
}

// job is a fully resolved build.
type job struct {
	source string
	req    customize.Request
}

// resolve merges a saved context with the flags the user set explicitly.
func (f *buildFlags) resolve(cmd *cobra.Command, args []string) (job, error) {
	var j job
	if len(args) > 0 {
		j.source = args[0]
	}
	j.req = customize.Request{
		Labels:         f.labels,
		DropTitles:     f.drop,
		IncludeAnchors: f.anchors,
		Language:       f.lang,
	}

	if f.context != "" {
		store, err := openStore()
		if err != nil {
			return j, err
		}
		defer store.Close()
		saved, err := store.Get(cmd.Context(), f.context)
		if err != nil {
			return j, err
		}
		fl := cmd.Flags()
		if j.source == "" {
			j.source = saved.Source
		}
		if !fl.Changed("label") {
			j.req.Labels = saved.Labels
		}
		if !fl.Changed("drop") {
			j.req.DropTitles = saved.DropTitles
		}
		if !fl.Changed("anchors") {
			j.req.IncludeAnchors = saved.IncludeAnchors
		}
		if !fl.Changed("lang") {
			j.req.Language = saved.Language
		}
	}
	if strings.TrimSpace(j.source) == "" {
		return j, errors.New("a template source is required")
	}
	return j, nil
}

func (f *buildFlags) save(ctx context.Context, j job) error {
	if f.saveContext == "" {
		return nil
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Save(ctx, contextstore.Context{
		Name:           f.saveContext,
		Source:         j.source,
		Labels:         j.req.Labels,
		DropTitles:     j.req.DropTitles,
		IncludeAnchors: j.req.IncludeAnchors,
		Language:       j.req.Language,
	})
	return err
}

// run loads, customizes and writes one build.
func (f *buildFlags) run(ctx context.Context, out io.Writer, j job) error {
	tpl, err := newLoader().Load(ctx, j.source)
	if err != nil {
		return err
	}
	res, err := tpl.Customize(ctx, j.req)
	if err != nil {
		var unknown *catalog.UnknownLabelsError
		if errors.As(err, &unknown) {
			return fmt.Errorf("%w (known: %s)", err, strings.Join(tpl.Catalog.SelectableLabels(), ", "))
		}
		return err
	}

	files := res.Files()
	dest := f.output
	if f.outDir != "" {
		dest = f.outDir
		err = bundle.WriteDir(f.outDir, files)
	} else {
		var buf bytes.Buffer
		if err = bundle.WriteZip(&buf, files); err == nil {
			err = os.WriteFile(f.output, buf.Bytes(), 0o644)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Kept %d section(s) across %d part(s), wrote %d file(s) to %s\n",
		res.KeptSections, len(res.Parts), len(files), dest)
	return nil
}

var build buildFlags

var buildCmd = &cobra.Command{
	Use:   "build [source]",
	Short: "Customize a template and write the result",
	Long: `Customize a template for a label selection.

The source is a local directory, an http(s) base URL or an s3://bucket/prefix
holding a manifest.yaml and the part documents it lists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := build.resolve(cmd, args)
		if err != nil {
			return err
		}
		if err := build.run(cmd.Context(), cmd.OutOrStdout(), j); err != nil {
			return err
		}
		return build.save(cmd.Context(), j)
	},
}

func init() {
	build.register(buildCmd)
}
