package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/templatizer/internal/bundle"
	"github.com/dgallion1/templatizer/internal/customize"
	"github.com/dgallion1/templatizer/internal/fetch"
)

// TemplateLoader opens a template by source string.
type TemplateLoader interface {
	Load(ctx context.Context, source string) (*customize.Template, error)
}

// Worker processes a single customization job.
type Worker struct {
	loader TemplateLoader
	log    *slog.Logger
}

func NewWorker(loader TemplateLoader, log *slog.Logger) *Worker {
	return &Worker{loader: loader, log: log}
}

// Process fetches the template, filters every part and packages the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "source", job.Source)

	// Phase 1: Fetch and parse the template.
	job.SetStatus(StatusFetching, "fetching")
	tpl, err := w.loader.Load(ctx, job.Source)
	if err != nil {
		log.Error("load template failed", "error", err)
		w.fail(job, "fetching", err)
		return
	}
	job.SetTotalParts(tpl.PartCount())

	// Phase 2: Filter.
	job.SetStatus(StatusFiltering, "filtering")
	req := job.Request()
	req.OnPart = func(p customize.PartResult) {
		job.PartDone(p.KeptSections)
	}
	res, err := tpl.Customize(ctx, req)
	if err != nil {
		log.Error("customize failed", "error", err)
		w.fail(job, "filtering", err)
		return
	}

	// Phase 3: Package.
	job.SetStatus(StatusPackaging, "packaging")
	files := res.Files()
	var buf bytes.Buffer
	if err := bundle.WriteZip(&buf, files); err != nil {
		log.Error("package failed", "error", err)
		w.fail(job, "packaging", err)
		return
	}
	job.SetArchive(buf.Bytes())

	log.Info("customization complete",
		"parts", len(res.Parts),
		"kept_sections", res.KeptSections,
		"files", len(files),
		"archive_bytes", buf.Len(),
	)
	job.SetStatus(StatusCompleted, "done")
}

// fail records err on the job, one entry per failed fetch when several
// fetches failed together.
func (w *Worker) fail(job *Job, phase string, err error) {
	var agg *fetch.Errors
	if errors.As(err, &agg) {
		for _, f := range agg.Failures {
			job.AddError(fmt.Sprintf("%s: %s", f.Name, f.Err))
		}
	} else {
		job.AddError(err.Error())
	}
	job.SetStatus(StatusFailed, phase)
}
