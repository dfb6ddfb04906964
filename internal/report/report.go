// Package report renders run results as files and as a terminal summary.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// Category groups the records of one family.
type Category struct {
	Name    string               `json:"name"`
	Summary model.Summary        `json:"summary"`
	Records []model.ResultRecord `json:"records"`
}

// Report is the rendered view of a finished run.
type Report struct {
	RunID       string        `json:"runId"`
	Mode        model.Mode    `json:"mode"`
	DryRun      bool          `json:"dryRun"`
	TenantID    string        `json:"tenantId"`
	Environment string        `json:"environment"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt"`
	Success     bool          `json:"success"`
	Summary     model.Summary `json:"summary"`
	Categories  []Category    `json:"categories"`
}

// FromState snapshots a run state.
func FromState(state *model.RunState) Report {
	summary := state.Summary()
	rep := Report{
		RunID:       state.RunID,
		Mode:        state.Mode,
		DryRun:      state.DryRun,
		TenantID:    state.TenantID,
		Environment: state.Environment,
		StartedAt:   state.StartedAt,
		FinishedAt:  state.FinishedAt,
		Success:     summary.Success(),
		Summary:     summary,
	}
	for _, name := range state.Categories() {
		records := state.Results(name)
		rep.Categories = append(rep.Categories, Category{
			Name:    name,
			Summary: model.Summarize(records),
			Records: records,
		})
	}
	return rep
}

// Writer renders a report in one format.
type Writer func(w io.Writer, rep Report) error

var writers = map[string]struct {
	ext   string
	write Writer
}{
	"markdown": {ext: "md", write: WriteMarkdown},
	"json":     {ext: "json", write: WriteJSON},
	"csv":      {ext: "csv", write: WriteCSV},
}

// FileName is the report file name for a run and extension.
func FileName(runID, ext string) string {
	return fmt.Sprintf("hydration-%s.%s", runID, ext)
}

// WriteFiles renders rep into dir once per format and returns the written paths.
func WriteFiles(dir string, formats []string, rep Report) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	var paths []string
	for _, format := range formats {
		entry, ok := writers[strings.ToLower(format)]
		if !ok {
			return paths, fmt.Errorf("unknown report format %q", format)
		}
		path := filepath.Join(dir, FileName(rep.RunID, entry.ext))
		if err := writeFile(path, rep, entry.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, rep Report, write Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
