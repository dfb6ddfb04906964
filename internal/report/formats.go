package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// WriteJSON writes the full report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

var csvHeader = []string{"category", "name", "action", "status", "type", "platform", "state", "id", "path", "timestamp"}

// WriteCSV writes one row per record.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, cat := range rep.Categories {
		for _, r := range cat.Records {
			row := []string{
				cat.Name,
				r.Name,
				string(r.Action),
				r.Status,
				r.Type,
				r.Platform,
				r.State,
				r.ID,
				r.Path,
				r.Timestamp.Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown writes a heading, the overall counts and a table per category.
func WriteMarkdown(w io.Writer, rep Report) error {
	var b strings.Builder

	title := "Hydration report"
	if rep.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Run: `%s`\n", rep.RunID)
	fmt.Fprintf(&b, "- Mode: %s\n", rep.Mode)
	if rep.TenantID != "" {
		fmt.Fprintf(&b, "- Tenant: `%s` (%s)\n", rep.TenantID, rep.Environment)
	}
	if !rep.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- Started: %s\n", rep.StartedAt.Format(time.RFC3339))
	}
	if !rep.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- Duration: %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
	}
	status := "succeeded"
	if !rep.Success {
		status = "finished with failures"
	}
	fmt.Fprintf(&b, "- Result: %s\n\n", status)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Total | Created | Updated | Deleted | Skipped | Failed |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, cat := range rep.Categories {
		writeSummaryRow(&b, cat.Name, cat.Summary)
	}
	writeSummaryRow(&b, "**All**", rep.Summary)

	for _, cat := range rep.Categories {
		fmt.Fprintf(&b, "\n## %s\n\n", cat.Name)
		b.WriteString("| Name | Action | Status | Type | Platform | Id |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range cat.Records {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				cell(r.Name), r.Action, cell(r.Status), cell(r.Type), cell(r.Platform), cell(r.ID))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeSummaryRow folds dry-run counts into their live columns.
func writeSummaryRow(b *strings.Builder, name string, s model.Summary) {
	fmt.Fprintf(b, "| %s | %d | %d | %d | %d | %d | %d |\n",
		cell(name),
		s.Total,
		s.Created+s.WouldCreate,
		s.Updated+s.WouldUpdate,
		s.Deleted+s.WouldDelete,
		s.Skipped,
		s.Failed,
	)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
