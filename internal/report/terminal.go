package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Width(22)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	changeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// Terminal renders a boxed summary. Colors are only emitted when the output supports them.
func Terminal(rep Report) string {
	var b strings.Builder
	title := "Hydration summary"
	if rep.DryRun {
		title += " (dry run)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	for _, cat := range rep.Categories {
		b.WriteString(labelStyle.Render(cat.Name))
		b.WriteString(counts(cat.Summary))
		b.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render(labelStyle.Render("Total")))
	b.WriteString(counts(rep.Summary))

	failures := failed(rep)
	if len(failures) > 0 {
		b.WriteString("\n\n")
		b.WriteString(failureStyle.Render("Failures"))
		for _, f := range failures {
			fmt.Fprintf(&b, "\n  %s: %s", f.Name, f.Status)
		}
	}

	return boxStyle.Render(b.String())
}

func counts(s model.Summary) string {
	parts := []string{
		changeStyle.Render(fmt.Sprintf("%d created", s.Created+s.WouldCreate)),
		changeStyle.Render(fmt.Sprintf("%d updated", s.Updated+s.WouldUpdate)),
		changeStyle.Render(fmt.Sprintf("%d deleted", s.Deleted+s.WouldDelete)),
		skippedStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)),
	}
	if s.Failed > 0 {
		parts = append(parts, failureStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	} else {
		parts = append(parts, successStyle.Render("0 failed"))
	}
	return strings.Join(parts, "  ")
}

func failed(rep Report) []model.ResultRecord {
	var out []model.ResultRecord
	for _, cat := range rep.Categories {
		for _, r := range cat.Records {
			if r.Action == model.ActionFailed {
				out = append(out, r)
			}
		}
	}
	return out
}
