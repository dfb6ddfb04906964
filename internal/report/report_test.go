package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

func sampleState() *model.RunState {
	state := model.NewRunState(model.ModeCreate, false)
	state.TenantID = "tenant-1"
	state.Environment = "Global"
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	state.Append("Groups",
		model.ResultRecord{Name: "Kiosks", Action: model.ActionCreated, Status: "Success", Timestamp: ts, ID: "g1", Path: "Groups/kiosks.json"},
		model.ResultRecord{Name: "Ops | Admins", Action: model.ActionFailed, Status: "Invalid value\nfor mailNickname", Timestamp: ts},
	)
	state.Append("ConditionalAccess",
		model.ResultRecord{Name: "Block legacy", Action: model.ActionSkipped, Status: "already up to date", Timestamp: ts, State: "disabled"},
	)
	state.Finish()
	return state
}

func TestFromState(t *testing.T) {
	t.Parallel()

	rep := FromState(sampleState())
	require.False(t, rep.Success)
	require.Equal(t, 3, rep.Summary.Total)
	require.Len(t, rep.Categories, 2)
	require.Equal(t, "Groups", rep.Categories[0].Name)
	require.Equal(t, 1, rep.Categories[0].Summary.Failed)
	require.Equal(t, "tenant-1", rep.TenantID)
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	rep := FromState(sampleState())
	dir := filepath.Join(t.TempDir(), "reports")

	paths, err := WriteFiles(dir, []string{"markdown", "JSON", "csv"}, rep)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "hydration-"+rep.RunID+".md"),
		filepath.Join(dir, "hydration-"+rep.RunID+".json"),
		filepath.Join(dir, "hydration-"+rep.RunID+".csv"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, rep.RunID, decoded.RunID)
	require.Len(t, decoded.Categories[0].Records, 2)

	_, err = WriteFiles(dir, []string{"pdf"}, rep)
	require.Error(t, err)

	paths, err = WriteFiles(dir, nil, rep)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, FromState(sampleState())))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, []string{"Groups", "Kiosks", "Created", "Success", "", "", "", "g1", "Groups/kiosks.json", "2025-01-02T03:04:05Z"}, rows[1])
	require.Equal(t, "Invalid value\nfor mailNickname", rows[2][3])
	require.Equal(t, "disabled", rows[3][6])
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, FromState(sampleState())))
	out := buf.String()

	require.Contains(t, out, "# Hydration report\n")
	require.Contains(t, out, "- Result: finished with failures")
	require.Contains(t, out, "| Groups | 2 | 1 | 0 | 0 | 0 | 1 |")
	require.Contains(t, out, "| **All** | 3 | 1 | 0 | 0 | 1 | 1 |")
	require.Contains(t, out, "| Ops \\| Admins | Failed | Invalid value for mailNickname |")
	require.Contains(t, out, "## ConditionalAccess")
}

func TestMarkdownFoldsDryRunCounts(t *testing.T) {
	t.Parallel()

	state := model.NewRunState(model.ModeCreate, true)
	state.Append("Filters",
		model.ResultRecord{Name: "a", Action: model.ActionWouldCreate},
		model.ResultRecord{Name: "b", Action: model.ActionWouldUpdate},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, FromState(state)))
	require.Contains(t, buf.String(), "# Hydration report (dry run)")
	require.Contains(t, buf.String(), "| Filters | 2 | 1 | 1 | 0 | 0 | 0 |")
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	out := Terminal(FromState(sampleState()))
	require.Contains(t, out, "Hydration summary")
	require.Contains(t, out, "Groups")
	require.Contains(t, out, "1 created")
	require.Contains(t, out, "1 failed")
	require.Contains(t, out, "Failures")
	require.Contains(t, out, "Ops | Admins: Invalid value")
}
