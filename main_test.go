package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/report"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource map[string][]model.Task

func (s stubSource) FetchTab(_ context.Context, gid string) ([]model.Task, error) {
	tasks, ok := s[gid]
	if !ok {
		return nil, &sheet.FetchError{GID: gid, StatusCode: 404}
	}
	return tasks, nil
}

var fixture = stubSource{
	"0": {
		{ID: "A-1", Date: "3 ม.ค. 68", Status: "รอตรวจ", Owner: "Ann", Deadline: "1 ม.ค. 68"},
		{ID: "A-2", Date: "1 ม.ค. 68", Status: "เสร็จ", Owner: "Ben", Deadline: "1 ม.ค. 68", SentDate: "2 ม.ค. 68"},
		{ID: "A-3", Date: "2 ม.ค. 68", Status: "รอตรวจ", Owner: "Ben", FileLink: "https://example.com/a3"},
	},
	"77": {
		{ID: "V-1", Date: "5 ก.พ. 2568", Status: "เสร็จ"},
	},
}

// run executes the CLI against a config file in a temp dir and the fixture source.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	return runWithHome(t, t.TempDir(), cfgPath, args...)
}

func runWithHome(t *testing.T, home, cfgPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	a := newApp()
	a.now = func() time.Time { return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.Local) }
	a.newSource = func(context.Context, *config.Config, *charmlog.Logger) (sheet.Source, error) {
		return fixture, nil
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func configured(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := run(t, path, "config", "set", "--sheet-id", "sheet-1",
		"--tab", "Print=0", "--tab", "Video=77", "--page-size", "2")
	require.NoError(t, err)
	return path
}

func TestConfigSet(t *testing.T) {
	path := configured(t)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", cfg.SheetID)
	assert.Equal(t, 2, cfg.PageSize)
	assert.Equal(t, config.SourceGviz, cfg.Source)
	assert.Equal(t, []config.Tab{{Name: "Print", GID: "0"}, {Name: "Video", GID: "77"}}, cfg.Tabs)

	_, err = run(t, path, "config", "set", "--tab", "Design=0")
	require.NoError(t, err)
	cfg, err = config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", cfg.SheetID)
	assert.Equal(t, "Design", cfg.Tabs[0].Name)

	_, err = run(t, path, "config", "set", "--source", "csv")
	assert.Error(t, err)
	_, err = run(t, path, "config", "set", "--tab", "broken")
	assert.Error(t, err)
}

func TestListJSON(t *testing.T) {
	path := configured(t)

	out, err := run(t, path, "list", "--json")
	require.NoError(t, err)
	var got listOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Print", got.Tab.Name)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.TotalPages)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "A-2", got.Tasks[0].ID)
	assert.Equal(t, "A-3", got.Tasks[1].ID)

	out, err = run(t, path, "list", "--json", "--sort", "id", "--desc", "--page", "2")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, model.SortConfig{Key: model.KeyID, Direction: model.Descending}, got.Sort)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "A-1", got.Tasks[0].ID)

	out, err = run(t, path, "list", "--json", "--owner", "Ben", "--status", "รอตรวจ")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "A-3", got.Tasks[0].ID)
}

func TestListTable(t *testing.T) {
	path := configured(t)

	out, err := run(t, path, "list", "--tab", "Video")
	require.NoError(t, err)
	assert.Contains(t, out, "Video")
	assert.Contains(t, out, "V-1")
	assert.Contains(t, out, "Date ▲")
	assert.Contains(t, out, "Page 1 of 1 · 1 tasks")

	out, err = run(t, path, "list", "--status", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No data found for this tab.")
}

func TestListErrors(t *testing.T) {
	path := configured(t)

	_, err := run(t, path, "list", "--tab", "Missing")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, path, "list", "--sort", "priority")
	assert.Error(t, err)

	_, err = run(t, path, "config", "set", "--tab", "Gone=404")
	require.NoError(t, err)
	_, err = run(t, path, "list", "--tab", "Gone")
	assert.EqualError(t, err, sheet.UserMessage(&sheet.FetchError{}))

	empty := filepath.Join(t.TempDir(), "config.json")
	_, err = run(t, empty, "list")
	assert.ErrorContains(t, err, "no sheet configured")
}

func TestShow(t *testing.T) {
	path := configured(t)

	out, err := run(t, path, "show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "A-1")
	assert.Contains(t, out, "Overdue by 59 days")

	out, err = run(t, path, "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "https://example.com/a3")
	assert.NotContains(t, out, "Overdue")

	_, err = run(t, path, "show", "4")
	assert.ErrorContains(t, err, "out of range")
	_, err = run(t, path, "show", "x")
	assert.Error(t, err)
}

func TestTabs(t *testing.T) {
	path := configured(t)
	out, err := run(t, path, "tabs")
	require.NoError(t, err)
	assert.Contains(t, out, "Print")
	assert.Contains(t, out, "77")
}

func TestSummaryJSON(t *testing.T) {
	path := configured(t)

	out, err := run(t, path, "summary", "--json")
	require.NoError(t, err)
	var sums []report.TabSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sums))
	require.Len(t, sums, 2)
	assert.Equal(t, "Print", sums[0].Tab.Name)
	assert.Equal(t, 3, sums[0].Total)
	assert.Equal(t, 1, sums[0].Overdue)
	assert.Equal(t, "Video", sums[1].Tab.Name)
	assert.Equal(t, 1, sums[1].Total)
}

func TestConfigShowMasksKey(t *testing.T) {
	path := configured(t)
	_, err := run(t, path, "config", "set", "--api-key", "secret")
	require.NoError(t, err)

	out, err := run(t, path, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "sheet-1")
}

func TestSummaryTable(t *testing.T) {
	path := configured(t)
	out, err := run(t, path, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Print")
	assert.Contains(t, out, "Video")
	assert.Contains(t, out, "รอตรวจ 2")
}

func TestListPersistsStatusColours(t *testing.T) {
	path := configured(t)
	home := t.TempDir()

	_, err := runWithHome(t, home, path, "list")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(home, ".config", "taskboard", "status_colors.json"))
	require.NoError(t, err)
	var saved map[string]colors.Slot
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Contains(t, saved, "รอตรวจ")
	assert.Contains(t, saved, "เสร็จ")

	_, err = runWithHome(t, home, path, "summary")
	require.NoError(t, err)
	raw, err = os.ReadFile(filepath.Join(home, ".config", "taskboard", "status_colors.json"))
	require.NoError(t, err)
	var again map[string]colors.Slot
	require.NoError(t, json.Unmarshal(raw, &again))
	assert.Equal(t, saved["รอตรวจ"].ColorID, again["รอตรวจ"].ColorID)
}
