package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/logger"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/overdue"
	"github.com/harrisonrobin/taskboard/pkg/report"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/harrisonrobin/taskboard/pkg/tui"
	"github.com/harrisonrobin/taskboard/pkg/view"
	"github.com/spf13/cobra"
)

// SourceFactory builds the task source for a loaded config.
type SourceFactory func(ctx context.Context, cfg *config.Config, log *charmlog.Logger) (sheet.Source, error)

type app struct {
	configPath string
	source     string
	logLevel   string
	logFile    string

	cfg     *config.Config
	log     *charmlog.Logger
	colors  *colors.ColorCache
	closers []io.Closer

	newSource SourceFactory
	now       func() time.Time
}

func newApp() *app {
	return &app{newSource: openSource, now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "taskboard",
		Short:        "Browse the work checklist kept in a Google Sheet",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
		RunE: a.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.config/taskboard/config.json)")
	pf.StringVar(&a.source, "source", "", "where to read the sheet from: gviz or api")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.logFile, "log-file", "", "append logs to this file")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newTabsCmd(a),
		newSummaryCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the config and builds the logger. The TUI owns the terminal,
// so without --log-file it logs nowhere.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := a.path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.source != "" {
		cfg.Source = a.source
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	out := cmd.ErrOrStderr()
	if a.logFile != "" {
		f, err := logger.OpenFile(a.logFile)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, f)
		out = f
	} else if cmd == cmd.Root() {
		a.log = logger.Discard()
		return nil
	}
	a.log = logger.New(logger.Config{Level: cfg.LogLevel, Output: out})
	return nil
}

// close saves the status palette and releases the log file.
func (a *app) close() error {
	var first error
	if a.colors != nil {
		if err := a.colors.Save(); err != nil {
			first = fmt.Errorf("failed to save status colours: %w", err)
		}
		a.colors = nil
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *app) path() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.GetConfigPath()
}

// openSource picks the gviz client or the Sheets API client.
func openSource(ctx context.Context, cfg *config.Config, log *charmlog.Logger) (sheet.Source, error) {
	switch cfg.Source {
	case config.SourceAPI:
		c, err := google.NewClient(ctx, cfg.SheetID, cfg.APIKey, log)
		if err != nil {
			return nil, err
		}
		return deadlineSource{src: c, timeout: cfg.Timeout.Duration}, nil
	default:
		return sheet.NewClient(cfg.SheetID,
			sheet.WithTimeout(cfg.Timeout.Duration),
			sheet.WithLogger(log),
		), nil
	}
}

// deadlineSource bounds each fetch of a source that has no timeout of its own.
type deadlineSource struct {
	src     sheet.Source
	timeout time.Duration
}

func (d deadlineSource) FetchTab(ctx context.Context, gid string) ([]model.Task, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.src.FetchTab(ctx, gid)
}

// palette loads the persisted status colours once per run, falling back to
// memory only. close saves whatever the run assigned.
func (a *app) palette() *colors.ColorCache {
	if a.colors != nil {
		return a.colors
	}
	path, err := colors.DefaultPath()
	if err == nil {
		if a.colors, err = colors.NewColorCache(path); err == nil {
			return a.colors
		}
	}
	a.log.Warn("status colours not persisted", "err", err)
	a.colors, _ = colors.NewColorCache("")
	return a.colors
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	src, err := a.newSource(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}

	m := tui.New(ctx, view.NewController(nil, a.cfg.PageSize), src, a.cfg.Tabs, tui.Options{
		Logger: a.log,
		Colors: a.palette(),
		Now:    a.now,
	})
	defer func() {
		if err := m.Close(); err != nil {
			a.log.Warn("failed to save status colours", "err", err)
		}
	}()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// viewFlags are the sort and filter flags shared by list and show.
type viewFlags struct {
	tab      string
	sort     string
	desc     bool
	status   string
	owner    string
	workType string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.tab, "tab", "t", "", "tab name or gid (default: first configured tab)")
	fl.StringVarP(&f.sort, "sort", "s", "", "sort key: date, id, status, workType, details, owner, deadline, sentDate, round, fileLink")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.StringVar(&f.status, "status", "", "only show this status")
	fl.StringVar(&f.owner, "owner", "", "only show this owner")
	fl.StringVar(&f.workType, "work-type", "", "only show this work type")
}

func (f *viewFlags) apply(ctrl *view.Controller) error {
	cfg := model.DefaultSort()
	if f.sort != "" {
		key, err := model.ParseSortKey(f.sort)
		if err != nil {
			return err
		}
		cfg.Key = key
	}
	if f.desc {
		cfg.Direction = model.Descending
	}
	ctrl.SetSort(cfg)

	for key, value := range map[model.SortKey]string{
		model.KeyStatus:   f.status,
		model.KeyOwner:    f.owner,
		model.KeyWorkType: f.workType,
	} {
		if err := ctrl.SetFilter(key, value); err != nil {
			return err
		}
	}
	return nil
}

// load fetches one tab into a fresh controller and applies the view flags.
func (a *app) load(ctx context.Context, f *viewFlags) (config.Tab, *view.Controller, error) {
	if err := a.cfg.Validate(); err != nil {
		return config.Tab{}, nil, err
	}
	tab, err := a.cfg.FindTab(f.tab)
	if err != nil {
		return config.Tab{}, nil, err
	}
	src, err := a.newSource(ctx, a.cfg, a.log)
	if err != nil {
		return config.Tab{}, nil, err
	}

	ctrl := view.NewController(nil, a.cfg.PageSize)
	gen := ctrl.BeginLoad(tab.GID)
	tasks, err := src.FetchTab(ctx, tab.GID)
	ctrl.CompleteLoad(gen, tasks, err)
	if err != nil {
		a.log.Error("fetch failed", "tab", tab.Name, "gid", tab.GID, "err", err)
		return tab, nil, errors.New(sheet.UserMessage(err))
	}
	a.log.Debug("tab loaded", "tab", tab.Name, "tasks", len(tasks))

	if err := f.apply(ctrl); err != nil {
		return tab, nil, err
	}
	return tab, ctrl, nil
}

func newListCmd(a *app) *cobra.Command {
	var (
		f      viewFlags
		page   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of a tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tab, ctrl, err := a.load(cmd.Context(), &f)
			if err != nil {
				return err
			}
			ctrl.SetPage(page)
			state := ctrl.Snapshot()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), pageJSON(tab, state))
			}
			palette := a.palette()
			palette.Seed(state.Options[model.KeyStatus])
			renderPage(cmd.OutOrStdout(), tab, state, palette, overdue.NewTable(nil), a.now())
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var f viewFlags
	cmd := &cobra.Command{
		Use:   "show N",
		Short: "Print every field of the N-th task after sorting and filtering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("'%s' is not a task number", args[0])
			}
			_, ctrl, err := a.load(cmd.Context(), &f)
			if err != nil {
				return err
			}
			tasks := ctrl.Visible()
			if n < 1 || n > len(tasks) {
				return fmt.Errorf("task %d out of range (1-%d)", n, len(tasks))
			}
			renderTask(cmd.OutOrStdout(), tasks[n-1], overdue.NewTable(nil), a.now())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTabsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the configured tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.Tabs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tabs configured.")
				return nil
			}
			renderTabs(cmd.OutOrStdout(), a.cfg.Tabs)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count tasks per status and overdue tasks across every tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			src, err := a.newSource(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			sums, err := report.Summarize(ctx, src, a.cfg.Tabs, a.now())
			if err != nil {
				a.log.Error("summary failed", "err", err)
				return errors.New(sheet.UserMessage(err))
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sums)
			}
			var statuses []string
			for _, sum := range sums {
				for _, c := range sum.ByStatus {
					statuses = append(statuses, c.Status)
				}
			}
			palette := a.palette()
			palette.Seed(statuses)
			renderSummary(cmd.OutOrStdout(), sums, palette)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the saved configuration",
	}
	cmd.AddCommand(newConfigSetCmd(a), newConfigShowCmd(a))
	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	var (
		sheetID  string
		pageSize int
		source   string
		apiKey   string
		logLevel string
		timeout  time.Duration
		tabs     []string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.path()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fl := cmd.Flags()
			if fl.Changed("sheet-id") {
				cfg.SheetID = sheetID
			}
			if fl.Changed("page-size") {
				if pageSize < 1 {
					return fmt.Errorf("page size must be at least 1")
				}
				cfg.PageSize = pageSize
			}
			if fl.Changed("source") {
				if source != config.SourceGviz && source != config.SourceAPI {
					return fmt.Errorf("unknown source %q (want %s or %s)", source, config.SourceGviz, config.SourceAPI)
				}
				cfg.Source = source
			}
			if fl.Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if fl.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if fl.Changed("timeout") {
				cfg.Timeout = config.Duration{Duration: timeout}
			}
			for _, s := range tabs {
				tab, err := config.ParseTab(s)
				if err != nil {
					return err
				}
				cfg.SetTab(tab)
			}

			if err := config.SaveTo(path, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", path)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&sheetID, "sheet-id", "", "spreadsheet ID from the sheet URL")
	fl.IntVar(&pageSize, "page-size", 10, "rows per page")
	fl.StringVar(&source, "source", config.SourceGviz, "gviz or api")
	fl.StringVar(&apiKey, "api-key", "", "Sheets API key, needed for source api")
	fl.StringVar(&logLevel, "log-level", "info", "default log level")
	fl.DurationVar(&timeout, "timeout", 15*time.Second, "fetch timeout")
	fl.StringArrayVar(&tabs, "tab", nil, "add or rename a tab as name=gid (repeatable)")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			if cfg.APIKey != "" {
				cfg.APIKey = "********"
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
