package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	tabFields  = "sheets(properties(sheetId,title))"
	gridFields = "sheets(data(rowData(values(effectiveValue,formattedValue))))"
)

// SheetsClient reads a public spreadsheet through the Sheets API v4 and
// produces the same tasks as the gviz client.
type SheetsClient struct {
	srv           *sheets.Service
	spreadsheetID string
	log           *charmlog.Logger
}

// NewClient creates a Sheets API client for one spreadsheet. The API key only
// identifies the caller; no user credentials are involved.
func NewClient(ctx context.Context, spreadsheetID, apiKey string, logger *charmlog.Logger, opts ...option.ClientOption) (*SheetsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("the sheets API source needs an API key")
	}
	if logger == nil {
		logger = charmlog.Default()
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetsClient{srv: srv, spreadsheetID: spreadsheetID, log: logger}, nil
}

// FetchTab resolves the tab whose sheetId equals gid and normalizes its rows.
func (c *SheetsClient) FetchTab(ctx context.Context, gid string) ([]model.Task, error) {
	title, err := c.tabTitle(ctx, gid)
	if err != nil {
		return nil, err
	}
	c.log.Debug("fetching tab", "spreadsheet", c.spreadsheetID, "gid", gid, "title", title)

	resp, err := c.srv.Spreadsheets.Get(c.spreadsheetID).
		Ranges(quoteTitle(title)).
		IncludeGridData(true).
		Fields(gridFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fetchError(gid, err)
	}

	rows := ToRows(resp)
	tasks := sheet.Normalize(rows)
	c.log.Debug("tab loaded", "gid", gid, "rows", len(rows), "tasks", len(tasks))
	return tasks, nil
}

func (c *SheetsClient) tabTitle(ctx context.Context, gid string) (string, error) {
	id, err := strconv.ParseInt(gid, 10, 64)
	if err != nil {
		return "", &sheet.FormatError{GID: gid, Reason: "gid is not numeric", Err: err}
	}

	meta, err := c.srv.Spreadsheets.Get(c.spreadsheetID).
		Fields(tabFields).
		Context(ctx).
		Do()
	if err != nil {
		return "", fetchError(gid, err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.SheetId == id {
			return s.Properties.Title, nil
		}
	}
	return "", &sheet.FormatError{GID: gid, Reason: "no tab with this gid"}
}

func fetchError(gid string, err error) error {
	fe := &sheet.FetchError{GID: gid, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		fe.StatusCode = apiErr.Code
	}
	return fe
}

// quoteTitle turns a tab title into an A1 range covering the whole tab.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
