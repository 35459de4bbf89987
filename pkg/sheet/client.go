package sheet

import (
	"context"
	"errors"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Source loads the tasks of one sheet tab.
type Source interface {
	FetchTab(ctx context.Context, gid string) ([]model.Task, error)
}

const (
	DefaultBaseURL = "https://docs.google.com"
	gvizPath       = "/spreadsheets/d/{sheetID}/gviz/tq"
)

// Client reads public sheets through the gviz JSON endpoint.
type Client struct {
	http    *resty.Client
	sheetID string
	log     *charmlog.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another host, mostly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

// WithTimeout bounds a single fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func WithLogger(l *charmlog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a gviz client for one spreadsheet.
func NewClient(sheetID string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetHeader("Accept", "application/json, text/javascript, */*"),
		sheetID: sheetID,
		log:     charmlog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTab downloads and normalizes one tab. Failures are *FetchError or
// *FormatError; nothing is retried.
func (c *Client) FetchTab(ctx context.Context, gid string) ([]model.Task, error) {
	c.log.Debug("fetching tab", "sheet", c.sheetID, "gid", gid)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sheetID", c.sheetID).
		SetQueryParams(map[string]string{
			"tqx": "out:json",
			"gid": gid,
		}).
		Get(gvizPath)
	if err != nil {
		c.log.Error("fetch failed", "gid", gid, "err", err)
		return nil, &FetchError{GID: gid, Err: err}
	}
	if !resp.IsSuccess() {
		c.log.Error("fetch failed", "gid", gid, "status", resp.StatusCode())
		return nil, &FetchError{GID: gid, StatusCode: resp.StatusCode()}
	}

	table, err := Decode(resp.Body())
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.GID = gid
		}
		c.log.Error("bad sheet payload", "gid", gid, "err", err)
		return nil, err
	}

	tasks := Normalize(table.Rows)
	c.log.Debug("tab loaded", "gid", gid, "rows", len(table.Rows), "tasks", len(tasks), "took", resp.Time())
	return tasks, nil
}
