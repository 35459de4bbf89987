package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const metaJSON = `{"sheets":[
{"properties":{"sheetId":0,"title":"Summary"}},
{"properties":{"sheetId":42,"title":"งาน 'A'"}}
]}`

const gridJSON = `{"sheets":[{"data":[{"rowData":[
{"values":[{"effectiveValue":{"stringValue":"วันเดือนปี"},"formattedValue":"วันเดือนปี"}]},
{},
{"values":[
  {"effectiveValue":{"numberValue":45935},"formattedValue":"5 ต.ค. 68"},
  {"effectiveValue":{"numberValue":7},"formattedValue":"7"},
  {"effectiveValue":{"stringValue":"รอตรวจ"},"formattedValue":"รอตรวจ"},
  {},
  {"effectiveValue":{"boolValue":true},"formattedValue":"TRUE"}
]},
{"values":[
  {"effectiveValue":{"numberValue":45936},"formattedValue":"6 ต.ค. 68"},
  {"effectiveValue":{"stringValue":"B-2"},"formattedValue":"B-2"}
]}
]}]}]}`

type recorded struct {
	ranges string
	key    string
}

func newSheetsServer(t *testing.T, status int) (*SheetsClient, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/spreadsheets/sheet-1" {
			http.NotFound(w, r)
			return
		}
		rec.key = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
			return
		}
		if r.URL.Query().Get("includeGridData") == "true" {
			rec.ranges = r.URL.Query().Get("ranges")
			_, _ = w.Write([]byte(gridJSON))
			return
		}
		_, _ = w.Write([]byte(metaJSON))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "sheet-1", "test-key", nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c, rec
}

func TestFetchTab(t *testing.T) {
	c, rec := newSheetsServer(t, http.StatusOK)

	tasks, err := c.FetchTab(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "test-key", rec.key)
	assert.Equal(t, "'งาน ''A'''", rec.ranges)

	require.Len(t, tasks, 2)
	assert.Equal(t, "5 ต.ค. 68", tasks[0].Date)
	assert.Equal(t, "7", tasks[0].ID)
	assert.Equal(t, "รอตรวจ", tasks[0].Status)
	assert.Equal(t, "", tasks[0].WorkType)
	assert.Equal(t, "true", tasks[0].Details)
	assert.Equal(t, "B-2", tasks[1].ID)
}

func TestFetchTabErrors(t *testing.T) {
	t.Run("unknown gid", func(t *testing.T) {
		c, _ := newSheetsServer(t, http.StatusOK)
		_, err := c.FetchTab(context.Background(), "99")
		assert.ErrorAs(t, err, new(*sheet.FormatError))
		assert.ErrorIs(t, err, sheet.ErrSource)
	})

	t.Run("non numeric gid", func(t *testing.T) {
		c, _ := newSheetsServer(t, http.StatusOK)
		_, err := c.FetchTab(context.Background(), "abc")
		assert.ErrorAs(t, err, new(*sheet.FormatError))
	})

	t.Run("api error", func(t *testing.T) {
		c, _ := newSheetsServer(t, http.StatusForbidden)
		_, err := c.FetchTab(context.Background(), "42")
		var fe *sheet.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusForbidden, fe.StatusCode)
	})
}

func TestNewClientNeedsKey(t *testing.T) {
	_, err := NewClient(context.Background(), "sheet-1", "", nil)
	assert.Error(t, err)
}

func TestToRows(t *testing.T) {
	str := "x"
	rows := ToRows(&sheets.Spreadsheet{Sheets: []*sheets.Sheet{{
		Data: []*sheets.GridData{{RowData: []*sheets.RowData{
			{Values: []*sheets.CellData{nil, {EffectiveValue: &sheets.ExtendedValue{StringValue: &str}}}},
			nil,
		}}},
	}}})
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].C[0])
	assert.Equal(t, "x", sheet.RawText(rows[0].C[1]))
	assert.Nil(t, rows[0].C[1].F)
	assert.Empty(t, rows[1].C)
	assert.Empty(t, ToRows(nil))
}
