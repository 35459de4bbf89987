package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Cell is one gviz cell. V is the raw value (string, float64, bool or nil)
// and F the sheet's formatted rendering of it, when the sheet provides one.
type Cell struct {
	V any     `json:"v"`
	F *string `json:"f,omitempty"`
}

// Row is a gviz row. Missing cells are nil.
type Row struct {
	C []*Cell `json:"c"`
}

type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type Table struct {
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

type Payload struct {
	Status string `json:"status"`
	Table  *Table `json:"table"`
}

// Decode strips the JSONP wrapper around a gviz response and returns its
// table. A body with no table or no rows is a *FormatError.
func Decode(body []byte) (*Table, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, &FormatError{Reason: "response contains no JSON object"}
	}

	var p Payload
	if err := json.Unmarshal(body[start:end+1], &p); err != nil {
		return nil, &FormatError{Reason: "response is not valid JSON", Err: err}
	}
	if p.Table == nil {
		return nil, &FormatError{Reason: "missing table"}
	}
	if p.Table.Rows == nil {
		return nil, &FormatError{Reason: "missing table.rows"}
	}
	return p.Table, nil
}

// stringify renders a raw value the way the sheet's own JSON consumers do:
// integral numbers without a fractional part, booleans as true/false.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// NewString is a helper for building cells with a formatted value.
func NewString(s string) *string {
	return &s
}
