package google

import (
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"google.golang.org/api/sheets/v4"
)

// ToRows flattens grid data into gviz-shaped rows so both sources share one
// normalizer.
func ToRows(s *sheets.Spreadsheet) []sheet.Row {
	var rows []sheet.Row
	if s == nil {
		return rows
	}
	for _, sh := range s.Sheets {
		for _, grid := range sh.Data {
			for _, rd := range grid.RowData {
				row := sheet.Row{}
				if rd != nil {
					row.C = make([]*sheet.Cell, len(rd.Values))
					for i, cd := range rd.Values {
						row.C[i] = toCell(cd)
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func toCell(cd *sheets.CellData) *sheet.Cell {
	if cd == nil {
		return nil
	}
	v := effectiveValue(cd.EffectiveValue)
	if v == nil && cd.FormattedValue == "" {
		return nil
	}
	c := &sheet.Cell{V: v}
	if cd.FormattedValue != "" {
		c.F = sheet.NewString(cd.FormattedValue)
	}
	return c
}

func effectiveValue(ev *sheets.ExtendedValue) any {
	switch {
	case ev == nil:
		return nil
	case ev.StringValue != nil:
		return *ev.StringValue
	case ev.NumberValue != nil:
		return *ev.NumberValue
	case ev.BoolValue != nil:
		return *ev.BoolValue
	case ev.FormulaValue != nil:
		return *ev.FormulaValue
	}
	return nil
}
