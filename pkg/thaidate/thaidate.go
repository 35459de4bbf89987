package thaidate

import (
	"strings"
	"time"
	"unicode"
)

// MonthTable maps a month abbreviation to its zero-based month index.
type MonthTable map[string]int

// ThaiMonths is the abbreviation table used by Thai-formatted sheet dates.
var ThaiMonths = MonthTable{
	"ม.ค.": 0, "ก.พ.": 1, "มี.ค.": 2, "เม.ย.": 3, "พ.ค.": 4, "มิ.ย.": 5,
	"ก.ค.": 6, "ส.ค.": 7, "ก.ย.": 8, "ต.ค.": 9, "พ.ย.": 10, "ธ.ค.": 11,
}

// Date is a parsed day/month/year triple. Month is zero-based and Year is
// already converted out of the Buddhist Era.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Time returns the date at local midnight. Out-of-range days roll over the
// same way time.Date does.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month+1), d.Day, 0, 0, 0, 0, time.Local)
}

type Parser struct {
	Months MonthTable
}

// NewParser returns a parser using the Thai month table.
func NewParser() *Parser {
	return &Parser{Months: ThaiMonths}
}

// Parse reads "<day> <month> <year>". Tokens past the third are ignored.
// Years below 100 are read as 2000+y, anything else as a BE year. The
// two-digit rule only keeps sort order consistent; use ParseCalendar when
// the result is compared with a real clock.
func (p *Parser) Parse(s string) (Date, bool) {
	d, ok := p.fields(s)
	if !ok {
		return Date{}, false
	}
	if d.Year < 100 {
		d.Year += 2000
	} else {
		d.Year -= 543
	}
	return d, true
}

// ParseCalendar reads the same format but converts the year as a Buddhist
// Era year, so "5 ต.ค. 68" is 5 October 2025 (BE 2568).
func (p *Parser) ParseCalendar(s string) (Date, bool) {
	d, ok := p.fields(s)
	if !ok {
		return Date{}, false
	}
	if d.Year < 100 {
		d.Year += 2500
	}
	d.Year -= 543
	return d, true
}

// fields splits s into day, month and the year exactly as written.
func (p *Parser) fields(s string) (Date, bool) {
	parts := strings.Split(s, " ")
	if len(parts) < 3 {
		return Date{}, false
	}

	day, ok := leadingInt(parts[0])
	if !ok {
		return Date{}, false
	}
	month, ok := p.Months[parts[1]]
	if !ok {
		return Date{}, false
	}
	year, ok := leadingInt(parts[2])
	if !ok {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// ParseTime is Parse followed by Date.Time.
func (p *Parser) ParseTime(s string) (time.Time, bool) {
	d, ok := p.Parse(s)
	if !ok {
		return time.Time{}, false
	}
	return d.Time(), true
}

// leadingInt reads an optionally signed run of ASCII digits after leading
// whitespace and ignores whatever follows it.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
		if n > 1_000_000_000 {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
