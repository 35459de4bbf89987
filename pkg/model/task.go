package model

import (
	"fmt"
	"strings"
)

// Task is one work item row from the sheet. Every field is plain text and
// "" means the cell was empty.
type Task struct {
	Date     string `json:"date"`
	ID       string `json:"id"`
	Status   string `json:"status"`
	WorkType string `json:"workType"`
	Details  string `json:"details"`
	Owner    string `json:"owner"`
	Deadline string `json:"deadline"`
	SentDate string `json:"sentDate"`
	Round    string `json:"round"`
	FileLink string `json:"fileLink"`
}

// SortKey names a Task field.
type SortKey string

const (
	KeyDate     SortKey = "date"
	KeyID       SortKey = "id"
	KeyStatus   SortKey = "status"
	KeyWorkType SortKey = "workType"
	KeyDetails  SortKey = "details"
	KeyOwner    SortKey = "owner"
	KeyDeadline SortKey = "deadline"
	KeySentDate SortKey = "sentDate"
	KeyRound    SortKey = "round"
	KeyFileLink SortKey = "fileLink"
)

// Keys lists the sort keys in column order.
var Keys = []SortKey{
	KeyDate, KeyID, KeyStatus, KeyWorkType, KeyDetails,
	KeyOwner, KeyDeadline, KeySentDate, KeyRound, KeyFileLink,
}

var labels = map[SortKey]string{
	KeyDate:     "Date",
	KeyID:       "ID",
	KeyStatus:   "Status",
	KeyWorkType: "Work type",
	KeyDetails:  "Details",
	KeyOwner:    "Owner",
	KeyDeadline: "Deadline",
	KeySentDate: "Sent",
	KeyRound:    "Round",
	KeyFileLink: "File",
}

// Label is the column heading for key.
func (k SortKey) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// ParseSortKey resolves a field name, ignoring case.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range Keys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// IsDate reports whether the key holds a Thai-locale date.
func (k SortKey) IsDate() bool {
	return k == KeyDate || k == KeyDeadline || k == KeySentDate
}

// Field returns the value stored under key, or "" for an unknown key.
func (t Task) Field(key SortKey) string {
	switch key {
	case KeyDate:
		return t.Date
	case KeyID:
		return t.ID
	case KeyStatus:
		return t.Status
	case KeyWorkType:
		return t.WorkType
	case KeyDetails:
		return t.Details
	case KeyOwner:
		return t.Owner
	case KeyDeadline:
		return t.Deadline
	case KeySentDate:
		return t.SentDate
	case KeyRound:
		return t.Round
	case KeyFileLink:
		return t.FileLink
	}
	return ""
}

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// SortConfig is the single active sort column.
type SortConfig struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by date, oldest first.
func DefaultSort() SortConfig {
	return SortConfig{Key: KeyDate, Direction: Ascending}
}

// Filter narrows the list to exact field matches. Empty fields match anything.
type Filter struct {
	Status   string `json:"status,omitempty"`
	Owner    string `json:"owner,omitempty"`
	WorkType string `json:"workType,omitempty"`
}

// IsZero reports whether no filter is active.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Owner == "" && f.WorkType == ""
}

// Match reports whether t passes every active filter field.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Owner != "" && t.Owner != f.Owner {
		return false
	}
	if f.WorkType != "" && t.WorkType != f.WorkType {
		return false
	}
	return true
}

// FilterKeys are the fields a Filter can constrain.
var FilterKeys = []SortKey{KeyStatus, KeyOwner, KeyWorkType}

// With returns a copy of f with the given field set to value.
func (f Filter) With(key SortKey, value string) (Filter, error) {
	switch key {
	case KeyStatus:
		f.Status = value
	case KeyOwner:
		f.Owner = value
	case KeyWorkType:
		f.WorkType = value
	default:
		return f, fmt.Errorf("field %q cannot be filtered", key)
	}
	return f, nil
}

// Get returns the filter value for key.
func (f Filter) Get(key SortKey) string {
	switch key {
	case KeyStatus:
		return f.Status
	case KeyOwner:
		return f.Owner
	case KeyWorkType:
		return f.WorkType
	}
	return ""
}
