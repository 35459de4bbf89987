package sheet

import (
	"errors"
	"fmt"
)

// ErrSource is the single category both FetchError and FormatError belong to.
var ErrSource = errors.New("could not fetch data from the sheet")

// FetchError is a transport failure or a non-2xx response.
type FetchError struct {
	GID        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch tab %s: HTTP error, status %d", e.GID, e.StatusCode)
	}
	return fmt.Sprintf("fetch tab %s: %v", e.GID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrSource }

// FormatError is a response that was received but is not a usable table.
type FormatError struct {
	GID    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid sheet data format: " + e.Reason
	if e.GID != "" {
		msg = fmt.Sprintf("tab %s: %s", e.GID, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrSource }

const (
	sourceMessage  = "Could not fetch data from the Google Sheet. Please check the sheet permissions, GID, or network connection."
	unknownMessage = "An unknown error occurred."
)

// UserMessage collapses any load error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSource) {
		return sourceMessage
	}
	return unknownMessage
}
