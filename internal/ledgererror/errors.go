// Package ledgererror defines the typed errors the core surfaces to callers.
// Every error carries enough context (platform, row index, offending value)
// for the caller to build an actionable message; the core itself never
// presents UI text.
package ledgererror

import "fmt"

// MappingError reports a required canonical field that could not be produced
// from a source row. The caller decides whether to skip the row or abort the
// whole import.
type MappingError struct {
	Platform string
	RowIndex int
	Field    string
	Reason   string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s row %d: cannot map required field %q: %s",
		e.Platform, e.RowIndex, e.Field, e.Reason)
}

// TimeParseError reports a timestamp string that matched none of the
// configured layouts.
type TimeParseError struct {
	Raw     string
	Layouts int
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("unable to parse timestamp %q (tried %d layouts)", e.Raw, e.Layouts)
}

// AIError reports a failed AI classification attempt: unreachable provider,
// timeout, or a malformed/out-of-vocabulary response. It is always
// recoverable; the categorizer resolves it to the default category.
type AIError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *AIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai classification via %s failed: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("ai classification via %s failed: %s", e.Provider, e.Reason)
}

func (e *AIError) Unwrap() error {
	return e.Err
}
