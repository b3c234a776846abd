// Package warehouse runs generated SQL against the analytical data store
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NullValue is how SQL NULL is represented in result rows
const NullValue = "NULL"

// Executor runs a SQL statement and returns its rows
type Executor interface {
	Query(ctx context.Context, sql string) (*Result, error)
}

// Result is a tabular result set with values rendered as strings
type Result struct {
	Columns []string
	Rows    [][]string
}

// IsEmpty reports whether the result has no rows
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.Rows) == 0
}

// QueryError is a failed statement execution
type QueryError struct {
	SQL      string
	Code     string
	SQLState string
	Message  string
	Err      error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString("Error executing SQL: ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("unknown error")
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	return b.String()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is or wraps a *QueryError
func IsQueryError(err error) bool {
	var queryErr *QueryError
	return errors.As(err, &queryErr)
}

// PrepareStatement strips trailing semicolons and whitespace, which the
// engines reject in single-statement submissions
func PrepareStatement(sql string) string {
	return strings.TrimRight(strings.TrimSpace(sql), "; \t\r\n")
}

// formatValue renders a scanned column value
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return NullValue
	case []byte:
		return string(value)
	case string:
		return value
	case time.Time:
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprint(value)
	}
}
