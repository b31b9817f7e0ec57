package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// Postgres error codes used for classification
const (
	codeUndefinedColumn  = pq.ErrorCode("42703")
	classConnectionError = pq.ErrorClass("08")
)

var missingColumnPattern = regexp.MustCompile(`column (.+?) does not exist`)

// SchemaDriftError reports a query that referenced a column the source no
// longer has. Qualifier is the table alias the column was referenced through,
// empty when the message did not carry one.
type SchemaDriftError struct {
	Source    string
	Qualifier string
	Column    string
	Err       error
}

func (e *SchemaDriftError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema drift in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("schema drift in %s: column %s not found: %v", e.Source, e.Column, e.Err)
}

func (e *SchemaDriftError) Unwrap() error {
	return e.Err
}

// ConnectivityError reports that a source store could not be reached
type ConnectivityError struct {
	Source string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Source, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// classify wraps a driver error as a SchemaDriftError or ConnectivityError
// when it is one, and returns it unchanged otherwise.
func classify(source string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUndefinedColumn:
			qualifier, column := parseMissingColumn(pqErr.Message)
			return &SchemaDriftError{Source: source, Qualifier: qualifier, Column: column, Err: err}
		case pqErr.Code.Class() == classConnectionError:
			return &ConnectivityError{Source: source, Err: err}
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return &ConnectivityError{Source: source, Err: err}
	}

	// Fall back to the message text for drivers that do not expose a code.
	if strings.Contains(err.Error(), "does not exist") && strings.Contains(err.Error(), "column ") {
		qualifier, column := parseMissingColumn(err.Error())
		return &SchemaDriftError{Source: source, Qualifier: qualifier, Column: column, Err: err}
	}
	return err
}

// parseMissingColumn extracts the qualifier and column from messages such as
// `column p.total_area does not exist` or `column "Price" does not exist`.
// An unparseable message yields an empty column.
func parseMissingColumn(message string) (qualifier, column string) {
	m := missingColumnPattern.FindStringSubmatch(message)
	if m == nil {
		return "", ""
	}
	ref := strings.TrimSpace(m[1])

	if !strings.HasPrefix(ref, `"`) {
		if i := strings.Index(ref, "."); i >= 0 {
			qualifier, ref = ref[:i], ref[i+1:]
		}
	}
	return qualifier, strings.Trim(ref, `"`)
}
