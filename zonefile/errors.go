package zonefile

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUngetBufferFull is returned by Tokenizer.Unget/ungetChar when the
	// one-slot unget buffer already holds a value.
	ErrUngetBufferFull = errors.New("zonefile: unget buffer full")
	// ErrUnknownOrigin is returned when a relative owner name appears
	// before any $ORIGIN has been established.
	ErrUnknownOrigin = errors.New("zonefile: relative name before origin is known")
	// ErrCNAMEAndOtherData names a CNAME-vs-other-data conflict. It is not
	// derived from zone.ErrCNAMEAndOtherData, and the Reader never returns
	// it: a record that conflicts with data already at its node replaces
	// that data (see zone.Node.Put).
	ErrCNAMEAndOtherData = errors.New("zonefile: CNAME and other data at same name")
	// ErrDirectiveNotAllowed is returned when a directive is used but not
	// present in the reader's allowed-directive set.
	ErrDirectiveNotAllowed = errors.New("zonefile: directive not allowed")
	// ErrNoDefaultTTL is returned when a record omits its TTL and no
	// $TTL or prior record TTL is available to default from.
	ErrNoDefaultTTL = errors.New("zonefile: no TTL specified and no default available")
	// ErrBadGenerate is returned for a malformed $GENERATE directive.
	ErrBadGenerate = errors.New("zonefile: malformed $GENERATE directive")
	// ErrBadTTL is returned by ParseTTL for an unparseable TTL string.
	ErrBadTTL = errors.New("zonefile: malformed TTL")
)

// SyntaxError reports a malformed master-file token or line, located by
// filename and line number.
type SyntaxError struct {
	Filename string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Msg)
}

func newSyntaxError(filename string, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Filename: filename, Line: line, Msg: fmt.Sprintf(format, args...)}
}
