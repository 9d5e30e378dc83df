package dnsmsg

import "github.com/cockroachdb/errors"

// Errors returned during DNS message parsing and encoding.
// All are plain sentinels so callers can keep using errors.Is; the
// package returns them bare, without byte-offset or record context.
var (
	// ErrInvalidLen is returned when record data has an invalid length.
	ErrInvalidLen = errors.New("invalid data length")
	// ErrNotSupport is returned when a record type is not supported for parsing or encoding.
	ErrNotSupport = errors.New("not supported")
	// ErrNameTooLong is returned when a domain name exceeds 255 octets (RFC 1035 limit).
	ErrNameTooLong = errors.New("name is too long")
	// ErrLabelTooLong is returned when a single label exceeds 63 octets (RFC 1035 limit).
	ErrLabelTooLong = errors.New("label is too long")
	// ErrInvalidLabel is returned when a label is malformed (bad length octet, truncated buffer).
	ErrInvalidLabel = errors.New("label is invalid")
	// ErrBadCompressionPointer is returned for forward-referencing or cyclic compression pointers.
	ErrBadCompressionPointer = errors.New("bad compression pointer")
	// ErrNeedAbsoluteNameOrOrigin is returned when a relative name is used with no default origin.
	ErrNeedAbsoluteNameOrOrigin = errors.New("relative name requires an origin")
	// ErrFormError is returned when a read runs past a bounded sub-range.
	ErrFormError = errors.New("malformed message: read past bound")
	// ErrShortHeader is returned when a message is too short to contain a 12-byte header.
	ErrShortHeader = errors.New("message shorter than DNS header")
	// ErrBadEDNS is returned when OPT appears outside additional, or more than once.
	ErrBadEDNS = errors.New("misplaced or duplicate OPT record")
	// ErrBadTSIG is returned when TSIG is not the last record of the additional section.
	ErrBadTSIG = errors.New("TSIG record must be last in additional section")
	// ErrTrailingJunk is returned when bytes remain after a fully parsed message.
	ErrTrailingJunk = errors.New("trailing bytes after message")
	// ErrTruncated describes a message with TC=1. Parse does not return it:
	// it accepts messages with the TC bit set.
	ErrTruncated = errors.New("message truncated (TC bit set)")
	// ErrChainTooLong describes a CNAME chain longer than 16 hops. This
	// package has no CNAME chain resolution and does not return it.
	ErrChainTooLong = errors.New("CNAME chain exceeds maximum length")
	// ErrTooBig is returned by to_wire when the message exceeds max_size and truncation wasn't requested.
	ErrTooBig = errors.New("message exceeds maximum size")
)
