package dnsname

import "github.com/cockroachdb/errors"

// Errors returned while constructing or manipulating domain names.
var (
	ErrEmptyLabel              = errors.New("dnsname: empty label")
	ErrBadLabelType            = errors.New("dnsname: bad label type")
	ErrNameTooLong             = errors.New("dnsname: name exceeds 255 octets")
	ErrLabelTooLong            = errors.New("dnsname: label exceeds 63 octets")
	ErrBadCompressionPointer   = errors.New("dnsname: bad compression pointer")
	ErrNeedAbsoluteNameOrOrigin = errors.New("dnsname: relative name needs an origin")
	ErrAbsoluteConcatenation   = errors.New("dnsname: cannot append labels to an absolute name")
)
