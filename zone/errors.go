// Package zone implements the in-memory data model sitting between the
// wire codec and the zone-file text format: rdatasets, rrsets, nodes and
// the zone map of name to node.
package zone

import "github.com/cockroachdb/errors"

var (
	// ErrCNAMEAndOtherData names a violation of the node invariant (a node
	// cannot hold both a CNAME and non-neutral data). No zone operation
	// returns it: Node.Put resolves a conflict by purging the older data.
	ErrCNAMEAndOtherData = errors.New("zone: CNAME and other data at same name")
	// ErrNoSOA is returned by GetSOA/CheckOrigin when the origin node
	// carries no SOA rdataset.
	ErrNoSOA = errors.New("zone: no SOA at origin")
	// ErrNoOrigin is returned by CheckOrigin when the origin node is
	// entirely absent.
	ErrNoOrigin = errors.New("zone: no origin node")
	// ErrNoNS is returned by CheckOrigin when the origin node carries no
	// NS rdataset.
	ErrNoNS = errors.New("zone: no NS at origin")
	// ErrNotSubdomain is returned when a name passed to a Zone method is
	// not the origin or a subdomain of it.
	ErrNotSubdomain = errors.New("zone: name is not a subdomain of the origin")
	// ErrNotFound is returned by Find-style lookups on a miss; Get-style
	// lookups return (nil, nil) instead.
	ErrNotFound = errors.New("zone: rdataset not found")
	// ErrTypeMismatch is returned by Rdataset.Update/Union/Intersect when
	// the argument's (class, type, covers) doesn't match the receiver.
	ErrTypeMismatch = errors.New("zone: rdataset type mismatch")
	// ErrDigestVerificationFailure is returned by VerifyDigest when a
	// zone's ZONEMD digest doesn't match its recomputed value.
	ErrDigestVerificationFailure = errors.New("zone: ZONEMD digest verification failed")
	// ErrUnknownDigestAlgorithm is returned when computing or verifying a
	// ZONEMD digest with an unsupported scheme or hash algorithm.
	ErrUnknownDigestAlgorithm = errors.New("zone: unsupported ZONEMD scheme or hash algorithm")
)
