// Package serial implements RFC 1982 serial number arithmetic, used by SOA
// serial comparison and by RRSIG inception/expiration comparison.
package serial

// Serial is an unsigned 32-bit value compared under RFC 1982 rules instead
// of plain integer ordering, so it keeps working across wraparound.
type Serial uint32

// Less reports whether s comes before o in RFC 1982 serial space:
// (o-s) mod 2^32 < 2^31 and s != o.
func (s Serial) Less(o Serial) bool {
	if s == o {
		return false
	}
	diff := uint32(o) - uint32(s)
	return diff < 1<<31
}

// LessEqual reports whether s comes before or equals o.
func (s Serial) LessEqual(o Serial) bool {
	return s == o || s.Less(o)
}

// InWindow reports whether v falls within [lo, hi] under serial arithmetic,
// used to validate RRSIG inception <= now <= expiration across wraparound.
func InWindow(v, lo, hi Serial) bool {
	return lo.LessEqual(v) && v.LessEqual(hi)
}

// Add returns s+delta, saturating the RFC 1982 "ambiguous" half of the
// space as an error signal via the ok flag: a relative increment that
// would move more than 2^31-1 forward is rejected, mirroring the
// update_serial guard described in the transaction layer.
func Add(s Serial, delta uint32) (result Serial, ok bool) {
	if delta > 1<<31-1 {
		return s, false
	}
	return Serial(uint32(s) + delta), true
}
