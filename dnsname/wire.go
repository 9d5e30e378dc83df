package dnsname

// maxPointers bounds the number of compression-pointer hops FromWire will
// follow before giving up, guarding against pathological pointer chains.
const maxPointers = 128

// ToWire appends n's uncompressed wire encoding (original label case, no
// pointers) to buf and returns the extended slice. n must be absolute.
func (n Name) ToWire(buf []byte) ([]byte, error) {
	if !n.absolute {
		return nil, ErrNeedAbsoluteNameOrOrigin
	}
	for _, l := range n.labels {
		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}
	return append(buf, 0), nil
}

// FromWire parses a domain name starting at offset pos within msg,
// following compression pointers (RFC 1035 §4.1.4) that reference earlier
// bytes of the same buffer. It returns the parsed absolute Name and the
// offset immediately after the name as it appears at pos (a pointer and
// its two bytes count as the whole name, regardless of how much data the
// pointer chain reads elsewhere in msg).
func FromWire(msg []byte, pos int) (Name, int, error) {
	var labels [][]byte
	end := -1
	jumps := 0

	for {
		if pos >= len(msg) {
			return Name{}, 0, ErrBadLabelType
		}
		lead := msg[pos]
		switch {
		case lead == 0:
			if end == -1 {
				end = pos + 1
			}
			n, err := New(labels, true)
			if err != nil {
				return Name{}, 0, err
			}
			return n, end, nil

		case lead&0xc0 == 0xc0:
			if pos+1 >= len(msg) {
				return Name{}, 0, ErrBadLabelType
			}
			if end == -1 {
				end = pos + 2
			}
			target := int(lead&0x3f)<<8 | int(msg[pos+1])
			// A pointer must reference strictly earlier bytes; this both
			// rules out self-references and makes every jump chain
			// terminate without needing a visited-set.
			if target >= pos {
				return Name{}, 0, ErrBadCompressionPointer
			}
			jumps++
			if jumps > maxPointers {
				return Name{}, 0, ErrBadCompressionPointer
			}
			pos = target

		case lead&0xc0 != 0:
			// 0x40/0x80 lead bits are reserved (RFC 2673 bitstrings, never
			// deployed; RFC 6891 repurposes neither).
			return Name{}, 0, ErrBadLabelType

		default:
			l := int(lead)
			if pos+1+l > len(msg) {
				return Name{}, 0, ErrBadLabelType
			}
			label := make([]byte, l)
			copy(label, msg[pos+1:pos+1+l])
			labels = append(labels, label)
			pos += 1 + l
		}
	}
}
