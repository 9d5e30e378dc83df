package dnsmsg

import (
	"encoding/binary"
	"io"
	"strings"
)

// context is used when parsing or generating a message in order to handle
// label compression, length-bounded rdata reads, and the reserve/rollback
// dance required by EDNS padding and TSIG framing. The core never
// logs: every failure here is surfaced as an error to the caller.
type context struct {
	rawMsg   []byte
	labelMap map[string]uint16 // cache for label compression
	rpos     int               // read position
	rend     int               // bounded end position for restrictTo; 0 means unbounded
	name     string            // default suffix
	marshal  bool              // marshal mode
	reserved int               // bytes reserved at the tail by reserve(), not yet released
}

func (c *context) Write(p []byte) (int, error) {
	c.rawMsg = append(c.rawMsg, p...)
	return len(p), nil
}

func (c *context) Read(p []byte) (int, error) {
	end := len(c.rawMsg)
	if c.rend > 0 && c.rend < end {
		end = c.rend
	}
	if c.rpos >= end {
		return 0, io.EOF
	}
	n := copy(p, c.rawMsg[c.rpos:end])
	c.rpos += n
	return n, nil
}

func (c *context) Len() int {
	return len(c.rawMsg)
}

func (c *context) putUint16(pos int, v uint16) {
	binary.BigEndian.PutUint16(c.rawMsg[pos:pos+2], v)
}

// readLen reads exactly l bytes from the current position, honoring any
// active restrictTo bound (reads past it surface FormError).
func (c *context) readLen(l int) ([]byte, error) {
	if l == 0 {
		return nil, nil
	}
	end := len(c.rawMsg)
	if c.rend > 0 && c.rend < end {
		end = c.rend
	}
	if c.rpos+l > end {
		return nil, ErrFormError
	}

	pos := c.rpos
	c.rpos += l

	return c.rawMsg[pos:c.rpos], nil
}

// restrictTo narrows the readable end to the current position plus n
// bytes, returning a restorer that must be deferred to lift the bound.
func (c *context) restrictTo(n int) (restore func()) {
	prev := c.rend
	newEnd := c.rpos + n
	if prev == 0 || newEnd < prev {
		c.rend = newEnd
	}
	return func() { c.rend = prev }
}

// reserve grows the buffer by n zero bytes at the tail, returning the
// offset callers can putUint16/overwrite once the real content (e.g. an
// OPT or TSIG record emitted later) is known. releaseReserved only resets
// the reserved count; it does not trim the buffer.
func (c *context) reserve(n int) int {
	pos := len(c.rawMsg)
	c.rawMsg = append(c.rawMsg, make([]byte, n)...)
	c.reserved += n
	return pos
}

func (c *context) releaseReserved() {
	c.reserved = 0
}

// rollback truncates the buffer to offset, discarding any compression
// cache entries that pointed past it.
func (c *context) rollback(offset int) {
	c.rawMsg = c.rawMsg[:offset]
	for k, v := range c.labelMap {
		if int(v&^0xc000) >= offset {
			delete(c.labelMap, k)
		}
	}
}

func (c *context) appendLabel(lbl string) error {
	if len(lbl) > 255 {
		return ErrNameTooLong
	}
	if c.marshal {
		c.rawMsg = append(c.rawMsg, byte(len(lbl)))
		c.rawMsg = append(c.rawMsg, lbl...)
		return nil
	}

	if !strings.HasSuffix(lbl, ".") {
		if c.name == "" {
			return ErrNeedAbsoluteNameOrOrigin
		}
		if lbl == "" || lbl == "@" {
			lbl = c.name
		} else {
			lbl = lbl + "." + c.name
		}
		if len(lbl) > 255 {
			return ErrNameTooLong
		}
	} else {
		lbl = lbl[:len(lbl)-1]
	}

	if lbl == "" {
		c.rawMsg = append(c.rawMsg, 0)
		return nil
	}

	// append label to msg, compress if possible
	for {
		if p, ok := c.labelMap[strings.ToLower(lbl)]; ok {
			return binary.Write(c, binary.BigEndian, p)
		}

		if cachePos := len(c.rawMsg); cachePos < 0x3fff {
			c.labelMap[strings.ToLower(lbl)] = uint16(cachePos | 0xc000)
		}

		pos := strings.IndexByte(lbl, '.')
		if pos == 0 {
			return ErrInvalidLabel
		}
		if pos == -1 {
			if len(lbl) == 0 {
				return ErrInvalidLabel
			}
			if len(lbl) > 63 {
				return ErrLabelTooLong
			}

			c.rawMsg = append(append(append(c.rawMsg, byte(len(lbl))), []byte(lbl)...), 0)
			return nil
		}

		if pos > 63 {
			return ErrLabelTooLong
		}

		c.rawMsg = append(append(c.rawMsg, byte(pos)), []byte(lbl[:pos])...)
		lbl = lbl[pos+1:]
	}
}

func (c *context) parseLabel() (string, error) {
	if c.rpos >= len(c.rawMsg) {
		return "", io.EOF
	}
	lbl, n, err := c.readLabelAt(c.rpos, c.rawMsg[c.rpos:])
	if err != nil {
		return lbl, err
	}

	c.rpos += n
	return lbl, err
}

// readLabel decodes a name starting at buf, which must be a subslice of
// c.rawMsg (used both for the primary read position and for rdata-local
// buffers passed to per-type decoders, where pointers still refer to
// absolute offsets in the full message). The absolute offset of buf is
// recovered from the two slices' capacities.
func (c *context) readLabel(buf []byte) (string, int, error) {
	return c.readLabelAt(cap(c.rawMsg)-cap(buf), buf)
}

// readLabelAt decodes starting at absolute offset `start` within
// c.rawMsg, tracking visited compression-pointer offsets so a pointer
// cycle is rejected instead of looping forever.
func (c *context) readLabelAt(start int, buf []byte) (string, int, error) {
	var res []byte
	var read int
	readMode := true

	if c.marshal {
		if len(buf) == 0 {
			return "", 0, io.ErrUnexpectedEOF
		}
		l := int(buf[0])
		if l == 0 {
			return "", 1, nil
		}
		if len(buf) < l+1 {
			return "", 0, io.ErrUnexpectedEOF
		}
		s := buf[1 : l+1]
		return string(s), l + 1, nil
	}

	visited := map[int]bool{}
	pos := start

	for {
		if len(buf) == 0 {
			return string(res), read, ErrInvalidLabel
		}
		v := int(buf[0])
		if readMode {
			read++
		}
		if v == 0 {
			return string(res), read, nil
		}
		if v&0xc0 == 0xc0 {
			if len(buf) < 2 {
				return string(res), read, ErrInvalidLabel
			}
			if readMode {
				read++
				readMode = false
			}
			target := int(binary.BigEndian.Uint16(buf[:2]) & ^uint16(0xc000))
			if target >= pos {
				// a pointer must refer to strictly earlier bytes: it may
				// not point at or beyond the current position (no
				// forward references, and no self-loop).
				return string(res), read, ErrBadCompressionPointer
			}
			if visited[target] {
				return string(res), read, ErrBadCompressionPointer
			}
			visited[target] = true
			if target >= len(c.rawMsg) {
				return string(res), read, ErrInvalidLabel
			}
			pos = target
			buf = c.rawMsg[target:]
			continue
		}
		if v > 63 {
			return string(res), read, ErrInvalidLabel
		}

		buf = buf[1:]
		pos++
		if v > len(buf) {
			return string(res), read, ErrInvalidLabel
		}

		if readMode {
			read += v
		}

		res = append(res, buf[:v]...)
		res = append(res, '.')

		buf = buf[v:]
		pos += v

		if len(res) > 255 {
			return string(res), read, ErrNameTooLong
		}
	}
}
