package dnsmsg

import "encoding/binary"

// Parse decodes a complete DNS message from wire format. It is strict:
// a short header, a misplaced or duplicate OPT record, a TSIG record
// that isn't last in Additional, or trailing bytes after the message
// are all rejected outright rather than tolerated.
func Parse(d []byte) (*Message, error) {
	if len(d) < 12 {
		return nil, ErrShortHeader
	}

	c := &context{rawMsg: d}

	msg := &Message{}

	// read stuff
	err := binary.Read(c, binary.BigEndian, &msg.ID)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &msg.Bits)
	if err != nil {
		return nil, err
	}

	// count of the various types
	var QD, AN, NS, AR uint16

	err = binary.Read(c, binary.BigEndian, &QD)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &AN)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &NS)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &AR)
	if err != nil {
		return nil, err
	}

	for i := 0; i < int(QD); i++ {
		q, err := c.parseQuestion()
		if err != nil {
			return nil, err
		}
		msg.Question = append(msg.Question, q)
	}
	for i := 0; i < int(AN); i++ {
		r, err := c.parseResource()
		if err != nil {
			return nil, err
		}
		msg.Answer = append(msg.Answer, r)
	}
	for i := 0; i < int(NS); i++ {
		r, err := c.parseResource()
		if err != nil {
			return nil, err
		}
		msg.Authority = append(msg.Authority, r)
	}
	for i := 0; i < int(AR); i++ {
		r, err := c.parseResource()
		if err != nil {
			return nil, err
		}
		msg.Additional = append(msg.Additional, r)
	}

	if c.rpos != len(c.rawMsg) {
		return nil, ErrTrailingJunk
	}

	if err := msg.validatePlacement(); err != nil {
		return nil, err
	}

	return msg, nil
}

// validatePlacement enforces that at most one OPT record appears, only
// in Additional, and that a TSIG record (if present) is the last
// Additional record.
func (m *Message) validatePlacement() error {
	optCount := 0
	tsigIdx := -1
	for i, r := range m.Additional {
		switch r.Type {
		case OPT:
			optCount++
		case TSIG:
			tsigIdx = i
		}
	}
	for _, r := range append(append([]*Resource(nil), m.Answer...), m.Authority...) {
		if r.Type == OPT {
			return ErrBadEDNS
		}
		if r.Type == TSIG {
			return ErrBadTSIG
		}
	}
	if optCount > 1 {
		return ErrBadEDNS
	}
	if tsigIdx >= 0 && tsigIdx != len(m.Additional)-1 {
		return ErrBadTSIG
	}
	return nil
}
