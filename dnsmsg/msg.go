package dnsmsg

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Message is a full DNS message: header plus the four sections. It is
// the in-memory form produced by Parse and consumed by MarshalBinary.
type Message struct {
	// Header
	ID   uint16
	Bits HeaderBits

	Question   []*Question // QD
	Answer     []*Resource // AN
	Authority  []*Resource // NS
	Additional []*Resource // AR

	// Errors holds per-record problems with their offsets. Parse never
	// populates it: it is strict and returns the first error it hits.
	Errors []MessageError
}

// MessageError pairs an error about one record with the byte offset
// where that record started.
type MessageError struct {
	Offset int
	Err    error
}

func (e MessageError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Err)
}

// New returns an empty query-shaped message (all header bits zero, no
// sections). Callers typically set ID, Bits and Question manually.
func New() *Message {
	return &Message{}
}

// NewQuery builds a standard recursive query for name/class/type.
func NewQuery(name string, class Class, t Type) *Message {
	m := &Message{
		Question: []*Question{{Name: name, Type: t, Class: class}},
	}
	m.Bits.SetRecDesired(true)
	return m
}

// IsResponse reports whether m looks like a response to the query req:
// same ID, QR bit set, and (if both carry a question) the same question.
func (m *Message) IsResponse(req *Message) bool {
	if m.ID != req.ID {
		return false
	}
	if !m.Bits.IsResponse() {
		return false
	}
	if len(req.Question) == 0 || len(m.Question) == 0 {
		return true
	}
	rq, mq := req.Question[0], m.Question[0]
	return strings.EqualFold(rq.Name, mq.Name) && rq.Type == mq.Type && rq.Class == mq.Class
}

// findOPT returns the OPT pseudo-record in Additional, if any, along
// with the index it was found at.
func (m *Message) findOPT() (*Resource, int) {
	for i, r := range m.Additional {
		if r.Type == OPT {
			return r, i
		}
	}
	return nil, -1
}

// EDNS returns the message's OPT record data and requestor UDP payload
// size (carried in the OPT record's class field, RFC 6891 §6.1.2).
func (m *Message) EDNS() (opt *RDataOPT, udpSize uint16, ok bool) {
	r, _ := m.findOPT()
	if r == nil {
		return nil, 0, false
	}
	o, isOpt := r.Data.(*RDataOPT)
	if !isOpt {
		return nil, 0, false
	}
	return o, uint16(r.Class), true
}

// SetEDNS attaches (or replaces) the message's OPT pseudo-record,
// advertising udpSize as the requestor's UDP payload size.
func (m *Message) SetEDNS(udpSize uint16, opts ...DnsOpt) {
	rr := &Resource{
		Name:  ".",
		Type:  OPT,
		Class: Class(udpSize),
		Data:  &RDataOPT{Opts: opts},
	}
	if _, i := m.findOPT(); i >= 0 {
		m.Additional[i] = rr
		return
	}
	m.Additional = append(m.Additional, rr)
}

// MarshalBinary encodes m with no size limit; it never truncates.
func (m *Message) MarshalBinary() ([]byte, error) {
	data, _, err := m.marshalLimited(0)
	return data, err
}

// MarshalBinaryLimited encodes m, dropping whole records from the
// Additional, then Authority, then Answer sections (in that order,
// keeping the Question and the OPT record) until the result fits
// within maxSize. truncated reports whether anything was dropped; when
// it is, the returned encoding already has the TC bit set.
func (m *Message) MarshalBinaryLimited(maxSize int) (data []byte, truncated bool, err error) {
	return m.marshalLimited(maxSize)
}

func (m *Message) marshalLimited(maxSize int) ([]byte, bool, error) {
	working := *m
	truncated := false

	for {
		data, err := working.encodeOnce()
		if err != nil {
			return nil, truncated, err
		}
		if maxSize <= 0 || len(data) <= maxSize {
			if truncated {
				working.Bits.SetTrunc(true)
				data, err = working.encodeOnce()
				if err != nil {
					return nil, truncated, err
				}
			}
			return data, truncated, nil
		}
		droppedAdditional := false
		for i := len(working.Additional) - 1; i >= 0; i-- {
			if working.Additional[i].Type != OPT {
				working.Additional = append(working.Additional[:i:i], working.Additional[i+1:]...)
				droppedAdditional = true
				break
			}
		}
		switch {
		case droppedAdditional:
		case len(working.Authority) > 0:
			working.Authority = working.Authority[:len(working.Authority)-1]
		case len(working.Answer) > 0:
			working.Answer = working.Answer[:len(working.Answer)-1]
		default:
			return nil, truncated, ErrTooBig
		}
		truncated = true
	}
}

func (m *Message) encodeOnce() ([]byte, error) {
	c := &context{
		labelMap: make(map[string]uint16),
	}

	if err := binary.Write(c, binary.BigEndian, m.ID); err != nil {
		return nil, err
	}
	if err := binary.Write(c, binary.BigEndian, m.Bits.Sanitized()); err != nil {
		return nil, err
	}
	if err := binary.Write(c, binary.BigEndian, uint16(len(m.Question))); err != nil {
		return nil, err
	}
	if err := binary.Write(c, binary.BigEndian, uint16(len(m.Answer))); err != nil {
		return nil, err
	}
	if err := binary.Write(c, binary.BigEndian, uint16(len(m.Authority))); err != nil {
		return nil, err
	}
	if err := binary.Write(c, binary.BigEndian, uint16(len(m.Additional))); err != nil {
		return nil, err
	}

	for _, q := range m.Question {
		if err := q.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Answer {
		if err := r.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Authority {
		if err := r.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Additional {
		if err := r.encode(c); err != nil {
			return nil, err
		}
	}

	return c.rawMsg, nil
}

func (m *Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %d %s", m.ID, m.Bits.String())

	writeQuestionSection(&b, m.Question)

	opt, udpSize, hasOPT := m.EDNS()
	var additional []*Resource
	if hasOPT {
		for _, r := range m.Additional {
			if r.Type != OPT {
				additional = append(additional, r)
			}
		}
	} else {
		additional = m.Additional
	}

	writeResourceSection(&b, "AN", m.Answer)
	writeResourceSection(&b, "NS", m.Authority)
	writeResourceSection(&b, "AR", additional)

	if hasOPT {
		fmt.Fprintf(&b, " ReqUDPSize=%d", udpSize)
		if len(opt.Opts) > 0 {
			parts := make([]string, len(opt.Opts))
			for i, o := range opt.Opts {
				parts[i] = o.String()
			}
			fmt.Fprintf(&b, " %s", strings.Join(parts, " "))
		}
	}

	return b.String()
}

func writeQuestionSection(b *strings.Builder, qs []*Question) {
	if len(qs) == 0 {
		return
	}
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = q.String()
	}
	fmt.Fprintf(b, " QD: %s", strings.Join(parts, " "))
}

func writeResourceSection(b *strings.Builder, label string, rs []*Resource) {
	if len(rs) == 0 {
		return
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	fmt.Fprintf(b, " %s: %s", label, strings.Join(parts, " "))
}
