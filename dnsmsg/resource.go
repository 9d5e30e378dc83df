package dnsmsg

import (
	"encoding/binary"
	"fmt"
)

type Resource struct {
	Name  string
	Type  Type
	Class Class
	TTL   uint32

	Data RData
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s %s %s %d %s", r.Name, r.Class, r.Type, r.TTL, r.Data)
}

// encode writes name, type, class, ttl and RDLENGTH-framed rdata. The
// RDLENGTH field is backfilled after Data.encode runs, since its value
// isn't known until the rdata has actually been serialized (label
// compression can make it shorter than a naive estimate).
func (r *Resource) encode(c *context) error {
	if err := c.appendLabel(r.Name); err != nil {
		return err
	}
	if err := binary.Write(c, binary.BigEndian, r.Type); err != nil {
		return err
	}
	if err := binary.Write(c, binary.BigEndian, r.Class); err != nil {
		return err
	}
	if err := binary.Write(c, binary.BigEndian, r.TTL); err != nil {
		return err
	}

	lenPos := c.reserve(2)
	before := len(c.rawMsg)
	if err := r.Data.encode(c); err != nil {
		return err
	}
	rdlen := len(c.rawMsg) - before
	if rdlen > 0xffff {
		return ErrInvalidLen
	}
	c.putUint16(lenPos, uint16(rdlen))
	c.releaseReserved()
	return nil
}

func (c *context) parseResource() (*Resource, error) {
	lbl, err := c.parseLabel()
	if err != nil {
		return nil, err
	}
	r := &Resource{Name: lbl}

	err = binary.Read(c, binary.BigEndian, &r.Type)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &r.Class)
	if err != nil {
		return nil, err
	}
	err = binary.Read(c, binary.BigEndian, &r.TTL)
	if err != nil {
		return nil, err
	}

	var l uint16 // RDLENGTH
	err = binary.Read(c, binary.BigEndian, &l)
	if err != nil {
		return nil, err
	}

	rdbuf, err := c.readLen(int(l))
	if err != nil {
		return nil, err
	}

	r.Data, err = c.parseRData(r.Type, rdbuf)
	if err != nil {
		return nil, err
	}

	return r, nil
}
