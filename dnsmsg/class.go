package dnsmsg

import "fmt"

//go:generate stringer -type=Class

// Class represents a DNS class as defined in RFC 1035.
// The most common class is IN (Internet). Other classes like CH (Chaos)
// and HS (Hesiod) are rarely used in practice.
type Class uint16

const (
	// RFC 1035
	IN Class = 1 // INternet
	CS Class = 2 // Unassigned
	CH Class = 3 // CHaos
	HS Class = 4 // Hesiod

	ClassANY Class = 255 // RFC 1035 QCLASS *
)

// StringToClass maps class name text to Class values.
var StringToClass = map[string]Class{
	"IN":  IN,
	"CS":  CS,
	"CH":  CH,
	"HS":  HS,
	"ANY": ClassANY,
}

func (c Class) String() string {
	switch c {
	case IN:
		return "IN"
	case CS:
		return "CS"
	case CH:
		return "CH"
	case HS:
		return "HS"
	case ClassANY:
		return "ANY"
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}
