package dnsmsg

type RCode byte

const (
	// RFC 1035
	NoError     RCode = 0
	ErrFormat   RCode = 1
	ErrServFail RCode = 2
	ErrName     RCode = 3
	ErrNotImpl  RCode = 4
	ErrRefused  RCode = 5

	// RFC 2136 (Dynamic Update)
	ErrYXDomain RCode = 6 // name exists when it should not
	ErrYXRRSet  RCode = 7 // RRset exists when it should not
	ErrNXRRSet  RCode = 8 // RRset does not exist when it should
	ErrNotAuth  RCode = 9 // server not authoritative, or not permitted
	ErrNotZone  RCode = 10 // name not within the zone given in the Zone Section
)

func (rc RCode) Error() string {
	switch rc {
	// RFC 1035
	case NoError:
		return "no error"
	case ErrFormat:
		return "unable to interpret the query"
	case ErrServFail:
		return "problem with the name server"
	case ErrName:
		return "domain name does not exist"
	case ErrNotImpl:
		return "query is not supported"
	case ErrRefused:
		return "operation refused"
	// RFC 2136
	case ErrYXDomain:
		return "name exists when it should not"
	case ErrYXRRSet:
		return "RRset exists when it should not"
	case ErrNXRRSet:
		return "RRset does not exist when it should"
	case ErrNotAuth:
		return "server not authoritative for zone, or not authorized"
	case ErrNotZone:
		return "name not contained in the zone specified in the Zone Section"
	default:
		return "unknown error"
	}
}

func (rc RCode) String() string {
	// TODO check these
	switch rc {
	case NoError:
		return "NOERROR"
	case ErrFormat:
		return "FORMERR"
	case ErrServFail:
		return "SERVFAIL"
	case ErrName:
		return "NXDOMAIN"
	case ErrNotImpl:
		return "NOTIMP"
	case ErrRefused:
		return "REFUSED"
	case ErrYXDomain:
		return "YXDOMAIN"
	case ErrYXRRSet:
		return "YXRRSET"
	case ErrNXRRSet:
		return "NXRRSET"
	case ErrNotAuth:
		return "NOTAUTH"
	case ErrNotZone:
		return "NOTZONE"
	default:
		return "unknown error"
	}
}
