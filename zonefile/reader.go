package zonefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

// Target receives parsed records from a Reader. *zone.Zone satisfies
// this; a writer txn.Transaction satisfies it too, so a Reader can load
// directly into an in-progress transaction.
type Target interface {
	PutRdataset(name dnsname.Name, ds *zone.Rdataset) error
}

// maxIncludeDepth bounds $INCLUDE recursion against include cycles.
const maxIncludeDepth = 16

var defaultAllowedDirectives = map[string]bool{
	"$ORIGIN":  true,
	"$TTL":     true,
	"$INCLUDE": true,
	"$GENERATE": true,
}

// Options configures a Reader.
type Options struct {
	// Origin, if set, seeds current_origin before the first $ORIGIN.
	Origin dnsname.Name
	HaveOrigin bool
	// DefaultTTL, if set, seeds default_ttl before the first $TTL.
	DefaultTTL    uint32
	HaveDefaultTTL bool
	// Class is used for records that don't specify one explicitly.
	// Defaults to dnsmsg.IN if zero.
	Class dnsmsg.Class
	// AllowDirectives restricts which directives are accepted; nil means
	// every directive listed above is allowed.
	AllowDirectives map[string]bool

	includeDepth int
}

// Reader parses master-file text and submits each record to a Target.
type Reader struct {
	tok      *Tokenizer
	filename string
	target   Target

	origin     dnsname.Name
	haveOrigin bool

	lastName     dnsname.Name
	haveLastName bool

	defaultTTL     uint32
	haveDefaultTTL bool
	lastTTL        uint32
	haveLastTTL    bool

	class   dnsmsg.Class
	allowed map[string]bool

	includeDepth int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, filename string, target Target, opts Options) *Reader {
	class := opts.Class
	if class == 0 {
		class = dnsmsg.IN
	}
	allowed := opts.AllowDirectives
	if allowed == nil {
		allowed = defaultAllowedDirectives
	}
	return &Reader{
		tok:            NewTokenizer(r, filename),
		filename:       filename,
		target:         target,
		origin:         opts.Origin,
		haveOrigin:     opts.HaveOrigin,
		defaultTTL:     opts.DefaultTTL,
		haveDefaultTTL: opts.HaveDefaultTTL,
		class:          class,
		allowed:        allowed,
		includeDepth:   opts.includeDepth,
	}
}

func (rd *Reader) syntaxErr(format string, args ...any) error {
	_, line := rd.tok.Where()
	return newSyntaxError(rd.filename, line, format, args...)
}

func (rd *Reader) directiveAllowed(name string) bool {
	return rd.allowed[strings.ToUpper(name)]
}

// ReadAll consumes the entire input, submitting every record it finds to
// the target.
func (rd *Reader) ReadAll() error {
	for {
		done, err := rd.readLine()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// readLine consumes one logical line (directive, record, blank line or
// comment-only line) and reports whether input is exhausted.
func (rd *Reader) readLine() (bool, error) {
	first, err := rd.tok.Get(true, false)
	if err != nil {
		return false, err
	}
	switch first.Kind {
	case EOF:
		return true, nil
	case EOL:
		return false, nil
	}

	var ownerText string
	haveOwnerText := false
	if first.Kind == Whitespace {
		// Leading whitespace: owner name omitted, reuse last_name. A line
		// holding only whitespace and perhaps a comment is blank.
		next, err := rd.tok.Get(false, false)
		if err != nil {
			return false, err
		}
		switch next.Kind {
		case EOF:
			return true, nil
		case EOL:
			return false, nil
		}
		if err := rd.tok.Unget(next); err != nil {
			return false, err
		}
	} else {
		ownerText = first.Value
		haveOwnerText = true
	}

	if haveOwnerText && strings.HasPrefix(strings.ToUpper(ownerText), "$") {
		return false, rd.handleDirective(ownerText)
	}

	name, err := rd.resolveOwnerName(ownerText, haveOwnerText)
	if err != nil {
		return false, err
	}

	return false, rd.readRecordFields(name)
}

// resolveOwnerName interprets the owner-name field, "@" meaning the
// current origin, and a bare omission reusing last_name.
func (rd *Reader) resolveOwnerName(text string, have bool) (dnsname.Name, error) {
	if !have {
		if !rd.haveLastName {
			return dnsname.Name{}, rd.syntaxErr("missing owner name")
		}
		return rd.lastName, nil
	}
	if text == "@" {
		if !rd.haveOrigin {
			return dnsname.Name{}, ErrUnknownOrigin
		}
		rd.lastName = rd.origin
		rd.haveLastName = true
		return rd.origin, nil
	}
	var originPtr *dnsname.Name
	if rd.haveOrigin {
		originPtr = &rd.origin
	}
	name, err := rd.resolveName(text, originPtr)
	if err != nil {
		return dnsname.Name{}, err
	}
	rd.lastName = name
	rd.haveLastName = true
	return name, nil
}

func (rd *Reader) resolveName(text string, origin *dnsname.Name) (dnsname.Name, error) {
	name, err := dnsname.FromText(text, origin)
	if err == dnsname.ErrNeedAbsoluteNameOrOrigin {
		return dnsname.Name{}, ErrUnknownOrigin
	}
	if err != nil {
		return dnsname.Name{}, rd.syntaxErr("bad name %q: %v", text, err)
	}
	return name, nil
}

// readRecordFields parses the optional TTL/class fields, the required
// type, and the rdata tokens to end-of-line, then submits the record.
func (rd *Reader) readRecordFields(name dnsname.Name) error {
	var (
		ttl      uint32
		haveTTL  bool
		class    = rd.class
		typ      dnsmsg.Type
		haveType bool
	)

	for !haveType {
		tok, err := rd.tok.Get(false, false)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case EOF, EOL:
			return rd.syntaxErr("record has no type")
		}
		if !haveTTL {
			if n, err := strconv.ParseUint(tok.Value, 10, 32); err == nil {
				ttl = uint32(n)
				haveTTL = true
				continue
			}
		}
		if c, ok := dnsmsg.StringToClass[strings.ToUpper(tok.Value)]; ok {
			class = c
			continue
		}
		t, ok := dnsmsg.StringToType[strings.ToUpper(tok.Value)]
		if !ok {
			return rd.syntaxErr("unknown record type %q", tok.Value)
		}
		typ = t
		haveType = true
	}

	if haveTTL {
		rd.lastTTL = ttl
		rd.haveLastTTL = true
	} else if rd.haveLastTTL {
		ttl = rd.lastTTL
	} else if rd.haveDefaultTTL {
		ttl = rd.defaultTTL
		rd.lastTTL = ttl
		rd.haveLastTTL = true
	} else {
		return ErrNoDefaultTTL
	}

	rdataToks, err := rd.collectToEOL()
	if err != nil {
		return err
	}
	rdataText := joinRdataTokens(rdataToks)
	data, err := dnsmsg.RDataFromString(typ, rdataText)
	if err != nil {
		return rd.syntaxErr("bad rdata for %s: %v", typ, err)
	}

	ds := zone.NewRdataset(class, typ, 0)
	ds.Add(data, ttl)
	if err := rd.target.PutRdataset(name, ds); err != nil {
		return err
	}
	return nil
}

// collectToEOL gathers every remaining token on the current line.
func (rd *Reader) collectToEOL() ([]Token, error) {
	var toks []Token
	for {
		tok, err := rd.tok.Get(false, false)
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF || tok.Kind == EOL {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func joinRdataTokens(toks []Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		if tok.Kind == QuotedString {
			parts[i] = strconv.Quote(tok.Value)
		} else {
			parts[i] = tok.Value
		}
	}
	return strings.Join(parts, " ")
}

func (rd *Reader) handleDirective(name string) error {
	upper := strings.ToUpper(name)
	if !rd.directiveAllowed(upper) {
		return ErrDirectiveNotAllowed
	}
	switch upper {
	case "$ORIGIN":
		return rd.handleOrigin()
	case "$TTL":
		return rd.handleTTL()
	case "$INCLUDE":
		return rd.handleInclude()
	case "$GENERATE":
		return rd.handleGenerate()
	default:
		return rd.syntaxErr("unknown directive %q", name)
	}
}

func (rd *Reader) handleOrigin() error {
	tok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	if tok.Kind != Identifier {
		return rd.syntaxErr("$ORIGIN requires a name")
	}
	var originPtr *dnsname.Name
	if rd.haveOrigin {
		originPtr = &rd.origin
	}
	name, err := rd.resolveName(tok.Value, originPtr)
	if err != nil {
		return err
	}
	rd.origin = name
	rd.haveOrigin = true
	return rd.expectEOL()
}

func (rd *Reader) handleTTL() error {
	tok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	ttl, err := ParseTTL(tok.Value)
	if err != nil {
		return rd.syntaxErr("bad $TTL: %v", err)
	}
	rd.defaultTTL = ttl
	rd.haveDefaultTTL = true
	return rd.expectEOL()
}

func (rd *Reader) handleInclude() error {
	if rd.includeDepth >= maxIncludeDepth {
		return rd.syntaxErr("$INCLUDE nested too deeply")
	}
	pathTok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	if pathTok.Kind != Identifier && pathTok.Kind != QuotedString {
		return rd.syntaxErr("$INCLUDE requires a path")
	}

	includeOrigin := rd.origin
	haveIncludeOrigin := rd.haveOrigin
	originTok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	if originTok.Kind == Identifier {
		var originPtr *dnsname.Name
		if rd.haveOrigin {
			originPtr = &rd.origin
		}
		name, err := rd.resolveName(originTok.Value, originPtr)
		if err != nil {
			return err
		}
		includeOrigin = name
		haveIncludeOrigin = true
	} else if originTok.Kind != EOL && originTok.Kind != EOF {
		return rd.syntaxErr("unexpected token after $INCLUDE path")
	}

	path := pathTok.Value
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(rd.filename), path)
	}
	f, err := os.Open(path)
	if err != nil {
		return rd.syntaxErr("$INCLUDE %s: %v", pathTok.Value, err)
	}
	defer f.Close()

	child := NewReader(f, path, rd.target, Options{
		Origin:         includeOrigin,
		HaveOrigin:     haveIncludeOrigin,
		DefaultTTL:     rd.defaultTTL,
		HaveDefaultTTL: rd.haveDefaultTTL,
		Class:          rd.class,
		AllowDirectives: rd.allowed,
		includeDepth:   rd.includeDepth + 1,
	})
	return child.ReadAll()
}

// handleGenerate implements $GENERATE start-stop[/step] lhs ttl? class?
// type rhs: for each i in the range, $ in lhs/rhs is substituted (with
// optional ${offset,width,base} formatting) and the resulting record is
// submitted as if it had been written out literally.
func (rd *Reader) handleGenerate() error {
	rangeTok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	start, stop, step, err := parseGenerateRange(rangeTok.Value)
	if err != nil {
		return rd.syntaxErr("%v", err)
	}

	lhsTok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	if lhsTok.Kind != Identifier {
		return rd.syntaxErr("$GENERATE requires a name template")
	}

	fields, err := rd.collectToEOL()
	if err != nil {
		return err
	}

	var (
		ttl      uint32
		haveTTL  bool
		class    = rd.class
		typ      dnsmsg.Type
		haveType bool
		i        = 0
	)
	for ; i < len(fields); i++ {
		tok := fields[i]
		if !haveTTL {
			if n, err := strconv.ParseUint(tok.Value, 10, 32); err == nil {
				ttl = uint32(n)
				haveTTL = true
				continue
			}
		}
		if c, ok := dnsmsg.StringToClass[strings.ToUpper(tok.Value)]; ok {
			class = c
			continue
		}
		t, ok := dnsmsg.StringToType[strings.ToUpper(tok.Value)]
		if !ok {
			return rd.syntaxErr("$GENERATE: unknown record type %q", tok.Value)
		}
		typ = t
		haveType = true
		i++
		break
	}
	if !haveType {
		return rd.syntaxErr("$GENERATE record has no type")
	}

	if haveTTL {
		rd.lastTTL = ttl
		rd.haveLastTTL = true
	} else if rd.haveLastTTL {
		ttl = rd.lastTTL
	} else if rd.haveDefaultTTL {
		ttl = rd.defaultTTL
	} else {
		return ErrNoDefaultTTL
	}

	rhsTemplate := joinRdataTokens(fields[i:])

	for v := start; (step > 0 && v <= stop) || (step < 0 && v >= stop); v += step {
		lhsText, err := substituteDollar(lhsTok.Value, v)
		if err != nil {
			return rd.syntaxErr("%v", err)
		}
		var originPtr *dnsname.Name
		if rd.haveOrigin {
			originPtr = &rd.origin
		}
		name, err := rd.resolveName(lhsText, originPtr)
		if err != nil {
			return err
		}
		rhsText, err := substituteDollar(rhsTemplate, v)
		if err != nil {
			return rd.syntaxErr("%v", err)
		}
		data, err := dnsmsg.RDataFromString(typ, rhsText)
		if err != nil {
			return rd.syntaxErr("$GENERATE bad rdata: %v", err)
		}
		ds := zone.NewRdataset(class, typ, 0)
		ds.Add(data, ttl)
		if err := rd.target.PutRdataset(name, ds); err != nil {
			return err
		}
	}
	return nil
}

// parseGenerateRange parses "start-stop[/step]".
func parseGenerateRange(s string) (start, stop, step int, err error) {
	stepPart := ""
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		stepPart = s[idx+1:]
		s = s[:idx]
	}
	dashIdx := strings.IndexByte(s, '-')
	if dashIdx <= 0 {
		return 0, 0, 0, ErrBadGenerate
	}
	start, err1 := strconv.Atoi(s[:dashIdx])
	stop, err2 := strconv.Atoi(s[dashIdx+1:])
	if err1 != nil || err2 != nil {
		return 0, 0, 0, ErrBadGenerate
	}
	step = 1
	if stepPart != "" {
		step, err = strconv.Atoi(stepPart)
		if err != nil {
			return 0, 0, 0, ErrBadGenerate
		}
	}
	if step == 0 {
		return 0, 0, 0, ErrBadGenerate
	}
	if step > 0 && start > stop {
		step = -step
	}
	return start, stop, step, nil
}

// substituteDollar expands $ and ${offset[,width[,base]]} occurrences in
// tmpl with i+offset, formatted per base (d/o/x/X decimal/octal/hex, n/N
// nibble-reversed hex for IP6 reverse-zone names). "\$" yields a literal
// dollar sign.
func substituteDollar(tmpl string, i int) (string, error) {
	var sb strings.Builder
	runes := []rune(tmpl)
	for idx := 0; idx < len(runes); idx++ {
		c := runes[idx]
		if c == '\\' && idx+1 < len(runes) {
			sb.WriteRune(runes[idx+1])
			idx++
			continue
		}
		if c != '$' {
			sb.WriteRune(c)
			continue
		}

		offset, width, base := 0, 0, byte('d')
		if idx+1 < len(runes) && runes[idx+1] == '{' {
			end := idx + 2
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end >= len(runes) {
				return "", ErrBadGenerate
			}
			spec := strings.Split(string(runes[idx+2:end]), ",")
			var err error
			if len(spec) >= 1 && spec[0] != "" {
				if offset, err = strconv.Atoi(spec[0]); err != nil {
					return "", ErrBadGenerate
				}
			}
			if len(spec) >= 2 && spec[1] != "" {
				if width, err = strconv.Atoi(spec[1]); err != nil {
					return "", ErrBadGenerate
				}
			}
			if len(spec) >= 3 && spec[2] != "" {
				base = spec[2][0]
			}
			idx = end
		}

		value := i + offset
		switch base {
		case 'd':
			if width > 0 {
				sb.WriteString(fmt.Sprintf("%0*d", width, value))
			} else {
				sb.WriteString(strconv.Itoa(value))
			}
		case 'o':
			sb.WriteString(fmt.Sprintf("%0*o", width, value))
		case 'x':
			sb.WriteString(fmt.Sprintf("%0*x", width, value))
		case 'X':
			sb.WriteString(fmt.Sprintf("%0*X", width, value))
		case 'n':
			sb.WriteString(nibbleReversed(value, width, false))
		case 'N':
			sb.WriteString(nibbleReversed(value, width, true))
		default:
			return "", ErrBadGenerate
		}
	}
	return sb.String(), nil
}

// nibbleReversed renders value as width hex nibbles, least-significant
// nibble first and dot-separated, the form BIND uses to generate
// ip6.arpa reverse-zone owner names with $GENERATE.
func nibbleReversed(value, width int, upper bool) string {
	const hexDigits = "0123456789abcdef"
	if width <= 0 {
		width = 1
	}
	nibbles := make([]byte, width)
	v := uint64(value)
	for i := width - 1; i >= 0; i-- {
		nibbles[i] = hexDigits[v&0xf]
		v >>= 4
	}
	parts := make([]string, width)
	for i := 0; i < width; i++ {
		parts[i] = string(nibbles[width-1-i])
	}
	s := strings.Join(parts, ".")
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

func (rd *Reader) expectEOL() error {
	tok, err := rd.tok.Get(false, false)
	if err != nil {
		return err
	}
	if tok.Kind != EOL && tok.Kind != EOF {
		return rd.syntaxErr("unexpected trailing token %q", tok.Value)
	}
	return nil
}

// ParseTTL parses a BIND-style TTL: a bare integer in seconds, or a
// sequence of <count><unit> pairs with unit in {w,d,h,m,s} (case
// insensitive), e.g. "1w6d4h3m10s".
func ParseTTL(s string) (uint32, error) {
	if s == "" {
		return 0, ErrBadTTL
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), nil
	}
	var total uint64
	i := 0
	for i < len(s) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return 0, ErrBadTTL
		}
		n, err := strconv.ParseUint(s[start:i], 10, 64)
		if err != nil {
			return 0, ErrBadTTL
		}
		if i >= len(s) {
			return 0, ErrBadTTL
		}
		unit := s[i]
		i++
		var mult uint64
		switch unit {
		case 'w', 'W':
			mult = 7 * 24 * 3600
		case 'd', 'D':
			mult = 24 * 3600
		case 'h', 'H':
			mult = 3600
		case 'm', 'M':
			mult = 60
		case 's', 'S':
			mult = 1
		default:
			return 0, ErrBadTTL
		}
		total += n * mult
	}
	if total > 1<<32-1 {
		return 0, ErrBadTTL
	}
	return uint32(total), nil
}
