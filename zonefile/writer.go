package zonefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

// WriteOptions controls Writer's output.
type WriteOptions struct {
	// Sorted emits names in DNSSEC canonical order; otherwise the order
	// of zone.Zone.IterateRdatasets (unspecified) is used.
	Sorted bool
	// EmitOrigin writes a leading "$ORIGIN <name>" line and relativizes
	// every owner name against it where possible.
	EmitOrigin bool
	// BindTTLUnits renders TTLs using w/d/h/m/s suffixes (e.g. "1h30m")
	// instead of a bare integer.
	BindTTLUnits bool
}

// WriteZone renders z to w as master-file text.
func WriteZone(w io.Writer, z *zone.Zone, opts WriteOptions) error {
	bw := bufio.NewWriter(w)

	if opts.EmitOrigin {
		if _, err := fmt.Fprintf(bw, "$ORIGIN %s\n", z.Origin.String()); err != nil {
			return err
		}
	}

	type row struct {
		name dnsname.Name
		ttl  uint32
		typ  dnsmsg.Type
		data dnsmsg.RData
	}

	var rows []row
	for _, nrd := range z.IterateRdatasets(dnsmsg.ANY, 0) {
		ttl := nrd.Rdataset.TTL()
		for _, rd := range nrd.Rdataset.SortCanonical() {
			rows = append(rows, row{name: nrd.Name, ttl: ttl, typ: nrd.Rdataset.Type, data: rd})
		}
	}

	if opts.Sorted {
		sort.SliceStable(rows, func(i, j int) bool {
			if c := rows[i].name.Compare(rows[j].name); c != 0 {
				return c < 0
			}
			return rows[i].typ < rows[j].typ
		})
	}

	for _, r := range rows {
		name := r.name
		nameText := name.String()
		if opts.EmitOrigin {
			if rel, ok := name.Relativize(z.Origin); ok && !rel.Empty() {
				nameText = rel.String()
			} else if ok {
				nameText = "@"
			}
		}
		ttlText := fmt.Sprintf("%d", r.ttl)
		if opts.BindTTLUnits {
			ttlText = FormatBindTTL(r.ttl)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\n", nameText, ttlText, z.Class, r.typ, r.data); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteZoneFile is WriteZone rendering to a file at path, created or
// truncated.
func WriteZoneFile(path string, z *zone.Zone, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteZone(f, z, opts)
}

// ZoneText is WriteZone rendering to a string.
func ZoneText(z *zone.Zone, opts WriteOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteZone(&buf, z, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatBindTTL renders seconds in BIND's compact unit form, e.g.
// 93784 -> "1d2h3m4s". A zero TTL is rendered as "0s".
func FormatBindTTL(seconds uint32) string {
	if seconds == 0 {
		return "0s"
	}
	units := []struct {
		suffix string
		size   uint32
	}{
		{"w", 7 * 24 * 3600},
		{"d", 24 * 3600},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}
	var sb []byte
	remaining := seconds
	for _, u := range units {
		if remaining < u.size {
			continue
		}
		n := remaining / u.size
		remaining -= n * u.size
		sb = append(sb, []byte(fmt.Sprintf("%d%s", n, u.suffix))...)
	}
	return string(sb)
}
