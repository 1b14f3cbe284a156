// Package freqcsv reads and writes frequency tables as CSV.
//
// A full table has the header "name,occ_given,occ_family,soundex,metaphone";
// the phonetic columns are informational and ignored on read. Count lists are
// two-column "name,count" files holding one role each.
package freqcsv

import (
	"encoding/csv"
	"io"
	"iter"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kerem-kaynak/authorname/internal/phonetic"
	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

// Header is the first row written by Write.
var Header = []string{"name", "occ_given", "occ_family", "soundex", "metaphone"}

// Write writes rows with a header.
func Write(w io.Writer, rows iter.Seq[authorname.Record]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for row := range rows {
		soundex, metaphone := phonetic.Keys(row.Token)
		record := []string{
			row.Token,
			strconv.FormatUint(row.Given, 10),
			strconv.FormatUint(row.Family, 10),
			soundex,
			metaphone,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write %q", row.Token)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// Read parses a table written by Write. Columns are located by header name;
// without a header the order is name, given, family. Rows whose counts do
// not parse are skipped.
func Read(r io.Reader) ([]authorname.Record, error) {
	cr := newReader(r)

	nameCol, givenCol, familyCol := 0, 1, 2
	var out []authorname.Record
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, errors.Wrap(err, "read csv")
		}

		if first {
			first = false
			if cols, ok := headerColumns(record); ok {
				nameCol, givenCol, familyCol = cols["name"], cols["occ_given"], cols["occ_family"]
				continue
			}
		}

		name, given, family := field(record, nameCol), field(record, givenCol), field(record, familyCol)
		if name == "" {
			continue
		}
		g, err1 := parseCount(given)
		f, err2 := parseCount(family)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, authorname.Record{Token: name, Given: g, Family: f})
	}
	return out, nil
}

// ReadCounts parses a two-column "name,count" list. Lines without exactly
// two fields, counts that do not parse and non-positive counts are skipped,
// so a header line is harmless.
func ReadCounts(r io.Reader) (map[string]uint64, error) {
	cr := newReader(r)
	counts := make(map[string]uint64)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, errors.Wrap(err, "read csv")
		}
		if len(record) != 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		n, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if name == "" || err != nil || n <= 0 {
			continue
		}
		counts[name] += uint64(n)
	}
	return counts, nil
}

// MergeCounts combines a given-name list and a family-name list into
// one table ordered by name. Names are matched after key normalization.
func MergeCounts(given, family io.Reader) ([]authorname.Record, error) {
	g, err := ReadCounts(given)
	if err != nil {
		return nil, errors.Wrap(err, "given names")
	}
	f, err := ReadCounts(family)
	if err != nil {
		return nil, errors.Wrap(err, "family names")
	}

	merged := make(map[string]*authorname.Record)
	get := func(name string) *authorname.Record {
		key := authorname.NormalizeKey(name)
		if key == "" {
			return nil
		}
		rec, ok := merged[key]
		if !ok {
			rec = &authorname.Record{Token: key}
			merged[key] = rec
		}
		return rec
	}
	for name, n := range g {
		if rec := get(name); rec != nil {
			rec.Given += n
		}
	}
	for name, n := range f {
		if rec := get(name); rec != nil {
			rec.Family += n
		}
	}

	out := make([]authorname.Record, 0, len(merged))
	for _, rec := range merged {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return cr
}

func headerColumns(record []string) (map[string]int, bool) {
	cols := make(map[string]int)
	for i, h := range record {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	_, hasName := cols["name"]
	_, hasGiven := cols["occ_given"]
	_, hasFamily := cols["occ_family"]
	return cols, hasName && hasGiven && hasFamily
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseCount(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
