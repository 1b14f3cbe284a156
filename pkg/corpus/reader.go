// Package corpus reads labeled author names from XML and trains frequency
// tables from them.
//
// Accepted documents hold <Author> elements anywhere in the tree, either
// in the training layout
//
//	<Authors><Author><FamilyName/><GivenName/><Initials/></Author></Authors>
//
// or in the PubMed layout with <LastName> and <ForeName>.
package corpus

import (
	"encoding/xml"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Author is one labeled name.
type Author struct {
	FamilyName string `xml:"FamilyName"`
	GivenName  string `xml:"GivenName"`
	Initials   string `xml:"Initials"`
	LastName   string `xml:"LastName"`
	ForeName   string `xml:"ForeName"`
}

// Family returns the family-name field of either layout.
func (a Author) Family() string {
	if a.FamilyName != "" {
		return a.FamilyName
	}
	return a.LastName
}

// Given returns the given-name field of either layout.
func (a Author) Given() string {
	if a.GivenName != "" {
		return a.GivenName
	}
	return a.ForeName
}

// Empty reports whether the author carries no name at all.
func (a Author) Empty() bool {
	return strings.TrimSpace(a.Family()) == "" && strings.TrimSpace(a.Given()) == ""
}

// Decode streams the <Author> elements of an XML document. Iteration stops
// after the first error, which is yielded with a zero Author.
func Decode(r io.Reader) iter.Seq2[Author, error] {
	return func(yield func(Author, error) bool) {
		dec := xml.NewDecoder(r)
		for {
			tok, err := dec.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Author{}, errors.Wrap(err, "read xml"))
				return
			}
			start, ok := tok.(xml.StartElement)
			if !ok || start.Name.Local != "Author" {
				continue
			}
			var a Author
			if err := dec.DecodeElement(&a, &start); err != nil {
				yield(Author{}, errors.Wrap(err, "decode author"))
				return
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

// DecodeFiles streams the authors of each file in turn.
func DecodeFiles(paths []string) iter.Seq2[Author, error] {
	return func(yield func(Author, error) bool) {
		for _, path := range paths {
			file, err := os.Open(path)
			if err != nil {
				yield(Author{}, errors.Wrapf(err, "open %s", path))
				return
			}
			stop := false
			for a, err := range Decode(file) {
				if err != nil {
					err = errors.Wrapf(err, "%s", path)
				}
				if !yield(a, err) || err != nil {
					stop = true
					break
				}
			}
			file.Close()
			if stop {
				return
			}
		}
	}
}

// Expand replaces each directory in paths with the .xml files it contains,
// sorted by name. Files are kept as given.
func Expand(paths ...string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", path)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(path, "*.xml"))
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", path)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}
