// Package report parses the XML reports produced by the build: a
// Cobertura-style coverage report and JUnit-style test and lint reports.
package report

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrMissingAttribute is returned when a required attribute is absent.
var ErrMissingAttribute = errors.New("attribute not found")

// element is any XML element with its attributes and direct children.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e element) intAttr(name string) (int, error) {
	raw, ok := e.attr(name)
	if !ok {
		return 0, fmt.Errorf("<%s> %q: %w", e.XMLName.Local, name, ErrMissingAttribute)
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("<%s> %q is not an integer: %w", e.XMLName.Local, name, err)
	}
	return v, nil
}

// newDecoder returns an XML decoder that also reads non-UTF-8 documents
// (ISO-8859-1, windows-1252, ...) declared in the XML prolog.
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

func decodeFile(path string) (element, error) {
	f, err := os.Open(path)
	if err != nil {
		return element{}, err
	}
	defer f.Close()

	var root element
	if err := newDecoder(f).Decode(&root); err != nil {
		return element{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return root, nil
}
