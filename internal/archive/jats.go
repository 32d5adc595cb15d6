// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const xlinkNamespace = "http://www.w3.org/1999/xlink"

// ValidateJATS checks that a downloaded JATS file parses as XML.
// Full DTD validation is delegated to the delivery target's own
// ingest checks; a file that is not even well formed fails here.
func ValidateJATS(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening JATS file %s: %w", path, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	// Strict mode: mismatched tags and entity references not declared
	// inline fail the check, the same way a DTD-less XML parse would.
	dec.Strict = true
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("JATS file %s contains XML syntax errors: %w", path, err)
		}
	}
}

// GraphicHref extracts the xlink:href of the first <graphic> element in
// a JATS file. The article's image must be stored under that name so
// the JATS reference resolves. Returns "" when the file has no graphic.
func GraphicHref(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening JATS file %s: %w", path, err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	dec.Strict = false
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("bad XML in JATS file %s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "graphic" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "href" &&
				(attr.Name.Space == xlinkNamespace || attr.Name.Space == "xlink" || attr.Name.Space == "") {
				return attr.Value, nil
			}
		}
	}
}
