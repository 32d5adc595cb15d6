// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata resolves an article's authoritative bibliographic
// metadata from an external registry (DataCite or Crossref) and
// normalizes it into the output document written beside each archived
// article.
//
// Resolution failures for one article are returned as errors, never
// panicked; the pipeline maps them to a missing-<registry> status and
// carries on with the next article.
package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
)

func init() {
	// Match the attribute convention of the registry documents
	// ("@xmlns", "@xsi:schemaLocation") rather than mxj's default "-".
	mxj.SetAttrPrefix("@")
}

// Document is the normalized per-article metadata document. The single
// root key is "resource"; nested maps use "@key" for XML attributes and
// "#text" for element content.
type Document mxj.Map

// Resource returns the document's resource map, or an error if the
// document does not have the expected shape.
func (d Document) Resource() (map[string]interface{}, error) {
	res, ok := d["resource"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("metadata document has no resource element")
	}
	return res, nil
}

// XML serializes the document, indented, with an XML declaration.
func (d Document) XML() ([]byte, error) {
	body, err := mxj.Map(d).XmlIndent("", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing metadata document: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

// stripMarkup removes XML/JATS tags from a registry abstract, collapsing
// the remaining whitespace.
func stripMarkup(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
