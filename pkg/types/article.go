// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared records and configuration structs
// used across the archiving pipeline.
package types

import "strings"

// Status records where an article stands in the archiving process.
// It starts as Complete or Incomplete at index-parse time and may be
// overwritten by the pipeline with one terminal failure value; each
// stage writes a more specific value, never a less specific one.
type Status string

const (
	// StatusComplete means the index entry carried every required field.
	StatusComplete Status = "complete"

	// StatusIncomplete means the index entry was missing a required field.
	StatusIncomplete Status = "incomplete"

	StatusMissingDOI  Status = "missing-doi"
	StatusMissingPDF  Status = "missing-pdf"
	StatusMissingJATS Status = "missing-jats"

	StatusFailedPDFDownload    Status = "failed-pdf-download"
	StatusFailedJATSDownload   Status = "failed-jats-download"
	StatusFailedJATSValidation Status = "failed-jats-validation"
	StatusFailedImageDownload  Status = "failed-image-download"
)

// MissingMetadata builds the status used when a registry lookup fails,
// e.g. "missing-datacite" or "missing-crossref".
func MissingMetadata(registry string) Status {
	return Status("missing-" + strings.ToLower(registry))
}

// Failed reports whether the status is one of the failed-* values.
// Only these count toward the run's failure tally; missing-* statuses
// mark articles that were skipped, not ones that broke.
func (s Status) Failed() bool {
	return strings.HasPrefix(string(s), "failed")
}

// Missing reports whether the status is one of the missing-* values.
func (s Status) Missing() bool {
	return strings.HasPrefix(string(s), "missing")
}

// Article holds one publication from a journal's article index.
// Exactly one Article exists per DOI per run. The Status field is
// mutated only by the archive pipeline; everything else is set once
// during index parsing.
type Article struct {
	// ISSN is the publication identifier, constant per journal.
	ISSN string `json:"issn" yaml:"issn"`

	// DOI uniquely identifies the article and is required for any
	// further processing.
	DOI string `json:"doi" yaml:"doi"`

	// Date is the publication date normalized to YYYY-MM-DD, or empty
	// if the index did not carry one.
	Date string `json:"date" yaml:"date"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Basename is the filesystem-safe stem derived from the DOI suffix.
	Basename string `json:"basename" yaml:"basename"`

	// PDF, JATS and Image are source URLs for the article's assets.
	// JATS and Image may be empty depending on the journal.
	PDF   string `json:"pdf" yaml:"pdf"`
	JATS  string `json:"jats,omitempty" yaml:"jats,omitempty"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Status tracks the article through the pipeline.
	Status Status `json:"status" yaml:"status"`
}

// BasenameForDOI returns the text after the final "/" of a DOI, used
// as the per-article file stem. For a DOI with no slash it returns the
// DOI unchanged.
func BasenameForDOI(doi string) string {
	if i := strings.LastIndex(doi, "/"); i >= 0 {
		return doi[i+1:]
	}
	return doi
}
