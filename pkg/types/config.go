// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubarchiver/1.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Structure selects the archival destination layout.
type Structure string

const (
	// StructurePortico nests each article in its own directory with a
	// jats/ subdirectory, bundled into one ZIP for the whole run.
	StructurePortico Structure = "portico"

	// StructurePMC lays articles out as flat ISSN-year-basename files,
	// each article zipped individually per the PMC delivery spec.
	StructurePMC Structure = "pmc"
)

// ArchiveConfig holds settings for the archive stage.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline"`

	// DestDir is the directory under which the archive tree is created.
	DestDir string `json:"dest_dir" yaml:"dest_dir"`

	// Structure selects the output layout: portico or pmc.
	Structure Structure `json:"structure" yaml:"structure"`

	// Zip bundles the output: one ZIP for portico, one per article for pmc.
	Zip bool `json:"zip" yaml:"zip"`

	// ValidateJATS runs the JATS check on downloaded JATS files.
	ValidateJATS bool `json:"validate_jats" yaml:"validate_jats"`

	// Manifest writes a YAML manifest of the run beside the archive.
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// ReportConfig holds settings for the per-run report.
type ReportConfig struct {
	// File is the report path without extension; one file per format is
	// written. Empty disables reporting.
	File string `json:"file" yaml:"file"`

	// Formats is a comma-separated list of "csv" and "html".
	Formats string `json:"formats" yaml:"formats"`

	// Title is placed at the top of the HTML report. Empty uses a
	// timestamped default.
	Title string `json:"title" yaml:"title"`
}

// InventoryConfig holds settings for the run-history database.
type InventoryConfig struct {
	// Path is the SQLite database file. Empty disables the inventory.
	Path string `json:"path" yaml:"path"`
}
