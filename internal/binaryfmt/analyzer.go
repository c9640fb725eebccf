// Package binaryfmt implements format detection beyond the registry,
// record extraction, string extraction, section identification,
// hex-dump generation, and symmetric compile/decompile.
//
// Detection heuristics (record-size multiples, mesh header vertex/face
// bounds) work by structural inference rather than a format tag. Every
// exported operation here is total: it returns a Document/Section/error
// value and never panics.
package binaryfmt

import (
	"time"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/registry"
)

// Config bounds the analyzer's heuristics; the record-size guess order
// is configurable rather than hard-coded.
type Config struct {
	MinStringLength      int
	RecordSizeCandidates []int
	HexDumpWindow        int

	// Formats is consulted before the heuristic detectors run: a
	// name/extension/signature hit with a RecordLayout short-circuits
	// straight to that layout instead of guessing.
	Formats *registry.Registry
}

// DefaultConfig returns the hard-coded defaults used when no config.Config
// values are supplied.
func DefaultConfig() Config {
	return Config{
		MinStringLength:      4,
		RecordSizeCandidates: []int{128, 256, 64},
		HexDumpWindow:        256,
	}
}

// Analyzer detects and parses the proprietary binary formats, holding a
// layout registry keyed by BinaryKind. Layout descriptors are data, not
// code: there is no runtime type dispatch inside the analyzer beyond a
// lookup on BinaryKind.
type Analyzer struct {
	cfg     Config
	layouts map[model.BinaryKind]model.RecordLayout
}

// New returns an Analyzer with no record layouts registered; callers add
// them with RegisterLayout.
func New(cfg Config) *Analyzer {
	if cfg.MinStringLength <= 0 {
		cfg.MinStringLength = 4
	}
	if len(cfg.RecordSizeCandidates) == 0 {
		cfg.RecordSizeCandidates = []int{128, 256, 64}
	}
	if cfg.HexDumpWindow <= 0 {
		cfg.HexDumpWindow = 256
	}
	return &Analyzer{cfg: cfg, layouts: map[model.BinaryKind]model.RecordLayout{}}
}

// RegisterLayout adds or replaces the RecordLayout for kind.
func (a *Analyzer) RegisterLayout(kind model.BinaryKind, layout model.RecordLayout) error {
	if err := layout.Validate(); err != nil {
		return errs.Wrap(errs.CodeUnsupportedCompilation, err)
	}
	a.layouts[kind] = layout
	return nil
}

// LayoutFor returns the registered layout for kind, if any.
func (a *Analyzer) LayoutFor(kind model.BinaryKind) (model.RecordLayout, bool) {
	l, ok := a.layouts[kind]
	return l, ok
}

// Metadata describes the file a Document was produced from.
type Metadata struct {
	FileName         string    `json:"fileName"`
	SizeBytes        int64     `json:"sizeBytes"`
	DetectedFormat   string    `json:"detectedFormat"`
	DetectedAt       time.Time `json:"detectedAt"`
	IsCompressed     bool      `json:"isCompressed"`
	IsEncrypted      bool      `json:"isEncrypted"`
}

// Section is a named byte region identified within the file.
type Section struct {
	Name        string `json:"name"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	Description string `json:"description,omitempty"`
}

// FieldValue is one decoded field value inside a record, typed as
// int/float/string and otherwise opaque to the core.
type FieldValue struct {
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
	String *string  `json:"string,omitempty"`
}

// Record is one decoded record: a field-name to field-value map plus any
// raw bytes the analyzer could not parse into a named field.
type Record struct {
	Fields  map[string]FieldValue `json:"fields"`
	RawTail []byte                `json:"rawTail,omitempty"`
}

// Document is the decompile output, with fixed JSON keys — metadata,
// extractedStrings, sections, hexDump, int32Values,
// floatValues, formatSpecificData.
type Document struct {
	Metadata          Metadata          `json:"metadata"`
	ExtractedStrings  []string          `json:"extractedStrings"`
	Sections          []Section         `json:"sections"`
	HexDump           string            `json:"hexDump"`
	Int32Values       []int32           `json:"int32Values"`
	FloatValues       []float32         `json:"floatValues"`
	FormatSpecificData []Record         `json:"formatSpecificData"`
}
