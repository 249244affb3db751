package route

import (
	"strings"
	"time"
)

// Trapped is the PDF trapping status.
type Trapped string

const (
	TrappedTrue    Trapped = "True"
	TrappedFalse   Trapped = "False"
	TrappedUnknown Trapped = "Unknown"
)

// DocumentInfo holds the PDF metadata Gotenberg can write. Zero fields are
// left out of the request.
type DocumentInfo struct {
	Author       string     `json:"Author,omitempty"`
	Copyright    string     `json:"Copyright,omitempty"`
	CreationDate *time.Time `json:"CreationDate,omitempty"`
	Creator      string     `json:"Creator,omitempty"`
	Keywords     []string   `json:"Keywords,omitempty" validate:"dive,required"`
	Marked       *bool      `json:"Marked,omitempty"`
	ModDate      *time.Time `json:"ModDate,omitempty"`
	PDFVersion   float64    `json:"PDFVersion,omitempty" validate:"omitempty,gte=1,lte=2"`
	Producer     string     `json:"Producer,omitempty"`
	Subject      string     `json:"Subject,omitempty"`
	Title        string     `json:"Title,omitempty"`
	Trapped      Trapped    `json:"Trapped,omitempty" validate:"omitempty,oneof=True False Unknown"`
}

// fields converts info into the JSON object Gotenberg expects.
func (info DocumentInfo) fields() (map[string]any, error) {
	if err := Validate(info); err != nil {
		return nil, err
	}

	m := make(map[string]any)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}

	set("Author", info.Author)
	set("Copyright", info.Copyright)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	set("Subject", info.Subject)
	set("Title", info.Title)
	set("Trapped", string(info.Trapped))

	if info.CreationDate != nil {
		m["CreationDate"] = info.CreationDate.Format(time.RFC3339)
	}
	if info.ModDate != nil {
		m["ModDate"] = info.ModDate.Format(time.RFC3339)
	}
	if info.Marked != nil {
		m["Marked"] = *info.Marked
	}
	if info.PDFVersion != 0 {
		m["PDFVersion"] = info.PDFVersion
	}

	if len(info.Keywords) > 0 {
		for _, k := range info.Keywords {
			if strings.Contains(k, ",") {
				return nil, Invalid("keyword %q must not contain a comma", k)
			}
		}
		m["Keywords"] = strings.Join(info.Keywords, ", ")
	}

	return m, nil
}

// Metadata writes PDF metadata into the result. Applying it more than once
// merges the entries; for the same key the last value wins.
func Metadata(info DocumentInfo) Option {
	return NewOption("metadata", FeatureMetadata, func(r *Route) error {
		m, err := info.fields()
		if err != nil {
			return err
		}
		return r.mergeJSON("metadata", m)
	})
}

// MetadataFields writes arbitrary metadata keys, including ones
// [DocumentInfo] does not model. It merges like [Metadata].
func MetadataFields(fields map[string]any) Option {
	return NewOption("metadata", FeatureMetadata, func(r *Route) error {
		if len(fields) == 0 {
			return Invalid("metadata must not be empty")
		}
		return r.mergeJSON("metadata", fields)
	})
}
