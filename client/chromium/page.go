package chromium

import (
	"math"
	"strconv"

	"github.com/adamwoolhether/gotenberg/client/route"
)

// Unit is a length unit understood by Chromium.
type Unit string

const (
	Points      Unit = "pt"
	Pixels      Unit = "px"
	Inches      Unit = "in"
	Millimeters Unit = "mm"
	Centimeters Unit = "cm"
	Picas       Unit = "pc"
)

// Measurement is a length. Without a unit Gotenberg reads inches.
type Measurement struct {
	Value float64 `json:"value" validate:"gte=0"`
	Unit  Unit    `json:"unit" validate:"omitempty,oneof=pt px in mm cm pc"`
}

// String formats m the way Gotenberg expects, e.g. "8.5in".
func (m Measurement) String() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64) + string(m.Unit)
}

func (m Measurement) finite() bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}

// PageSize is the paper size of a PDF.
type PageSize struct {
	Width  Measurement `json:"width"`
	Height Measurement `json:"height"`
}

// Common paper sizes.
var (
	A0      = PageSize{Width: Measurement{33.1, Inches}, Height: Measurement{46.8, Inches}}
	A1      = PageSize{Width: Measurement{23.4, Inches}, Height: Measurement{33.1, Inches}}
	A2      = PageSize{Width: Measurement{16.54, Inches}, Height: Measurement{23.4, Inches}}
	A3      = PageSize{Width: Measurement{11.7, Inches}, Height: Measurement{16.54, Inches}}
	A4      = PageSize{Width: Measurement{8.27, Inches}, Height: Measurement{11.7, Inches}}
	A5      = PageSize{Width: Measurement{5.83, Inches}, Height: Measurement{8.27, Inches}}
	A6      = PageSize{Width: Measurement{4.13, Inches}, Height: Measurement{5.83, Inches}}
	Letter  = PageSize{Width: Measurement{8.5, Inches}, Height: Measurement{11, Inches}}
	Legal   = PageSize{Width: Measurement{8.5, Inches}, Height: Measurement{14, Inches}}
	Tabloid = PageSize{Width: Measurement{11, Inches}, Height: Measurement{17, Inches}}
	Ledger  = PageSize{Width: Measurement{17, Inches}, Height: Measurement{11, Inches}}
)

// Margins are the page margins of a PDF.
type Margins struct {
	Top    Measurement `json:"top"`
	Bottom Measurement `json:"bottom"`
	Left   Measurement `json:"left"`
	Right  Measurement `json:"right"`
}

// UniformMargins returns margins of m on every side.
func UniformMargins(m Measurement) Margins {
	return Margins{Top: m, Bottom: m, Left: m, Right: m}
}

// PaperSize sets the paper size.
func PaperSize(size PageSize) route.Option {
	return route.NewOption("paperSize", route.FeaturePrint, func(r *route.Route) error {
		if err := route.Validate(size); err != nil {
			return err
		}
		if !size.Width.finite() || !size.Height.finite() {
			return route.Invalid("paper width and height must be finite")
		}
		if size.Width.Value == 0 || size.Height.Value == 0 {
			return route.Invalid("paper width and height must be positive")
		}

		r.SetField("paperWidth", size.Width.String())
		r.SetField("paperHeight", size.Height.String())
		return nil
	})
}

// PageMargins sets the page margins.
func PageMargins(m Margins) route.Option {
	return route.NewOption("margins", route.FeaturePrint, func(r *route.Route) error {
		if err := route.Validate(m); err != nil {
			return err
		}
		for _, side := range []Measurement{m.Top, m.Bottom, m.Left, m.Right} {
			if !side.finite() {
				return route.Invalid("margins must be finite, got %v", side.Value)
			}
		}

		r.SetField("marginTop", m.Top.String())
		r.SetField("marginBottom", m.Bottom.String())
		r.SetField("marginLeft", m.Left.String())
		r.SetField("marginRight", m.Right.String())
		return nil
	})
}

// SinglePage prints the whole document on one page.
func SinglePage(enabled bool) route.Option {
	return boolOption("singlePage", route.FeaturePrint, enabled)
}

// PreferCSSPageSize lets a CSS @page size win over [PaperSize].
func PreferCSSPageSize(enabled bool) route.Option {
	return boolOption("preferCssPageSize", route.FeaturePrint, enabled)
}

// DocumentOutline embeds an outline built from the document headings.
func DocumentOutline(enabled bool) route.Option {
	return boolOption("generateDocumentOutline", route.FeaturePrint, enabled)
}

// PrintBackground prints background graphics.
func PrintBackground(enabled bool) route.Option {
	return boolOption("printBackground", route.FeaturePrint, enabled)
}

// Scale sets the rendering scale, in (0, 2].
func Scale(scale float64) route.Option {
	return route.NewOption("scale", route.FeaturePrint, func(r *route.Route) error {
		if math.IsNaN(scale) || scale <= 0 || scale > 2 {
			return route.Invalid("scale must be in (0, 2], got %v", scale)
		}
		r.SetField("scale", strconv.FormatFloat(scale, 'f', -1, 64))
		return nil
	})
}

func boolOption(field string, feature route.Feature, enabled bool) route.Option {
	return route.NewOption(field, feature, func(r *route.Route) error {
		r.SetBool(field, enabled)
		return nil
	})
}
