package chromium

import (
	"strconv"

	"github.com/adamwoolhether/gotenberg/client/route"
)

// ImageFormat is the encoding of a screenshot.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	JPEG ImageFormat = "jpeg"
	WebP ImageFormat = "webp"
)

// Width sets the viewport width in pixels.
func Width(px int) route.Option {
	return dimension("width", px)
}

// Height sets the viewport height in pixels.
func Height(px int) route.Option {
	return dimension("height", px)
}

func dimension(field string, px int) route.Option {
	return route.NewOption(field, route.FeatureScreenshot, func(r *route.Route) error {
		if px < 1 {
			return route.Invalid("%s must be positive, got %d", field, px)
		}
		r.SetField(field, strconv.Itoa(px))
		return nil
	})
}

// Clip limits the screenshot to the viewport set by [Width] and [Height].
func Clip(enabled bool) route.Option {
	return boolOption("clip", route.FeatureScreenshot, enabled)
}

// Format sets the image encoding.
func Format(f ImageFormat) route.Option {
	return route.NewOption("format", route.FeatureScreenshot, func(r *route.Route) error {
		switch f {
		case PNG, JPEG, WebP:
		default:
			return route.Invalid("unknown image format %q", f)
		}
		r.SetField("format", string(f))
		return nil
	})
}

// Quality sets the JPEG compression quality, in [0, 100].
func Quality(q int) route.Option {
	return route.NewOption("quality", route.FeatureScreenshot, func(r *route.Route) error {
		if q < 0 || q > 100 {
			return route.Invalid("quality must be in [0, 100], got %d", q)
		}
		r.SetField("quality", strconv.Itoa(q))
		return nil
	})
}

// OptimizeForSpeed trades image size for encoding speed.
func OptimizeForSpeed(enabled bool) route.Option {
	return boolOption("optimizeForSpeed", route.FeatureScreenshot, enabled)
}
