package chromium

import (
	"strconv"
	"strings"
	"time"

	"github.com/adamwoolhether/gotenberg/client/route"
)

// MediaType is the CSS media type Chromium emulates.
type MediaType string

const (
	MediaPrint  MediaType = "print"
	MediaScreen MediaType = "screen"
)

// Cookie is sent by Chromium while loading the page.
type Cookie struct {
	Name     string `json:"name" validate:"required"`
	Value    string `json:"value"`
	Domain   string `json:"domain" validate:"required"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	SameSite string `json:"sameSite,omitempty" validate:"omitempty,oneof=Strict Lax None"`
}

// WaitDelay waits d before rendering. Gotenberg takes whole and fractional
// seconds, so d is sent as e.g. "2.5s".
func WaitDelay(d time.Duration) route.Option {
	return route.NewOption("waitDelay", route.FeatureBrowser, func(r *route.Route) error {
		if d < 0 {
			return route.Invalid("wait delay must not be negative, got %s", d)
		}
		r.SetField("waitDelay", strconv.FormatFloat(d.Seconds(), 'f', -1, 64)+"s")
		return nil
	})
}

// WaitForExpression waits until the JavaScript expression evaluates to true.
func WaitForExpression(expr string) route.Option {
	return route.NewOption("waitForExpression", route.FeatureBrowser, func(r *route.Route) error {
		if strings.TrimSpace(expr) == "" {
			return route.Invalid("wait expression must not be empty")
		}
		r.SetField("waitForExpression", expr)
		return nil
	})
}

// EmulatedMediaType selects the CSS media type.
func EmulatedMediaType(mt MediaType) route.Option {
	return route.NewOption("emulatedMediaType", route.FeatureBrowser, func(r *route.Route) error {
		switch mt {
		case MediaPrint, MediaScreen:
		default:
			return route.Invalid("unknown media type %q", mt)
		}
		r.SetField("emulatedMediaType", string(mt))
		return nil
	})
}

// Cookies sets the cookies of the page load.
func Cookies(cookies ...Cookie) route.Option {
	return route.NewOption("cookies", route.FeatureBrowser, func(r *route.Route) error {
		for _, c := range cookies {
			if err := route.Validate(c); err != nil {
				return err
			}
		}
		return r.SetJSON("cookies", cookies)
	})
}

// UserAgent overrides the User-Agent Chromium sends.
func UserAgent(ua string) route.Option {
	return route.NewOption("userAgent", route.FeatureBrowser, func(r *route.Route) error {
		if ua == "" {
			return route.Invalid("user agent must not be empty")
		}
		r.SetField("userAgent", ua)
		return nil
	})
}

// ExtraHTTPHeaders adds headers to every request Chromium makes.
func ExtraHTTPHeaders(headers map[string]string) route.Option {
	return route.NewOption("extraHttpHeaders", route.FeatureBrowser, func(r *route.Route) error {
		for k := range headers {
			if k == "" {
				return route.Invalid("header key must not be empty")
			}
		}
		return r.SetJSON("extraHttpHeaders", headers)
	})
}

// FailOnHTTPStatusCodes fails the conversion when the main page answers
// with one of codes. A code like 499 matches the whole 400 range.
func FailOnHTTPStatusCodes(codes ...int) route.Option {
	return statusCodes("failOnHttpStatusCodes", codes)
}

// FailOnResourceHTTPStatusCodes is [FailOnHTTPStatusCodes] for the
// resources the page loads.
func FailOnResourceHTTPStatusCodes(codes ...int) route.Option {
	return statusCodes("failOnResourceHttpStatusCodes", codes)
}

func statusCodes(field string, codes []int) route.Option {
	return route.NewOption(field, route.FeatureBrowser, func(r *route.Route) error {
		if err := route.ValidateVar(field, codes, "dive,gte=100,lte=599"); err != nil {
			return err
		}
		if codes == nil {
			codes = []int{}
		}
		return r.SetJSON(field, codes)
	})
}

// FailOnResourceLoadingFailed fails the conversion when a resource cannot
// be loaded.
func FailOnResourceLoadingFailed(enabled bool) route.Option {
	return boolOption("failOnResourceLoadingFailed", route.FeatureBrowser, enabled)
}

// FailOnConsoleExceptions fails the conversion on JavaScript exceptions.
func FailOnConsoleExceptions(enabled bool) route.Option {
	return boolOption("failOnConsoleExceptions", route.FeatureBrowser, enabled)
}

// SkipNetworkIdleEvent renders without waiting for the network to settle.
func SkipNetworkIdleEvent(enabled bool) route.Option {
	return boolOption("skipNetworkIdleEvent", route.FeatureBrowser, enabled)
}

// OmitBackground hides the default white background, leaving it transparent.
func OmitBackground(enabled bool) route.Option {
	return boolOption("omitBackground", route.FeatureBrowser, enabled)
}
