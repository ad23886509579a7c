package invitation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type BackgroundKind string

const (
	BackgroundImage    BackgroundKind = "image"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundSolid    BackgroundKind = "solid"
)

// Background is a resolved CSS fill
type Background struct {
	Kind  BackgroundKind `json:"kind"`
	Value string         `json:"value"`
}

// gradientHueShift is the hue rotation, in degrees, of the second gradient stop
const gradientHueShift = 40.0

const (
	defaultPrimaryColor    = "#6c63ff"
	defaultSecondaryColor  = "#ff6584"
	defaultBackgroundColor = "#ffffff"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ResolveBackground picks the page background: image, then gradient, then solid
func (i *Invitation) ResolveBackground() Background {
	if i.BackgroundImageURL != "" {
		return Background{Kind: BackgroundImage, Value: i.BackgroundImageURL}
	}
	return fill(i.BackgroundColor, defaultBackgroundColor, i.BackgroundGradient)
}

// ResolvePrimary picks the fill for accent elements such as the RSVP buttons
func (i *Invitation) ResolvePrimary() Background {
	return fill(i.PrimaryColor, defaultPrimaryColor, i.PrimaryGradient)
}

func fill(color, fallback string, gradient bool) Background {
	if color == "" {
		color = fallback
	}
	if gradient {
		return Background{Kind: BackgroundGradient, Value: GradientCSS(color)}
	}
	return Background{Kind: BackgroundSolid, Value: color}
}

// GradientCSS renders a diagonal gradient from base to its hue-rotated partner
func GradientCSS(base string) string {
	return fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 100%%)",
		normalizeHex(base), RotateHue(base, gradientHueShift))
}

// RotateHue shifts the hue of a #rgb/#rrggbb color by degrees in HSL space.
// Unparseable input is returned unchanged.
func RotateHue(hex string, degrees float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	h, s, l := rgbToHSL(r, g, b)
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	r, g, b = hslToRGB(h, s, l)
	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

func validColor(c string) bool {
	return c == "" || hexColor.MatchString(c)
}

func normalizeHex(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	if !hexColor.MatchString(hex) {
		return 0, 0, 0, false
	}
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255, true
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2
	if maxC == minC {
		return 0, 0, l
	}

	d := maxC - minC
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	return hueToRGB(p, q, hk+1.0/3), hueToRGB(p, q, hk), hueToRGB(p, q, hk-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
