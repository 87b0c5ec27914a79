// Package color3 parses CSS Color Level 4 <color> values out of a parsed
// component-value tree, producing colors in a common RGB representation.
package color3

import (
	"math"
	"strconv"
	"strings"

	css "github.com/crawshawlabs/csssyntax"
)

// Color is a parsed <color>, always resolved to the sRGB gamut.
// Channels are in [0,1]; Alpha is in [0,1].
type Color struct {
	R, G, B, A float64
}

// RGBA returns 8-bit per-channel values with Alpha premultiplied into
// nothing (straight alpha), clamped to [0,255].
func (c Color) RGBA() (r, g, b, a uint8) {
	return clamp255(c.R), clamp255(c.G), clamp255(c.B), clamp255(c.A)
}

func clamp255(v float64) uint8 {
	v = v * 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Parse parses the component values of a <color> production. It accepts
// the full token sequence that followed a property's colon (whitespace and
// comments are ignored), a hex-color token, a named color keyword, or one
// of the CSS Color 4 color functions.
func Parse(nodes []css.Node) (Color, bool) {
	tokens := significant(nodes)
	if len(tokens) == 0 {
		return Color{}, false
	}

	if len(tokens) == 1 {
		switch tokens[0].Kind {
		case css.Hash:
			return parseHex(tokens[0].Value)
		case css.Ident:
			return parseNamed(tokens[0].Value)
		}
	}

	if tokens[0].Kind == css.FunctionBlock {
		if len(tokens) != 1 {
			return Color{}, false
		}
		return parseFunction(strings.ToLower(tokens[0].Name), significant(tokens[0].Children))
	}

	return Color{}, false
}

// ParseString tokenizes text and parses it as a <color>.
func ParseString(text string) (Color, bool) {
	return Parse(css.ParseComponentValueList(text, true))
}

func significant(nodes []css.Node) []css.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n.Kind == css.Whitespace || n.Kind == css.Comment {
			continue
		}
		out = append(out, n)
	}
	return out
}

func parseNamed(name string) (Color, bool) {
	lower := strings.ToLower(name)
	switch lower {
	case "transparent":
		return Color{0, 0, 0, 0}, true
	case "currentcolor":
		return Color{}, false
	}
	rgb, ok := namedColors[lower]
	if !ok {
		return Color{}, false
	}
	return Color{float64(rgb[0]) / 255, float64(rgb[1]) / 255, float64(rgb[2]) / 255, 1}, true
}

func parseHex(digits string) (Color, bool) {
	hexVal := func(c byte) (int, bool) {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0'), true
		case c >= 'a' && c <= 'f':
			return int(c-'a') + 10, true
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10, true
		}
		return 0, false
	}
	pair := func(s string) (float64, bool) {
		hi, ok1 := hexVal(s[0])
		lo, ok2 := hexVal(s[1])
		if !ok1 || !ok2 {
			return 0, false
		}
		return float64(hi*16+lo) / 255, true
	}
	single := func(c byte) (float64, bool) {
		v, ok := hexVal(c)
		if !ok {
			return 0, false
		}
		return float64(v*16+v) / 255, true
	}

	switch len(digits) {
	case 3, 4:
		r, ok1 := single(digits[0])
		g, ok2 := single(digits[1])
		b, ok3 := single(digits[2])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		a := 1.0
		if len(digits) == 4 {
			av, ok4 := single(digits[3])
			if !ok4 {
				return Color{}, false
			}
			a = av
		}
		return Color{r, g, b, a}, true
	case 6, 8:
		r, ok1 := pair(digits[0:2])
		g, ok2 := pair(digits[2:4])
		b, ok3 := pair(digits[4:6])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		a := 1.0
		if len(digits) == 8 {
			av, ok4 := pair(digits[6:8])
			if !ok4 {
				return Color{}, false
			}
			a = av
		}
		return Color{r, g, b, a}, true
	}
	return Color{}, false
}

func parseFunction(name string, args []css.Node) (Color, bool) {
	switch name {
	case "rgb", "rgba":
		return parseRGB(args)
	case "hsl", "hsla":
		return parseHSL(args)
	case "hwb":
		return parseHWB(args)
	case "lab":
		return parseLab(args)
	case "lch":
		return parseLCH(args)
	case "oklab":
		return parseOklab(args)
	case "oklch":
		return parseOklch(args)
	case "color":
		return parseColorFunction(args)
	}
	return Color{}, false
}

// splitArgs accepts both legacy comma-separated argument lists and modern
// CSS Color 4 whitespace-separated lists with an optional "/ alpha" tail,
// returning the component tokens and an optional alpha token.
func splitArgs(args []css.Node) (components []css.Node, alpha css.Node, hasAlpha bool, ok bool) {
	var groups [][]css.Node
	var cur []css.Node
	sawComma := false
	for _, n := range args {
		if n.Kind == css.Literal && n.Value == "," {
			sawComma = true
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	groups = append(groups, cur)

	if sawComma {
		if len(groups) == 4 {
			hasAlpha = true
			alphaToks := significant(groups[3])
			if len(alphaToks) != 1 {
				return nil, css.Node{}, false, false
			}
			alpha = alphaToks[0]
			groups = groups[:3]
		} else if len(groups) != 3 {
			return nil, css.Node{}, false, false
		}
		for _, g := range groups {
			toks := significant(g)
			if len(toks) != 1 {
				return nil, css.Node{}, false, false
			}
			components = append(components, toks[0])
		}
		return components, alpha, hasAlpha, true
	}

	toks := significant(cur)
	// slash-separated alpha within a single whitespace-separated group
	slashIdx := -1
	for i, t := range toks {
		if t.Kind == css.Literal && t.Value == "/" {
			slashIdx = i
			break
		}
	}
	if slashIdx >= 0 {
		alphaPart := toks[slashIdx+1:]
		toks = toks[:slashIdx]
		if len(alphaPart) != 1 {
			return nil, css.Node{}, false, false
		}
		alpha = alphaPart[0]
		hasAlpha = true
	}
	if len(toks) != 3 {
		return nil, css.Node{}, false, false
	}
	return toks, alpha, hasAlpha, true
}

func parseAlphaToken(n css.Node, hasAlpha bool) (float64, bool) {
	if !hasAlpha {
		return 1, true
	}
	if n.Kind == css.Ident && strings.EqualFold(n.Value, "none") {
		return 0, true
	}
	switch n.Kind {
	case css.Number:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v), true
	case css.Percentage:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 100), true
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func numberOrPercent(n css.Node, scale float64) (float64, bool) {
	if n.Kind == css.Ident && strings.EqualFold(n.Value, "none") {
		return 0, true
	}
	switch n.Kind {
	case css.Number:
		v, err := strconv.ParseFloat(n.Repr, 64)
		return v, err == nil
	case css.Percentage:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		return v / 100 * scale, true
	}
	return 0, false
}

func hueDegrees(n css.Node) (float64, bool) {
	switch n.Kind {
	case css.Number:
		v, err := strconv.ParseFloat(n.Repr, 64)
		return v, err == nil
	case css.Dimension:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		switch strings.ToLower(n.Unit) {
		case "deg":
			return v, true
		case "grad":
			return v * 0.9, true
		case "rad":
			return v * 180 / math.Pi, true
		case "turn":
			return v * 360, true
		}
	case css.Ident:
		if strings.EqualFold(n.Value, "none") {
			return 0, true
		}
	}
	return 0, false
}

func parseRGB(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	r, ok1 := rgbChannel(comps[0])
	g, ok2 := rgbChannel(comps[1])
	b, ok3 := rgbChannel(comps[2])
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	a, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	return Color{r, g, b, a}, true
}

func rgbChannel(n css.Node) (float64, bool) {
	if n.Kind == css.Ident && strings.EqualFold(n.Value, "none") {
		return 0, true
	}
	switch n.Kind {
	case css.Number:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 255), true
	case css.Percentage:
		v, err := strconv.ParseFloat(n.Repr, 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 100), true
	}
	return 0, false
}

func parseHSL(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	h, ok1 := hueDegrees(comps[0])
	s, ok2 := numberOrPercent(comps[1], 1)
	l, ok3 := numberOrPercent(comps[2], 1)
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	a, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	r, g, b := hslToRGB(h, clampUnit(s), clampUnit(l))
	return Color{r, g, b, a}, true
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func hslToRGB(hueDeg, s, l float64) (r, g, b float64) {
	h := math.Mod(hueDeg, 360) / 360
	if h < 0 {
		h += 1
	}
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
	r = hueToRGB(p, q, h+1.0/3)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3)
	return
}

func parseHWB(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	h, ok1 := hueDegrees(comps[0])
	w, ok2 := numberOrPercent(comps[1], 1)
	blk, ok3 := numberOrPercent(comps[2], 1)
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	a, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	r, g, b := hwbToRGB(h, clampUnit(w), clampUnit(blk))
	return Color{r, g, b, a}, true
}

func hwbToRGB(hueDeg, w, blk float64) (r, g, b float64) {
	if w+blk >= 1 {
		gray := w / (w + blk)
		return gray, gray, gray
	}
	r, g, b = hslToRGB(hueDeg, 1, 0.5)
	r = r*(1-w-blk) + w
	g = g*(1-w-blk) + w
	b = b*(1-w-blk) + w
	return
}

// parseLab, parseLCH, parseOklab, parseOklch approximate their CIE/OK
// color spaces down to sRGB via D65 XYZ, sufficient for round-tripping
// values rather than color-managed precision work.
func parseLab(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	l, ok1 := numberOrPercent(comps[0], 100)
	a2, ok2 := numberOrPercent(comps[1], 125)
	b2, ok3 := numberOrPercent(comps[2], 125)
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	alpha, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	r, g, b := labToRGB(l, a2, b2)
	return Color{r, g, b, alpha}, true
}

func parseLCH(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	l, ok1 := numberOrPercent(comps[0], 100)
	c, ok2 := numberOrPercent(comps[1], 150)
	h, ok3 := hueDegrees(comps[2])
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	alpha, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	hr := h * math.Pi / 180
	a2 := c * math.Cos(hr)
	b2 := c * math.Sin(hr)
	r, g, b := labToRGB(l, a2, b2)
	return Color{r, g, b, alpha}, true
}

func parseOklab(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	l, ok1 := numberOrPercent(comps[0], 1)
	a2, ok2 := numberOrPercent(comps[1], 0.4)
	b2, ok3 := numberOrPercent(comps[2], 0.4)
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	alpha, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	r, g, b := oklabToRGB(l, a2, b2)
	return Color{r, g, b, alpha}, true
}

func parseOklch(args []css.Node) (Color, bool) {
	comps, alphaTok, hasAlpha, ok := splitArgs(args)
	if !ok {
		return Color{}, false
	}
	l, ok1 := numberOrPercent(comps[0], 1)
	c, ok2 := numberOrPercent(comps[1], 0.4)
	h, ok3 := hueDegrees(comps[2])
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}
	alpha, ok4 := parseAlphaToken(alphaTok, hasAlpha)
	if !ok4 {
		return Color{}, false
	}
	hr := h * math.Pi / 180
	a2 := c * math.Cos(hr)
	b2 := c * math.Sin(hr)
	r, g, b := oklabToRGB(l, a2, b2)
	return Color{r, g, b, alpha}, true
}

func parseColorFunction(args []css.Node) (Color, bool) {
	if len(args) == 0 || args[0].Kind != css.Ident {
		return Color{}, false
	}
	space := strings.ToLower(args[0].Value)
	rest := significant(args[1:])

	var alphaTok css.Node
	hasAlpha := false
	slashIdx := -1
	for i, t := range rest {
		if t.Kind == css.Literal && t.Value == "/" {
			slashIdx = i
			break
		}
	}
	if slashIdx >= 0 {
		if len(rest) != slashIdx+2 {
			return Color{}, false
		}
		alphaTok = rest[slashIdx+1]
		hasAlpha = true
		rest = rest[:slashIdx]
	}
	if len(rest) != 3 {
		return Color{}, false
	}
	alpha, ok := parseAlphaToken(alphaTok, hasAlpha)
	if !ok {
		return Color{}, false
	}

	c0, ok1 := numberOrPercent(rest[0], 1)
	c1, ok2 := numberOrPercent(rest[1], 1)
	c2, ok3 := numberOrPercent(rest[2], 1)
	if !ok1 || !ok2 || !ok3 {
		return Color{}, false
	}

	switch space {
	case "srgb":
		return Color{clampUnit(c0), clampUnit(c1), clampUnit(c2), alpha}, true
	case "srgb-linear":
		return Color{linearToSRGB(c0), linearToSRGB(c1), linearToSRGB(c2), alpha}, true
	case "display-p3", "a98-rgb", "prophoto-rgb", "rec2020":
		// Approximate wide-gamut spaces by treating their components as
		// sRGB-proportional; adequate for round-tripping, not color
		// management.
		return Color{clampUnit(c0), clampUnit(c1), clampUnit(c2), alpha}, true
	case "xyz", "xyz-d50", "xyz-d65":
		r, g, b := xyzToRGB(c0, c1, c2)
		return Color{r, g, b, alpha}, true
	}
	return Color{}, false
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return clampUnit(12.92 * v)
	}
	return clampUnit(1.055*math.Pow(v, 1/2.4) - 0.055)
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func xyzToRGB(x, y, z float64) (r, g, b float64) {
	rl := 3.2406*x - 1.5372*y - 0.4986*z
	gl := -0.9689*x + 1.8758*y + 0.0415*z
	bl := 0.0557*x - 0.2040*y + 1.0570*z
	return linearToSRGB(rl), linearToSRGB(gl), linearToSRGB(bl)
}

func labToRGB(l, a, b float64) (r, g, bOut float64) {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	finv := func(t float64) float64 {
		if t3 := t * t * t; t3 > 0.008856 {
			return t3
		}
		return (t - 16.0/116) / 7.787
	}

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	x := xn * finv(fx)
	y := yn * finv(fy)
	z := zn * finv(fz)
	return xyzToRGB(x, y, z)
}

func oklabToRGB(l, a, b float64) (r, g, bOut float64) {
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l3 := l_ * l_ * l_
	m3 := m_ * m_ * m_
	s3 := s_ * s_ * s_

	rl := 4.0767416621*l3 - 3.3077115913*m3 + 0.2309699292*s3
	gl := -1.2684380046*l3 + 2.6097574011*m3 - 0.3413193965*s3
	bl := -0.0041960863*l3 - 0.7034186147*m3 + 1.7076147010*s3

	return linearToSRGB(rl), linearToSRGB(gl), linearToSRGB(bl)
}
