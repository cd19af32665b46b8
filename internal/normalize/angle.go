// Package normalize canonicalizes the free-text coordinate, angle and list
// literals found in astroquery annotations.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a literal that could not be interpreted
type ParseError struct {
	Kind  string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Kind, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// arcmin per unit
var unitScale = map[string]float64{
	"deg":        60,
	"degree":     60,
	"degrees":    60,
	"d":          60,
	"°":          60,
	"arcmin":     1,
	"arcminute":  1,
	"arcminutes": 1,
	"amin":       1,
	"'":          1,
	"′":          1,
	"arcsec":     1.0 / 60,
	"arcsecond":  1.0 / 60,
	"arcseconds": 1.0 / 60,
	"asec":       1.0 / 60,
	"\"":         1.0 / 60,
	"″":          1.0 / 60,
	"mas":        1.0 / 60000,
	"rad":        60 * 180 / math.Pi,
	"radian":     60 * 180 / math.Pi,
	"radians":    60 * 180 / math.Pi,
	"hourangle":  900,
	"h":          900,
	"hr":         900,
	"hour":       900,
	"hours":      900,
}

type token struct {
	num  bool
	text string
	val  float64
}

func tokenize(s string) ([]token, error) {
	var out []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			// exponent, but not the start of a unit word like "e"
			if j+1 < len(rs) && (rs[j] == 'e' || rs[j] == 'E') &&
				(unicode.IsDigit(rs[j+1]) || ((rs[j+1] == '-' || rs[j+1] == '+') && j+2 < len(rs) && unicode.IsDigit(rs[j+2]))) {
				j += 2
				for j < len(rs) && unicode.IsDigit(rs[j]) {
					j++
				}
			}
			v, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", string(rs[i:j]))
			}
			out = append(out, token{num: true, text: string(rs[i:j]), val: v})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			out = append(out, token{text: strings.ToLower(string(rs[i:j]))})
			i = j
		default:
			out = append(out, token{text: string(r)})
			i++
		}
	}
	return out, nil
}

// ParseAngle interprets an angle expression and returns its value in arc-minutes.
//
// Accepted forms: "5arcmin", "0.1 deg", "30\"", "-1d2m3s", "10h20m30s",
// "1:02:03 deg", and the canonical "5.0 unit=arcmin". A bare number has no unit
// and is rejected.
func ParseAngle(s string) (float64, error) {
	v, err := parseAngle(s)
	if err != nil {
		return 0, &ParseError{Kind: "angle", Input: s, Err: err}
	}
	return v, nil
}

func parseAngle(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expression")
	}
	if i := strings.Index(s, "unit="); i >= 0 {
		return parseCanonical(strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len("unit="):]))
	}

	toks, err := tokenize(s)
	if err != nil {
		return 0, err
	}
	sign := 1.0
	if len(toks) > 0 && !toks[0].num && (toks[0].text == "-" || toks[0].text == "+") {
		if toks[0].text == "-" {
			sign = -1
		}
		toks = toks[1:]
	}
	if len(toks) == 0 {
		return 0, fmt.Errorf("no value")
	}

	if hasColon(toks) {
		return parseColon(toks, sign)
	}

	// sequence of number/unit pairs: the first unit decides how m and s read
	var total float64
	base := ""
	for i := 0; i < len(toks); i += 2 {
		if !toks[i].num {
			return 0, fmt.Errorf("expected number, found %q", toks[i].text)
		}
		if i+1 >= len(toks) {
			if i == 0 {
				return 0, fmt.Errorf("no unit specified")
			}
			return 0, fmt.Errorf("trailing number %q without unit", toks[i].text)
		}
		unit := toks[i+1].text
		scale, ok := componentScale(base, unit, i == 0)
		if !ok {
			return 0, fmt.Errorf("unknown unit %q", unit)
		}
		if i == 0 {
			base = unit
		}
		total += toks[i].val * scale
	}
	return sign * total, nil
}

func componentScale(base, unit string, first bool) (float64, bool) {
	if !first {
		hourly := base == "h" || base == "hr" || base == "hour" || base == "hours" || base == "hourangle"
		switch unit {
		case "m":
			if hourly {
				return 15, true
			}
			return 1, true
		case "s":
			if hourly {
				return 0.25, true
			}
			return 1.0 / 60, true
		}
	}
	scale, ok := unitScale[unit]
	return scale, ok
}

func hasColon(toks []token) bool {
	for _, t := range toks {
		if t.text == ":" {
			return true
		}
	}
	return false
}

// parseColon reads "d:m:s unit" where unit is degrees or hourangle
func parseColon(toks []token, sign float64) (float64, error) {
	var parts []float64
	unit := ""
	for i, t := range toks {
		switch {
		case t.num:
			parts = append(parts, t.val)
		case t.text == ":":
		case i == len(toks)-1:
			unit = t.text
		default:
			return 0, fmt.Errorf("unexpected %q in sexagesimal value", t.text)
		}
	}
	if unit == "" {
		return 0, fmt.Errorf("no unit specified")
	}
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("sexagesimal value needs one to three fields")
	}
	scale, ok := unitScale[unit]
	if !ok || (scale != 60 && scale != 900) {
		return 0, fmt.Errorf("sexagesimal unit must be degrees or hourangle, got %q", unit)
	}
	v := 0.0
	div := 1.0
	for _, p := range parts {
		v += p / div
		div *= 60
	}
	return sign * v * scale, nil
}

func parseCanonical(value, unit string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", value)
	}
	scale, ok := unitScale[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
	return v * scale, nil
}

// formatFloat mirrors the shortest round-trip float text with a mandatory
// fractional part, e.g. 5 -> "5.0", 0.25 -> "0.25", 1e-05 -> "1e-05".
func formatFloat(v float64) string {
	if v == 0 {
		return "0.0"
	}
	abs := math.Abs(v)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
