package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Angle converts an angle expression to "<arcmin> unit=arcmin".
// Blank input is returned unchanged.
func Angle(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	v, err := ParseAngle(raw)
	if err != nil {
		return "", err
	}
	return formatFloat(v) + " unit=arcmin", nil
}

// SkyCoordinates converts "ra dec" or "ra,dec" to "RA=<deg> deg  Dec=<deg> deg".
// Plain numbers are degrees; tokens with units ("10h20m", "41d12m") go through
// ParseAngle. Input that does not split into exactly two tokens is returned
// with its tokens comma-joined. Blank input is returned unchanged.
func SkyCoordinates(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	tokens := splitPair(raw)
	if len(tokens) != 2 {
		return strings.Join(tokens, ","), nil
	}

	ra, err := coordinateDegrees(tokens[0])
	if err != nil {
		return "", &ParseError{Kind: "sky coordinates", Input: raw, Err: err}
	}
	dec, err := coordinateDegrees(tokens[1])
	if err != nil {
		return "", &ParseError{Kind: "sky coordinates", Input: raw, Err: err}
	}
	if dec < -90 || dec > 90 {
		return "", &ParseError{Kind: "sky coordinates", Input: raw,
			Err: fmt.Errorf("declination %s outside [-90, 90]", formatFloat(dec))}
	}
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return "RA=" + formatFloat(ra) + " deg " + " Dec=" + formatFloat(dec) + " deg", nil
}

// List turns a whitespace-separated list into a comma-joined one
func List(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return raw
	}
	return strings.Join(fields, ",")
}

// splitPair prefers a comma split when a comma is present, else whitespace
func splitPair(raw string) []string {
	if strings.Contains(raw, ",") {
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return strings.Fields(raw)
}

func coordinateDegrees(tok string) (float64, error) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, nil
	}
	arcmin, err := parseAngle(tok)
	if err != nil {
		return 0, err
	}
	return arcmin / 60, nil
}
