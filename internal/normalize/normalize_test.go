package normalize

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"5arcmin", "5.0 unit=arcmin"},
		{"5 arcmin", "5.0 unit=arcmin"},
		{"0.5 deg", "30.0 unit=arcmin"},
		{"2deg", "120.0 unit=arcmin"},
		{"90arcsec", "1.5 unit=arcmin"},
		{"1d30m", "90.0 unit=arcmin"},
		{"-1d30m", "-90.0 unit=arcmin"},
		{"1h", "900.0 unit=arcmin"},
		{"5.0 unit=arcmin", "5.0 unit=arcmin"},
		{"0.25 unit=deg", "15.0 unit=arcmin"},
		{"1:30:00 deg", "90.0 unit=arcmin"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Angle(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Angle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAngleRejectsUnparseable(t *testing.T) {
	for _, in := range []string{"0.5", "five arcmin", "5 parsecs", "1:2:3", "deg 5"} {
		_, err := Angle(in)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Angle(%q): expected ParseError, got %v", in, err)
		}
	}
}

func TestAngleRoundTrip(t *testing.T) {
	for _, in := range []string{"5arcmin", "0.1 deg", "17arcsec", "2.5d", "0.01rad"} {
		canonical, err := Angle(in)
		if err != nil {
			t.Fatalf("Angle(%q): %v", in, err)
		}
		first, _ := ParseAngle(in)
		again, err := ParseAngle(canonical)
		if err != nil {
			t.Fatalf("reparse %q: %v", canonical, err)
		}
		if math.Abs(first-again) > 1e-9 {
			t.Errorf("%q: %v arcmin != %v arcmin after round trip", in, first, again)
		}
	}
}

func TestSkyCoordinates(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.5 41.2", "RA=10.5 deg  Dec=41.2 deg"},
		{"10.5,41.2", "RA=10.5 deg  Dec=41.2 deg"},
		{"10.5, 41.2", "RA=10.5 deg  Dec=41.2 deg"},
		{"370 -10", "RA=10.0 deg  Dec=-10.0 deg"},
		{"-10 5", "RA=350.0 deg  Dec=5.0 deg"},
		{"1h 30d", "RA=15.0 deg  Dec=30.0 deg"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SkyCoordinates(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SkyCoordinates(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSkyCoordinatesSeparatorsAgree(t *testing.T) {
	for _, pair := range [][2]float64{{0, 0}, {359.9, -89.5}, {83.633, 22.0145}, {166.114, 38.2088}} {
		a := strconv.FormatFloat(pair[0], 'f', -1, 64)
		b := strconv.FormatFloat(pair[1], 'f', -1, 64)
		spaced, err1 := SkyCoordinates(a + " " + b)
		comma, err2 := SkyCoordinates(a + "," + b)
		if err1 != nil || err2 != nil {
			t.Fatalf("errors: %v %v", err1, err2)
		}
		if spaced != comma {
			t.Errorf("%q != %q", spaced, comma)
		}
	}
}

func TestSkyCoordinatesFallback(t *testing.T) {
	got, err := SkyCoordinates("M31")
	if err != nil || got != "M31" {
		t.Errorf("single token: got %q, %v", got, err)
	}
	got, err = SkyCoordinates("1 2 3")
	if err != nil || got != "1,2,3" {
		t.Errorf("three tokens: got %q, %v", got, err)
	}
}

func TestSkyCoordinatesErrors(t *testing.T) {
	for _, in := range []string{"10.5 95", "abc def"} {
		if _, err := SkyCoordinates(in); err == nil {
			t.Errorf("SkyCoordinates(%q): expected error", in)
		}
	}
}

func TestBlankPassThrough(t *testing.T) {
	for _, in := range []string{"", "   "} {
		if got, err := Angle(in); err != nil || got != in {
			t.Errorf("Angle(%q) = %q, %v", in, got, err)
		}
		if got, err := SkyCoordinates(in); err != nil || got != in {
			t.Errorf("SkyCoordinates(%q) = %q, %v", in, got, err)
		}
		if got := List(in); got != in {
			t.Errorf("List(%q) = %q", in, got)
		}
	}
}

func TestList(t *testing.T) {
	if got := List("100 200"); got != "100,200" {
		t.Errorf("got %q", got)
	}
	if got := List(" 1  2\t3 "); got != "1,2,3" {
		t.Errorf("got %q", got)
	}
	if got := List("single"); strings.Contains(got, ",") {
		t.Errorf("got %q", got)
	}
}
