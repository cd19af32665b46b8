package rdf

import (
	"bytes"
	"strings"
)

// EscapedSpace stands in for a space inside an IRI. Legacy exports name
// objects like <...#AstroObjectMrk 421>, which no strict parser accepts.
const EscapedSpace = "%20"

// EscapeIRISpaces percent-encodes the spaces of an IRI
func EscapeIRISpaces(iri string) string {
	return strings.ReplaceAll(iri, " ", EscapedSpace)
}

// HasSpace reports whether an IRI or name contains a space, raw or escaped
func HasSpace(v string) bool {
	return strings.Contains(v, " ") || strings.Contains(v, EscapedSpace)
}

// escapeBracketedSpaces rewrites spaces inside <...> IRI references, leaving
// literals and comments alone. It returns the rewritten document and the
// number of IRIs it changed.
func escapeBracketedSpaces(src []byte) ([]byte, int) {
	if bytes.IndexByte(src, ' ') < 0 {
		return src, 0
	}
	out := make([]byte, 0, len(src))
	fixed := 0
	for i := 0; i < len(src); {
		switch c := src[i]; c {
		case '"', '\'':
			end := literalEnd(src, i)
			out = append(out, src[i:end]...)
			i = end
		case '#':
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			out = append(out, src[i:end]...)
			i = end
		case '<':
			end := bytes.IndexAny(src[i+1:], ">\n")
			if end < 0 || src[i+1+end] != '>' {
				out = append(out, c)
				i++
				continue
			}
			ref := src[i : i+end+2]
			if bytes.IndexByte(ref, ' ') >= 0 {
				ref = bytes.ReplaceAll(ref, []byte(" "), []byte(EscapedSpace))
				fixed++
			}
			out = append(out, ref...)
			i += end + 2
		default:
			out = append(out, c)
			i++
		}
	}
	return out, fixed
}

// literalEnd returns the index just past the string literal opening at i
func literalEnd(src []byte, i int) int {
	q := src[i]
	delim := []byte{q}
	long := bytes.HasPrefix(src[i:], []byte{q, q, q})
	if long {
		delim = []byte{q, q, q}
	}
	j := i + len(delim)
	for j < len(src) {
		switch {
		case src[j] == '\\':
			j += 2
		case bytes.HasPrefix(src[j:], delim):
			return j + len(delim)
		case !long && src[j] == '\n':
			return j
		default:
			j++
		}
	}
	return len(src)
}
