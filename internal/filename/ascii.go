// Package filename rewrites user supplied file names into values that are
// safe to place in an HTTP header.
package filename

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultStem replaces a stem that is empty after stripping.
const DefaultStem = "file"

// isHighBMP matches U+0080 through U+FFFF. Code points outside the basic
// multilingual plane are left alone.
func isHighBMP(r rune) bool {
	return r >= 0x80 && r <= 0xFFFF
}

var highBMP = runes.Predicate(isHighBMP)

// ASCII strips non-ASCII code points from the stem of name and returns the
// rewritten name. It returns false when name is empty, has no extension, or
// has an extension that is not plain ASCII.
func ASCII(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "", false
	}

	ext := name[dot+1:]
	if strings.IndexFunc(ext, isHighBMP) >= 0 {
		return "", false
	}

	stem := stripHigh(name[:dot])
	if stem == "" {
		stem = DefaultStem
	}
	return stem + "." + ext, true
}

// Disposition renders "<kind>; filename=<ascii>" when name survives
// sanitizing and the bare kind otherwise. The name is not quoted.
func Disposition(kind, name string) string {
	ascii, ok := ASCII(name)
	if !ok {
		return kind
	}
	return kind + "; filename=" + ascii
}

func stripHigh(s string) string {
	out, _, _ := transform.String(runes.Remove(highBMP), s)
	return out
}
