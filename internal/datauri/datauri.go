// Package datauri sniffs and decodes base64 data URIs of the form
// data:<type>/<subtype>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedPayload is returned when a data URI payload is not valid base64.
var ErrMalformedPayload = errors.New("malformed base64 payload")

var mimePattern = regexp.MustCompile(`data:([a-zA-Z0-9]+/[a-zA-Z0-9\-.+]+).*,.*`)

// IsDataURI reports whether s carries both a MIME segment and a non-empty
// comma delimited payload.
func IsDataURI(s string) bool {
	if _, ok := MimeType(s); !ok {
		return false
	}
	payload, ok := Payload(s)
	return ok && payload != ""
}

// MimeType extracts the type/subtype declared by a data URI.
func MimeType(s string) (string, bool) {
	m := mimePattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// Payload returns the segment between the first comma and the next one (or
// the end of s). Anything after a second comma is ignored.
func Payload(s string) (string, bool) {
	_, rest, found := strings.Cut(s, ",")
	if !found {
		return "", false
	}
	payload, _, _ := strings.Cut(rest, ",")
	return payload, true
}

// Decode base64-decodes a payload the way browsers and Node produce and
// accept it: standard or URL-safe alphabet, whitespace ignored, data ends at
// the first '=', and a dangling sixth character carrying no full byte is
// dropped. Any other character is an error.
func Decode(payload string) ([]byte, error) {
	clean := make([]byte, 0, len(payload))
scan:
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch {
		case c == '=':
			break scan
		case c == '-':
			clean = append(clean, '+')
		case c == '_':
			clean = append(clean, '/')
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		case isAlphabet(c):
			clean = append(clean, c)
		default:
			return nil, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedPayload, c, i)
		}
	}
	if len(clean)%4 == 1 {
		clean = clean[:len(clean)-1]
	}

	data, err := base64.RawStdEncoding.DecodeString(string(clean))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return data, nil
}

func isAlphabet(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '+' || c == '/'
}
