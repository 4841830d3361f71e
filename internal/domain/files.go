package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FileRef identifies a stored object by key.
type FileRef struct {
	Key string `json:"key"`
}

// ValidateFileRefs applies the delete batch rules: a nil slice is not an array,
// an empty one is rejected, and every entry needs a non-empty key.
func ValidateFileRefs(files []FileRef) error {
	if files == nil {
		return ErrNoFilesArray
	}
	if len(files) == 0 {
		return ErrEmptyFilesArray
	}
	for _, f := range files {
		if f.Key == "" {
			return ErrMissingKey
		}
	}
	return nil
}

// ParseFileRefs decodes untyped JSON into a delete batch. Anything other than
// an array yields ErrNoFilesArray. A key may be a non-empty string or a
// non-zero number, which is kept in its JSON spelling; anything else yields
// ErrMissingKey.
func ParseFileRefs(raw json.RawMessage) ([]FileRef, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrNoFilesArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrNoFilesArray
	}
	if len(items) == 0 {
		return nil, ErrEmptyFilesArray
	}

	files := make([]FileRef, 0, len(items))
	for _, item := range items {
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil || obj == nil {
			return nil, ErrMissingKey
		}
		key, ok := keyString(obj["key"])
		if !ok {
			return nil, ErrMissingKey
		}
		files = append(files, FileRef{Key: key})
	}
	return files, nil
}

func keyString(v any) (string, bool) {
	switch k := v.(type) {
	case string:
		return k, k != ""
	case json.Number:
		f, err := strconv.ParseFloat(k.String(), 64)
		if err != nil || f == 0 {
			return "", false
		}
		return k.String(), true
	}
	return "", false
}
