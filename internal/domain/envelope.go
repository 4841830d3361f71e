package domain

import (
	"encoding/json"
	"fmt"
)

// Mode describes how an upload body was derived from the caller's data.
type Mode string

const (
	ModeRaw    Mode = "raw"
	ModeBase64 Mode = "base64"
)

// Headers is the header object sent alongside an upload body.
type Headers struct {
	ContentType        *string `json:"contentType"`
	ACL                string  `json:"acl"`
	Bucket             string  `json:"bucket"`
	ContentDisposition string  `json:"contentDisposition,omitempty"`
	Key                string  `json:"key,omitempty"`
}

// ContentTypeOr returns the content type or fallback when none was detected.
func (h Headers) ContentTypeOr(fallback string) string {
	if h.ContentType == nil || *h.ContentType == "" {
		return fallback
	}
	return *h.ContentType
}

// Envelope is the (hexBody, headers) pair handed to the uploadPublic method.
type Envelope struct {
	Body    string
	Headers Headers
	Mode    Mode
}

// Args returns the positional arguments for uploadPublic.
func (e Envelope) Args() []any {
	return []any{e.Body, e.Headers}
}

// MarshalJSON renders the envelope as the two element array the worker expects.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Args())
}

// UnmarshalJSON reads the two element [hexBody, headers] array.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("decode envelope: expected 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &e.Body); err != nil {
		return fmt.Errorf("decode envelope body: %w", err)
	}
	if err := json.Unmarshal(parts[1], &e.Headers); err != nil {
		return fmt.Errorf("decode envelope headers: %w", err)
	}
	return nil
}

// PresignRequest is the single argument of getPresignedUrl.
type PresignRequest struct {
	Key                 string `json:"key"`
	Bucket              string `json:"bucket"`
	SignedURLExpireTime int    `json:"signedUrlExpireTime"`
	ResponseDisposition string `json:"responseDisposition"`
}

// BucketACL is the header object sent with deleteFiles.
type BucketACL struct {
	ACL    string `json:"acl"`
	Bucket string `json:"bucket"`
}
