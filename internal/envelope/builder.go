// Package envelope turns caller payloads into the (hexBody, headers) pair
// accepted by the uploadPublic worker method.
package envelope

import (
	"encoding/hex"

	"github.com/andresuchdata/s3facility/internal/config"
	"github.com/andresuchdata/s3facility/internal/datauri"
	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/andresuchdata/s3facility/internal/filename"
)

type Builder struct {
	cfg config.StoreConfig
}

func NewBuilder(cfg config.StoreConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build prepares data for upload. Data URIs are base64-decoded and carry
// their MIME type; anything else is sent byte for byte with no content type.
// A data URI whose payload is not valid base64 is reported as an error.
func (b *Builder) Build(data, name, key string) (domain.Envelope, error) {
	if !datauri.IsDataURI(data) {
		return b.assemble([]byte(data), nil, domain.ModeRaw, name, key), nil
	}

	mime, _ := datauri.MimeType(data)
	payload, _ := datauri.Payload(data)
	body, err := datauri.Decode(payload)
	if err != nil {
		return domain.Envelope{}, err
	}
	return b.assemble(body, &mime, domain.ModeBase64, name, key), nil
}

// BuildBytes prepares raw bytes for upload without any sniffing.
func (b *Builder) BuildBytes(data []byte, name, key string) domain.Envelope {
	return b.assemble(data, nil, domain.ModeRaw, name, key)
}

func (b *Builder) assemble(body []byte, contentType *string, mode domain.Mode, name, key string) domain.Envelope {
	headers := domain.Headers{
		ContentType: contentType,
		ACL:         b.cfg.ACL,
		Bucket:      b.cfg.Bucket,
	}
	if ascii, ok := filename.ASCII(name); ok {
		headers.ContentDisposition = b.cfg.ContentDisposition + `; filename="` + ascii + `"`
	}
	if key != "" {
		headers.Key = key
	}

	return domain.Envelope{
		Body:    hex.EncodeToString(body),
		Headers: headers,
		Mode:    mode,
	}
}
