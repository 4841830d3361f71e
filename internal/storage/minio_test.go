package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw        string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{raw: "minio:9000", useSSL: false, wantHost: "minio:9000", wantSecure: false},
		{raw: "minio:9000", useSSL: true, wantHost: "minio:9000", wantSecure: true},
		{raw: "https://s3.example.com/", useSSL: false, wantHost: "s3.example.com", wantSecure: true},
		{raw: "http://localhost:9000", useSSL: true, wantHost: "localhost:9000", wantSecure: false},
		{raw: " //localhost:9000 ", useSSL: false, wantHost: "localhost:9000", wantSecure: false},
	}

	for _, tt := range tests {
		host, secure := splitEndpoint(tt.raw, tt.useSSL)
		assert.Equal(t, tt.wantHost, host, tt.raw)
		assert.Equal(t, tt.wantSecure, secure, tt.raw)
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(MinioConfig{AccessKey: "a", SecretKey: "s"})
	assert.Error(t, err)

	_, err = NewMinioClient(MinioConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	client, err := NewMinioClient(MinioConfig{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "s"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
