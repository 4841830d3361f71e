// internal/api/handlers/files_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andresuchdata/s3facility/internal/datauri"
	"github.com/andresuchdata/s3facility/internal/domain"
	"github.com/andresuchdata/s3facility/internal/gateway"
	"github.com/andresuchdata/s3facility/internal/rpc"
	"github.com/andresuchdata/s3facility/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FilesHandler struct {
	gateway *gateway.Gateway
}

func NewFilesHandler(gw *gateway.Gateway) *FilesHandler {
	return &FilesHandler{gateway: gw}
}

type uploadRequest struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
	Key      string `json:"key"`
}

type deleteRequest struct {
	Files json.RawMessage `json:"files"`
}

// Upload accepts either a JSON body {data, filename, key} or a multipart form
// with a "file" part and optional "filename" and "key" fields.
func (h *FilesHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}

		name := c.PostForm("filename")
		if name == "" {
			name = fileHeader.Filename
		}
		respond(c, ctx, h.gateway.UploadBytes(ctx, data, name, c.PostForm("key"), nil))
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data is required"})
		return
	}
	respond(c, ctx, h.gateway.Upload(ctx, req.Data, req.Filename, req.Key, nil))
}

// DownloadURL returns a presigned URL for ?key=, optionally named by ?filename=.
func (h *FilesHandler) DownloadURL(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	ctx := c.Request.Context()
	respond(c, ctx, h.gateway.DownloadURL(ctx, c.Query("filename"), key, nil))
}

// Delete removes the files listed in {"files": [{"key": ...}]}.
func (h *FilesHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	files, err := domain.ParseFileRefs(req.Files)
	if err != nil {
		errorResponse(c, err)
		return
	}
	ctx := c.Request.Context()
	respond(c, ctx, h.gateway.DeleteMany(ctx, files, nil))
}

func respond(c *gin.Context, ctx context.Context, f *rpc.Future) {
	resp, err := f.Wait(ctx)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp)
}

func errorResponse(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case domain.IsValidationError(err), errors.Is(err, datauri.ErrMalformedPayload):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = 499
	}
	if status >= http.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("storage request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
