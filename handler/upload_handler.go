package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/workmate-ai/assistant-be/types"
)

const maxUploadSize = 10 << 20 // 10MB

// Summarizer summarizes one uploaded document.
type Summarizer interface {
	SummarizeDocument(ctx context.Context, doc types.Document) (string, error)
}

type UploadHandler struct {
	pipeline Summarizer
}

func NewUploadHandler(pipeline Summarizer) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// HandleSummarize accepts a multipart upload, runs the summarization
// pipeline and returns the summary. The payload is never written to disk.
func (h *UploadHandler) HandleSummarize(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Failed to read file",
		})
		return
	}

	doc := types.Document{
		Data:      data,
		MediaType: mediaTypeFor(header.Header.Get("Content-Type"), header.Filename),
		Name:      header.Filename,
	}

	summary, err := h.pipeline.SummarizeDocument(c.Request.Context(), doc)
	if err != nil {
		c.JSON(statusFor(err), types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   types.SummarizeResponse{Summary: summary},
	})
}

// mediaTypeFor prefers the declared content type and falls back to the file
// extension.
func mediaTypeFor(declared, filename string) string {
	if parsed, _, err := mime.ParseMediaType(declared); err == nil && parsed != "" && parsed != "application/octet-stream" {
		return parsed
	}
	switch filepath.Ext(filename) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return declared
}
