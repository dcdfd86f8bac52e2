package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmate-ai/assistant-be/types"
)

type stubSummarizer struct {
	summary string
	err     error
	lastDoc types.Document
}

func (s *stubSummarizer) SummarizeDocument(ctx context.Context, doc types.Document) (string, error) {
	s.lastDoc = doc
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func uploadRouter(pipeline Summarizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/documents/summarize", NewUploadHandler(pipeline).HandleSummarize)
	return r
}

func postFile(t *testing.T, r *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/summarize", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleSummarize(t *testing.T) {
	pipeline := &stubSummarizer{summary: "a short summary"}
	r := uploadRouter(pipeline)
	w := postFile(t, r, "report.pdf", []byte("%PDF-1.4 fake"))

	assert.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Status bool                    `json:"status"`
		Data   types.SummarizeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Status)
	assert.Equal(t, "a short summary", res.Data.Summary)

	// Media type falls back to the extension when the part carries a
	// generic content type.
	assert.Equal(t, "application/pdf", pipeline.lastDoc.MediaType)
	assert.Equal(t, "report.pdf", pipeline.lastDoc.Name)
	assert.Equal(t, []byte("%PDF-1.4 fake"), pipeline.lastDoc.Data)
}

func TestHandleSummarizeMalformed(t *testing.T) {
	r := uploadRouter(&stubSummarizer{err: types.ErrMalformedDocument})
	w := postFile(t, r, "junk.pdf", []byte("garbage"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSummarizeEmptyDocument(t *testing.T) {
	r := uploadRouter(&stubSummarizer{err: types.ErrEmptyDocument})
	w := postFile(t, r, "blank.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSummarizeMissingFile(t *testing.T) {
	r := uploadRouter(&stubSummarizer{summary: "unused"})
	req := httptest.NewRequest(http.MethodPost, "/documents/summarize", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", mediaTypeFor("application/pdf", "x.bin"))
	assert.Equal(t, "application/pdf", mediaTypeFor("application/octet-stream", "report.pdf"))
	assert.Equal(t, "image/png", mediaTypeFor("", "scan.png"))
	assert.Equal(t, "image/jpeg", mediaTypeFor("", "scan.jpeg"))
}
