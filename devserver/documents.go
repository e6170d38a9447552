package devserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/storage"
)

const pdfMimeType = "application/pdf"

var pdfMagic = []byte("%PDF-")

func (s *Server) uploadDocument(c *gin.Context) {
	t, ok := s.ownedThread(c, c.Query("thread_id"))
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abort(c, http.StatusBadRequest, "Missing multipart field \"file\".")
		return
	}

	if ct := header.Header.Get("Content-Type"); ct != pdfMimeType {
		abort(c, http.StatusBadRequest, fmt.Sprintf("Only PDF files are supported. Received: %s", ct))
		return
	}
	if header.Size > s.maxUploadBytes {
		abort(c, http.StatusBadRequest, fmt.Sprintf("File too large (%.1f MB). Max: %d MB.",
			float64(header.Size)/(1024*1024), s.maxUploadBytes/(1024*1024)))
		return
	}

	f, err := header.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, "Could not read upload.")
		return
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, _ := io.ReadFull(f, head)
	if !bytes.Contains(head[:n], pdfMagic) {
		abort(c, http.StatusUnprocessableEntity, "Could not extract any text from the PDF.")
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = "document.pdf"
	}

	doc, err := s.storage.SaveDocument(c.Request.Context(), storage.Document{
		ThreadID:   t.ID,
		Filename:   filename,
		SizeBytes:  header.Size,
		ChunkCount: chunkCount(header.Size),
	})
	if err != nil {
		s.logger.Error("save document", "thread_id", t.ID, "error", err)
		abort(c, http.StatusUnprocessableEntity, "Could not index the document.")
		return
	}

	s.logger.Info("document indexed", "thread_id", t.ID, "doc_id", doc.ID, "filename", doc.Filename, "chunks", doc.ChunkCount)
	c.JSON(http.StatusOK, gin.H{
		"message":        "Document uploaded and indexed",
		"thread_id":      t.ID,
		"doc_id":         doc.ID,
		"filename":       doc.Filename,
		"chunks_indexed": doc.ChunkCount,
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	t, ok := s.ownedThread(c, c.Query("thread_id"))
	if !ok {
		return
	}

	docs, err := s.storage.ListDocuments(c.Request.Context(), t.ID)
	if err != nil {
		s.logger.Error("list documents", "thread_id", t.ID, "error", err)
		abort(c, http.StatusInternalServerError, "Could not list documents.")
		return
	}

	resp := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, gin.H{
			"doc_id":         d.ID,
			"thread_id":      d.ThreadID,
			"filename":       d.Filename,
			"size_bytes":     d.SizeBytes,
			"chunks_indexed": d.ChunkCount,
			"uploaded_at":    formatTime(d.UploadedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": t.ID, "documents": resp, "count": len(resp)})
}

func (s *Server) deleteDocument(c *gin.Context) {
	doc, err := s.storage.DeleteDocument(c.Request.Context(), userID(c), c.Param("doc_id"))
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "Document not found.")
		return
	}
	if err != nil {
		s.logger.Error("delete document", "doc_id", c.Param("doc_id"), "error", err)
		abort(c, http.StatusInternalServerError, "Could not delete document.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted", "deleted": doc.ID, "filename": doc.Filename})
}

// chunkCount is the number of overlapping chunks a splitter with chunkSize
// and chunkOverlap produces for size bytes.
func chunkCount(size int64) int {
	if size <= chunkSize {
		return 1
	}
	stride := int64(chunkSize - chunkOverlap)
	return int((size-chunkOverlap+stride-1)/stride)
}
