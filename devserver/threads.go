package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat/storage"
)

const defaultThreadName = "New Chat"

func (s *Server) createThread(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		name = defaultThreadName
	}

	t, err := s.storage.CreateThread(c.Request.Context(), userID(c), name)
	if err != nil {
		s.logger.Error("create thread", "error", err)
		abort(c, http.StatusInternalServerError, "Could not create thread.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"thread_id": t.ID, "name": t.Name, "created_at": formatTime(t.CreatedAt)})
}

func (s *Server) listThreads(c *gin.Context) {
	threads, err := s.storage.ListThreads(c.Request.Context(), userID(c))
	if err != nil {
		s.logger.Error("list threads", "error", err)
		abort(c, http.StatusInternalServerError, "Could not list threads.")
		return
	}

	resp := make([]gin.H, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, gin.H{"thread_id": t.ID, "name": t.Name, "created_at": formatTime(t.CreatedAt)})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) threadMessages(c *gin.Context) {
	t, ok := s.ownedThread(c, c.Param("thread_id"))
	if !ok {
		return
	}

	msgs, err := s.storage.Messages(c.Request.Context(), t.ID)
	if err != nil {
		s.logger.Error("load messages", "thread_id", t.ID, "error", err)
		abort(c, http.StatusInternalServerError, "Could not load messages.")
		return
	}

	resp := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, gin.H{"id": m.ID, "role": m.Role, "content": m.Content, "created_at": formatTime(m.CreatedAt)})
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": t.ID, "messages": resp})
}

func (s *Server) deleteThread(c *gin.Context) {
	id := c.Param("thread_id")
	err := s.storage.DeleteThread(c.Request.Context(), userID(c), id)
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "Thread not found.")
		return
	}
	if err != nil {
		s.logger.Error("delete thread", "thread_id", id, "error", err)
		abort(c, http.StatusInternalServerError, "Could not delete thread.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thread deleted", "thread_id": id})
}

// ownedThread loads threadID for the caller, writing a 404 when it does not
// exist or belongs to someone else.
func (s *Server) ownedThread(c *gin.Context, threadID string) (storage.Thread, bool) {
	t, err := s.storage.GetThread(c.Request.Context(), userID(c), threadID)
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "Thread not found.")
		return storage.Thread{}, false
	}
	if err != nil {
		s.logger.Error("load thread", "thread_id", threadID, "error", err)
		abort(c, http.StatusInternalServerError, "Could not load thread.")
		return storage.Thread{}, false
	}
	return t, true
}
