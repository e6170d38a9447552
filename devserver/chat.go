package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat/provider"
)

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

func (s *Server) bindChat(c *gin.Context) (chatRequest, bool) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body.")
		return req, false
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		abort(c, http.StatusBadRequest, "Message must not be empty.")
		return req, false
	}
	if _, ok := s.ownedThread(c, req.ThreadID); !ok {
		return req, false
	}
	return req, true
}

// prepare stores the user's message and builds the prompt.
func (s *Server) prepare(ctx context.Context, req chatRequest) ([]provider.Turn, error) {
	if _, err := s.storage.SaveMessage(ctx, req.ThreadID, provider.RoleUser, req.Message); err != nil {
		return nil, err
	}

	docs, err := s.storage.ListDocuments(ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}

	history, err := s.storage.RecentHistory(ctx, req.ThreadID, provider.HistoryLimit)
	if err != nil {
		return nil, err
	}
	turns := make([]provider.Turn, len(history))
	for i, m := range history {
		turns[i] = provider.Turn{Role: m.Role, Content: m.Content}
	}
	return provider.BuildTurns(names, turns), nil
}

func (s *Server) chatSend(c *gin.Context) {
	req, ok := s.bindChat(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	turns, err := s.prepare(ctx, req)
	if err != nil {
		s.logger.Error("prepare prompt", "thread_id", req.ThreadID, "error", err)
		abort(c, http.StatusInternalServerError, "Could not prepare the conversation.")
		return
	}

	var reply strings.Builder
	if err := s.answerer.Answer(ctx, turns, func(fragment string) error {
		reply.WriteString(fragment)
		return nil
	}); err != nil {
		s.logger.Error("generate reply", "thread_id", req.ThreadID, "answerer", s.answerer.Name(), "error", err)
		abort(c, http.StatusBadGateway, err.Error())
		return
	}

	if _, err := s.storage.SaveMessage(ctx, req.ThreadID, provider.RoleAssistant, reply.String()); err != nil {
		s.logger.Error("save reply", "thread_id", req.ThreadID, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply.String(), "thread_id": req.ThreadID})
}

// chatStream answers as server-sent events: one {"chunk": ...} per fragment
// and a final {"done": true}. A generation failure sends {"error": ...} and
// ends the stream without the completion event.
func (s *Server) chatStream(c *gin.Context) {
	req, ok := s.bindChat(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	turns, err := s.prepare(ctx, req)
	if err != nil {
		s.logger.Error("prepare prompt", "thread_id", req.ThreadID, "error", err)
		abort(c, http.StatusInternalServerError, "Could not prepare the conversation.")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	var reply strings.Builder
	err = s.answerer.Answer(ctx, turns, func(fragment string) error {
		reply.WriteString(fragment)
		return writeEvent(c, gin.H{"chunk": fragment})
	})
	if err != nil {
		s.logger.Warn("stream aborted", "thread_id", req.ThreadID, "answerer", s.answerer.Name(), "error", err)
		if ctx.Err() == nil {
			writeEvent(c, gin.H{"error": err.Error()})
		}
		return
	}

	if _, err := s.storage.SaveMessage(ctx, req.ThreadID, provider.RoleAssistant, reply.String()); err != nil {
		s.logger.Error("save reply", "thread_id", req.ThreadID, "error", err)
	}
	writeEvent(c, gin.H{"done": true})
}

func writeEvent(c *gin.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
