// Package devserver is a reference implementation of the PDF chat backend
// for local runs and integration tests. It keeps threads, messages and
// document metadata in SQLite and generates replies with a provider.Answerer.
package devserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pdfchat/provider"
	"pdfchat/storage"
)

const (
	// DefaultMaxUploadBytes is the largest accepted PDF, inclusive.
	DefaultMaxUploadBytes = 20 * 1024 * 1024

	// chunkSize and chunkOverlap describe the splitter whose chunk count is
	// reported for an upload.
	chunkSize    = 500
	chunkOverlap = 50

	identityHeader = "X-User-Id"
	userIDKey      = "userID"
)

type Server struct {
	storage        *storage.Storage
	answerer       provider.Answerer
	logger         *slog.Logger
	engine         *gin.Engine
	maxUploadBytes int64
}

type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) { s.maxUploadBytes = n }
}

// New builds the server and its routes.
func New(st *storage.Storage, answerer provider.Answerer, opts ...Option) *Server {
	s := &Server{
		storage:        st,
		answerer:       answerer,
		logger:         slog.Default(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), identity())
	// Multipart bodies above this stay on disk while parsing.
	r.MaxMultipartMemory = 8 << 20

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "PDF chat dev server running", "answerer": s.answerer.Name()})
	})

	thread := r.Group("/thread")
	thread.POST("/", s.createThread)
	thread.GET("/thread-all", s.listThreads)
	thread.GET("/:thread_id/messages", s.threadMessages)
	thread.DELETE("/:thread_id", s.deleteThread)

	documents := r.Group("/documents")
	documents.POST("/upload", s.uploadDocument)
	documents.GET("/", s.listDocuments)
	documents.DELETE("/:doc_id", s.deleteDocument)

	chat := r.Group("/chat")
	chat.POST("/send", s.chatSend)
	chat.POST("/stream", s.chatStream)

	s.engine = r
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// identity copies the caller's user id into the request context.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDKey, c.GetHeader(identityHeader))
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestLogger writes one structured line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"user", c.GetString(userIDKey),
			"duration", time.Since(start),
		)
	}
}

// abort writes a {"detail": ...} error body.
func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
