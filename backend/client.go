// Package backend is the HTTP/SSE client for the PDF question-answering
// service. It implements model.Backend and stamps every request with the
// caller's identity.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"pdfchat/config"
	"pdfchat/model"
)

// IdentityHeader carries the user id on every request.
const IdentityHeader = "X-User-Id"

const defaultRequestTimeout = 30 * time.Second

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	identity   config.IdentityProvider
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a backend client. identity may be nil, in which case
// requests carry an empty identity header.
func NewClient(baseURL string, identity config.IdentityProvider) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		identity:   identity,
		httpClient: &http.Client{},
		timeout:    defaultRequestTimeout,
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

var _ model.Backend = (*Client)(nil)

type threadResponse struct {
	ThreadID  string `json:"thread_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type historyResponse struct {
	ThreadID string `json:"thread_id"`
	Messages []struct {
		ID        int64  `json:"id"`
		Role      string `json:"role"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at"`
	} `json:"messages"`
}

type uploadResponse struct {
	Message       string `json:"message"`
	ThreadID      string `json:"thread_id"`
	DocID         string `json:"doc_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type documentResponse struct {
	DocID         string `json:"doc_id"`
	ThreadID      string `json:"thread_id"`
	Filename      string `json:"filename"`
	SizeBytes     int64  `json:"size_bytes"`
	ChunksIndexed int    `json:"chunks_indexed"`
	UploadedAt    string `json:"uploaded_at"`
}

type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

// CreateConversation implements model.Backend.
func (c *Client) CreateConversation(ctx context.Context, name string) (model.Conversation, error) {
	var resp threadResponse
	path := "/thread/?name=" + url.QueryEscape(name)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return model.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	if resp.ThreadID == "" {
		return model.Conversation{}, fmt.Errorf("create conversation: %w: empty thread_id", ErrRequestFailed)
	}
	if resp.Name == "" {
		resp.Name = name
	}
	return model.Conversation{ID: resp.ThreadID, Name: resp.Name, CreatedAt: parseTime(resp.CreatedAt)}, nil
}

// ListConversations implements model.Backend.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var resp []threadResponse
	if err := c.doJSON(ctx, http.MethodGet, "/thread/thread-all", nil, &resp); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	result := make([]model.Conversation, 0, len(resp))
	for _, t := range resp {
		result = append(result, model.Conversation{
			ID:        t.ThreadID,
			Name:      t.Name,
			CreatedAt: parseTime(t.CreatedAt),
		})
	}
	return result, nil
}

// FetchHistory implements model.Backend.
func (c *Client) FetchHistory(ctx context.Context, conversationID string) ([]model.HistoryMessage, error) {
	var resp historyResponse
	path := "/thread/" + url.PathEscape(conversationID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	result := make([]model.HistoryMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		result = append(result, model.HistoryMessage{
			ID:        m.ID,
			Role:      model.ParseRole(m.Role),
			Content:   m.Content,
			CreatedAt: parseTime(m.CreatedAt),
		})
	}
	return result, nil
}

// DeleteConversation implements model.Backend.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	path := "/thread/" + url.PathEscape(conversationID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// UploadDocument implements model.Backend. The file is streamed as a
// multipart "file" part carrying the declared MIME type.
func (c *Client) UploadDocument(ctx context.Context, conversationID string, upload model.PendingUpload) (model.UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
		header.Set("Content-Type", upload.MimeType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if upload.Data != nil {
			if _, err := io.Copy(part, upload.Data); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	// Uploads include server-side indexing, so they are bounded only by ctx.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/documents/upload?thread_id="+url.QueryEscape(conversationID), pr)
	if err != nil {
		pr.Close()
		return model.UploadResult{}, fmt.Errorf("upload document: %w", err)
	}
	defer pr.Close()
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.stamp(req)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] POST /documents/upload thread=%s file=%s size=%d",
			conversationID, upload.Filename, upload.SizeBytes)
	}

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return model.UploadResult{}, fmt.Errorf("upload document: %w", err)
	}

	return model.UploadResult{
		DocumentID:    resp.DocID,
		ChunksIndexed: resp.ChunksIndexed,
		Message:       resp.Message,
	}, nil
}

// SendMessageStreaming implements model.Backend.
func (c *Client) SendMessageStreaming(ctx context.Context, conversationID, text string, callback model.StreamCallback) error {
	body, err := json.Marshal(chatRequest{Message: text, ThreadID: conversationID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	c.stamp(req)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] POST /chat/stream thread=%s len=%d", conversationID, len(text))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Backend] stream request failed: %v", err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	return processStream(ctx, resp.Body, callback)
}

// SendMessage implements model.Backend.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	var resp struct {
		Reply    string `json:"reply"`
		ThreadID string `json:"thread_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/send", chatRequest{Message: text, ThreadID: conversationID}, &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return resp.Reply, nil
}

// ListDocuments implements model.Backend.
func (c *Client) ListDocuments(ctx context.Context, conversationID string) ([]model.Document, error) {
	var resp struct {
		Documents []documentResponse `json:"documents"`
	}
	path := "/documents/?thread_id=" + url.QueryEscape(conversationID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	result := make([]model.Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		result = append(result, model.Document{
			ID:            d.DocID,
			ThreadID:      d.ThreadID,
			Filename:      d.Filename,
			SizeBytes:     d.SizeBytes,
			ChunksIndexed: d.ChunksIndexed,
			UploadedAt:    parseTime(d.UploadedAt),
		})
	}
	return result, nil
}

// DeleteDocument implements model.Backend.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	path := "/documents/" + url.PathEscape(documentID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// doJSON performs a bounded request with an optional JSON body and decodes
// the JSON response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.stamp(req)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] HTTP %s %s", method, path)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Backend] HTTP request failed: %v", err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) stamp(req *http.Request) {
	userID := ""
	if c.identity != nil {
		userID = c.identity.UserID()
	}
	req.Header.Set(IdentityHeader, userID)
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] API error %d: %s", resp.StatusCode, apiErr.Detail)
	}
	return apiErr
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
