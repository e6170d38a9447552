package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdfchat/config"
	"pdfchat/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", config.StaticIdentity("user-42"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClientStampsIdentity(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(IdentityHeader))
		writeJSON(w, http.StatusOK, []any{})
	})

	if _, err := c.ListConversations(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "user-42" {
		t.Errorf("identity headers = %v, want [user-42]", seen)
	}
}

func TestClientNilIdentitySendsEmptyHeader(t *testing.T) {
	present := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header[http.CanonicalHeaderKey(IdentityHeader)]
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, nil).ListConversations(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Error("identity header missing")
	}
}

func TestCreateConversation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/thread/" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "annual report" {
			t.Errorf("name = %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]string{"thread_id": "t1", "name": "annual report"})
	})

	conv, err := c.CreateConversation(context.Background(), "annual report")
	if err != nil {
		t.Fatal(err)
	}
	if conv.ID != "t1" || conv.Name != "annual report" {
		t.Errorf("conversation = %+v", conv)
	}
}

func TestFetchHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/thread/t1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"thread_id": "t1",
			"messages": []map[string]any{
				{"id": 1, "role": "user", "content": "q", "created_at": "2026-01-02T03:04:05.123456"},
				{"id": 2, "role": "system", "content": "a", "created_at": "2026-01-02T03:04:06Z"},
			},
		})
	})

	history, err := c.FetchHistory(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history[0].Role != model.RoleUser || history[1].Role != model.RoleAssistant {
		t.Errorf("roles = %v, %v", history[0].Role, history[1].Role)
	}
	if history[0].CreatedAt.IsZero() || history[1].CreatedAt.IsZero() {
		t.Error("timestamps not parsed")
	}
}

func TestAPIErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Thread not found"})
	})

	err := c.DeleteConversation(context.Background(), "missing")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || Detail(err) != "Thread not found" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Error("APIError should match ErrRequestFailed")
	}
}

func TestUploadDocumentMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/upload" || r.URL.Query().Get("thread_id") != "t1" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "report.pdf" || header.Header.Get("Content-Type") != "application/pdf" {
			t.Errorf("part = %s %s", header.Filename, header.Header.Get("Content-Type"))
		}
		if string(data) != "%PDF-1.4" {
			t.Errorf("body = %q", data)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "PDF uploaded & indexed", "thread_id": "t1", "doc_id": "d1", "filename": "report.pdf", "chunks_indexed": 7,
		})
	})

	result, err := c.UploadDocument(context.Background(), "t1", model.PendingUpload{
		Filename: "report.pdf", MimeType: "application/pdf", SizeBytes: 8, Data: bytes.NewReader([]byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.DocumentID != "d1" || result.ChunksIndexed != 7 {
		t.Errorf("result = %+v", result)
	}
}

func TestUploadDocumentRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": map[string]string{"message": "No text layer"}})
	})

	_, err := c.UploadDocument(context.Background(), "t1", model.PendingUpload{
		Filename: "scan.pdf", MimeType: "application/pdf", Data: strings.NewReader("x"),
	})
	if Detail(err) != "No text layer" {
		t.Errorf("detail = %q (err %v)", Detail(err), err)
	}
}

func TestSendMessageStreaming(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Message != "hi" || req.ThreadID != "t1" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"chunk\": \"Hello\"}\n\n")
		w.(http.Flusher).Flush()
		io.WriteString(w, "data: garbage\n\ndata: {\"chunk\": \", world\"}\n\ndata: {\"done\": true}\n\n")
	})

	var b strings.Builder
	done := false
	err := c.SendMessageStreaming(context.Background(), "t1", "hi", func(e model.StreamEvent) error {
		if e.Done {
			done = true
		}
		b.WriteString(e.Fragment)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !done || b.String() != "Hello, world" {
		t.Errorf("got %q done=%v", b.String(), done)
	}
}

func TestSendMessageStreamingHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Thread not found"})
	})

	err := c.SendMessageStreaming(context.Background(), "nope", "hi", func(model.StreamEvent) error { return nil })
	if Detail(err) != "Thread not found" {
		t.Errorf("err = %v", err)
	}
}

func TestSendMessageAndDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/chat/send":
			writeJSON(w, http.StatusOK, map[string]string{"reply": "42", "thread_id": "t1"})
		case r.Method == http.MethodGet && r.URL.Path == "/documents/":
			writeJSON(w, http.StatusOK, map[string]any{
				"thread_id": "t1",
				"documents": []map[string]any{{"doc_id": "d1", "thread_id": "t1", "filename": "a.pdf", "chunks_indexed": 3}},
				"count":     1,
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/documents/d1":
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	reply, err := c.SendMessage(ctx, "t1", "q")
	if err != nil || reply != "42" {
		t.Errorf("SendMessage = %q, %v", reply, err)
	}
	docs, err := c.ListDocuments(ctx, "t1")
	if err != nil || len(docs) != 1 || docs[0].Filename != "a.pdf" || docs[0].ChunksIndexed != 3 {
		t.Errorf("ListDocuments = %+v, %v", docs, err)
	}
	if err := c.DeleteDocument(ctx, "d1"); err != nil {
		t.Errorf("DeleteDocument: %v", err)
	}
}
