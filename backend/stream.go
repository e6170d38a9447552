package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pdfchat/config"
	"pdfchat/model"
)

// streamFrame is the JSON payload of one SSE data line.
type streamFrame struct {
	Chunk    *string         `json:"chunk"`
	Fragment *string         `json:"fragment"`
	Done     bool            `json:"done"`
	Error    json.RawMessage `json:"error"`
}

// processStream reads SSE events and calls the callback for each. Lines that
// are not data lines and data lines that do not parse are skipped. It returns
// nil only after a completion event; a body that ends first yields
// ErrStreamEnded. An error event ends the stream with an *APIError carrying
// the server's reason, also matching ErrStreamEnded.
func processStream(ctx context.Context, reader io.Reader, callback model.StreamCallback) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fragments := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()

		// SSE format: "data: {json}" (the space is optional)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			return finish(callback, fragments)
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Stream] skipping malformed event: %q", truncate(data, 120))
			}
			continue
		}

		if len(frame.Error) > 0 && string(frame.Error) != "null" {
			detail := parseDetail([]byte(data))
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Stream] server error after %d fragments: %s", fragments, detail)
			}
			return fmt.Errorf("%w: %w", ErrStreamEnded, &APIError{Detail: detail})
		}

		if frame.Done {
			return finish(callback, fragments)
		}

		text := frame.Chunk
		if text == nil {
			text = frame.Fragment
		}
		if text == nil {
			continue
		}

		fragments++
		if err := callback(model.StreamEvent{Fragment: *text}); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		// A canceled request closes the body under the scanner; report the
		// cancellation rather than the resulting read error.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}

	return ErrStreamEnded
}

func finish(callback model.StreamCallback, fragments int) error {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Stream] done after %d fragments", fragments)
	}
	return callback(model.StreamEvent{Done: true})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
