package store

import "pdfchat/model"

// Merge builds the visible log for a conversation from its provisional
// buffer and the server-authoritative history. Provisional messages come
// first, in the order they were recorded. Server messages whose id already
// appears in the buffer are skipped so a message is never shown twice.
//
// Merge never modifies its arguments.
func Merge(buffer, server []model.Message) []model.Message {
	out := make([]model.Message, 0, len(buffer)+len(server))
	seen := make(map[string]struct{}, len(buffer))
	for _, m := range buffer {
		out = append(out, m)
		if m.ID != "" {
			seen[m.ID] = struct{}{}
		}
	}
	for _, m := range server {
		if _, dup := seen[m.ID]; dup && m.ID != "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
