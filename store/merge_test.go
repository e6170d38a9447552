package store

import (
	"reflect"
	"testing"

	"pdfchat/model"
)

func TestMerge(t *testing.T) {
	m := model.Message{ID: "p1", Kind: model.KindAttachment, Filename: "report.pdf", Provisional: true}
	s1 := model.Message{ID: "srv:a:1", Role: model.RoleUser, Content: "hi"}
	s2 := model.Message{ID: "srv:a:2", Role: model.RoleAssistant, Content: "hello"}

	tests := []struct {
		name   string
		buffer []model.Message
		server []model.Message
		want   []model.Message
	}{
		{"both empty", nil, nil, []model.Message{}},
		{"buffer only", []model.Message{m}, nil, []model.Message{m}},
		{"server only", nil, []model.Message{s1, s2}, []model.Message{s1, s2}},
		{"provisional first", []model.Message{m}, []model.Message{s1, s2}, []model.Message{m, s1, s2}},
		{"duplicate id skipped", []model.Message{m}, []model.Message{m, s1}, []model.Message{m, s1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.buffer, tt.server)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	buffer := make([]model.Message, 1, 4)
	buffer[0] = model.Message{ID: "p1"}
	server := []model.Message{{ID: "s1"}}

	out := Merge(buffer, server)
	out[0].Content = "changed"

	if len(buffer) != 1 || buffer[0].Content != "" {
		t.Errorf("buffer mutated: %+v", buffer)
	}
	if buffer[:2][1].ID != "" {
		t.Errorf("buffer backing array written: %+v", buffer[:2])
	}
	if server[0].ID != "s1" {
		t.Errorf("server mutated: %+v", server)
	}
}
