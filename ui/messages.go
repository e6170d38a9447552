package ui

import (
	"pdfchat/chat"
	"pdfchat/model"
)

// storeChangedMsg signals that the conversation store changed. The view
// re-reads the store rather than carrying state in the message.
type storeChangedMsg struct{}

type notificationMsg struct {
	level chat.Level
	text  string
}

type clearToastMsg struct {
	seq int
}

type conversationsRefreshedMsg struct {
	err error
}

type historyLoadedMsg struct {
	conversationID string
	err            error
}

type uploadDoneMsg struct {
	filename string
	result   model.UploadResult
	err      error
	openErr  error // The file could not be read; nothing was attempted
}

type askDoneMsg struct {
	err error
}

type conversationDeletedMsg struct {
	id  string
	err error
}

type documentsLoadedMsg struct {
	conversationID string
	documents      []model.Document
	err            error
}

type documentDeletedMsg struct {
	conversationID string
	documentID     string
	err            error
}
