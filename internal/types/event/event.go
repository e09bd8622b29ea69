package event

import "time"

// DocumentEvent is the JSON payload a background-function trigger delivers
// for a document-created event: the document path relative to the database
// root plus the written fields.
type DocumentEvent struct {
	// Document is e.g. "chats/abc/messages/xyz".
	Document   string         `json:"document"`
	Fields     map[string]any `json:"fields"`
	CreateTime time.Time      `json:"createTime"`
}
