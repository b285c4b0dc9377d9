package domain

import "time"

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// PlaceholderReply is the only answer the chat panel gives.
// Repository Q&A is not implemented.
const PlaceholderReply = "Chat is not implemented yet. Repository questions cannot be answered in this version."

// ChatMessage is one entry of a session's chat transcript
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Clock returns the message time as HH:MM:SS
func (m ChatMessage) Clock() string {
	return m.Timestamp.Format("15:04:05")
}
