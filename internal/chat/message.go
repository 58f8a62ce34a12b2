// Package chat defines the model invocation contract: an ordered list of
// role-tagged messages goes in, a streamed sequence of text fragments
// comes back.
package chat

// Role tags a message with its originator.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in the model input list.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
