package domain

// Sender values for a ChatTurn
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Role values for a ModelMessage
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message exchanged in the conversation, tagged by sender.
// Turns are created by the client and round-tripped on every request; the
// backend never stores them.
type ChatTurn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ModelMessage is one role-tagged entry in the sequence sent to the
// language-model service. The first entry is always system-role, the last
// always user-role.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResponse is the response from a chat message. Reply carries the model
// text on success and a human-readable message on every error path.
type ChatResponse struct {
	Reply string `json:"reply"`
}
