package core

// Message is a single role-tagged entry of a model prompt.
type Message struct {
	Role     Role              `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewMessage builds a metadata-free message.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// File is a binary attachment (typically an image) passed alongside the prompt.
type File struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Response is what a model backend or a tool returns.
type Response struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
