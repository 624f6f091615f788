// Package conversation holds the chat domain model: an ordered message log
// plus the active model identifier.
package conversation

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "User"
	SenderAssistant Sender = "AI"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message is a single turn. Treat it as immutable once appended.
type Message struct {
	Content string `json:"content"`
	Sender  Sender `json:"sender"`
}

// UserMessage builds a message sent by the user.
func UserMessage(content string) Message {
	return Message{Content: content, Sender: SenderUser}
}

// AssistantMessage builds a message produced by the backend.
func AssistantMessage(content string) Message {
	return Message{Content: content, Sender: SenderAssistant}
}

// Conversation is the append-only message log of a session.
// Insertion order is chronological order; messages are never reordered or removed.
type Conversation struct {
	Messages     []Message `json:"messages"`
	CurrentModel string    `json:"current_model"`
}

// New returns an empty conversation using model.
func New(model string) *Conversation {
	return &Conversation{
		Messages:     make([]Message, 0),
		CurrentModel: model,
	}
}

// Append adds msg at the end of the log. Content is not validated here.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Last returns the most recent message, or false when the log is empty.
func (c *Conversation) Last() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
