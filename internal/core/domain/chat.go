package domain

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one message of a conversation turn.
type ChatMessage struct {
	Role    Role
	Content string

	// Ephemeral messages only live for the current generation and are
	// never written to the conversation history.
	Ephemeral bool
}

// ChatContext is the model input assembled for one turn.
type ChatContext struct {
	Messages []ChatMessage
}

// Add appends a message.
func (c *ChatContext) Add(msg ChatMessage) {
	c.Messages = append(c.Messages, msg)
}

// History returns the messages that should be persisted.
func (c *ChatContext) History() []ChatMessage {
	history := make([]ChatMessage, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Ephemeral {
			continue
		}
		history = append(history, m)
	}
	return history
}
