// Package chat holds the ordered transcript of the SQL assistant
// conversation.
package chat

import "slices"

// Kind tags a transcript message.
type Kind int

const (
	User Kind = iota
	AI
	System
	Loading
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case AI:
		return "ai"
	case System:
		return "system"
	case Loading:
		return "loading"
	}
	return "unknown"
}

// Fixed transcript texts.
const (
	LoadingText    = "Generating response..."
	CodeHeader     = "Generated SQL Query:"
	UseQueryAction = "Use This Query"
)

// Message is one transcript entry. Code is set for AI messages that carry
// generated SQL in Text.
type Message struct {
	Kind Kind
	Text string
	Code bool
}

// Transcript is an append-only message list with at most one loading
// placeholder.
type Transcript struct {
	messages []Message
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []Message { return slices.Clone(t.messages) }

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.messages) }

// AddUser appends a user prompt.
func (t *Transcript) AddUser(text string) {
	t.messages = append(t.messages, Message{Kind: User, Text: text})
}

// AddAI removes the loading placeholder, if any, and appends an assistant
// reply. isCode marks the text as generated SQL.
func (t *Transcript) AddAI(text string, isCode bool) {
	t.removeLoading()
	t.messages = append(t.messages, Message{Kind: AI, Text: text, Code: isCode})
}

// AddSystem appends a system notice.
func (t *Transcript) AddSystem(text string) {
	t.messages = append(t.messages, Message{Kind: System, Text: text})
}

// AddLoading appends the loading placeholder unless one is already present.
func (t *Transcript) AddLoading() {
	if t.HasLoading() {
		return
	}
	t.messages = append(t.messages, Message{Kind: Loading, Text: LoadingText})
}

// DropLoading removes the loading placeholder without a reply, for a
// generation that was abandoned. It reports whether one was present.
func (t *Transcript) DropLoading() bool {
	if !t.HasLoading() {
		return false
	}
	t.removeLoading()
	return true
}

// HasLoading reports whether a loading placeholder is present.
func (t *Transcript) HasLoading() bool {
	for _, m := range t.messages {
		if m.Kind == Loading {
			return true
		}
	}
	return false
}

// LastCode returns the SQL of the most recent code message.
func (t *Transcript) LastCode() (string, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if m := t.messages[i]; m.Kind == AI && m.Code {
			return m.Text, true
		}
	}
	return "", false
}

// removeLoading builds a new slice so copies of the transcript held by
// earlier models keep their own messages.
func (t *Transcript) removeLoading() {
	out := make([]Message, 0, len(t.messages))
	for _, m := range t.messages {
		if m.Kind != Loading {
			out = append(out, m)
		}
	}
	t.messages = out
}
