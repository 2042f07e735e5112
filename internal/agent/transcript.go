package agent

import "github.com/marta/sleuth/internal/llm"

// Transcript is the ordered message history of one investigation run.
// It only ever grows: messages are appended, never mutated or removed,
// so every model call sees the full causal history of the run.
type Transcript struct {
	messages []llm.Message
}

// NewTranscript seeds the history with exactly two messages: the system
// prompt and the opening user prompt.
func NewTranscript(systemPrompt, userPrompt string) *Transcript {
	return &Transcript{messages: []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}}
}

// Append adds one message at the end of the history.
func (t *Transcript) Append(m llm.Message) {
	t.messages = append(t.messages, m)
}

// Snapshot returns the full ordered history for submission to the model.
// Callers must not mutate the returned slice.
func (t *Transcript) Snapshot() []llm.Message {
	return t.messages
}

// Len reports how many messages the history holds.
func (t *Transcript) Len() int {
	return len(t.messages)
}
