package llm

import "encoding/json"

// Tokens are estimated at four characters each. Real tokenizers differ,
// but the agent only surfaces these numbers in verbose traces, where a
// rough context figure is all that is needed.
const charsPerToken = 4

// Framing overhead added around each part of a request, in tokens.
const (
	messageFraming    = 4  // role and delimiters per message
	toolCallFraming   = 4  // id, type, and function wrapper per call
	toolResultFraming = 2  // correlation with the originating call
	toolSchemaFraming = 10 // name, description, and schema wrapper per tool
)

// EstimateTokens returns a rough token count for a string, rounding up.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// EstimateMessagesTokens estimates the context occupied by a transcript.
func EstimateMessagesTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += estimateMessage(m)
	}
	return total
}

func estimateMessage(m Message) int {
	tokens := messageFraming + EstimateTokens(m.Content)
	for _, tc := range m.ToolCalls {
		tokens += toolCallFraming + EstimateTokens(tc.Name) + EstimateTokens(string(tc.Arguments))
	}
	if m.ToolCallID != "" {
		tokens += toolResultFraming + EstimateTokens(m.ToolCallID)
	}
	return tokens
}

// EstimateToolsTokens estimates the context occupied by tool contracts.
// Schemas are serialized into every request and count against the window.
func EstimateToolsTokens(tools []Tool) int {
	total := 0
	for _, t := range tools {
		total += toolSchemaFraming + EstimateTokens(t.Name) + EstimateTokens(t.Description)
		if schema, err := json.Marshal(t.Parameters); err == nil {
			total += EstimateTokens(string(schema))
		}
	}
	return total
}
