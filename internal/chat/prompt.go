package chat

import (
	"strings"

	"github.com/bkkguide/bkkguide/internal/llm"
	"github.com/bkkguide/bkkguide/internal/retrieval"
)

const contextSeparator = "\n\n"

const systemPromptTemplate = `You are a helpful travel assistant specializing in Bangkok, Thailand.

Use ONLY the following verified information about Bangkok attractions:
{{context}}

Guidelines:
- Base ALL recommendations on the provided context only
- Provide personalized travel recommendations based on the user's interests
- Be conversational and friendly
- Focus on practical advice and insider tips
- Include specific details like ratings, price ranges, and locations when available
- Consider the user's preferences from the conversation history
- If the context doesn't contain information to answer the question, politely suggest related attractions that are available

Keep responses concise but informative (under 200 words).`

// BuildContext joins document contents in retrieval order.
func BuildContext(docs []retrieval.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, contextSeparator)
}

// SystemPrompt returns the instruction message that grounds the model in
// the retrieved context.
func SystemPrompt(context string) string {
	return strings.Replace(systemPromptTemplate, "{{context}}", context, 1)
}

// BuildMessages assembles the system prompt, the prior turns and the current
// user message. Any role other than "user" is sent as assistant.
func BuildMessages(context string, history []Turn, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt(context)})
	for _, t := range history {
		role := llm.RoleAssistant
		if t.Role == RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}
