package rag

import (
	"fmt"

	"portfolio-rag-backend/internal/models"
)

// noDocumentsNotice is stated explicitly when retrieval found nothing, so the
// model never sees a dangling "relevant documents" header.
const noDocumentsNotice = "No relevant documents were found for this question."

// BuildPrompt merges the persona's system instruction, the assembled context
// block and the conversation history into the message sequence sent to the
// model. The persona's system message is authoritative: any system messages
// supplied by the caller are dropped so they cannot override or duplicate it.
//
// History is expected to already be validated and truncated at the API
// boundary; this function does not re-check bounds.
func BuildPrompt(persona Persona, context string, history []models.Message) []models.Message {
	if context == "" {
		context = noDocumentsNotice
	}

	systemContent := fmt.Sprintf(
		"%s\n\nHere are relevant documents to help answer the user's question:\n%s",
		persona.SystemMessage, context,
	)

	prompt := make([]models.Message, 0, len(history)+1)
	prompt = append(prompt, models.Message{Role: models.RoleSystem, Content: systemContent})
	for _, msg := range history {
		if msg.Role == models.RoleSystem {
			continue
		}
		prompt = append(prompt, msg)
	}
	return prompt
}
