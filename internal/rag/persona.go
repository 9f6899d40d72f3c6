// Package rag contains the query-time building blocks of the retrieval
// pipeline: the chat persona, context assembly from retrieved chunks, and
// prompt construction.
package rag

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// PersonaTraits describe the tone the persona answers with.
type PersonaTraits struct {
	Expertise []string `json:"expertise"`
	Tone      string   `json:"tone"`
	Style     string   `json:"style"`
}

// Persona is the fixed system-level instruction applied to every generation
// call. It is loaded once at startup and shared read-only across all queries.
type Persona struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	SystemMessage string        `json:"systemMessage"`
	Traits        PersonaTraits `json:"traits"`
}

// defaultPersona is used when no persona file is configured or readable.
var defaultPersona = Persona{
	Name:        "Portfolio Assistant",
	Description: "Answers questions about the site owner's background, projects and skills.",
	SystemMessage: "You are a helpful assistant for a personal portfolio website. " +
		"Answer questions about the site owner's background, projects, and skills " +
		"using the provided documents. Be concise and friendly. If the documents " +
		"do not contain the answer, say so instead of guessing.",
	Traits: PersonaTraits{
		Expertise: []string{"software engineering", "portfolio projects"},
		Tone:      "friendly",
		Style:     "concise",
	},
}

// LoadPersona reads the persona configuration from the given JSON file. A
// missing file falls back to the built-in default with a warning, so a fresh
// checkout still serves answers; a malformed file is an error.
func LoadPersona(path string) (Persona, error) {
	if path == "" {
		return defaultPersona, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: persona file %s not found, using built-in default persona.", path)
			return defaultPersona, nil
		}
		return Persona{}, fmt.Errorf("failed to read persona file %s: %w", path, err)
	}

	var p Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("failed to parse persona file %s: %w", path, err)
	}
	if p.SystemMessage == "" {
		return Persona{}, fmt.Errorf("persona file %s has an empty systemMessage", path)
	}
	return p, nil
}
