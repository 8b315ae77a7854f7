package openai

import (
	"fmt"
	"strings"

	"edu-backend/internal/llm"
)

const questionSystemPrompt = `You are a question author for an education platform.
Write exam questions grounded strictly in the provided source material.
Respond with a single JSON object: {"questions": [...]}.
Each question has: "prompt", "type" ("mcq" or "open"), "difficulty" ("easy", "medium" or "hard"),
"choices" (array of 4 strings, mcq only), "answer_key" (array of correct choices or the expected answer),
"explanation", "bloom_level" (one of "remember", "understand", "apply", "analyze", "evaluate", "create"),
"estimated_minutes" (integer). Do not include any text outside the JSON object.`

func buildQuestionPrompt(input llm.GenerateInput) []chatMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", input.TopicTitle)
	if input.Language != "" {
		fmt.Fprintf(&b, "Write the questions in %s.\n\n", input.Language)
	}
	fmt.Fprintf(&b, "Produce exactly:\n")
	fmt.Fprintf(&b, "- %d easy questions (any type)\n", input.EasyCount)
	fmt.Fprintf(&b, "- %d medium questions (any type)\n", input.MediumCount)
	fmt.Fprintf(&b, "- %d hard questions of type mcq\n", input.HardMCQCount)
	fmt.Fprintf(&b, "- %d hard questions of type open\n", input.HardCount)
	b.WriteString("\nSource material:\n")
	b.WriteString(input.ContextText)

	return []chatMessage{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func buildFixPrompt(raw string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: "You repair malformed JSON. Return only the corrected JSON object, nothing else."},
		{Role: "user", Content: "Fix this JSON so it parses:\n" + raw},
	}
}
