package provider

import "fmt"

// WordPrompt asks for a dictionary entry of a Japanese word.
func WordPrompt(word string) string {
	return fmt.Sprintf(`You are a Japanese-English dictionary for language learners.

Define the Japanese word "%s".

Output ONLY a valid JSON object matching this exact schema:
{
  "word": "<the word in its dictionary form, kanji if it has any>",
  "pronunciation": "<reading in hiragana>",
  "definition": ["<short English definition>", "..."],
  "examples": [
    {"japanese": "<natural example sentence>", "english": "<English translation>"}
  ]
}

Rules:
- 1-3 definitions, most common meaning first
- 2-3 example sentences at JLPT N4-N3 level
- Output ONLY the JSON, no markdown, no explanations`, word)
}

// GrammarPrompt asks for an explanation of a Japanese grammar point.
func GrammarPrompt(grammar string) string {
	return fmt.Sprintf(`You are a Japanese grammar teacher writing flashcards for English speakers.

Explain the Japanese grammar point "%s".

Output ONLY a valid JSON object matching this exact schema:
{
  "grammar": "<the grammar point, e.g. 〜ながら>",
  "explanations": ["<one point about meaning, form or usage>", "..."],
  "examples": [
    {"japanese": "<natural example sentence>", "english": "<English translation>"}
  ]
}

Rules:
- 2-4 short explanations covering meaning, how to attach it, and nuance
- 2-3 example sentences, simplest first
- Output ONLY the JSON, no markdown, no explanations`, grammar)
}
