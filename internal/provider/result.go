package provider

import "github.com/heartmarshall/japanese-cards/internal/domain"

// WordResult is the JSON object a language model returns for a word.
type WordResult struct {
	Word          string          `json:"word"`
	Pronunciation string          `json:"pronunciation"`
	Definition    []string        `json:"definition"`
	Examples      []ExampleResult `json:"examples"`
}

// GrammarResult is the JSON object a language model returns for a grammar point.
type GrammarResult struct {
	Grammar      string          `json:"grammar"`
	Explanations []string        `json:"explanations"`
	Examples     []ExampleResult `json:"examples"`
}

// ExampleResult is one example sentence with its English translation.
type ExampleResult struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

// ToDomain converts the reply into a card.
func (r WordResult) ToDomain() *domain.VocabularyCard {
	return &domain.VocabularyCard{
		Headword:      r.Word,
		Pronunciation: r.Pronunciation,
		Definitions:   r.Definition,
		Examples:      mapExamples(r.Examples),
	}
}

// ToDomain converts the reply into a card.
func (r GrammarResult) ToDomain() *domain.GrammarCard {
	return &domain.GrammarCard{
		Grammar:      r.Grammar,
		Explanations: r.Explanations,
		Examples:     mapExamples(r.Examples),
	}
}

func mapExamples(in []ExampleResult) []domain.ExamplePair {
	out := make([]domain.ExamplePair, 0, len(in))
	for _, e := range in {
		out = append(out, domain.ExamplePair{Source: e.Japanese, Target: e.English})
	}
	return out
}
