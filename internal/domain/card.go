package domain

// CardKind selects which generation call and plan layout a card uses.
type CardKind string

const (
	CardKindVocabulary CardKind = "vocabulary"
	CardKindGrammar    CardKind = "grammar"
)

// ExamplePair is one example sentence and its translation.
type ExamplePair struct {
	Source string
	Target string
}

// VocabularyCard describes a single word.
type VocabularyCard struct {
	Headword      string
	Pronunciation string
	Definitions   []string
	Examples      []ExamplePair
}

// GrammarCard describes a grammar point.
type GrammarCard struct {
	Grammar      string
	Explanations []string
	Examples     []ExamplePair
}

// AudioAsset is synthesized speech stored under a sanitized key.
type AudioAsset struct {
	Key   string
	Bytes []byte
}

// FileName is the on-disk name of the asset.
func (a AudioAsset) FileName() string {
	return a.Key + ".mp3"
}
