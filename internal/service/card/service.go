// Package card turns document entries into vocabulary and grammar cards.
//
// A command reads the current entry (or page), checks the required
// credentials, asks a generation service for the card content, synthesizes
// one audio clip, and writes the card back into the document. Any failure
// after the entry was touched restores its text exactly.
package card

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

// documentStore is the block tree the cards are written into.
// Removing an entry removes its whole subtree.
type documentStore interface {
	CurrentEntry(ctx context.Context) (*domain.SourceEntry, error)
	PageEntries(ctx context.Context, pageID uuid.UUID) ([]domain.SourceEntry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, text string) error
	InsertEntry(ctx context.Context, targetID uuid.UUID, text string, opts domain.InsertOptions) (uuid.UUID, error)
	RemoveEntry(ctx context.Context, id uuid.UUID) error
	EntryProperties(ctx context.Context, id uuid.UUID) (domain.Properties, error)
}

type generator interface {
	DefineWord(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error)
	DefineGrammar(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, text, apiKey string) ([]byte, error)
}

type assetStore interface {
	Save(ctx context.Context, key string, data []byte) error
}

type notifier interface {
	Notify(ctx context.Context, message string)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Policy is the card layout and insertion configuration, fixed at startup.
type Policy struct {
	VocabTag      string
	GrammarTag    string
	Strategy      domain.Strategy
	LoadingSuffix string
	LinkPrefix    string
	// GenerationKey names the credential the generation provider needs.
	GenerationKey string
}

func (p Policy) tagFor(kind domain.CardKind) string {
	if kind == domain.CardKindGrammar {
		return p.GrammarTag
	}
	return p.VocabTag
}

// Service implements the card commands.
type Service struct {
	log       *slog.Logger
	docs      documentStore
	notify    notifier
	gate      *Gate
	assembler *Assembler
	mutator   *Mutator
	policy    Policy
}

// NewService creates a card Service. credentials maps setting names to their
// values; it is read by the credential gate only.
func NewService(
	logger *slog.Logger,
	docs documentStore,
	gen generator,
	speech synthesizer,
	assets assetStore,
	notify notifier,
	credentials map[string]string,
	policy Policy,
) *Service {
	log := logger.With("service", "card")
	if policy.Strategy == "" {
		policy.Strategy = domain.StrategySiblingBefore
	}
	return &Service{
		log:       log,
		docs:      docs,
		notify:    notify,
		gate:      NewGate(credentials),
		assembler: NewAssembler(log, gen, speech, assets, policy.LinkPrefix),
		mutator:   NewMutator(docs),
		policy:    policy,
	}
}
