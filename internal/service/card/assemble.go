package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// rootProperties are set on every card root on top of the source entry's own.
var rootProperties = domain.Properties{
	"heading":         "3",
	"backgroundColor": "pink",
}

const (
	explanationHeader = "**Explanation:**"
	examplesHeader    = "**Examples:**"
)

// AssembleInput is everything the Assembler needs for one entry.
type AssembleInput struct {
	Kind          domain.CardKind
	Text          string // content-sanitized entry text
	Tag           string
	Properties    domain.Properties
	GenerationKey string
	SpeechKey     string
}

// Assembler calls the generation and speech services and builds a BlockPlan.
// It never touches the document.
type Assembler struct {
	log        *slog.Logger
	gen        generator
	speech     synthesizer
	assets     assetStore
	linkPrefix string
}

// NewAssembler creates an Assembler. linkPrefix is prepended to asset file
// names in reference leaves.
func NewAssembler(log *slog.Logger, gen generator, speech synthesizer, assets assetStore, linkPrefix string) *Assembler {
	return &Assembler{
		log:        log,
		gen:        gen,
		speech:     speech,
		assets:     assets,
		linkPrefix: linkPrefix,
	}
}

// Assemble runs generation, then synthesis of the single audio clip, and
// returns the complete plan. The first failing stage aborts the rest.
func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) (*domain.BlockPlan, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, domain.NewValidationError("text", "required")
	}

	switch in.Kind {
	case domain.CardKindVocabulary:
		card, err := a.gen.DefineWord(ctx, in.Text, in.GenerationKey)
		if err != nil {
			return nil, domain.NewGenerationError("define word", err)
		}
		if card == nil {
			return nil, domain.NewGenerationError("define word", errors.New("empty result"))
		}
		asset, err := a.audio(ctx, card.Headword, in.SpeechKey)
		if err != nil {
			return nil, err
		}
		return a.vocabularyPlan(card, asset, in), nil

	case domain.CardKindGrammar:
		card, err := a.gen.DefineGrammar(ctx, in.Text, in.GenerationKey)
		if err != nil {
			return nil, domain.NewGenerationError("define grammar", err)
		}
		if card == nil {
			return nil, domain.NewGenerationError("define grammar", errors.New("empty result"))
		}
		var asset *domain.AudioAsset
		if len(card.Examples) > 0 {
			asset, err = a.audio(ctx, card.Examples[0].Source, in.SpeechKey)
			if err != nil {
				return nil, err
			}
		}
		return a.grammarPlan(card, asset, in), nil

	default:
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown card kind %q", in.Kind))
	}
}

// audio synthesizes text and saves it under its AssetKey.
// Text that sanitizes to an empty key yields no asset.
func (a *Assembler) audio(ctx context.Context, text, apiKey string) (*domain.AudioAsset, error) {
	key := domain.AssetKey(text)
	if key == "" {
		a.log.DebugContext(ctx, "no audio key, skipping synthesis", slog.String("text", text))
		return nil, nil
	}

	data, err := a.speech.Synthesize(ctx, domain.Sanitize(text, domain.SanitizeContent), apiKey)
	if err != nil {
		return nil, domain.NewAudioError("synthesize", err)
	}
	if len(data) == 0 {
		return nil, domain.NewAudioError("synthesize", errors.New("empty audio"))
	}

	asset := &domain.AudioAsset{Key: key, Bytes: data}
	if err := a.assets.Save(ctx, key, data); err != nil {
		return nil, domain.NewMutationError("save asset", err)
	}
	return asset, nil
}

func (a *Assembler) vocabularyPlan(card *domain.VocabularyCard, asset *domain.AudioAsset, in AssembleInput) *domain.BlockPlan {
	var children []domain.PlanNode
	if card.Pronunciation != "" {
		children = append(children, domain.Leaf("*"+card.Pronunciation+"*"))
	}
	for _, d := range card.Definitions {
		children = append(children, domain.Leaf(d))
	}
	if asset != nil {
		children = append(children, domain.Leaf(a.assetLink(asset)))
	}
	children = append(children, domain.PlanNode{
		Text:     examplesHeader,
		Children: exampleLeaves(card.Examples, nil),
	})

	return &domain.BlockPlan{
		Kind:  domain.CardKindVocabulary,
		Root:  rootNode(card.Headword, in, children),
		Audio: asset,
	}
}

func (a *Assembler) grammarPlan(card *domain.GrammarCard, asset *domain.AudioAsset, in AssembleInput) *domain.BlockPlan {
	explanations := make([]domain.PlanNode, 0, len(card.Explanations))
	for _, e := range card.Explanations {
		explanations = append(explanations, domain.Leaf(e))
	}

	var link *domain.PlanNode
	if asset != nil {
		leaf := domain.Leaf(a.assetLink(asset))
		link = &leaf
	}

	return &domain.BlockPlan{
		Kind: domain.CardKindGrammar,
		Root: rootNode(card.Grammar, in, []domain.PlanNode{
			{Text: explanationHeader, Children: explanations},
			{Text: examplesHeader, Children: exampleLeaves(card.Examples, link)},
		}),
		Audio: asset,
	}
}

// assetLink renders the reference leaf for an audio asset.
func (a *Assembler) assetLink(asset *domain.AudioAsset) string {
	name := asset.FileName()
	return fmt.Sprintf("![%s](%s%s)", name, a.linkPrefix, name)
}

func rootNode(title string, in AssembleInput, children []domain.PlanNode) domain.PlanNode {
	text := title + " " + domain.CardMarker
	if tag := strings.TrimSpace(in.Tag); tag != "" {
		text += " " + tag
	}
	return domain.PlanNode{
		Text:       text,
		Properties: in.Properties.Merge(rootProperties),
		Children:   children,
	}
}

// exampleLeaves emits source then target for each example. afterFirst, when
// set, follows the first example's pair.
func exampleLeaves(examples []domain.ExamplePair, afterFirst *domain.PlanNode) []domain.PlanNode {
	out := make([]domain.PlanNode, 0, len(examples)*2+1)
	for i, ex := range examples {
		out = append(out, domain.Leaf(ex.Source), domain.Leaf(ex.Target))
		if i == 0 && afterFirst != nil {
			out = append(out, *afterFirst)
		}
	}
	return out
}
