package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// Command names as presented to the user.
const (
	CommandVocabulary  = "Generate Vocabulary Card"
	CommandGrammar     = "Generate Grammar Card"
	CommandGrammarPage = "Generate Grammar Card for Page"
	CommandTranslate   = "Translate Entry"
)

// Handler runs one command against the entry or page carried by ctx.
type Handler func(ctx context.Context) (*Result, error)

// Command is a registered zero-argument trigger.
type Command struct {
	Name    string
	Slug    string
	Handler Handler
}

// Registry maps command names and slugs to handlers.
type Registry struct {
	commands []Command
	index    map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Commands returns the registry holding every card command of s.
func (s *Service) Commands() *Registry {
	r := NewRegistry()
	r.MustRegister(CommandVocabulary, s.GenerateVocabularyCard)
	r.MustRegister(CommandGrammar, s.GenerateGrammarCard)
	r.MustRegister(CommandGrammarPage, s.GenerateGrammarCardsForPage)
	r.MustRegister(CommandTranslate, s.TranslateEntry)
	return r
}

// Register adds a command. Both its name and slug must be unused.
func (r *Registry) Register(name string, h Handler) error {
	if strings.TrimSpace(name) == "" || h == nil {
		return domain.NewValidationError("command", "name and handler are required")
	}
	slug := Slug(name)
	for _, key := range []string{name, slug} {
		if _, ok := r.index[key]; ok {
			return fmt.Errorf("command %q: %w", key, domain.ErrAlreadyExists)
		}
	}
	r.commands = append(r.commands, Command{Name: name, Slug: slug, Handler: h})
	r.index[name] = len(r.commands) - 1
	r.index[slug] = len(r.commands) - 1
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Names returns the command names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.commands))
	for i, c := range r.commands {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a command by name or slug.
func (r *Registry) Lookup(nameOrSlug string) (Command, bool) {
	i, ok := r.index[nameOrSlug]
	if !ok {
		i, ok = r.index[Slug(nameOrSlug)]
	}
	if !ok {
		return Command{}, false
	}
	return r.commands[i], true
}

// Run executes the named command.
func (r *Registry) Run(ctx context.Context, nameOrSlug string) (*Result, error) {
	cmd, ok := r.Lookup(nameOrSlug)
	if !ok {
		return nil, fmt.Errorf("command %q: %w", nameOrSlug, domain.ErrNotFound)
	}
	return cmd.Handler(ctx)
}

// Slug turns a command name into its URL form:
// "Generate Grammar Card for Page" -> "generate-grammar-card-for-page".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
