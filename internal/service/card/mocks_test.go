package card

import (
	"context"
	"sync"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// ---------------------------------------------------------------------------
// generatorMock
// ---------------------------------------------------------------------------

var _ generator = &generatorMock{}

type generatorMock struct {
	DefineWordFunc    func(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error)
	DefineGrammarFunc func(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error)

	calls struct {
		DefineWord    []struct{ Text, APIKey string }
		DefineGrammar []struct{ Text, APIKey string }
	}
	lockDefineWord    sync.RWMutex
	lockDefineGrammar sync.RWMutex
}

func (mock *generatorMock) DefineWord(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error) {
	if mock.DefineWordFunc == nil {
		panic("generatorMock.DefineWordFunc: method is nil but generator.DefineWord was just called")
	}
	mock.lockDefineWord.Lock()
	mock.calls.DefineWord = append(mock.calls.DefineWord, struct{ Text, APIKey string }{text, apiKey})
	mock.lockDefineWord.Unlock()
	return mock.DefineWordFunc(ctx, text, apiKey)
}

func (mock *generatorMock) DefineWordCalls() []struct{ Text, APIKey string } {
	mock.lockDefineWord.RLock()
	defer mock.lockDefineWord.RUnlock()
	return mock.calls.DefineWord
}

func (mock *generatorMock) DefineGrammar(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error) {
	if mock.DefineGrammarFunc == nil {
		panic("generatorMock.DefineGrammarFunc: method is nil but generator.DefineGrammar was just called")
	}
	mock.lockDefineGrammar.Lock()
	mock.calls.DefineGrammar = append(mock.calls.DefineGrammar, struct{ Text, APIKey string }{text, apiKey})
	mock.lockDefineGrammar.Unlock()
	return mock.DefineGrammarFunc(ctx, text, apiKey)
}

func (mock *generatorMock) DefineGrammarCalls() []struct{ Text, APIKey string } {
	mock.lockDefineGrammar.RLock()
	defer mock.lockDefineGrammar.RUnlock()
	return mock.calls.DefineGrammar
}

// ---------------------------------------------------------------------------
// synthesizerMock
// ---------------------------------------------------------------------------

var _ synthesizer = &synthesizerMock{}

type synthesizerMock struct {
	SynthesizeFunc func(ctx context.Context, text, apiKey string) ([]byte, error)

	calls struct {
		Synthesize []struct{ Text, APIKey string }
	}
	lockSynthesize sync.RWMutex
}

func (mock *synthesizerMock) Synthesize(ctx context.Context, text, apiKey string) ([]byte, error) {
	if mock.SynthesizeFunc == nil {
		panic("synthesizerMock.SynthesizeFunc: method is nil but synthesizer.Synthesize was just called")
	}
	mock.lockSynthesize.Lock()
	mock.calls.Synthesize = append(mock.calls.Synthesize, struct{ Text, APIKey string }{text, apiKey})
	mock.lockSynthesize.Unlock()
	return mock.SynthesizeFunc(ctx, text, apiKey)
}

func (mock *synthesizerMock) SynthesizeCalls() []struct{ Text, APIKey string } {
	mock.lockSynthesize.RLock()
	defer mock.lockSynthesize.RUnlock()
	return mock.calls.Synthesize
}

// ---------------------------------------------------------------------------
// assetStoreMock
// ---------------------------------------------------------------------------

var _ assetStore = &assetStoreMock{}

type assetStoreMock struct {
	SaveFunc func(ctx context.Context, key string, data []byte) error

	calls struct {
		Save []struct {
			Key  string
			Data []byte
		}
	}
	lockSave sync.RWMutex
}

func (mock *assetStoreMock) Save(ctx context.Context, key string, data []byte) error {
	if mock.SaveFunc == nil {
		panic("assetStoreMock.SaveFunc: method is nil but assetStore.Save was just called")
	}
	callInfo := struct {
		Key  string
		Data []byte
	}{Key: key, Data: data}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, callInfo)
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, key, data)
}

func (mock *assetStoreMock) SaveCalls() []struct {
	Key  string
	Data []byte
} {
	mock.lockSave.RLock()
	defer mock.lockSave.RUnlock()
	return mock.calls.Save
}

// ---------------------------------------------------------------------------
// notifierMock
// ---------------------------------------------------------------------------

var _ notifier = &notifierMock{}

// notifierMock records every message; it needs no Func.
type notifierMock struct {
	mu       sync.Mutex
	messages []string
}

func (mock *notifierMock) Notify(_ context.Context, message string) {
	mock.mu.Lock()
	mock.messages = append(mock.messages, message)
	mock.mu.Unlock()
}

func (mock *notifierMock) Messages() []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	out := make([]string, len(mock.messages))
	copy(out, mock.messages)
	return out
}
