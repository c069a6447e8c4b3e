package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyReply is returned when a model answered with no usable text.
var ErrEmptyReply = errors.New("empty reply")

// ParseWord decodes a model reply into a WordResult.
func ParseWord(reply string) (*WordResult, error) {
	var r WordResult
	if err := decode(reply, &r); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Word) == "" {
		return nil, fmt.Errorf("reply has no word: %q", reply)
	}
	return &r, nil
}

// ParseGrammar decodes a model reply into a GrammarResult.
func ParseGrammar(reply string) (*GrammarResult, error) {
	var r GrammarResult
	if err := decode(reply, &r); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Grammar) == "" {
		return nil, fmt.Errorf("reply has no grammar: %q", reply)
	}
	return &r, nil
}

func decode(reply string, v any) error {
	body := StripFences(reply)
	if body == "" {
		return ErrEmptyReply
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode reply: %w (reply: %s)", err, body)
	}
	return nil
}

// StripFences removes markdown code fences around a JSON reply. Models
// sometimes repeat the closing fence, so trailing fences are removed until
// none are left.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
