// Package tokens estimates prompt sizes for context budgeting.
package tokens

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates the number of tokens in a piece of text.
type Counter interface {
	Count(text string) int
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func(text string) int

// Count implements Counter.
func (f CounterFunc) Count(text string) int { return f(text) }

// Heuristic approximates one token per four bytes of text.
type Heuristic struct{}

// Count implements Counter.
func (Heuristic) Count(text string) int { return len(text) / 4 }

// DefaultEncoding is the BPE used by NewTiktoken when none is given.
const DefaultEncoding = "cl100k_base"

var (
	encMu    sync.Mutex
	encCache = map[string]*tiktoken.Tiktoken{}
)

// Tiktoken counts tokens with an OpenAI BPE encoding.
type Tiktoken struct {
	tk *tiktoken.Tiktoken
}

// NewTiktoken loads encoding (DefaultEncoding when empty). Encodings are loaded
// once per process and shared.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	encMu.Lock()
	defer encMu.Unlock()
	if tk, ok := encCache[encoding]; ok {
		return &Tiktoken{tk: tk}, nil
	}
	tk, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tiktoken encoding", goerr.V("encoding", encoding))
	}
	encCache[encoding] = tk
	return &Tiktoken{tk: tk}, nil
}

// Count implements Counter.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.tk.Encode(text, nil, nil))
}

var (
	_ Counter = Heuristic{}
	_ Counter = (*Tiktoken)(nil)
)
