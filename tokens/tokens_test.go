package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristic(t *testing.T) {
	var c Counter = Heuristic{}
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 0, c.Count("abc"))
	assert.Equal(t, 1, c.Count("abcd"))
	assert.Equal(t, 25, c.Count(strings.Repeat("x", 100)))
}

func TestCounterFunc(t *testing.T) {
	c := CounterFunc(func(s string) int { return len(strings.Fields(s)) })
	assert.Equal(t, 3, c.Count("one two three"))
}
