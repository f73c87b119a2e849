// Package catalog holds the irregular verb list and samples question sets from it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/irregulars/internal/model"
)

//go:embed verbs.txt
var embeddedVerbs string

// ErrInvalidArgument reports an out-of-range sample size.
var ErrInvalidArgument = errors.New("invalid argument")

// Catalog is an immutable verb list with a swappable random source.
type Catalog struct {
	verbs []model.Verb
	rnd   *rand.Rand
}

// New returns a Catalog over verbs drawing randomness from rnd.
func New(verbs []model.Verb, rnd *rand.Rand) *Catalog {
	owned := make([]model.Verb, len(verbs))
	copy(owned, verbs)
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Catalog{verbs: owned, rnd: rnd}
}

// Default returns the embedded catalog seeded with the current time.
func Default() (*Catalog, error) {
	verbs, err := Parse(strings.NewReader(embeddedVerbs))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded verbs: %w", err)
	}
	return New(verbs, nil), nil
}

// Len returns the number of verbs.
func (c *Catalog) Len() int {
	return len(c.verbs)
}

// All returns every verb in source order.
func (c *Catalog) All() []model.Verb {
	out := make([]model.Verb, len(c.verbs))
	copy(out, c.verbs)
	return out
}

// Sample returns n distinct verbs in random order.
func (c *Catalog) Sample(n int) ([]model.Verb, error) {
	if n <= 0 || n > len(c.verbs) {
		return nil, fmt.Errorf("sample size %d outside 1..%d: %w", n, len(c.verbs), ErrInvalidArgument)
	}
	idx := make([]int, len(c.verbs))
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: only the first n slots are settled.
	out := make([]model.Verb, n)
	for i := 0; i < n; i++ {
		j := i + c.rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = c.verbs[idx[i]]
	}
	return out, nil
}
