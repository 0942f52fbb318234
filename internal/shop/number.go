package shop

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// IntSource yields uniform integers in [0, n).
type IntSource interface {
	IntN(n int) int
}

// NumberGenerator issues order numbers shaped LLNNNNDDMMYY: two uppercase
// letters, four digits in 1000-9999 and the zero-padded creation date.
type NumberGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand IntSource
}

// NewNumberGenerator uses the wall clock and a randomly seeded PCG source.
func NewNumberGenerator() *NumberGenerator {
	return NewNumberGeneratorWith(time.Now, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewNumberGeneratorWith injects the clock and random source.
func NewNumberGeneratorWith(now func() time.Time, src IntSource) *NumberGenerator {
	return &NumberGenerator{now: now, rand: src}
}

// Next returns a fresh order number.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	letters := []byte{byte('A' + g.rand.IntN(26)), byte('A' + g.rand.IntN(26))}
	digits := 1000 + g.rand.IntN(9000)
	return fmt.Sprintf("%s%04d%s", letters, digits, g.now().Format("020106"))
}

// Fallback returns the identifier used after a number collision: EM, four digits and the unix timestamp.
func (g *NumberGenerator) Fallback() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("EM%04d%d", 1000+g.rand.IntN(9000), g.now().Unix())
}
