package shop

import (
	"regexp"
	"testing"
	"time"
)

var numberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{4}[0-9]{6}$`)

func TestNumberGeneratorFormat(t *testing.T) {
	g := NewNumberGeneratorWith(func() time.Time { return fixedNow }, &seqSource{vals: []int{0, 1, 234}})
	if got := g.Next(); got != "AB1234171026" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestNumberGeneratorPadsDate(t *testing.T) {
	at := time.Date(2027, 3, 5, 0, 0, 0, 0, time.UTC)
	g := NewNumberGeneratorWith(func() time.Time { return at }, &seqSource{vals: []int{25, 25, 8999}})
	if got := g.Next(); got != "ZZ9999050327" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestNumberGeneratorRandomShape(t *testing.T) {
	g := NewNumberGenerator()
	for i := 0; i < 200; i++ {
		n := g.Next()
		if !numberPattern.MatchString(n) {
			t.Fatalf("number %q does not match LLNNNNDDMMYY", n)
		}
		if n[2] == '0' {
			t.Fatalf("digits must be in 1000-9999, got %q", n)
		}
	}
}

func TestNumberGeneratorFallback(t *testing.T) {
	g := NewNumberGeneratorWith(func() time.Time { return fixedNow }, &seqSource{vals: []int{5}})
	want := "EM1005" + "1792229400"
	if got := g.Fallback(); got != want {
		t.Fatalf("fallback = %q, want %q", got, want)
	}
}
