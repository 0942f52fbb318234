package format

import "testing"

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("Tea (green) 1.5kg - #1!", MarkdownV2)
	if err != nil {
		t.Fatal(err)
	}
	want := `Tea \(green\) 1\.5kg \- \#1\!`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownV1(t *testing.T) {
	got, _ := EscapeMarkdown("snake_case *bold*", MarkdownV1)
	if got != `snake\_case \*bold\*` {
		t.Fatalf("unexpected %q", got)
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestDeref(t *testing.T) {
	s := "desc"
	if DerefString(&s, "-") != "desc" || DerefString(nil, "-") != "-" {
		t.Fatal("DerefString")
	}
}
