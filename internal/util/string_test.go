package util

import "testing"

func TestCacheKeyCollapsesWhitespaceRuns(t *testing.T) {
	cases := map[string]string{
		"Elon Musk":      "elon-musk",
		"  Elon   Musk ": "elon-musk",
		"elon\tmusk":     "elon-musk",
		"GRACE HOPPER":   "grace-hopper",
	}

	for input, want := range cases {
		if got := CacheKey(input); got != want {
			t.Fatalf("CacheKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \t b\n c  "); got != "a b c" {
		t.Fatalf("unexpected collapse result: %q", got)
	}
}

func TestCutRunesIsRuneBased(t *testing.T) {
	if got := CutRunes("héllo wörld", 5); got != "héllo" {
		t.Fatalf("expected rune-based cut, got %q", got)
	}
	if got := CutRunes("short", 30); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := CutRunes("카리나와 윈터", 3); got != "카리나" {
		t.Fatalf("expected three runes, got %q", got)
	}
}

func TestFirstToken(t *testing.T) {
	if got := FirstToken("grace hopper"); got != "grace" {
		t.Fatalf("unexpected first token %q", got)
	}
	if got := FirstToken("   "); got != "" {
		t.Fatalf("expected empty token for blank input, got %q", got)
	}
}

func TestClampInt(t *testing.T) {
	if v, clamped := ClampInt(5, 1, 10); v != 5 || clamped {
		t.Fatalf("in-range value should pass through, got %d (%v)", v, clamped)
	}
	if v, clamped := ClampInt(-3, 0, 99); v != 0 || !clamped {
		t.Fatalf("expected clamp to floor, got %d (%v)", v, clamped)
	}
	if v, clamped := ClampInt(200, 40, 150); v != 150 || !clamped {
		t.Fatalf("expected clamp to ceiling, got %d (%v)", v, clamped)
	}
}
