package telegram

import (
	"strings"
	"testing"

	logx "campusbot/pkg/logx"
)

func TestSplitTextShortPassthrough(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %v", got)
	}
	if got := splitText("", 100); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty input: %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("line one\n", 5) + "line two"
	got := splitText(text, 30)

	for i, chunk := range got {
		if len([]rune(chunk)) > 30 {
			t.Fatalf("chunk %d over limit: %q", i, chunk)
		}
		if strings.HasSuffix(chunk, "\n") {
			t.Fatalf("chunk %d keeps trailing newline: %q", i, chunk)
		}
		if strings.HasPrefix(chunk, "\n") {
			t.Fatalf("chunk %d starts with newline: %q", i, chunk)
		}
	}

	// Nothing is lost apart from the boundary newlines.
	joined := strings.Join(got, "\n")
	if strings.ReplaceAll(joined, "\n", "") != strings.ReplaceAll(text, "\n", "") {
		t.Fatalf("content lost:\n%q\nvs\n%q", joined, text)
	}
}

func TestSplitTextHardBreakWithoutNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 95)
	got := splitText(text, 30)
	if len(got) != 4 {
		t.Fatalf("chunks = %d, want 4", len(got))
	}
	total := 0
	for _, chunk := range got {
		if len(chunk) > 30 {
			t.Fatalf("chunk over limit: %d", len(chunk))
		}
		total += len(chunk)
	}
	if total != 95 {
		t.Fatalf("lost characters: %d of 95", total)
	}
}

func TestSplitTextCountsRunes(t *testing.T) {
	t.Parallel()
	// Multibyte characters: the limit applies to runes, not bytes.
	text := strings.Repeat("п", 50)
	got := splitText(text, 30)
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want 2", len(got))
	}
	if n := len([]rune(got[0])); n != 30 {
		t.Fatalf("first chunk = %d runes, want 30", n)
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("empty token must be rejected")
	}
}
