package localfs

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeReplacesIllegalRuns(t *testing.T) {
	got := Sanitize(`Q3: "plan" <draft>/final?*`, 0)
	want := `Q3_ _plan_ _draft_final_`
	if got != want {
		t.Fatalf("Sanitize() = %q, want %q", got, want)
	}
}

func TestSanitizeHandlesNewlines(t *testing.T) {
	got := Sanitize("Invoices\r\nSummary: paid", 0)
	if got != "Invoices_Summary_ paid" {
		t.Fatalf("unexpected sanitize result: %q", got)
	}
}

func TestSanitizePropertyRandomInput(t *testing.T) {
	alphabet := []rune(`abcXYZ 01<>:"/\|?*` + "\n\r" + `éж_.-`)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(120)
		buf := make([]rune, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		maxLen := rng.Intn(60) + 1

		out := Sanitize(string(buf), maxLen)
		if strings.ContainsAny(out, "<>:\"/\\|?*\n\r") {
			t.Fatalf("sanitized output %q still contains illegal characters", out)
		}
		if utf8.RuneCountInString(out) > maxLen {
			t.Fatalf("sanitized output %q longer than %d", out, maxLen)
		}
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	if got := Truncate("жжжж", 2); got != "жж" {
		t.Fatalf("Truncate() = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate() = %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate() with no limit = %q", got)
	}
}

func TestCanonicalKeyFoldsCaseAndSeparators(t *testing.T) {
	cases := map[string]string{
		"Finance Reports":    "finance_reports",
		"finance_reports":    "finance_reports",
		"  FINANCE--reports": "finance_reports",
		"Счета_Фактуры":      "счета_фактуры",
		"___":                "",
	}
	for in, want := range cases {
		if got := canonicalKey(in); got != want {
			t.Fatalf("canonicalKey(%q) = %q, want %q", in, got, want)
		}
	}
}
