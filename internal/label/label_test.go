package label

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Cash  ", "Cash"},
		{"Weekend   Trips", "Weekend Trips"},
		{"\tBank\n", "Bank"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	// Case is preserved; labels are display strings.
	if got := Normalize("piggy BANK"); got != "piggy BANK" {
		t.Fatalf("case mangled: %q", got)
	}

	// Over-long input is capped by runes, not bytes.
	long := strings.Repeat("é", MaxLen+10)
	got := Normalize(long)
	if len([]rune(got)) != MaxLen {
		t.Fatalf("rune cap failed: %d runes", len([]rune(got)))
	}
}

func TestValid(t *testing.T) {
	if Valid("") {
		t.Fatalf("empty label valid")
	}
	if !Valid("FD") {
		t.Fatalf("short label invalid")
	}
	if Valid(strings.Repeat("x", MaxLen+1)) {
		t.Fatalf("over-long label valid")
	}
}

func TestEqualAndContains(t *testing.T) {
	if !Equal("Cash", "cash") || Equal("Cash", "Card") {
		t.Fatalf("Equal broken")
	}
	list := []string{"Cash", "Bank"}
	if !Contains(list, "BANK") {
		t.Fatalf("Contains must be case-insensitive")
	}
	if Contains(list, "Card") {
		t.Fatalf("false positive")
	}
}
