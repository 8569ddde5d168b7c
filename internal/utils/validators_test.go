package utils

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		in     string
		expect string
		ok     bool
	}{
		{"user@example.com", "user@example.com", true},
		{"  USER@Example.COM  ", "user@example.com", true},
		{"", "", false},
		{"no-at-sign", "", false},
		{"a@b", "", false},
		{"two@@example.com", "", false},
		{strings.Repeat("a", 250) + "@example.com", "", false},
	}

	for _, tc := range cases {
		got, ok := ValidateEmail(tc.in)
		if ok != tc.ok {
			t.Errorf("ValidateEmail(%q): ok=%v, ожидалось %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got != tc.expect {
			t.Errorf("ValidateEmail(%q) = %q, ожидалось %q", tc.in, got, tc.expect)
		}
	}
}

func TestRequiredString(t *testing.T) {
	if _, ok := RequiredString("   ", 10); ok {
		t.Error("строка из пробелов не должна проходить проверку")
	}
	if got, ok := RequiredString("  значение  ", 0); !ok || got != "значение" {
		t.Errorf("ожидалось обрезанное значение, получено %q (ok=%v)", got, ok)
	}
	if _, ok := RequiredString("слишком длинная строка", 5); ok {
		t.Error("строка длиннее лимита не должна проходить проверку")
	}
}
