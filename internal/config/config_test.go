package config

import (
	"reflect"
	"testing"
)

func TestSplitEmails(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a@x.com", []string{"a@x.com"}},
		{" A@X.com , b@y.com ,, ", []string{"a@x.com", "b@y.com"}},
		{",", nil},
	}
	for _, tc := range tests {
		if got := splitEmails(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitEmails(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := Config{AdminEmails: splitEmails("admin@example.com, second@example.com")}
	for email, want := range map[string]bool{
		"admin@example.com":    true,
		"ADMIN@example.COM":    true,
		"  admin@example.com ": true,
		"second@example.com":   true,
		"other@example.com":    false,
		"":                     false,
	} {
		if got := cfg.IsAdminEmail(email); got != want {
			t.Errorf("IsAdminEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestOptionalHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "value")
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_BAD_INT", "not-a-number")

	if got := optional("CFG_TEST_STR", "fallback"); got != "value" {
		t.Errorf("optional set = %q", got)
	}
	if got := optional("CFG_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("optional unset = %q", got)
	}
	if got := optionalInt("CFG_TEST_INT", 7); got != 42 {
		t.Errorf("optionalInt set = %d", got)
	}
	if got := optionalInt("CFG_TEST_UNSET", 7); got != 7 {
		t.Errorf("optionalInt unset = %d", got)
	}
	if got := optionalInt("CFG_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("optionalInt invalid = %d, want default", got)
	}
}
