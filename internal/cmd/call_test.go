package cmd

import (
	"testing"
	"time"
)

func TestNormalizeToolName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"find", "cpp_find"},
		{"cpp_find", "cpp_find"},
		{"parse", "cpp_parse"},
		{"cpp_parse", "cpp_parse"},
		{"attributes", "cpp_attributes"},
		{"nonexistent", "cpp_nonexistent"},
	}

	for _, tt := range tests {
		got := normalizeToolName(tt.input)
		if got != tt.want {
			t.Errorf("normalizeToolName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseToolList(t *testing.T) {
	got := parseToolList(" find, cpp_parse,,attributes ")
	want := []string{"cpp_find", "cpp_parse", "cpp_attributes"}
	if len(got) != len(want) {
		t.Fatalf("parseToolList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseToolList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := parseToolList(""); got != nil {
		t.Errorf("parseToolList(\"\") = %v, want nil", got)
	}
}

func TestParseDuration(t *testing.T) {
	for _, s := range []string{"", "0"} {
		if d, err := parseDuration(s); err != nil || d != 0 {
			t.Errorf("parseDuration(%q) = %v, %v", s, d, err)
		}
	}
	if d, err := parseDuration("30m"); err != nil || d != 30*time.Minute {
		t.Errorf("parseDuration(30m) = %v, %v", d, err)
	}
	if _, err := parseDuration("soon"); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestCallCmdRequiresToolOrFlag(t *testing.T) {
	if _, err := execute(t, "call"); err == nil {
		t.Error("call with no args should return error")
	}
}
