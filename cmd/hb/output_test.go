package main

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"longer than limit", "hello world", 8, "hello..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"max-nodes", "max-nodes"},
		{"max_nodes", "max-nodes"},
		{"MAX_NODES", "max-nodes"},
		{"Frame-Rate", "frame-rate"},
		{"theme", "theme"},
	}
	for _, tt := range tests {
		if got := normalizeKey(tt.key); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSummarizeIssues(t *testing.T) {
	tests := []struct {
		name   string
		issues []string
		want   string
	}{
		{"single", []string{"node 0: empty id"}, "node 0: empty id"},
		{"joined", []string{"a", "b"}, "a; b"},
		{"capped", []string{"a", "b", "c", "d", "e", "f", "g"}, "a; b; c; d; e; and 2 more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarizeIssues(tt.issues); got != tt.want {
				t.Errorf("summarizeIssues(%v) = %q, want %q", tt.issues, got, tt.want)
			}
		})
	}
}
