package helpers

import "testing"

func TestStripTags(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"a &amp; b", "a & b"},
		{"<style>p{color:red}</style>text", "text"},
	}

	for _, tt := range tests {
		result := StripTags(tt.input)
		if result != tt.expected {
			t.Errorf("StripTags(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"<p>One</p><p>Two   words</p>", "One\nTwo words"},
		{"<p>unclosed <b>bold", "unclosed bold"},
		{"line<br>break", "line\nbreak"},
		{"<script>var x = 1;</script>kept", "kept"},
		{"a &lt; b", "a < b"},
	}

	for _, tt := range tests {
		result := PlainText(tt.input)
		if result != tt.expected {
			t.Errorf("PlainText(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestCommentText(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"plain", 0, "plain"},
		{"a -- b", 0, "a - - b"},
		{"a --- b", 0, "a - - - b"},
		{"ends with -", 0, "ends with "},
		{"  spaced\n text ", 0, "spaced text"},
		{"this is a long comment", 10, "this is..."},
	}

	for _, tt := range tests {
		result := CommentText(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("CommentText(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateText("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
}
