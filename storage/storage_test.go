package storage

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"sneaker.jpg":          "sneaker.jpg",
		"my photo (1).png":     "my_photo__1_.png",
		"../../etc/passwd":     ".._.._etc_passwd",
		"weird<>chars?.webp":   "weird__chars_.webp",
		"already_safe-01.jpeg": "already_safe-01.jpeg",
	}

	for input, want := range cases {
		if got := sanitizeFilename(input); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeFilenameLimitsLength(t *testing.T) {
	long := strings.Repeat("a", 200) + ".jpg"
	if got := sanitizeFilename(long); len(got) != 100 {
		t.Errorf("Expected 100-char filename, got %d chars", len(got))
	}
}

func TestSanitizeFilenameEmptyFallsBack(t *testing.T) {
	for _, input := range []string{"", ".", ".."} {
		if got := sanitizeFilename(input); got != "file" {
			t.Errorf("sanitizeFilename(%q) = %q, want file", input, got)
		}
	}
}
