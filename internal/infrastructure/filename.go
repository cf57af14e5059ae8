package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameLength = 180

// SanitizeFilename turns a video title into a safe file name stem.
// Path separators and characters reserved on Windows are replaced, control
// characters dropped and whitespace collapsed.
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			r = '_'
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			if lastSpace {
				continue
			}
			r = ' '
		}
		lastSpace = r == ' '
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), " .")
	if len(name) > maxFilenameLength {
		name = truncateRunes(name, maxFilenameLength)
	}
	if name == "" {
		return "audio"
	}
	return name
}

// truncateRunes cuts s to at most n bytes without splitting a rune
func truncateRunes(s string, n int) string {
	end := 0
	for i, r := range s {
		size := utf8.RuneLen(r)
		if i+size > n {
			break
		}
		end = i + size
	}
	return strings.TrimRight(s[:end], " .")
}

// createUnique creates folder/name, or "stem (n).ext" when that name is
// taken, and never opens an existing file.
func createUnique(folder, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; ; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(folder, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
}
