// Package manifest checks data files against a list of recorded SHA1 hashes.
//
// A manifest is a text file with one "<sha1-hex> <relative-path>" entry per
// line. A data directory holds exactly one manifest, a *.txt file next to
// the files it lists.
package manifest

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrManifest reports a missing, ambiguous or malformed manifest
	ErrManifest = errors.New("invalid manifest")

	// ErrHashMismatch reports a file whose contents do not match its hash
	ErrHashMismatch = errors.New("hash mismatch")
)

// Entry is one manifest line
type Entry struct {
	Hash string
	Path string
}

// MismatchError describes a file that failed validation
type MismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: computed hash %s is not the recorded %s", e.Path, e.Actual, e.Expected)
}

func (e *MismatchError) Unwrap() error { return ErrHashMismatch }

// Find returns the path of the manifest in dir. It fails unless exactly one
// *.txt file exists there.
func Find(dir string) (string, error) {
	candidates, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", err
	}

	var files []string
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			return "", err
		}
		if info.Mode().IsRegular() {
			files = append(files, c)
		}
	}
	sort.Strings(files)

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no *.txt manifest in %s: %w", dir, ErrManifest)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("%d candidate manifests in %s (%s): %w",
			len(files), dir, strings.Join(files, ", "), ErrManifest)
	}
}

// Parse reads manifest entries from r. Blank lines and lines starting with
// '#' are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		// The path runs to the end of the line and may contain spaces. A
		// leading '*' marks sha1sum binary mode.
		sum, path := text, ""
		if i := strings.IndexAny(text, " \t"); i >= 0 {
			sum = text[:i]
			path = strings.TrimPrefix(strings.TrimLeft(text[i:], " \t"), "*")
		}
		if path == "" {
			return nil, fmt.Errorf("line %d: want \"<hash> <path>\", got %q: %w", line, text, ErrManifest)
		}
		hash := strings.ToLower(sum)
		if b, err := hex.DecodeString(hash); err != nil || len(b) != sha1.Size {
			return nil, fmt.Errorf("line %d: %q is not a SHA1 hex digest: %w", line, sum, ErrManifest)
		}
		entries = append(entries, Entry{Hash: hash, Path: path})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FileHash returns the SHA1 hex digest of the file at path
func FileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha1.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate checks every file listed in the manifest of dir against its own
// recorded hash. The first mismatch is returned as a *MismatchError.
func Validate(dir string) error {
	path, err := Find(dir)
	if err != nil {
		return err
	}
	_, err = ValidateManifest(path)
	return err
}

// ValidateManifest checks the files listed in the manifest at path, resolved
// relative to the manifest's directory, and returns the validated entries.
func ValidateManifest(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s lists no files: %w", path, ErrManifest)
	}

	base := filepath.Dir(path)
	for _, e := range entries {
		actual, err := FileHash(filepath.Join(base, filepath.FromSlash(e.Path)))
		if err != nil {
			return nil, err
		}
		if actual != e.Hash {
			return nil, &MismatchError{Path: e.Path, Expected: e.Hash, Actual: actual}
		}
	}
	return entries, nil
}
