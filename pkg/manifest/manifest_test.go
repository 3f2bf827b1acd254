package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA1 of "hello\n" and "world\n"
const (
	helloSHA = "f572d396fae9206628714fb2ce00f72e94f2258f"
	worldSHA = "9591818c07e900db7e1e0bc4b884c945e6a61b24"
)

// writeFiles creates files in dir from a name to content map
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.bin": "hello\n"})

	got, err := FileHash(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, helloSHA, got)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.bin":        "hello\n",
		"sub/b.bin":    "world\n",
		"hashes.txt":   "# data hashes\n" + helloSHA + " a.bin\n\n" + strings.ToUpper(worldSHA) + " sub/b.bin\n",
		"unlisted.nii": "ignored",
	})

	assert.NoError(t, Validate(dir))

	entries, err := ValidateManifest(filepath.Join(dir, "hashes.txt"))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{helloSHA, "a.bin"}, {worldSHA, "sub/b.bin"}}, entries)
}

func TestValidateMismatch(t *testing.T) {
	dir := t.TempDir()
	// Both hashes are in the manifest but assigned to the wrong files
	writeFiles(t, dir, map[string]string{
		"a.bin":      "hello\n",
		"b.bin":      "world\n",
		"hashes.txt": worldSHA + " a.bin\n" + helloSHA + " b.bin\n",
	})

	err := Validate(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHashMismatch))

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "a.bin", mismatch.Path)
	assert.Equal(t, helloSHA, mismatch.Actual)
	assert.Equal(t, worldSHA, mismatch.Expected)
}

func TestValidateMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"hashes.txt": helloSHA + " gone.bin\n"})

	err := Validate(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindRequiresExactlyOneManifest(t *testing.T) {
	dir := t.TempDir()

	_, err := Find(dir)
	assert.ErrorIs(t, err, ErrManifest)

	writeFiles(t, dir, map[string]string{"hashes.txt": helloSHA + " a.bin\n"})
	got, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hashes.txt"), got)

	writeFiles(t, dir, map[string]string{"notes.txt": "scanner notes"})
	_, err = Find(dir)
	assert.ErrorIs(t, err, ErrManifest)
	assert.Contains(t, err.Error(), "2 candidate manifests")

	// A directory named like a manifest is not a candidate
	other := t.TempDir()
	writeFiles(t, other, map[string]string{"hashes.txt": helloSHA + " a.bin\n"})
	require.NoError(t, os.Mkdir(filepath.Join(other, "old.txt"), 0755))
	_, err = Find(other)
	assert.NoError(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing path", helloSHA + "\n"},
		{"binary marker without path", helloSHA + " *\n"},
		{"short hash", "abc123 a.bin\n"},
		{"not hex", strings.Repeat("z", 40) + " a.bin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			assert.ErrorIs(t, err, ErrManifest)
		})
	}
}

// TestParseSha1sumOutput checks paths with spaces and binary mode markers
func TestParseSha1sumOutput(t *testing.T) {
	content := helloSHA + "  scan one/bold run.nii\n" +
		worldSHA + " *b.bin\n" +
		helloSHA + "\tc.bin\n"

	entries, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{helloSHA, "scan one/bold run.nii"},
		{worldSHA, "b.bin"},
		{helloSHA, "c.bin"},
	}, entries)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bold run.nii": "hello\n",
		"hashes.txt":   helloSHA + " *bold run.nii\n",
	})
	assert.NoError(t, Validate(dir))
}

func TestValidateEmptyManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"hashes.txt": "# nothing yet\n"})
	assert.ErrorIs(t, Validate(dir), ErrManifest)
}
