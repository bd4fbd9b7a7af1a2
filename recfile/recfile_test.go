package recfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

func Test_Load_DataFile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "g_recognizers.toml", `
format = "gudgeon-recognizers"
type = "DATA"

[[recognizer]]
name = "ID"
kind = "regex"
pattern = "[a-zA-Z_][a-zA-Z0-9_]*"

[[recognizer]]
name = "PLUS"
kind = "literal"
value = "+"
`)

	recs, err := Load(path)
	if !assert.NoError(err) {
		return
	}
	if assert.Contains(recs, "ID") {
		matched, ok := recs["ID"].Match("abc123 x", 0)
		assert.True(ok)
		assert.Equal("abc123", matched)
	}
	if assert.Contains(recs, "PLUS") {
		matched, ok := recs["PLUS"].Match("+", 0)
		assert.True(ok)
		assert.Equal("+", matched)
	}
}

func Test_Load_ManifestFile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "extra.toml", `
format = "gudgeon-recognizers"
type = "DATA"

[[recognizer]]
name = "COMMA"
kind = "literal"
value = ","
`)

	manifestPath := writeFile(t, dir, "g_recognizers.toml", `
format = "gudgeon-recognizers"
type = "MANIFEST"
files = ["extra.toml"]
`)

	recs, err := Load(manifestPath)
	if !assert.NoError(err) {
		return
	}
	assert.Contains(recs, "COMMA")
}

func Test_Load_CircularManifestIsError(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	pathA := filepath.Join(dir, "a.toml")
	pathB := filepath.Join(dir, "b.toml")

	_ = os.WriteFile(pathA, []byte(`
format = "gudgeon-recognizers"
type = "MANIFEST"
files = ["b.toml"]
`), 0o644)
	_ = os.WriteFile(pathB, []byte(`
format = "gudgeon-recognizers"
type = "MANIFEST"
files = ["a.toml"]
`), 0o644)

	_, err := Load(pathA)
	assert.ErrorIs(err, ErrManifestCircularRef)
}

func Test_Load_UnknownKindIsError(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "g_recognizers.toml", `
format = "gudgeon-recognizers"
type = "DATA"

[[recognizer]]
name = "BAD"
kind = "wat"
`)

	_, err := Load(path)
	assert.Error(err)
}

func Test_DefaultSidecarPath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("grammar_recognizers.toml", DefaultSidecarPath("grammar.pg"))
	assert.Equal("/a/b/grammar_recognizers.toml", DefaultSidecarPath("/a/b/grammar.pg"))
}
