package compdb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/includeguardian/compdb"
)

func TestParseEntriesArgumentsForm(t *testing.T) {
	doc := `[
		{"file": "a.c", "directory": "/proj", "arguments": ["cc", "-I", "/proj/inc", "-c", "a.c"]}
	]`
	entries, err := compdb.ParseEntries([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.c", entries[0].File)
	assert.Equal(t, "/proj", entries[0].Directory)
	assert.Equal(t, []string{"cc", "-I", "/proj/inc", "-c", "a.c"}, entries[0].Arguments)
}

func TestParseEntriesCommandForm(t *testing.T) {
	doc := `[
		{"file": "b.c", "directory": "/proj", "command": "cc -I /proj/inc -DFOO=\"bar baz\" -c b.c"}
	]`
	entries, err := compdb.ParseEntries([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"cc", "-I", "/proj/inc", "-DFOO=bar baz", "-c", "b.c"}, entries[0].Arguments)
}

func TestParseEntriesMalformedJSON(t *testing.T) {
	_, err := compdb.ParseEntries([]byte("not json"))
	assert.Error(t, err)
}
