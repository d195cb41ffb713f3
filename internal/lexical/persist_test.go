package lexical_test

import (
	"os"
	"path/filepath"
	"testing"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/lexical"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestLoad_TruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.idx")
	require.NoError(t, writeFile(path, []byte("FK")))

	_, err := lexical.Load(path)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestSave_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyword.idx")

	first, err := lexical.Build(testCorpus(), lexical.DefaultK1, lexical.DefaultB)
	require.NoError(t, err)
	require.NoError(t, first.Save(path))

	second, err := lexical.Build(testCorpus()[:2], lexical.DefaultK1, lexical.DefaultB)
	require.NoError(t, err)
	require.NoError(t, second.Save(path))

	loaded, err := lexical.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "keyword.idx")

	idx, err := lexical.Build(testCorpus(), lexical.DefaultK1, lexical.DefaultB)
	require.NoError(t, err)
	require.NoError(t, idx.Save(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
