package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/config"
)

func TestManPage(t *testing.T) {
	page := manPage(config.NewRootCommand("dev", nil))

	assert.Contains(t, page, `.TH "GHOSTOP"`)
	assert.Contains(t, page, `\-d, \-\-duration <string>`)
	assert.Contains(t, page, `\-\-headless\fR`)
	assert.Contains(t, page, `\-v, \-\-version`)
	assert.Contains(t, page, ".B ghostop keys")
	assert.Contains(t, page, `\-\-gadget-keyboard <string>`)
	assert.Contains(t, page, "GHOSTOP_LOG_LEVEL")
}

func TestWriteDocs(t *testing.T) {
	dir := t.TempDir()
	root := config.NewRootCommand("dev", nil)

	require.NoError(t, writeCompletions(root, filepath.Join(dir, "completions")))
	require.NoError(t, writeMan(root, filepath.Join(dir, "man")))

	for _, f := range []string{"completions/ghostop.bash", "completions/_ghostop", "completions/ghostop.fish", "man/ghostop.1"} {
		info, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, f)
		assert.NotZero(t, info.Size(), f)
	}
}
