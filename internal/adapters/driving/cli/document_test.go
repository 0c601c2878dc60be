package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGetCmd_RequiresArg(t *testing.T) {
	_, err := execute(t, "get")
	assert.Error(t, err)
}

func TestGetCmd_ShowsMetadata(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "get", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "First Result")
	assert.Contains(t, out, "notes")
}

func TestContentCmd_PrintsBody(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "content", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "document body")
}

func TestListCmd_ShowsCategoriesAndDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "notes (1)")
	assert.Contains(t, out, "First Result")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestCategoriesCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "notes (1)")
}

func TestDeleteCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted doc-1")
}

func TestUpdateCmd_BuildsPatchFromChangedFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := documentService.(*mockDocument)

	_, err := execute(t, "update", "doc-1", "--summary", "new summary")
	require.NoError(t, err)
	require.NotNil(t, mock.patched)
	require.NotNil(t, mock.patched.Summary)
	assert.Equal(t, "new summary", *mock.patched.Summary)
	assert.Nil(t, mock.patched.Keywords)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "archa version")
}
