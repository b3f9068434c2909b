package batchrename_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchrename "github.com/thrawn01/batch-rename"
)

// logFailingRenamer renames for real and then reports a failed log write.
type logFailingRenamer struct {
	*batchrename.DefaultRenamer
}

func (r logFailingRenamer) Execute(ctx context.Context, dir string, plan *batchrename.RenamePlan) (*batchrename.ExecuteResult, error) {
	result, err := r.DefaultRenamer.Execute(ctx, dir, plan)
	if err != nil {
		return result, err
	}
	return result, fmt.Errorf("%w: disk full", batchrename.ErrLogWrite)
}

func textContent(t *testing.T, res *mcp.CallToolResult) []byte {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return []byte(text.Text)
}

func TestExecuteRenameToolReportsRenamedFilesOnError(t *testing.T) {
	tempDir := t.TempDir()
	writeFiles(t, tempDir, map[string]string{
		"a.png": "a",
		"b.png": "b",
	})

	renamer, _ := newTestRenamer(t)
	args := batchrename.RenameParams{Directory: tempDir, Prefix: "pic", Mode: "sequence"}

	res, out, err := batchrename.ExecuteRenameTool(context.Background(), nil, args, logFailingRenamer{renamer})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	failure, ok := out.(batchrename.PartialFailure)
	require.True(t, ok)
	assert.Contains(t, failure.Error, "disk full")

	var decoded struct {
		Error  string                    `json:"error"`
		Result batchrename.ExecuteResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(textContent(t, res), &decoded))
	require.Len(t, decoded.Result.Renamed, 2)
	assert.Equal(t, "pic_001.png", decoded.Result.Renamed[0].NewName)
	assert.Equal(t, "pic_002.png", decoded.Result.Renamed[1].NewName)
}

func TestExecuteRenameToolUnwritableLog(t *testing.T) {
	tempDir := t.TempDir()
	writeFiles(t, tempDir, map[string]string{
		"a.png": "a",
		"b.png": "b",
	})

	config := newTestConfig(t)
	config.LogFile = filepath.Join(t.TempDir(), "sub", batchrename.DefaultLogFileName)
	renamer, err := batchrename.NewDefaultRenamer(config, nil)
	require.NoError(t, err)

	args := batchrename.RenameParams{Directory: tempDir, Prefix: "pic", Mode: "sequence"}
	_, _, err = batchrename.ExecuteRenameTool(context.Background(), nil, args, renamer)

	assert.ErrorIs(t, err, batchrename.ErrLogWrite)
	assert.ElementsMatch(t, []string{"a.png", "b.png"}, dirNames(t, tempDir))
}

func TestScanDirectoryToolReturnsObject(t *testing.T) {
	tempDir := t.TempDir()
	writeFiles(t, tempDir, map[string]string{"b.png": "bb", "A.jpg": "a"})

	renamer, _ := newTestRenamer(t)
	res, out, err := batchrename.ScanDirectoryTool(context.Background(), nil,
		batchrename.ScanDirectoryParams{Directory: tempDir}, renamer)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	result, ok := out.(batchrename.ScanDirectoryResult)
	require.True(t, ok)
	assert.Equal(t, []string{"A.jpg", "b.png"}, names(result.Files))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(textContent(t, res), &decoded))
	assert.Equal(t, tempDir, decoded["directory"])
	assert.Len(t, decoded["files"], 2)
}

func TestScanDirectoryToolEmptyDirectory(t *testing.T) {
	renamer, _ := newTestRenamer(t)
	res, _, err := batchrename.ScanDirectoryTool(context.Background(), nil,
		batchrename.ScanDirectoryParams{Directory: t.TempDir()}, renamer)
	require.NoError(t, err)

	var decoded struct {
		Files json.RawMessage `json:"files"`
	}
	require.NoError(t, json.Unmarshal(textContent(t, res), &decoded))
	assert.Equal(t, "[]", string(decoded.Files))
}
