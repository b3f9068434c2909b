package overview_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrawn01/batch-rename/overview"
)

const baseURL = "https://raw.githubusercontent.com/user/images/master"

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"logo.png":                "root images are ignored",
		"pixel/b.png":             "bb",
		"pixel/a.PNG":             "a",
		"pixel/notes.txt":         "not an image",
		"cartoon/cat.jpg":         "ccc",
		"cartoon/2024/dog.webp":   "d",
		".git/objects/x.png":      "hidden",
		"__pycache__/y.png":       "skipped",
		"build/cache/z.png":       "pattern",
		"cartoon/2024/deep/e.gif": "e",
	})

	config := overview.DefaultConfig()
	config.SkipPatterns = []string{"build/**"}

	inv, err := overview.Scan(context.Background(), root, config)
	require.NoError(t, err)

	var paths []string
	for _, f := range inv.Folders {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"cartoon", "cartoon/2024", "cartoon/2024/deep", "pixel"}, paths)

	pixel := inv.Folders[3]
	require.Len(t, pixel.Images, 2)
	assert.Equal(t, "a.PNG", pixel.Images[0].Name)
	assert.Equal(t, "b.png", pixel.Images[1].Name)
	assert.Equal(t, int64(2), pixel.Images[1].Size)

	assert.Equal(t, 3, inv.Folders[2].Depth())
	assert.Equal(t, 5, inv.ImageCount())
	assert.Equal(t, int64(8), inv.TotalBytes())
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"pixel/a.png": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := overview.Scan(ctx, root, overview.DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender(t *testing.T) {
	inv := &overview.Inventory{
		Folders: []overview.Folder{
			{Path: "cartoon", Images: []overview.Image{{Name: "cat.jpg"}}},
			{Path: "cartoon/2024", Images: []overview.Image{{Name: "dog 1.webp"}}},
			{Path: "cartoon/2024/deep", Images: []overview.Image{{Name: "e.tar.gif"}}},
		},
	}

	expected := "# cartoon\n" +
		"![cat](" + baseURL + "/cartoon/cat.jpg)\n" +
		"\n" +
		"## 2024\n" +
		"![dog 1](<" + baseURL + "/cartoon/2024/dog 1.webp>)\n" +
		"\n" +
		"### cartoon/2024/deep\n" +
		"![e.tar](" + baseURL + "/cartoon/2024/deep/e.tar.gif)\n" +
		"\n"

	assert.Equal(t, expected, overview.Render(inv, baseURL+"/"))
}

func TestRenderDeepHeadingCapped(t *testing.T) {
	inv := &overview.Inventory{
		Folders: []overview.Folder{
			{Path: "a/b/c/d/e/f/g", Images: []overview.Image{{Name: "x.png"}}},
		},
	}
	assert.Contains(t, overview.Render(inv, baseURL), "###### a/b/c/d/e/f/g\n")
}

func TestSplitHeader(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		expectedHeader string
		expectedBody   string
	}{
		{
			name:           "Empty",
			content:        "",
			expectedHeader: "\n\n---\n\n",
		},
		{
			name:           "WithSeparator",
			content:        "# My images\nIntro text\n---\n# old\n![a](u)\n",
			expectedHeader: "# My images\nIntro text\n---\n\n",
			expectedBody:   "\n# old\n![a](u)\n",
		},
		{
			name:           "OnlyFirstSeparator",
			content:        "top\n---\nmiddle\n---\nbottom",
			expectedHeader: "top\n---\n\n",
			expectedBody:   "\nmiddle\n---\nbottom",
		},
		{
			name:           "WithoutSeparator",
			content:        "# Hand written\n\n\n",
			expectedHeader: "# Hand written\n\n---\n\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			header, body := overview.SplitHeader(test.content)
			assert.Equal(t, test.expectedHeader, header)
			assert.Equal(t, test.expectedBody, body)
		})
	}
}

func TestReadHeader(t *testing.T) {
	dir := t.TempDir()

	t.Run("MissingFile", func(t *testing.T) {
		header, body, err := overview.ReadHeader(filepath.Join(dir, "missing.md"), "Gallery")
		require.NoError(t, err)
		assert.Equal(t, "# Gallery\n\n---\n\n", header)
		assert.Empty(t, body)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := filepath.Join(dir, "empty.md")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		header, body, err := overview.ReadHeader(path, "Gallery")
		require.NoError(t, err)
		assert.Equal(t, "\n\n---\n\n", header)
		assert.Empty(t, body)
	})
}

func TestRenderEscapesAltText(t *testing.T) {
	inv := &overview.Inventory{
		Folders: []overview.Folder{
			{Path: "pixel", Images: []overview.Image{{Name: "cat [v2].png"}, {Name: "a]b.png"}}},
		},
	}

	body := overview.Render(inv, baseURL)
	assert.Contains(t, body, `![cat \[v2\]](<`+baseURL+`/pixel/cat [v2].png>)`)
	assert.Contains(t, body, `![a\]b](`+baseURL+`/pixel/a]b.png)`)

	links, err := overview.ExistingLinks([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{baseURL + "/pixel/cat [v2].png", baseURL + "/pixel/a]b.png"}, links)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"OVERVIEW.md":   "# x\n---\n",
		"pixel/a/b.png": "b",
	})

	found, err := overview.FindProjectRoot(filepath.Join(root, "pixel", "a"), "OVERVIEW.md")
	require.NoError(t, err)
	assert.Equal(t, root, found)

	start := filepath.Join(root, "pixel")
	found, err = overview.FindProjectRoot(start, "MISSING-OVERVIEW-NAME.md")
	require.NoError(t, err)
	assert.Equal(t, start, found)
}

func TestExistingLinks(t *testing.T) {
	source := "# title\n\n---\n\n# pixel\n" +
		"![a](https://x/pixel/a.png)\n" +
		"![b c](<https://x/pixel/b c.png>)\n" +
		"[not an image](https://x/page)\n"

	links, err := overview.ExistingLinks([]byte(source))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/pixel/a.png", "https://x/pixel/b c.png"}, links)
}

func TestGenerator(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"pixel/a.png":     "aa",
		"cartoon/cat.jpg": "c",
	})

	config := overview.DefaultConfig()
	config.BaseURL = baseURL
	generator, err := overview.NewGenerator(config, nil)
	require.NoError(t, err)
	ctx := context.Background()
	output := filepath.Join(root, overview.DefaultOutputFile)

	t.Run("FirstRun", func(t *testing.T) {
		result, err := generator.Generate(ctx, root)
		require.NoError(t, err)

		assert.Equal(t, output, result.OutputPath)
		assert.Equal(t, 2, result.Folders)
		assert.Equal(t, 2, result.Images)
		assert.Equal(t, int64(3), result.TotalBytes)
		assert.Equal(t, "3 B", result.TotalSize)
		assert.Len(t, result.Added, 2)
		assert.Empty(t, result.Removed)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "# Image Overview\n\n---\n\n"+
			"# cartoon\n![cat]("+baseURL+"/cartoon/cat.jpg)\n\n"+
			"# pixel\n![a]("+baseURL+"/pixel/a.png)\n\n", string(data))
	})

	t.Run("KeepsHeaderAndReportsChanges", func(t *testing.T) {
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		edited := "# My gallery\n\nHand written intro.\n" + string(data)[len("# Image Overview\n\n"):]
		require.NoError(t, os.WriteFile(output, []byte(edited), 0644))

		require.NoError(t, os.Remove(filepath.Join(root, "cartoon", "cat.jpg")))
		writeFiles(t, root, map[string]string{"pixel/b.png": "b"})

		result, err := generator.Generate(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, []string{baseURL + "/pixel/b.png"}, result.Added)
		assert.Equal(t, []string{baseURL + "/cartoon/cat.jpg"}, result.Removed)

		data, err = os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "# My gallery\n\nHand written intro.\n---\n\n"+
			"# pixel\n![a]("+baseURL+"/pixel/a.png)\n![b]("+baseURL+"/pixel/b.png)\n\n", string(data))
	})
}

func TestGeneratorErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingBaseURL", func(t *testing.T) {
		generator, err := overview.NewGenerator(overview.DefaultConfig(), nil)
		require.NoError(t, err)
		_, err = generator.Generate(ctx, t.TempDir())
		assert.ErrorIs(t, err, overview.ErrMissingBaseURL)
	})

	t.Run("NoImages", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"top.png": "x", "docs/readme.txt": "x"})

		config := overview.DefaultConfig()
		config.BaseURL = baseURL
		generator, err := overview.NewGenerator(config, nil)
		require.NoError(t, err)

		_, err = generator.Generate(ctx, root)
		assert.ErrorIs(t, err, overview.ErrNoImages)
		assert.NoFileExists(t, filepath.Join(root, overview.DefaultOutputFile))
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		config := overview.DefaultConfig()
		config.OutputFile = ""
		_, err := overview.NewGenerator(config, nil)
		assert.Error(t, err)
	})
}
