package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-foundry/internal/models"
)

func TestArchiveService_Package(t *testing.T) {
	outputDir := t.TempDir()
	svc, err := NewArchiveService(outputDir, nil)
	require.NoError(t, err)

	app := &models.GeneratedApp{
		Name: "DogWalkr",
		Files: map[string]string{
			"main.py":             "print('hi')",
			"app/routes.py":       "routes = []",
			"templates/home.html": "<html></html>",
		},
	}

	info, err := svc.Package(context.Background(), "proj-1", app)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "proj-1.zip"), info.Path)
	assert.Greater(t, info.SizeBytes, int64(0))
	assert.Empty(t, info.URL)

	// The files exist on disk with their content
	content, err := os.ReadFile(filepath.Join(outputDir, "proj-1", "app", "routes.py"))
	require.NoError(t, err)
	assert.Equal(t, "routes = []", string(content))

	// The zip contains every generated file
	reader, err := zip.OpenReader(info.Path)
	require.NoError(t, err)
	defer reader.Close()

	names := make(map[string]bool)
	for _, f := range reader.File {
		names[f.Name] = true
	}
	assert.True(t, names["main.py"])
	assert.True(t, names["app/routes.py"])
	assert.True(t, names["templates/home.html"])
}

func TestArchiveService_RejectsEscapingPaths(t *testing.T) {
	svc, err := NewArchiveService(t.TempDir(), nil)
	require.NoError(t, err)

	for _, bad := range []string{
		"../outside.py",
		"../../etc/passwd",
		"/etc/passwd",
		"..",
		"   ",
	} {
		app := &models.GeneratedApp{
			Name:  "Evil",
			Files: map[string]string{bad: "nope"},
		}
		_, err := svc.Package(context.Background(), "proj-evil", app)
		require.Error(t, err, bad)
		assert.Equal(t, ErrKindPermanent, KindOf(err), bad)
	}
}

func TestSanitizeRelPath(t *testing.T) {
	got, err := sanitizeRelPath("app/./routes.py")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("app", "routes.py"), got)

	// Inner traversal that stays inside the tree is normalized away
	got, err = sanitizeRelPath("app/sub/../routes.py")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("app", "routes.py"), got)

	_, err = sanitizeRelPath("../escape.py")
	assert.Error(t, err)
}

func TestArchiveService_Prune(t *testing.T) {
	outputDir := t.TempDir()
	svc, err := NewArchiveService(outputDir, nil)
	require.NoError(t, err)

	app := &models.GeneratedApp{Name: "App", Files: map[string]string{"main.py": "x"}}
	_, err = svc.Package(context.Background(), "proj-old", app)
	require.NoError(t, err)

	// Everything is older than a zero max age
	removed := svc.Prune(0)
	assert.Equal(t, 2, removed) // project dir + zip

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
