package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"startup-foundry/internal/models"
)

// ArchiveService writes generated project files to disk and packages them
// into a downloadable zip. S3 upload is optional and enabled by injecting
// an S3Service.
type ArchiveService struct {
	outputDir string
	s3        *S3Service
}

// NewArchiveService creates an archive service rooted at outputDir
func NewArchiveService(outputDir string, s3Service *S3Service) (*ArchiveService, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &ArchiveService{
		outputDir: outputDir,
		s3:        s3Service,
	}, nil
}

// Package writes the generated files under outputDir/<projectID>/ and zips
// them into outputDir/<projectID>.zip. File paths from the LLM are treated
// as untrusted: absolute paths and traversal outside the project directory
// are rejected.
func (s *ArchiveService) Package(ctx context.Context, projectID string, app *models.GeneratedApp) (*models.ArchiveInfo, error) {
	projectDir := filepath.Join(s.outputDir, projectID)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	for relPath, content := range app.Files {
		cleanPath, err := sanitizeRelPath(relPath)
		if err != nil {
			return nil, Permanent("package", fmt.Errorf("rejected generated file path %q: %w", relPath, err))
		}

		fullPath := filepath.Join(projectDir, cleanPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", cleanPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", cleanPath, err)
		}
	}

	archivePath := filepath.Join(s.outputDir, projectID+".zip")
	size, err := zipDirectory(projectDir, archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	info := &models.ArchiveInfo{
		Path:      archivePath,
		SizeBytes: size,
	}

	if s.s3 != nil {
		file, err := os.Open(archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to reopen archive for upload: %w", err)
		}
		key, err := s.s3.UploadArchive(ctx, projectID, file)
		file.Close()
		if err != nil {
			// The local archive is still valid; upload failure only loses the CDN copy
			log.Printf("WARNING: Failed to upload archive for project %s: %v", projectID, err)
		} else {
			info.ObjectKey = key
			info.URL = s.s3.GetFileURL(key)
		}
	}

	log.Printf("[ARCHIVE] Packaged project %s (%d files, %d bytes)", projectID, len(app.Files), size)
	return info, nil
}

// ArchivePath returns the local archive path for a project id
func (s *ArchiveService) ArchivePath(projectID string) string {
	return filepath.Join(s.outputDir, projectID+".zip")
}

// Prune removes project directories and archives older than maxAge and
// returns how many entries were removed
func (s *ArchiveService) Prune(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		log.Printf("WARNING: Failed to read output directory for pruning: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.outputDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("WARNING: Failed to prune %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[ARCHIVE] Pruned %d stale entries older than %s", removed, maxAge)
	}
	return removed
}

// sanitizeRelPath normalizes an LLM-provided file path and rejects anything
// that would escape the project directory
func sanitizeRelPath(relPath string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(relPath))
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", fmt.Errorf("path escapes project directory")
	}
	return cleaned, nil
}

// zipDirectory zips the contents of dir into archivePath and returns the
// archive size in bytes
func zipDirectory(dir, archivePath string) (int64, error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	writer := zip.NewWriter(out)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		entry, err := writer.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		writer.Close()
		return 0, err
	}

	if err := writer.Close(); err != nil {
		return 0, err
	}

	stat, err := out.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
