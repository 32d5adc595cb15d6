// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// CorruptedContentError signals that an archive failed its integrity
// check after writing.
type CorruptedContentError struct {
	Path string
}

func (e *CorruptedContentError) Error() string {
	return fmt.Sprintf("failed to verify file %q", e.Path)
}

// ArchiveDirectory zips sourceDir into zipPath. Entries are stored
// relative to sourceDir's parent so the archive unpacks into a single
// top-level directory. Files are stored uncompressed: PDFs and TIFFs
// barely compress, and Portico prefers stored members.
func ArchiveDirectory(zipPath, sourceDir, comment string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return fmt.Errorf("setting ZIP comment: %w", err)
		}
	}

	root := filepath.Dir(filepath.Clean(sourceDir))
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addStored(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("archiving %s: %w", sourceDir, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", zipPath, err)
	}
	return out.Close()
}

// ArchiveFiles zips the given files flat (base names only) into zipPath.
func ArchiveFiles(zipPath string, files []string, comment string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return fmt.Errorf("setting ZIP comment: %w", err)
		}
	}
	for _, file := range files {
		if err := addStored(zw, file, filepath.Base(file)); err != nil {
			zw.Close()
			return fmt.Errorf("archiving %s: %w", file, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", zipPath, err)
	}
	return out.Close()
}

func addStored(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// VerifyArchive reads back every member of a ZIP file in full, which
// forces the CRC check, and returns CorruptedContentError on any
// mismatch or truncation.
func VerifyArchive(zipPath string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return &CorruptedContentError{Path: zipPath}
	}
	defer zr.Close()

	for _, member := range zr.File {
		rc, err := member.Open()
		if err != nil {
			return &CorruptedContentError{Path: zipPath}
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return &CorruptedContentError{Path: zipPath}
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func removeAll(files []string, logger zerolog.Logger) {
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			logger.Warn().Str("file", file).Err(err).Msg("could not delete file")
		}
	}
}
