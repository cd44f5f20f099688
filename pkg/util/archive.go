// SPDX-License-Identifier: Apache-2.0
package util

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ulikunitz/xz"
)

// ArchiveExt is the suffix of bundles produced by ArchiveDir
const ArchiveExt = ".tar.xz"

// ArchiveDir writes srcDir as a tar.xz archive to dst. Entries are rooted at
// the directory's base name so extraction recreates the directory itself.
func ArchiveDir(srcDir, dst string) error {
	log.Debugf("Archiving %s to %s", srcDir, dst)

	srcDir = filepath.Clean(srcDir)
	base := filepath.Dir(srcDir)

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer dstFile.Close()

	xzWriter, err := xz.NewWriter(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	tarWriter := tar.NewWriter(xzWriter)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			log.Debugf("Skipping unsupported file type: %s", path)
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tarWriter, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, err)
	}

	// Ensure all data is flushed
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := xzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush compressed data: %w", err)
	}

	log.Debugf("Successfully archived %s", srcDir)
	return nil
}

// ExtractArchive extracts a tar.xz archive to a destination directory
func ExtractArchive(src, dstDir string) error {
	log.Debugf("Extracting %s to %s", src, dstDir)

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer srcFile.Close()

	return extractTarXz(srcFile, dstDir)
}

func extractTarXz(r io.Reader, dstDir string) error {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	tarReader := tar.NewReader(xzReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		// Construct destination path
		target := filepath.Join(dstDir, header.Name)

		// Security check: prevent path traversal
		cleanTarget := filepath.Clean(target)
		cleanDstDir := filepath.Clean(dstDir) + string(filepath.Separator)
		if !strings.HasPrefix(cleanTarget+string(filepath.Separator), cleanDstDir) && cleanTarget != filepath.Clean(dstDir) {
			return fmt.Errorf("invalid path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0700); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to extract file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return fmt.Errorf("failed to extract file: %w", err)
			}

		default:
			log.Debugf("Skipping unsupported file type: %s (%c)", header.Name, header.Typeflag)
		}
	}

	log.Debugf("Successfully extracted archive to %s", dstDir)
	return nil
}
