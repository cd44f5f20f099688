// SPDX-License-Identifier: Apache-2.0
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// CalculateSHA256 calculates the SHA256 hash of a file
func CalculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifyCopy checks that dst has the same SHA256 as src
func VerifyCopy(src, dst string) error {
	want, err := CalculateSHA256(src)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", src, err)
	}
	got, err := CalculateSHA256(dst)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", dst, err)
	}

	if want != got {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", dst, want, got)
	}

	log.Debugf("Checksum verified for %s", dst)
	return nil
}
