// Package fileutil holds the filesystem helpers the pipeline shares.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyFileVerified copies src to dst and proves the copy is intact: the byte
// count must match the source size and re-hashing dst must reproduce the
// digest observed while copying. A failed check removes dst so a registered
// run never points at a torn dataset.
func CopyFileVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	digest := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, digest))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if written != info.Size() {
		os.Remove(dst)
		return fmt.Errorf("short copy of %s: %d of %d bytes", src, written, info.Size())
	}

	check, err := hashFile(dst)
	if err != nil {
		os.Remove(dst)
		return err
	}
	if !bytes.Equal(check, digest.Sum(nil)) {
		os.Remove(dst)
		return fmt.Errorf("verify %s: content differs from source", dst)
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	digest := sha256.New()
	if _, err := io.Copy(digest, file); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return digest.Sum(nil), nil
}
