package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// maxUniqueAttempts bounds the _N suffix search in CreateUnique.
const maxUniqueAttempts = 10000

// HashFile returns the xxh3 digest and byte length of path.
func HashFile(path string) (uint64, int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	h := xxh3.New()
	n, err := io.Copy(h, in)
	if err != nil {
		return 0, 0, err
	}
	return h.Sum64(), n, nil
}

// CreateUnique creates path exclusively. When path already exists it tries
// name_1.ext, name_2.ext and so on, and returns the file and the name it won.
func CreateUnique(path string, mode os.FileMode) (*os.File, string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	candidate := path
	for i := 1; i <= maxUniqueAttempts; i++ {
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return nil, "", fmt.Errorf("no free name for %s after %d attempts", path, maxUniqueAttempts)
}

// CopyFileVerified streams src into a new file next to dst, never overwriting
// an existing file, with xxh3 + size integrity verification. The source
// modification time is carried over. It returns the path written and the
// content digest. The partial destination is removed on any failure.
func CopyFileVerified(src, dst string) (string, uint64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", 0, fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, fmt.Errorf("create destination dir: %w", err)
	}
	out, written, err := CreateUnique(dst, 0o644)
	if err != nil {
		return "", 0, err
	}
	fail := func(err error) (string, uint64, error) {
		_ = out.Close()
		_ = os.Remove(written)
		return "", 0, err
	}

	srcHasher := xxh3.New()
	dstHasher := xxh3.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	n, err := io.Copy(multi, tee)
	if err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(written)
		return "", 0, err
	}

	if n != srcSize {
		_ = os.Remove(written)
		return "", 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, n)
	}
	if srcHasher.Sum64() != dstHasher.Sum64() {
		_ = os.Remove(written)
		return "", 0, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	mtime := srcInfo.ModTime()
	if err := os.Chtimes(written, mtime, mtime); err != nil {
		_ = os.Remove(written)
		return "", 0, fmt.Errorf("preserve mtime: %w", err)
	}
	return written, srcHasher.Sum64(), nil
}
