package tool

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Stem returns the file name without directory and last extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ext returns the lower-cased extension of path without the leading dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RequireFile resolves path to an absolute path and checks that it is a file.
// what names the file in the error message ("receptor", "ligand", ...).
func RequireFile(what, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidInput, "%s path %q: %v", what, path, err)
	}
	if !IsFile(abs) {
		return "", errors.Wrapf(ErrNotFound, "%s file %s", what, abs)
	}
	return abs, nil
}

// CopyFile copies src to dst keeping permission bits and modification time.
// When dst is an existing directory the file keeps its own name inside it.
// Missing parent directories of dst are created. Copying a file onto itself
// leaves it untouched.
func CopyFile(src, dst string) (string, error) {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if sameFile(src, dst) {
		return dst, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create destination dir")
	}

	in, err := os.Open(src)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", errors.WithStack(err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return "", errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", errors.Wrapf(err, "copy %s", src)
	}
	if err := out.Close(); err != nil {
		return "", errors.WithStack(err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return "", errors.WithStack(err)
	}

	return dst, nil
}

// CopyDir copies the tree rooted at src to dst. An existing dst is removed
// first unless it is src itself, which is left as is.
func CopyDir(src, dst string) error {
	if sameFile(src, dst) {
		return nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "remove %s", dst)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, os.ModePerm)
		}
		_, err = CopyFile(path, target)
		return err
	})
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// CleanTemp removes everything inside dir but keeps dir itself.
// A missing dir is not an error.
func CleanTemp(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.WithStack(err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrapf(err, "remove %s", e.Name())
		}
	}
	Logger.Printf("cleaned %d entries from %s", len(entries), dir)
	return nil
}
