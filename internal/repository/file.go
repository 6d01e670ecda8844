package repository

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperr "github.com/darkodi/shortstore/internal/errors"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/model"
)

// FileBackend keeps the table in a single CSV file.
type FileBackend struct {
	path string
	log  *logger.Logger
}

func NewFileBackend(path string, log *logger.Logger) *FileBackend {
	if log == nil {
		log = logger.Discard()
	}
	return &FileBackend{path: path, log: log}
}

func (b *FileBackend) Name() string { return "file:" + b.path }

func (b *FileBackend) Path() string { return b.path }

// Load reads the mapping file. A missing file is an empty table.
func (b *FileBackend) Load() ([]model.URL, error) {
	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.StorageFailure("open "+b.path, err)
	}
	defer f.Close()

	urls, err := DecodeCSV(f, warnSkipped(b.log, b.path))
	if err != nil {
		return nil, apperr.StorageFailure("read "+b.path, err)
	}
	return urls, nil
}

func (b *FileBackend) Save(urls []model.URL) error {
	if err := WriteCSVFile(b.path, urls); err != nil {
		return apperr.StorageFailure("write "+b.path, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

// WriteCSVFile atomically replaces path with the CSV rendering of urls.
func WriteCSVFile(path string, urls []model.URL) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, urls)
	})
}

// WriteFileAtomic streams write into a temporary file next to path, syncs
// it and renames it over path. Readers see either the old or the new file,
// never a partial one. The existing file mode is preserved.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())

	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}

	syncDir(dir)
	return nil
}

// syncDir makes the rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
