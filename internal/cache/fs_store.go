package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// NewStore 以 basePath 为根目录构建磁盘缓存，所有命名空间共享一份实例。
func NewStore(basePath string) (Store, error) {
	return NewStoreWithFs(afero.NewOsFs(), basePath)
}

// NewStoreWithFs 允许注入任意 afero 文件系统，测试中常用 MemMapFs。
func NewStoreWithFs(fsys afero.Fs, basePath string) (Store, error) {
	if fsys == nil {
		return nil, errors.New("filesystem required")
	}
	if basePath == "" {
		return nil, errors.New("storage path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := fsys.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	return &fileStore{
		fs:       fsys,
		basePath: abs,
	}, nil
}

// fileStore 不对同一条目的并发写入做任何协调，最后完成的写入生效。
type fileStore struct {
	fs       afero.Fs
	basePath string
}

func (s *fileStore) BasePath() string {
	return s.basePath
}

func (s *fileStore) Stat(ctx context.Context, locator Locator) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filePath, err := s.entryPath(locator)
	if err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	return &Entry{
		Locator:   locator,
		FilePath:  filePath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

func (s *fileStore) Get(ctx context.Context, locator Locator) (*ReadResult, error) {
	entry, err := s.Stat(ctx, locator)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(entry.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &ReadResult{
		Entry:  *entry,
		Reader: f,
	}, nil
}

func (s *fileStore) Create(ctx context.Context, locator Locator) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filePath, err := s.entryPath(locator)
	if err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	return s.fs.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (s *fileStore) Remove(ctx context.Context, locator Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.entryPath(locator)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *fileStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(s.fs, s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		entries = append(entries, Entry{
			Locator:   Locator{Prefix: prefix, Name: strings.TrimPrefix(name, prefix)},
			FilePath:  filepath.Join(s.basePath, name),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return entries, nil
}

func (s *fileStore) entryPath(locator Locator) (string, error) {
	name := locator.FileName()
	if name == "" || name == "." || name == ".." {
		return "", errors.New("invalid cache path")
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", errors.New("invalid cache path")
	}

	filePath := filepath.Join(s.basePath, name)
	if filepath.Dir(filePath) != s.basePath {
		return "", errors.New("invalid cache path")
	}
	return filePath, nil
}
