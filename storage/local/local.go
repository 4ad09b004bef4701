// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package local stores objects as files below a root directory.
package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/storage"
)

const Type = "local"

func init() {
	storage.Register(Type, storage.Registration{
		Open: func(addr string, opts storage.Options) (storage.Backend, error) {
			return New(addr)
		},
		Persistent: true,
	})
}

const (
	filePublic  fs.FileMode = 0644
	filePrivate fs.FileMode = 0600
	dirPublic   fs.FileMode = 0755
	dirPrivate  fs.FileMode = 0700
)

// Store is a filesystem backed storage.Backend.
type Store struct {
	root string
}

var _ storage.Backend = (*Store)(nil)

// New opens the directory at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("local: root directory is not set")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, dirPublic); err != nil {
		return nil, err
	}
	clog.Infof("local storage at %s", abs)
	return &Store{root: abs}, nil
}

func (s *Store) abs(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(storage.Clean(p)))
}

func convErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return storage.ErrNotFound
	case errors.Is(err, fs.ErrExist):
		return storage.ErrExists
	}
	return err
}

func fileMode(v storage.Visibility) fs.FileMode {
	if v == storage.Private {
		return filePrivate
	}
	return filePublic
}

func dirMode(v storage.Visibility) fs.FileMode {
	if v == storage.Private {
		return dirPrivate
	}
	return dirPublic
}

func visibilityOf(fi fs.FileInfo) storage.Visibility {
	if fi.Mode().Perm()&0044 == 0 {
		return storage.Private
	}
	return storage.Public
}

func (s *Store) meta(p string, fi fs.FileInfo) *storage.Metadata {
	m := &storage.Metadata{
		Type:       storage.TypeFile,
		Path:       storage.Clean(p),
		Timestamp:  fi.ModTime(),
		Visibility: visibilityOf(fi),
	}
	if fi.IsDir() {
		m.Type = storage.TypeDir
		return m
	}
	m.Size = fi.Size()
	return m
}

func (s *Store) mimetype(p string) string {
	f, err := os.Open(s.abs(p))
	if err != nil {
		return storage.DetectMimetype(p, nil)
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	return storage.DetectMimetype(p, head[:n])
}

func (s *Store) put(p string, r io.Reader, cfg storage.Config, mustExist bool) (*storage.Metadata, error) {
	full := s.abs(p)
	fi, err := os.Stat(full)
	switch {
	case err == nil && fi.IsDir():
		return nil, storage.ErrIsDir
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, err
	case err != nil && mustExist:
		return nil, storage.ErrNotFound
	}
	vis := cfg.Visibility
	if vis == "" && fi != nil {
		vis = visibilityOf(fi)
	}
	if err := os.MkdirAll(filepath.Dir(full), dirPublic); err != nil {
		return nil, convErr(err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode(vis))
	if err != nil {
		return nil, convErr(err)
	}
	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if err = f.Close(); err != nil {
		return nil, err
	}
	if err = os.Chmod(full, fileMode(vis)); err != nil {
		return nil, err
	}
	fi, err = os.Stat(full)
	if err != nil {
		return nil, convErr(err)
	}
	m := s.meta(p, fi)
	m.Mimetype = s.mimetype(p)
	return m, nil
}

func (s *Store) Write(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, bytes.NewReader(contents), cfg, false)
}

func (s *Store) WriteStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, r, cfg, false)
}

func (s *Store) Update(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, bytes.NewReader(contents), cfg, true)
}

func (s *Store) UpdateStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, r, cfg, true)
}

func (s *Store) statFile(p string) (fs.FileInfo, error) {
	fi, err := os.Stat(s.abs(p))
	if err != nil {
		return nil, convErr(err)
	} else if fi.IsDir() {
		return nil, storage.ErrIsDir
	}
	return fi, nil
}

func (s *Store) Rename(ctx context.Context, p, newPath string) error {
	if _, err := s.statFile(p); err != nil {
		return err
	}
	dst := s.abs(newPath)
	if err := os.MkdirAll(filepath.Dir(dst), dirPublic); err != nil {
		return convErr(err)
	}
	return convErr(os.Rename(s.abs(p), dst))
}

func (s *Store) Copy(ctx context.Context, p, newPath string) error {
	fi, err := s.statFile(p)
	if err != nil {
		return err
	} else if s.abs(p) == s.abs(newPath) {
		return nil
	}
	src, err := os.Open(s.abs(p))
	if err != nil {
		return convErr(err)
	}
	defer src.Close()
	_, err = s.put(newPath, src, storage.Config{Visibility: visibilityOf(fi)}, false)
	return err
}

func (s *Store) Delete(ctx context.Context, p string) error {
	if _, err := s.statFile(p); err != nil {
		return err
	}
	return convErr(os.Remove(s.abs(p)))
}

func (s *Store) DeleteDir(ctx context.Context, dir string) error {
	full := s.abs(dir)
	fi, err := os.Stat(full)
	if err != nil {
		return convErr(err)
	} else if !fi.IsDir() {
		return storage.ErrNotDir
	}
	if full == s.root {
		entries, err := os.ReadDir(full)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(full, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	return os.RemoveAll(full)
}

func (s *Store) CreateDir(ctx context.Context, dir string, cfg storage.Config) (*storage.Metadata, error) {
	full := s.abs(dir)
	if fi, err := os.Stat(full); err == nil && !fi.IsDir() {
		return nil, storage.ErrExists
	}
	if err := os.MkdirAll(full, dirMode(cfg.Visibility)); err != nil {
		return nil, convErr(err)
	}
	fi, err := os.Stat(full)
	if err != nil {
		return nil, convErr(err)
	}
	return s.meta(dir, fi), nil
}

func (s *Store) SetVisibility(ctx context.Context, p string, v storage.Visibility) (*storage.Metadata, error) {
	full := s.abs(p)
	fi, err := os.Stat(full)
	if err != nil {
		return nil, convErr(err)
	}
	mode := fileMode(v)
	if fi.IsDir() {
		mode = dirMode(v)
	}
	if err := os.Chmod(full, mode); err != nil {
		return nil, err
	}
	return &storage.Metadata{Path: storage.Clean(p), Visibility: v}, nil
}

func (s *Store) Has(ctx context.Context, p string) (bool, error) {
	_, err := os.Stat(s.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	fi, err := s.statFile(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.abs(p))
	if err != nil {
		return nil, convErr(err)
	}
	m := s.meta(p, fi)
	m.Contents = data
	m.Mimetype = storage.DetectMimetype(p, data)
	return m, nil
}

func (s *Store) ReadStream(ctx context.Context, p string) (*storage.Metadata, error) {
	fi, err := s.statFile(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.abs(p))
	if err != nil {
		return nil, convErr(err)
	}
	m := s.meta(p, fi)
	m.Stream = f
	return m, nil
}

func (s *Store) ListContents(ctx context.Context, dir string, recursive bool) ([]storage.Metadata, error) {
	dir = storage.Clean(dir)
	start := s.abs(dir)
	if _, err := os.Stat(start); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var out []storage.Metadata
	err := filepath.WalkDir(start, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if full == start {
			return nil
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, *s.meta(filepath.ToSlash(rel), fi))
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Store) GetMetadata(ctx context.Context, p string) (*storage.Metadata, error) {
	fi, err := os.Stat(s.abs(p))
	if err != nil {
		return nil, convErr(err)
	}
	m := s.meta(p, fi)
	if !fi.IsDir() {
		m.Mimetype = s.mimetype(p)
	}
	return m, nil
}

func (s *Store) GetSize(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetMimetype(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetTimestamp(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}

func (s *Store) GetVisibility(ctx context.Context, p string) (*storage.Metadata, error) {
	return s.GetMetadata(ctx, p)
}
