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

// Package memstore is an in-memory storage backend.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cayleygraph/rdfstore/storage"
)

const Type = "memstore"

func init() {
	storage.Register(Type, storage.Registration{
		Open: func(string, storage.Options) (storage.Backend, error) {
			return New(), nil
		},
	})
}

type object struct {
	dir  bool
	data []byte
	mime string
	mod  time.Time
	vis  storage.Visibility
}

// Store keeps all objects in a map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	objs map[string]*object
	now  func() time.Time
}

var _ storage.Backend = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{objs: make(map[string]*object), now: time.Now}
}

func (s *Store) meta(p string, o *object) *storage.Metadata {
	m := &storage.Metadata{
		Type:       storage.TypeFile,
		Path:       p,
		Timestamp:  o.mod,
		Visibility: o.vis,
	}
	if o.dir {
		m.Type = storage.TypeDir
		return m
	}
	m.Size = int64(len(o.data))
	m.Mimetype = o.mime
	if m.Mimetype == "" {
		m.Mimetype = storage.DetectMimetype(p, o.data)
	}
	return m
}

func visibility(v storage.Visibility) storage.Visibility {
	if v == "" {
		return storage.Public
	}
	return v
}

// mkdirs creates all parents of p. Callers hold the write lock.
func (s *Store) mkdirs(p string, vis storage.Visibility) error {
	for _, d := range storage.Parents(p) {
		if o, ok := s.objs[d]; ok {
			if !o.dir {
				return storage.ErrNotDir
			}
			continue
		}
		s.objs[d] = &object{dir: true, mod: s.now(), vis: vis}
	}
	return nil
}

func (s *Store) put(p string, data []byte, cfg storage.Config, mustExist bool) (*storage.Metadata, error) {
	p = storage.Clean(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objs[p]
	if ok && o.dir {
		return nil, storage.ErrIsDir
	} else if !ok && mustExist {
		return nil, storage.ErrNotFound
	}
	if err := s.mkdirs(p, storage.Public); err != nil {
		return nil, err
	}
	vis := cfg.Visibility
	if vis == "" && ok {
		vis = o.vis
	}
	o = &object{
		data: append([]byte(nil), data...),
		mime: cfg.Mimetype,
		mod:  s.now(),
		vis:  visibility(vis),
	}
	s.objs[p] = o
	return s.meta(p, o), nil
}

func (s *Store) Write(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, contents, cfg, false)
}

func (s *Store) WriteStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.put(p, data, cfg, false)
}

func (s *Store) Update(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(p, contents, cfg, true)
}

func (s *Store) UpdateStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.put(p, data, cfg, true)
}

func (s *Store) file(p string) (*object, error) {
	o, ok := s.objs[p]
	if !ok {
		return nil, storage.ErrNotFound
	} else if o.dir {
		return nil, storage.ErrIsDir
	}
	return o, nil
}

func (s *Store) Rename(ctx context.Context, p, newPath string) error {
	p, newPath = storage.Clean(p), storage.Clean(newPath)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.file(p)
	if err != nil {
		return err
	}
	if err := s.mkdirs(newPath, storage.Public); err != nil {
		return err
	}
	delete(s.objs, p)
	s.objs[newPath] = o
	return nil
}

func (s *Store) Copy(ctx context.Context, p, newPath string) error {
	p, newPath = storage.Clean(p), storage.Clean(newPath)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.file(p)
	if err != nil {
		return err
	}
	if err := s.mkdirs(newPath, storage.Public); err != nil {
		return err
	}
	c := *o
	c.data = append([]byte(nil), o.data...)
	c.mod = s.now()
	s.objs[newPath] = &c
	return nil
}

func (s *Store) Delete(ctx context.Context, p string) error {
	p = storage.Clean(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file(p); err != nil {
		return err
	}
	delete(s.objs, p)
	return nil
}

func (s *Store) DeleteDir(ctx context.Context, dir string) error {
	dir = storage.Clean(dir)
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir != "" {
		o, ok := s.objs[dir]
		if !ok {
			return storage.ErrNotFound
		} else if !o.dir {
			return storage.ErrNotDir
		}
		delete(s.objs, dir)
	}
	for p := range s.objs {
		if storage.InDir(dir, p, true) {
			delete(s.objs, p)
		}
	}
	return nil
}

func (s *Store) CreateDir(ctx context.Context, dir string, cfg storage.Config) (*storage.Metadata, error) {
	dir = storage.Clean(dir)
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objs[dir]; ok {
		if !o.dir {
			return nil, storage.ErrExists
		}
		return s.meta(dir, o), nil
	}
	vis := visibility(cfg.Visibility)
	if err := s.mkdirs(dir, vis); err != nil {
		return nil, err
	}
	o := &object{dir: true, mod: s.now(), vis: vis}
	s.objs[dir] = o
	return s.meta(dir, o), nil
}

func (s *Store) SetVisibility(ctx context.Context, p string, v storage.Visibility) (*storage.Metadata, error) {
	p = storage.Clean(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objs[p]
	if !ok {
		return nil, storage.ErrNotFound
	}
	o.vis = visibility(v)
	return &storage.Metadata{Path: p, Visibility: o.vis}, nil
}

func (s *Store) Has(ctx context.Context, p string) (bool, error) {
	p = storage.Clean(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objs[p]
	return ok, nil
}

func (s *Store) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	p = storage.Clean(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.file(p)
	if err != nil {
		return nil, err
	}
	m := s.meta(p, o)
	m.Contents = append([]byte(nil), o.data...)
	return m, nil
}

func (s *Store) ReadStream(ctx context.Context, p string) (*storage.Metadata, error) {
	m, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	m.Stream = io.NopCloser(bytes.NewReader(m.Contents))
	m.Contents = nil
	return m, nil
}

func (s *Store) ListContents(ctx context.Context, dir string, recursive bool) ([]storage.Metadata, error) {
	dir = storage.Clean(dir)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Metadata
	for p, o := range s.objs {
		if storage.InDir(dir, p, recursive) {
			out = append(out, *s.meta(p, o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Store) GetMetadata(ctx context.Context, p string) (*storage.Metadata, error) {
	p = storage.Clean(p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objs[p]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.meta(p, o), nil
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
