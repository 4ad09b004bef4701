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

// Package kv stores objects in any key-value database supported by hidalgo.
//
// File contents and metadata live in separate buckets, keyed by the cleaned
// object path. Directories only have a metadata record.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	hkv "github.com/hidal-go/hidalgo/kv"

	"github.com/cayleygraph/rdfstore/storage"
)

var (
	dataBucket = []byte("data")
	metaBucket = []byte("meta")
)

func dataKey(p string) hkv.Key { return hkv.Key{dataBucket, []byte(p)} }
func metaKey(p string) hkv.Key { return hkv.Key{metaBucket, []byte(p)} }

// keyPath recovers an object path from a bucket key.
func keyPath(k hkv.Key) string {
	if len(k) < 2 {
		return ""
	}
	return string(bytes.Join(k[1:], []byte("/")))
}

// record is the metadata stored for every object.
type record struct {
	Dir        bool               `json:"dir,omitempty"`
	Mimetype   string             `json:"mime,omitempty"`
	Size       int64              `json:"size"`
	Modified   time.Time          `json:"mod"`
	Visibility storage.Visibility `json:"vis"`
}

// Store implements storage.Backend on top of a hidalgo KV.
type Store struct {
	db  hkv.KV
	now func() time.Time
}

var (
	_ storage.Backend = (*Store)(nil)
	_ storage.Closer  = (*Store)(nil)
)

// New wraps an opened database. The store takes ownership of db.
func New(db hkv.KV) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) update(ctx context.Context, fnc func(tx hkv.Tx) error) error {
	tx, err := s.db.Tx(true)
	if err != nil {
		return err
	}
	tx = wrapTx(tx)
	defer tx.Close()
	if err = fnc(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) view(fnc func(tx hkv.Tx) error) error {
	tx, err := s.db.Tx(false)
	if err != nil {
		return err
	}
	tx = wrapTx(tx)
	defer tx.Close()
	return fnc(tx)
}

func getRecord(ctx context.Context, tx hkv.Tx, p string) (*record, error) {
	val, err := tx.Get(ctx, metaKey(p))
	if err == hkv.ErrNotFound {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	var r record
	if err = json.Unmarshal(val, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func putRecord(tx hkv.Tx, p string, r *record) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return tx.Put(metaKey(p), val)
}

func (s *Store) meta(p string, r *record) *storage.Metadata {
	m := &storage.Metadata{
		Type:       storage.TypeFile,
		Path:       p,
		Timestamp:  r.Modified,
		Visibility: r.Visibility,
	}
	if r.Dir {
		m.Type = storage.TypeDir
		return m
	}
	m.Size = r.Size
	m.Mimetype = r.Mimetype
	return m
}

func visibility(v storage.Visibility) storage.Visibility {
	if v == "" {
		return storage.Public
	}
	return v
}

func (s *Store) mkdirs(ctx context.Context, tx hkv.Tx, p string, vis storage.Visibility) error {
	for _, d := range storage.Parents(p) {
		r, err := getRecord(ctx, tx, d)
		if err == nil {
			if !r.Dir {
				return storage.ErrNotDir
			}
			continue
		} else if err != storage.ErrNotFound {
			return err
		}
		if err = putRecord(tx, d, &record{Dir: true, Modified: s.now(), Visibility: vis}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) put(ctx context.Context, p string, data []byte, cfg storage.Config, mustExist bool) (*storage.Metadata, error) {
	p = storage.Clean(p)
	var m *storage.Metadata
	err := s.update(ctx, func(tx hkv.Tx) error {
		old, err := getRecord(ctx, tx, p)
		switch {
		case err == storage.ErrNotFound:
			if mustExist {
				return err
			}
			old = nil
		case err != nil:
			return err
		case old.Dir:
			return storage.ErrIsDir
		}
		vis := cfg.Visibility
		if vis == "" && old != nil {
			vis = old.Visibility
		}
		vis = visibility(vis)
		if err = s.mkdirs(ctx, tx, p, storage.Public); err != nil {
			return err
		}
		mt := cfg.Mimetype
		if mt == "" {
			mt = storage.DetectMimetype(p, data)
		}
		r := &record{Mimetype: mt, Size: int64(len(data)), Modified: s.now(), Visibility: vis}
		if err = tx.Put(dataKey(p), data); err != nil {
			return err
		}
		if err = putRecord(tx, p, r); err != nil {
			return err
		}
		m = s.meta(p, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Write(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, contents, cfg, false)
}

func (s *Store) WriteStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.put(ctx, p, data, cfg, false)
}

func (s *Store) Update(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return s.put(ctx, p, contents, cfg, true)
}

func (s *Store) UpdateStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.put(ctx, p, data, cfg, true)
}

func (s *Store) copyFile(ctx context.Context, tx hkv.Tx, from, to string) error {
	r, err := getRecord(ctx, tx, from)
	if err != nil {
		return err
	} else if r.Dir {
		return storage.ErrIsDir
	}
	data, err := tx.Get(ctx, dataKey(from))
	if err != nil {
		return err
	}
	if err = s.mkdirs(ctx, tx, to, storage.Public); err != nil {
		return err
	}
	if err = tx.Put(dataKey(to), data); err != nil {
		return err
	}
	r.Modified = s.now()
	return putRecord(tx, to, r)
}

func delFile(tx hkv.Tx, p string) error {
	if err := tx.Del(dataKey(p)); err != nil && err != hkv.ErrNotFound {
		return err
	}
	return tx.Del(metaKey(p))
}

func (s *Store) Rename(ctx context.Context, p, newPath string) error {
	p, newPath = storage.Clean(p), storage.Clean(newPath)
	return s.update(ctx, func(tx hkv.Tx) error {
		if p == newPath {
			r, err := getRecord(ctx, tx, p)
			if err == nil && r.Dir {
				err = storage.ErrIsDir
			}
			return err
		}
		if err := s.copyFile(ctx, tx, p, newPath); err != nil {
			return err
		}
		return delFile(tx, p)
	})
}

func (s *Store) Copy(ctx context.Context, p, newPath string) error {
	p, newPath = storage.Clean(p), storage.Clean(newPath)
	return s.update(ctx, func(tx hkv.Tx) error {
		return s.copyFile(ctx, tx, p, newPath)
	})
}

func (s *Store) Delete(ctx context.Context, p string) error {
	p = storage.Clean(p)
	return s.update(ctx, func(tx hkv.Tx) error {
		r, err := getRecord(ctx, tx, p)
		if err != nil {
			return err
		} else if r.Dir {
			return storage.ErrIsDir
		}
		return delFile(tx, p)
	})
}

// scan returns all paths of the metadata bucket that are inside dir.
func scan(ctx context.Context, tx hkv.Tx, dir string, recursive bool) (map[string]*record, error) {
	it := tx.Scan(hkv.Key{metaBucket})
	defer it.Close()
	out := make(map[string]*record)
	for it.Next(ctx) {
		p := keyPath(it.Key())
		if !storage.InDir(dir, p, recursive) {
			continue
		}
		var r record
		if err := json.Unmarshal(it.Val(), &r); err != nil {
			return nil, err
		}
		out[p] = &r
	}
	return out, it.Err()
}

func (s *Store) DeleteDir(ctx context.Context, dir string) error {
	dir = storage.Clean(dir)
	return s.update(ctx, func(tx hkv.Tx) error {
		if dir != "" {
			r, err := getRecord(ctx, tx, dir)
			if err != nil {
				return err
			} else if !r.Dir {
				return storage.ErrNotDir
			}
		}
		sub, err := scan(ctx, tx, dir, true)
		if err != nil {
			return err
		}
		for p := range sub {
			if err = delFile(tx, p); err != nil {
				return err
			}
		}
		if dir == "" {
			return nil
		}
		return tx.Del(metaKey(dir))
	})
}

func (s *Store) CreateDir(ctx context.Context, dir string, cfg storage.Config) (*storage.Metadata, error) {
	dir = storage.Clean(dir)
	var m *storage.Metadata
	err := s.update(ctx, func(tx hkv.Tx) error {
		r, err := getRecord(ctx, tx, dir)
		if err == nil {
			if !r.Dir {
				return storage.ErrExists
			}
			m = s.meta(dir, r)
			return nil
		} else if err != storage.ErrNotFound {
			return err
		}
		if err = s.mkdirs(ctx, tx, dir, storage.Public); err != nil {
			return err
		}
		r = &record{Dir: true, Modified: s.now(), Visibility: visibility(cfg.Visibility)}
		if err = putRecord(tx, dir, r); err != nil {
			return err
		}
		m = s.meta(dir, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) SetVisibility(ctx context.Context, p string, v storage.Visibility) (*storage.Metadata, error) {
	p = storage.Clean(p)
	var m *storage.Metadata
	err := s.update(ctx, func(tx hkv.Tx) error {
		r, err := getRecord(ctx, tx, p)
		if err != nil {
			return err
		}
		r.Visibility = visibility(v)
		if err = putRecord(tx, p, r); err != nil {
			return err
		}
		m = s.meta(p, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Has(ctx context.Context, p string) (bool, error) {
	_, err := s.GetMetadata(ctx, p)
	if err == storage.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	p = storage.Clean(p)
	var m *storage.Metadata
	err := s.view(func(tx hkv.Tx) error {
		r, err := getRecord(ctx, tx, p)
		if err != nil {
			return err
		} else if r.Dir {
			return storage.ErrIsDir
		}
		data, err := tx.Get(ctx, dataKey(p))
		if err == hkv.ErrNotFound {
			return storage.ErrNotFound
		} else if err != nil {
			return err
		}
		m = s.meta(p, r)
		m.Contents = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
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
	var out []storage.Metadata
	err := s.view(func(tx hkv.Tx) error {
		sub, err := scan(ctx, tx, dir, recursive)
		if err != nil {
			return err
		}
		out = make([]storage.Metadata, 0, len(sub))
		for p, r := range sub {
			out = append(out, *s.meta(p, r))
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
	p = storage.Clean(p)
	var m *storage.Metadata
	err := s.view(func(tx hkv.Tx) error {
		r, err := getRecord(ctx, tx, p)
		if err != nil {
			return err
		}
		m = s.meta(p, r)
		return nil
	})
	if err != nil {
		return nil, err
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
