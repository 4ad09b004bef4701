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

// Package storage defines the object storage abstraction wrapped by the RDF
// adapter, together with a registry of backend implementations.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("storage: path not found")
	ErrExists   = errors.New("storage: path already exists")
	ErrNotDir   = errors.New("storage: not a directory")
	ErrIsDir    = errors.New("storage: is a directory")
)

// Type distinguishes files from directories in Metadata.
type Type string

const (
	TypeFile Type = "file"
	TypeDir  Type = "dir"
)

// Visibility of a stored object.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Metadata is the envelope returned by most backend operations. Only the
// fields relevant to the call are filled.
type Metadata struct {
	Type       Type          `json:"type"`
	Path       string        `json:"path"`
	Contents   []byte        `json:"-"`
	Stream     io.ReadCloser `json:"-"`
	Mimetype   string        `json:"mimetype,omitempty"`
	Size       int64         `json:"size"`
	Timestamp  time.Time     `json:"timestamp"`
	Visibility Visibility    `json:"visibility,omitempty"`
}

// Config carries per-call write options.
type Config struct {
	Visibility Visibility
	// Mimetype overrides the type guessed by the backend.
	Mimetype string
}

// Backend is a hierarchical object store. Paths use forward slashes and are
// relative to the backend root. Implementations are safe for concurrent use.
type Backend interface {
	Write(ctx context.Context, path string, contents []byte, cfg Config) (*Metadata, error)
	WriteStream(ctx context.Context, path string, r io.Reader, cfg Config) (*Metadata, error)
	Update(ctx context.Context, path string, contents []byte, cfg Config) (*Metadata, error)
	UpdateStream(ctx context.Context, path string, r io.Reader, cfg Config) (*Metadata, error)
	Rename(ctx context.Context, path, newPath string) error
	Copy(ctx context.Context, path, newPath string) error
	Delete(ctx context.Context, path string) error
	DeleteDir(ctx context.Context, dir string) error
	CreateDir(ctx context.Context, dir string, cfg Config) (*Metadata, error)
	SetVisibility(ctx context.Context, path string, v Visibility) (*Metadata, error)

	Has(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) (*Metadata, error)
	// ReadStream returns metadata with Stream set. The caller closes it.
	ReadStream(ctx context.Context, path string) (*Metadata, error)
	ListContents(ctx context.Context, dir string, recursive bool) ([]Metadata, error)
	GetMetadata(ctx context.Context, path string) (*Metadata, error)
	GetSize(ctx context.Context, path string) (*Metadata, error)
	GetMimetype(ctx context.Context, path string) (*Metadata, error)
	GetTimestamp(ctx context.Context, path string) (*Metadata, error)
	GetVisibility(ctx context.Context, path string) (*Metadata, error)
}

// Closer is implemented by backends holding external resources.
type Closer interface {
	Close() error
}

// Clean normalizes a path: forward slashes, no leading or trailing slash,
// no dot segments. The root is an empty string.
func Clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// InDir reports whether p is inside dir. When recursive is false only direct
// children match.
func InDir(dir, p string, recursive bool) bool {
	if dir != "" {
		if !strings.HasPrefix(p, dir+"/") {
			return false
		}
		p = p[len(dir)+1:]
	}
	if p == "" {
		return false
	}
	return recursive || !strings.Contains(p, "/")
}

// Parents returns all ancestor directories of p, closest last.
func Parents(p string) []string {
	var out []string
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[:i])
		}
	}
	return out
}
