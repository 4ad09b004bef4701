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

// Package rdf wraps a storage backend so that RDF resources can be read in any
// supported serialization, regardless of the format they are stored in.
//
// A format is selected with SetFormat and is used by the next read-like call
// only. Writes and other operations are forwarded untouched, so resources are
// never re-encoded at rest.
package rdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/cayleygraph/rdfstore/convert"
	"github.com/cayleygraph/rdfstore/format"
	"github.com/cayleygraph/rdfstore/storage"
)

// pending is the format requested for the next read.
type pending struct {
	set    bool
	format format.Format
}

// consume returns the pending format and clears it.
func (p *pending) consume() (format.Format, bool) {
	f, ok := p.format, p.set
	*p = pending{}
	return f, ok
}

// Option configures an Adapter.
type Option func(a *Adapter)

// WithConverter replaces the graph converter.
func WithConverter(c convert.Converter) Option {
	return func(a *Adapter) { a.conv = c }
}

// WithRegistry replaces the default format registry.
func WithRegistry(r *format.Registry) Option {
	return func(a *Adapter) { a.reg = r }
}

// WithBaseURL sets the URL relative references are resolved against.
func WithBaseURL(base string) Option {
	return func(a *Adapter) { a.base = base }
}

// Adapter converts RDF resources of the wrapped backend on read.
//
// An Adapter is not safe for concurrent use. Create one per request and
// share the backend instead.
type Adapter struct {
	backend storage.Backend
	conv    convert.Converter
	reg     *format.Registry
	base    string
	next    pending
}

var _ storage.Backend = (*Adapter)(nil)

// New wraps a backend.
func New(b storage.Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend: b,
		conv:    convert.Graph{},
		reg:     format.Default,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() storage.Backend { return a.backend }

// BaseURL returns the URL used to resolve relative references.
func (a *Adapter) BaseURL() string { return a.base }

// SetFormat selects the format for the next read-like call. An empty format
// clears the selection.
func (a *Adapter) SetFormat(f format.Format) error {
	if f != format.None && !a.reg.Supported(f) {
		return &UnsupportedFormatError{Format: f}
	}
	a.next = pending{set: f != format.None, format: f}
	return nil
}

// GetFormat returns the selected format without clearing it.
func (a *Adapter) GetFormat() format.Format {
	return a.next.format
}

// convert reads p and re-encodes it to the target format.
func (a *Adapter) convert(ctx context.Context, p string, to format.Format) (*storage.Metadata, error) {
	m, err := a.backend.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	data := m.Contents
	if from := a.reg.ForExtension(format.Extension(p)); from != to {
		data, err = a.conv.Convert(m.Contents, from, to, a.base)
		if err != nil {
			return nil, &ConversionError{Path: p, Format: to, Err: err}
		}
	}
	return &storage.Metadata{
		Type:       storage.TypeFile,
		Path:       p,
		Contents:   data,
		Mimetype:   a.reg.MimeFor(to),
		Size:       int64(len(data)),
		Timestamp:  m.Timestamp,
		Visibility: m.Visibility,
	}, nil
}

func (a *Adapter) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	if f, ok := a.next.consume(); ok {
		return a.convert(ctx, p, f)
	}
	return a.backend.Read(ctx, p)
}

func (a *Adapter) ReadStream(ctx context.Context, p string) (*storage.Metadata, error) {
	f, ok := a.next.consume()
	if !ok {
		return a.backend.ReadStream(ctx, p)
	}
	m, err := a.convert(ctx, p, f)
	if err != nil {
		return nil, err
	}
	m.Stream = io.NopCloser(bytes.NewReader(m.Contents))
	m.Contents = nil
	return m, nil
}

func (a *Adapter) Has(ctx context.Context, p string) (bool, error) {
	f, ok := a.next.consume()
	if !ok {
		return a.backend.Has(ctx, p)
	}
	_, err := a.convert(ctx, p, f)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// describe converts p and drops the contents from the result.
func (a *Adapter) describe(ctx context.Context, p string, f format.Format) (*storage.Metadata, error) {
	m, err := a.convert(ctx, p, f)
	if err != nil {
		return nil, err
	}
	m.Contents = nil
	return m, nil
}

func (a *Adapter) GetMetadata(ctx context.Context, p string) (*storage.Metadata, error) {
	if f, ok := a.next.consume(); ok {
		return a.describe(ctx, p, f)
	}
	return a.backend.GetMetadata(ctx, p)
}

func (a *Adapter) GetSize(ctx context.Context, p string) (*storage.Metadata, error) {
	if f, ok := a.next.consume(); ok {
		return a.describe(ctx, p, f)
	}
	return a.backend.GetSize(ctx, p)
}

// GetMimetype never reads the resource. With a selected format the answer is
// the format MIME type and the backend is not asked. Otherwise a generic
// text/plain answer is refined using the extension.
func (a *Adapter) GetMimetype(ctx context.Context, p string) (*storage.Metadata, error) {
	if f, ok := a.next.consume(); ok {
		return &storage.Metadata{Path: p, Mimetype: a.reg.MimeFor(f)}, nil
	}
	m, err := a.backend.GetMimetype(ctx, p)
	if err != nil {
		return nil, err
	}
	if m.Mimetype == "text/plain" {
		if mt := a.reg.MimeForExtension(format.Extension(p)); mt != "" {
			m.Mimetype = mt
		}
	}
	return m, nil
}

func (a *Adapter) Write(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return a.backend.Write(ctx, p, contents, cfg)
}

func (a *Adapter) WriteStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return a.backend.WriteStream(ctx, p, r, cfg)
}

func (a *Adapter) Update(ctx context.Context, p string, contents []byte, cfg storage.Config) (*storage.Metadata, error) {
	return a.backend.Update(ctx, p, contents, cfg)
}

func (a *Adapter) UpdateStream(ctx context.Context, p string, r io.Reader, cfg storage.Config) (*storage.Metadata, error) {
	return a.backend.UpdateStream(ctx, p, r, cfg)
}

func (a *Adapter) Rename(ctx context.Context, p, newPath string) error {
	return a.backend.Rename(ctx, p, newPath)
}

func (a *Adapter) Copy(ctx context.Context, p, newPath string) error {
	return a.backend.Copy(ctx, p, newPath)
}

func (a *Adapter) Delete(ctx context.Context, p string) error {
	return a.backend.Delete(ctx, p)
}

func (a *Adapter) DeleteDir(ctx context.Context, dir string) error {
	return a.backend.DeleteDir(ctx, dir)
}

func (a *Adapter) CreateDir(ctx context.Context, dir string, cfg storage.Config) (*storage.Metadata, error) {
	return a.backend.CreateDir(ctx, dir, cfg)
}

func (a *Adapter) SetVisibility(ctx context.Context, p string, v storage.Visibility) (*storage.Metadata, error) {
	return a.backend.SetVisibility(ctx, p, v)
}

func (a *Adapter) ListContents(ctx context.Context, dir string, recursive bool) ([]storage.Metadata, error) {
	return a.backend.ListContents(ctx, dir, recursive)
}

func (a *Adapter) GetTimestamp(ctx context.Context, p string) (*storage.Metadata, error) {
	return a.backend.GetTimestamp(ctx, p)
}

func (a *Adapter) GetVisibility(ctx context.Context, p string) (*storage.Metadata, error) {
	return a.backend.GetVisibility(ctx, p)
}
