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

package rdf

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfstore/convert"
	"github.com/cayleygraph/rdfstore/format"
	"github.com/cayleygraph/rdfstore/storage"
	"github.com/cayleygraph/rdfstore/storage/memstore"
	"github.com/cayleygraph/rdfstore/storage/storagetest"
)

const (
	baseURL = "https://example.com/"
	card    = "@prefix rdfs: <> .\n</> rdfs:comment '' ."
)

// spyBackend counts reads and MIME lookups that reach the wrapped store.
type spyBackend struct {
	*memstore.Store
	reads int
	mimes int
}

func (b *spyBackend) GetMimetype(ctx context.Context, p string) (*storage.Metadata, error) {
	b.mimes++
	return b.Store.GetMimetype(ctx, p)
}

func (b *spyBackend) Read(ctx context.Context, p string) (*storage.Metadata, error) {
	b.reads++
	return b.Store.Read(ctx, p)
}

// spyConverter records calls and returns a fixed result.
type spyConverter struct {
	calls int
	from  format.Format
	to    format.Format
	base  string
	out   []byte
	err   error
}

func (c *spyConverter) Convert(data []byte, from, to format.Format, base string) ([]byte, error) {
	c.calls++
	c.from, c.to, c.base = from, to, base
	return c.out, c.err
}

func newAdapter(t testing.TB, opts ...Option) (*Adapter, *spyBackend) {
	b := &spyBackend{Store: memstore.New()}
	ctx := context.TODO()
	_, err := b.Write(ctx, "card.ttl", []byte(card), storage.Config{})
	require.NoError(t, err)
	_, err = b.Write(ctx, "readme.txt", []byte("hello"), storage.Config{})
	require.NoError(t, err)
	_, err = b.Write(ctx, "data.nt", []byte("<https://example.com/a> <https://example.com/b> \"c\" .\n"), storage.Config{Mimetype: "text/plain"})
	require.NoError(t, err)
	b.reads = 0
	return New(b, append([]Option{WithBaseURL(baseURL)}, opts...)...), b
}

func TestPassthroughConformance(t *testing.T) {
	storagetest.TestAll(t, func(t testing.TB) (storage.Backend, func()) {
		return New(memstore.New()), func() {}
	}, nil)
}

func TestSetFormat(t *testing.T) {
	a, _ := newAdapter(t)
	require.Equal(t, format.None, a.GetFormat())

	for _, f := range []format.Format{format.Turtle, format.RDFXML, format.NTriples, format.N3, format.JSONLD} {
		require.NoError(t, a.SetFormat(f))
		require.Equal(t, f, a.GetFormat())
		// reading the format does not consume it
		require.Equal(t, f, a.GetFormat())
	}

	require.NoError(t, a.SetFormat(format.N3))
	for _, f := range []format.Format{"bogus", format.Unknown, "TURTLE"} {
		err := a.SetFormat(f)
		var e *UnsupportedFormatError
		require.True(t, errors.As(err, &e), "%v", err)
		require.Equal(t, f, e.Format)
		require.Equal(t, format.N3, a.GetFormat())
	}

	require.NoError(t, a.SetFormat(format.None))
	require.Equal(t, format.None, a.GetFormat())
}

func TestReadCard(t *testing.T) {
	a, b := newAdapter(t)
	ctx := context.TODO()

	require.NoError(t, a.SetFormat(format.JSONLD))
	m, err := a.Read(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, storage.TypeFile, m.Type)
	require.Equal(t, "card.ttl", m.Path)
	require.Equal(t, "application/ld+json", m.Mimetype)
	require.Equal(t, int64(len(m.Contents)), m.Size)
	require.Equal(t, format.None, a.GetFormat())
	require.Equal(t, 1, b.reads)

	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal(m.Contents, &doc), string(m.Contents))
	require.Len(t, doc, 1)
	require.Equal(t, baseURL, doc[0]["@id"])
}

func TestConsumeOnce(t *testing.T) {
	conv := &spyConverter{out: []byte("converted")}
	a, _ := newAdapter(t, WithConverter(conv))
	ctx := context.TODO()

	require.NoError(t, a.SetFormat(format.NTriples))
	m, err := a.Read(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, "converted", string(m.Contents))

	m, err = a.Read(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, card, string(m.Contents))
	require.Equal(t, 1, conv.calls)
	require.Equal(t, format.Turtle, conv.from)
	require.Equal(t, format.NTriples, conv.to)
	require.Equal(t, baseURL, conv.base)
}

func TestEveryReadConsumes(t *testing.T) {
	ctx := context.TODO()
	for name, fnc := range map[string]func(a *Adapter) error{
		"read": func(a *Adapter) error { _, err := a.Read(ctx, "card.ttl"); return err },
		"stream": func(a *Adapter) error {
			m, err := a.ReadStream(ctx, "card.ttl")
			if err == nil {
				err = m.Stream.Close()
			}
			return err
		},
		"has":      func(a *Adapter) error { _, err := a.Has(ctx, "card.ttl"); return err },
		"metadata": func(a *Adapter) error { _, err := a.GetMetadata(ctx, "card.ttl"); return err },
		"size":     func(a *Adapter) error { _, err := a.GetSize(ctx, "card.ttl"); return err },
		"mimetype": func(a *Adapter) error { _, err := a.GetMimetype(ctx, "card.ttl"); return err },
	} {
		t.Run(name, func(t *testing.T) {
			a, _ := newAdapter(t, WithConverter(&spyConverter{out: []byte("x")}))
			require.NoError(t, a.SetFormat(format.RDFXML))
			require.NoError(t, fnc(a))
			require.Equal(t, format.None, a.GetFormat())
		})
	}
}

func TestOtherOpsKeepFormat(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.TODO()
	require.NoError(t, a.SetFormat(format.JSONLD))

	_, err := a.Write(ctx, "new.ttl", []byte(card), storage.Config{})
	require.NoError(t, err)
	_, err = a.Update(ctx, "new.ttl", []byte(card), storage.Config{})
	require.NoError(t, err)
	require.NoError(t, a.Copy(ctx, "new.ttl", "copy.ttl"))
	require.NoError(t, a.Rename(ctx, "copy.ttl", "moved.ttl"))
	require.NoError(t, a.Delete(ctx, "moved.ttl"))
	_, err = a.CreateDir(ctx, "dir", storage.Config{})
	require.NoError(t, err)
	require.NoError(t, a.DeleteDir(ctx, "dir"))
	_, err = a.SetVisibility(ctx, "new.ttl", storage.Private)
	require.NoError(t, err)
	_, err = a.ListContents(ctx, "", true)
	require.NoError(t, err)
	_, err = a.GetTimestamp(ctx, "new.ttl")
	require.NoError(t, err)
	m, err := a.GetVisibility(ctx, "new.ttl")
	require.NoError(t, err)
	require.Equal(t, storage.Private, m.Visibility)

	require.Equal(t, format.JSONLD, a.GetFormat())
}

func TestSameFormat(t *testing.T) {
	conv := &spyConverter{err: errors.New("must not be called")}
	a, _ := newAdapter(t, WithConverter(conv))

	require.NoError(t, a.SetFormat(format.Turtle))
	m, err := a.Read(context.TODO(), "card.ttl")
	require.NoError(t, err)
	require.Equal(t, card, string(m.Contents))
	require.Equal(t, "text/turtle", m.Mimetype)
	require.Zero(t, conv.calls)
}

func TestUnknownExtension(t *testing.T) {
	conv := &spyConverter{out: []byte("x")}
	a, _ := newAdapter(t, WithConverter(conv))

	require.NoError(t, a.SetFormat(format.Turtle))
	_, err := a.Read(context.TODO(), "readme.txt")
	require.NoError(t, err)
	require.Equal(t, 1, conv.calls)
	require.Equal(t, format.None, conv.from)
}

func TestConversionError(t *testing.T) {
	cause := errors.New("broken")
	a, _ := newAdapter(t, WithConverter(&spyConverter{err: cause}))

	require.NoError(t, a.SetFormat(format.JSONLD))
	_, err := a.Read(context.TODO(), "card.ttl")
	var e *ConversionError
	require.True(t, errors.As(err, &e), "%v", err)
	require.Equal(t, "card.ttl", e.Path)
	require.Equal(t, format.JSONLD, e.Format)
	require.ErrorIs(t, err, cause)
	require.Equal(t, `could not convert file "card.ttl" to format "jsonld": broken`, err.Error())
	require.Equal(t, format.None, a.GetFormat())
}

func TestMissingFile(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.TODO()

	require.NoError(t, a.SetFormat(format.JSONLD))
	_, err := a.Read(ctx, "missing.ttl")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, a.SetFormat(format.JSONLD))
	ok, err := a.Has(ctx, "missing.ttl")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, a.SetFormat(format.JSONLD))
	ok, err = a.Has(ctx, "card.ttl")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReadStream(t *testing.T) {
	a, _ := newAdapter(t, WithConverter(&spyConverter{out: []byte("converted")}))

	require.NoError(t, a.SetFormat(format.NTriples))
	m, err := a.ReadStream(context.TODO(), "card.ttl")
	require.NoError(t, err)
	defer m.Stream.Close()
	data, err := io.ReadAll(m.Stream)
	require.NoError(t, err)
	require.Equal(t, "converted", string(data))
	require.Equal(t, int64(len("converted")), m.Size)
}

func TestSizeAndMetadata(t *testing.T) {
	a, _ := newAdapter(t, WithConverter(&spyConverter{out: []byte("0123456789")}))
	ctx := context.TODO()

	require.NoError(t, a.SetFormat(format.NTriples))
	m, err := a.GetSize(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, int64(10), m.Size)
	require.Nil(t, m.Contents)

	require.NoError(t, a.SetFormat(format.NTriples))
	m, err = a.GetMetadata(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, "application/n-triples", m.Mimetype)
	require.Equal(t, int64(10), m.Size)

	m, err = a.GetSize(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, int64(len(card)), m.Size)
}

func TestMimetype(t *testing.T) {
	conv := &spyConverter{err: errors.New("must not be called")}
	a, b := newAdapter(t, WithConverter(conv))
	ctx := context.TODO()

	require.NoError(t, a.SetFormat(format.JSONLD))
	m, err := a.GetMimetype(ctx, "card.ttl")
	require.NoError(t, err)
	require.Equal(t, "card.ttl", m.Path)
	require.Equal(t, "application/ld+json", m.Mimetype)
	require.Zero(t, b.reads)
	require.Zero(t, b.mimes)
	require.Zero(t, conv.calls)

	// the selected format answers even for paths the backend lacks
	require.NoError(t, a.SetFormat(format.NTriples))
	m, err = a.GetMimetype(ctx, "missing.ttl")
	require.NoError(t, err)
	require.Equal(t, "application/n-triples", m.Mimetype)
	require.Zero(t, b.mimes)
	require.Equal(t, format.None, a.GetFormat())

	// generic answers are refined by the extension
	m, err = a.GetMimetype(ctx, "data.nt")
	require.NoError(t, err)
	require.Equal(t, "application/n-triples", m.Mimetype)

	// unknown extensions keep the backend answer
	m, err = a.GetMimetype(ctx, "readme.txt")
	require.NoError(t, err)
	require.Equal(t, "text/plain", m.Mimetype)

	_, err = a.GetMimetype(ctx, "missing.ttl")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.Zero(t, b.reads)
}

func TestConvertFunc(t *testing.T) {
	var got format.Format
	a, _ := newAdapter(t, WithConverter(convert.Func(func(data []byte, from, to format.Format, base string) ([]byte, error) {
		got = to
		return data, nil
	})))
	require.NoError(t, a.SetFormat(format.N3))
	_, err := a.Read(context.TODO(), "card.ttl")
	require.NoError(t, err)
	require.Equal(t, format.N3, got)
}
