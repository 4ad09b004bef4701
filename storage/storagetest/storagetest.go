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

// Package storagetest is a conformance suite shared by storage backends.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfstore/storage"
)

// BackendFunc creates an empty backend and a cleanup function.
type BackendFunc func(t testing.TB) (storage.Backend, func())

type Config struct {
	// SkipVisibility is set for backends that cannot store visibility.
	SkipVisibility bool
	// SkipStoredMimetype is set for backends that always detect mimetypes.
	SkipStoredMimetype bool
}

// TestAll runs every conformance test against backends created by gen.
func TestAll(t *testing.T, gen BackendFunc, conf *Config) {
	if conf == nil {
		conf = &Config{}
	}
	for _, c := range []struct {
		name string
		fnc  func(t testing.TB, gen BackendFunc)
		skip bool
	}{
		{name: "write read", fnc: TestWriteRead},
		{name: "stream", fnc: TestStream},
		{name: "update", fnc: TestUpdate},
		{name: "rename copy", fnc: TestRenameCopy},
		{name: "delete", fnc: TestDelete},
		{name: "dirs", fnc: TestDirs},
		{name: "list", fnc: TestList},
		{name: "metadata", fnc: TestMetadata},
		{name: "stored mimetype", fnc: TestStoredMimetype, skip: conf.SkipStoredMimetype},
		{name: "visibility", fnc: TestVisibility, skip: conf.SkipVisibility},
	} {
		c := c
		t.Run(c.name, func(t *testing.T) {
			if c.skip {
				t.SkipNow()
			}
			c.fnc(t, gen)
		})
	}
}

// MakeFiles writes a small tree used by several tests.
func MakeFiles(t testing.TB, b storage.Backend) {
	ctx := context.TODO()
	for p, data := range map[string]string{
		"card.ttl":            "@prefix rdfs: <> .\n</> rdfs:comment '' .",
		"profile/card.jsonld": `{"@id": "", "http://schema.org/name": "Alice"}`,
		"profile/keys/a.nt":   "<https://example.com/a> <https://example.com/b> \"c\" .\n",
		"notes.txt":           "plain text",
	} {
		_, err := b.Write(ctx, p, []byte(data), storage.Config{})
		require.NoError(t, err, p)
	}
}

func TestWriteRead(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	m, err := b.Write(ctx, "a/b.ttl", []byte("data"), storage.Config{})
	require.NoError(t, err)
	require.Equal(t, "a/b.ttl", m.Path)
	require.Equal(t, int64(4), m.Size)

	ok, err := b.Has(ctx, "a/b.ttl")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = b.Has(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok, "parent directories are created")
	ok, err = b.Has(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	m, err = b.Read(ctx, "/a/b.ttl")
	require.NoError(t, err)
	require.Equal(t, storage.TypeFile, m.Type)
	require.Equal(t, "a/b.ttl", m.Path)
	require.Equal(t, []byte("data"), m.Contents)

	_, err = b.Read(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// overwrite
	_, err = b.Write(ctx, "a/b.ttl", []byte("other"), storage.Config{})
	require.NoError(t, err)
	m, err = b.Read(ctx, "a/b.ttl")
	require.NoError(t, err)
	require.Equal(t, []byte("other"), m.Contents)
}

func TestStream(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.WriteStream(ctx, "s.nt", bytes.NewReader([]byte("stream")), storage.Config{})
	require.NoError(t, err)
	m, err := b.ReadStream(ctx, "s.nt")
	require.NoError(t, err)
	require.NotNil(t, m.Stream)
	data, err := io.ReadAll(m.Stream)
	require.NoError(t, err)
	require.NoError(t, m.Stream.Close())
	require.Equal(t, "stream", string(data))

	_, err = b.UpdateStream(ctx, "s.nt", bytes.NewReader([]byte("again")), storage.Config{})
	require.NoError(t, err)
	m, err = b.Read(ctx, "s.nt")
	require.NoError(t, err)
	require.Equal(t, "again", string(m.Contents))

	_, err = b.ReadStream(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdate(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.Update(ctx, "u.ttl", []byte("x"), storage.Config{})
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = b.Write(ctx, "u.ttl", []byte("x"), storage.Config{})
	require.NoError(t, err)
	m, err := b.Update(ctx, "u.ttl", []byte("xyz"), storage.Config{})
	require.NoError(t, err)
	require.Equal(t, int64(3), m.Size)
}

func TestRenameCopy(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.Write(ctx, "a.ttl", []byte("a"), storage.Config{})
	require.NoError(t, err)

	require.NoError(t, b.Copy(ctx, "a.ttl", "dir/c.ttl"))
	require.NoError(t, b.Rename(ctx, "a.ttl", "b.ttl"))

	ok, err := b.Has(ctx, "a.ttl")
	require.NoError(t, err)
	require.False(t, ok)
	for _, p := range []string{"b.ttl", "dir/c.ttl"} {
		m, err := b.Read(ctx, p)
		require.NoError(t, err, p)
		require.Equal(t, "a", string(m.Contents))
	}

	require.ErrorIs(t, b.Rename(ctx, "missing", "x"), storage.ErrNotFound)
	require.ErrorIs(t, b.Copy(ctx, "missing", "x"), storage.ErrNotFound)

	// onto itself
	require.NoError(t, b.Rename(ctx, "b.ttl", "b.ttl"))
	require.NoError(t, b.Rename(ctx, "b.ttl", "./b.ttl"))
	require.NoError(t, b.Copy(ctx, "dir/c.ttl", "dir/c.ttl"))
	for _, p := range []string{"b.ttl", "dir/c.ttl"} {
		m, err := b.Read(ctx, p)
		require.NoError(t, err, p)
		require.Equal(t, "a", string(m.Contents))
	}
	require.ErrorIs(t, b.Rename(ctx, "missing", "missing"), storage.ErrNotFound)
	require.ErrorIs(t, b.Rename(ctx, "dir", "dir"), storage.ErrIsDir)
}

func TestDelete(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.Write(ctx, "d.ttl", []byte("d"), storage.Config{})
	require.NoError(t, err)
	require.NoError(t, b.Delete(ctx, "d.ttl"))
	ok, err := b.Has(ctx, "d.ttl")
	require.NoError(t, err)
	require.False(t, ok)
	require.ErrorIs(t, b.Delete(ctx, "d.ttl"), storage.ErrNotFound)
}

func TestDirs(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	m, err := b.CreateDir(ctx, "x/y", storage.Config{})
	require.NoError(t, err)
	require.Equal(t, storage.TypeDir, m.Type)
	require.Equal(t, "x/y", m.Path)

	_, err = b.Write(ctx, "x/y/z.ttl", []byte("z"), storage.Config{})
	require.NoError(t, err)
	_, err = b.Write(ctx, "x/keep.ttl", []byte("k"), storage.Config{})
	require.NoError(t, err)

	require.NoError(t, b.DeleteDir(ctx, "x/y"))
	for p, exp := range map[string]bool{"x/y": false, "x/y/z.ttl": false, "x/keep.ttl": true, "x": true} {
		ok, err := b.Has(ctx, p)
		require.NoError(t, err)
		require.Equal(t, exp, ok, p)
	}
	require.ErrorIs(t, b.DeleteDir(ctx, "x/y"), storage.ErrNotFound)
}

func TestList(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()
	MakeFiles(t, b)

	paths := func(list []storage.Metadata) []string {
		var out []string
		for _, m := range list {
			out = append(out, m.Path)
		}
		return out
	}

	list, err := b.ListContents(ctx, "", false)
	require.NoError(t, err)
	require.Equal(t, []string{"card.ttl", "notes.txt", "profile"}, paths(list))
	require.Equal(t, storage.TypeDir, list[2].Type)

	list, err = b.ListContents(ctx, "profile", true)
	require.NoError(t, err)
	require.Equal(t, []string{"profile/card.jsonld", "profile/keys", "profile/keys/a.nt"}, paths(list))

	list, err = b.ListContents(ctx, "nowhere", true)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMetadata(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()
	MakeFiles(t, b)

	m, err := b.GetSize(ctx, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len("plain text")), m.Size)

	m, err = b.GetMimetype(ctx, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, "text/plain", m.Mimetype)

	m, err = b.GetTimestamp(ctx, "card.ttl")
	require.NoError(t, err)
	require.False(t, m.Timestamp.IsZero())

	m, err = b.GetMetadata(ctx, "profile")
	require.NoError(t, err)
	require.Equal(t, storage.TypeDir, m.Type)

	_, err = b.GetMetadata(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoredMimetype(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.Write(ctx, "typed.bin", []byte("x"), storage.Config{Mimetype: "application/x-custom"})
	require.NoError(t, err)
	m, err := b.GetMimetype(ctx, "typed.bin")
	require.NoError(t, err)
	require.Equal(t, "application/x-custom", m.Mimetype)
}

func TestVisibility(t testing.TB, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.TODO()

	_, err := b.Write(ctx, "v.ttl", []byte("v"), storage.Config{Visibility: storage.Private})
	require.NoError(t, err)
	m, err := b.GetVisibility(ctx, "v.ttl")
	require.NoError(t, err)
	require.Equal(t, storage.Private, m.Visibility)

	_, err = b.SetVisibility(ctx, "v.ttl", storage.Public)
	require.NoError(t, err)
	m, err = b.GetVisibility(ctx, "v.ttl")
	require.NoError(t, err)
	require.Equal(t, storage.Public, m.Visibility)

	_, err = b.SetVisibility(ctx, "missing", storage.Public)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
