// Copyright 2014 The Cayley Authors. All rights reserved.
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

package decompressor

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

const doc = "<https://example.com/a> <https://example.com/b> \"c\" .\n"

func gzipped(t testing.TB, s string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t testing.TB, s string) []byte {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestReadAll(t *testing.T) {
	for _, c := range []struct {
		name string
		in   []byte
		exp  string
	}{
		{name: "plain", in: []byte(doc), exp: doc},
		{name: "short", in: []byte("<>"), exp: "<>"},
		{name: "empty", in: nil, exp: ""},
		{name: "gzip", in: gzipped(t, doc), exp: doc},
		{name: "zstd", in: zstded(t, doc), exp: doc},
		{name: "bzip2", in: []byte{
			0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xb5, 0x4b, 0xe3, 0xc4, 0x00, 0x00,
			0x02, 0xd1, 0x80, 0x00, 0x10, 0x40, 0x00, 0x2e, 0x04, 0x04, 0x20, 0x20, 0x00, 0x31, 0x06, 0x4c,
			0x41, 0x4c, 0x1e, 0xa7, 0xa9, 0x2a, 0x18, 0x26, 0xb1, 0xc2, 0xee, 0x48, 0xa7, 0x0a, 0x12, 0x16,
			0xa9, 0x7c, 0x78, 0x80,
		}, exp: "cayley data\n"},
	} {
		t.Run(c.name, func(t *testing.T) {
			out, err := ReadAll(bytes.NewReader(c.in))
			require.NoError(t, err)
			require.Equal(t, c.exp, string(out))
		})
	}
}

func TestBroken(t *testing.T) {
	_, err := New(strings.NewReader("\x1f\x8b not gzip"))
	require.ErrorIs(t, err, gzip.ErrHeader)

	_, err = ReadAll(strings.NewReader("BZh not bzip2"))
	require.Error(t, err)

	_, err = ReadAll(strings.NewReader("\x28\xb5\x2f\xfd not zstd"))
	require.Error(t, err)
}

func TestForEncoding(t *testing.T) {
	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, err := bw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	for _, c := range []struct {
		enc string
		in  []byte
	}{
		{enc: "", in: []byte(doc)},
		{enc: "identity", in: []byte(doc)},
		{enc: "gzip", in: gzipped(t, doc)},
		{enc: "zstd", in: zstded(t, doc)},
		{enc: "BR", in: br.Bytes()},
	} {
		t.Run(c.enc, func(t *testing.T) {
			r, err := ForEncoding(bytes.NewReader(c.in), c.enc)
			require.NoError(t, err)
			out, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, doc, string(out))
		})
	}

	_, err = ForEncoding(strings.NewReader(doc), "compress")
	require.Error(t, err)
}
