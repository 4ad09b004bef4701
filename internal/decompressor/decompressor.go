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

// Package decompressor transparently unpacks compressed RDF documents.
package decompressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic  = []byte("\x1f\x8b")
	bzip2Magic = []byte("BZh")
	zstdMagic  = []byte("\x28\xb5\x2f\xfd")
)

// New returns a reader of the uncompressed document. Gzip, bzip2 and zstd
// streams are detected by their magic bytes; anything else is returned as is.
func New(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	buf, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(buf, gzipMagic):
		return gzip.NewReader(br)
	case bytes.HasPrefix(buf, bzip2Magic):
		return bzip2.NewReader(br), nil
	case bytes.HasPrefix(buf, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return br, nil
}

// ReadAll reads a whole, possibly compressed, document.
func ReadAll(r io.Reader) ([]byte, error) {
	dr, err := New(r)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(dr)
}

// ForEncoding unpacks a body sent with the given HTTP Content-Encoding.
// Brotli has no magic bytes, so it is only recognised by name.
func ForEncoding(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "identity":
		return r, nil
	case "gzip", "x-gzip", "bzip2", "zstd":
		return New(r)
	case "br":
		return brotli.NewReader(r), nil
	}
	return nil, fmt.Errorf("unsupported content encoding %q", enc)
}
