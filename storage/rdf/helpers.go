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

	"github.com/cayleygraph/rdfstore/codec"
	"github.com/cayleygraph/rdfstore/convert"
	"github.com/cayleygraph/rdfstore/format"
	"github.com/cayleygraph/rdfstore/storage"
)

// AsMime selects the format registered for a MIME type on the next read of
// an Adapter. Unknown MIME types clear the selection. Other backends are left
// alone.
func AsMime(b storage.Backend, mime string) error {
	a, ok := b.(*Adapter)
	if !ok {
		return nil
	}
	return a.SetFormat(a.reg.ForMime(mime))
}

// ReadRDF reads the resource at p and serializes it to the target format.
// The stored format is detected from the contents, ignoring the extension.
// JSON-LD output is expanded.
func ReadRDF(ctx context.Context, b storage.Backend, p string, to format.Format, base string) ([]byte, error) {
	if !format.Supported(to) {
		return nil, &UnsupportedFormatError{Format: to}
	}
	m, err := b.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	quads, err := codec.Parse(m.Contents, codec.ParseOptions{Format: format.Unknown, Base: base})
	if err != nil {
		return nil, &ConversionError{Path: p, Format: to, Err: err}
	}
	out, err := codec.Serialize(quads, to)
	if err == nil && to == format.JSONLD {
		out, err = convert.Expand(out, base)
	}
	if err != nil {
		return nil, &ConversionError{Path: p, Format: to, Err: err}
	}
	return out, nil
}
