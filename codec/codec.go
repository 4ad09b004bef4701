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

// Package codec parses and serializes RDF graphs in the formats known to the
// format registry.
//
// Graphs are plain quad slices from github.com/cayleygraph/quad. Readers are
// expected to return full IRIs; relative references are resolved against the
// base passed in ParseOptions.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/format"
)

var (
	// ErrUnknownFormat is returned when the format of a document cannot be determined.
	ErrUnknownFormat = errors.New("codec: cannot determine document format")
	// ErrNoCodec is returned for formats without a registered codec.
	ErrNoCodec = errors.New("codec: no codec registered for format")
)

// Codec reads and writes one serialization format.
type Codec struct {
	Format format.Format
	// Decode parses a document. Quads parsed before an error are returned
	// together with it. IRIs may still be relative to the document.
	Decode func(data []byte, base string) ([]quad.Quad, error)
	// Encode writes the graph to w.
	Encode func(w io.Writer, quads []quad.Quad) error
	// Triples is set for formats that cannot carry graph labels.
	Triples bool
	// ResolvesBase is set when Decode resolves relative IRIs itself.
	ResolvesBase bool
}

var (
	mu     sync.RWMutex
	codecs = make(map[format.Format]*Codec)
)

// Register adds a codec. It panics if one is already registered for the format.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := codecs[c.Format]; ok {
		panic(fmt.Errorf("codec for %s is already registered", c.Format))
	}
	codecs[c.Format] = &c
}

// Lookup returns the codec for a format, or nil.
func Lookup(f format.Format) *Codec {
	mu.RLock()
	defer mu.RUnlock()
	return codecs[f]
}

// ParseOptions controls Parse.
type ParseOptions struct {
	// Format of the input. None and Unknown switch to guessing.
	Format format.Format
	// Base is used to resolve relative IRIs.
	Base string
	// BestEffort suppresses failures: an undetectable or broken document
	// yields whatever was parsed before the failure, possibly nothing.
	BestEffort bool
}

// Parse decodes data into a graph.
func Parse(data []byte, opt ParseOptions) ([]quad.Quad, error) {
	f := opt.Format
	if f == format.None || f == format.Unknown {
		f = Guess(data)
		if f == format.Unknown {
			if opt.BestEffort {
				if clog.V(2) {
					clog.Infof("codec: could not guess format of %d bytes", len(data))
				}
				return nil, nil
			}
			return nil, ErrUnknownFormat
		}
	}
	c := Lookup(f)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCodec, f)
	}
	quads, err := c.Decode(data, opt.Base)
	if err != nil {
		if !opt.BestEffort {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		if clog.V(2) {
			clog.Infof("codec: ignoring %s parse error: %v", f, err)
		}
	}
	if !c.ResolvesBase {
		quads, err = resolve(quads, opt.Base)
		if err != nil {
			return nil, err
		}
	}
	return quads, nil
}

// Serialize encodes a graph in the given format.
func Serialize(quads []quad.Quad, f format.Format) ([]byte, error) {
	c := Lookup(f)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCodec, f)
	}
	if c.Triples {
		quads = dropLabels(quads)
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, quads); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

func dropLabels(quads []quad.Quad) []quad.Quad {
	labeled := false
	for _, q := range quads {
		if q.Label != nil {
			labeled = true
			break
		}
	}
	if !labeled {
		return quads
	}
	out := make([]quad.Quad, 0, len(quads))
	seen := make(map[string]struct{}, len(quads))
	for _, q := range quads {
		q.Label = nil
		k := q.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, q)
	}
	return out
}

type quadSlice []quad.Quad

func (s *quadSlice) WriteQuad(q quad.Quad) error {
	*s = append(*s, q)
	return nil
}

func (s *quadSlice) WriteQuads(buf []quad.Quad) (int, error) {
	*s = append(*s, buf...)
	return len(buf), nil
}
