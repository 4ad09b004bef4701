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

// Package convert translates RDF documents between serialization formats.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/cayleygraph/rdfstore/codec"
	"github.com/cayleygraph/rdfstore/format"
)

// Converter is implemented by anything able to re-encode an RDF document.
type Converter interface {
	Convert(data []byte, from, to format.Format, base string) ([]byte, error)
}

// Func adapts a function to the Converter interface.
type Func func(data []byte, from, to format.Format, base string) ([]byte, error)

func (f Func) Convert(data []byte, from, to format.Format, base string) ([]byte, error) {
	return f(data, from, to, base)
}

// Graph is the default Converter. It parses the document into a graph and
// serializes it again with the codec package.
type Graph struct{}

var _ Converter = Graph{}

// Convert re-encodes data from one format to another.
//
// Equal formats return data unchanged. A source format that is not supported
// is guessed, and failures while guessing yield an empty graph. JSON-LD
// output is always in expanded form.
func (Graph) Convert(data []byte, from, to format.Format, base string) (out []byte, err error) {
	if from == to {
		return data, nil
	}
	if !format.Supported(to) {
		return nil, fmt.Errorf("unsupported target format %q", to)
	}
	start := time.Now()
	defer func() { observe(from, to, start, len(out), err) }()

	opt := codec.ParseOptions{Format: from, Base: base}
	if !format.Supported(from) {
		opt.Format = format.Unknown
		opt.BestEffort = true
	}
	quads, err := codec.Parse(data, opt)
	if err != nil {
		return nil, err
	}
	out, err = codec.Serialize(quads, to)
	if err != nil {
		return nil, err
	}
	switch {
	case to == format.JSONLD:
		return Expand(out, base)
	case from == format.JSONLD && (to == format.Turtle || to == format.N3):
		return stripStringTypes(out), nil
	}
	return out, nil
}

// Default converts with the Graph converter.
func Default(data []byte, from, to format.Format, base string) ([]byte, error) {
	return Graph{}.Convert(data, from, to, base)
}

// Expand rewrites a JSON-LD document into its expanded form.
func Expand(doc []byte, base string) ([]byte, error) {
	var in interface{} = []interface{}{}
	if len(bytes.TrimSpace(doc)) != 0 {
		if err := json.Unmarshal(doc, &in); err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
	}
	opts := ld.NewJsonLdOptions(base)
	expanded, err := ld.NewJsonLdProcessor().Expand(in, opts)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	if expanded == nil {
		expanded = []interface{}{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(expanded); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var (
	xsdStringSuffix = regexp.MustCompile(`\^\^xsd:string `)
	xsdPrefixLine   = []byte("@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n")
)

// stripStringTypes removes the explicit xsd:string datatypes that JSON-LD
// input leaves on every plain literal, together with the prefix declaration
// they pull in.
func stripStringTypes(b []byte) []byte {
	b = xsdStringSuffix.ReplaceAll(b, nil)
	return bytes.ReplaceAll(b, xsdPrefixLine, nil)
}
