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

package codec

import (
	"bytes"
	"context"
	"io"

	"github.com/cayleygraph/quad"
	rdfgo "github.com/geoknoesis/rdf-go/rdf"

	"github.com/cayleygraph/rdfstore/format"
)

func init() {
	Register(Codec{
		Format:  format.RDFXML,
		Decode:  decodeWith(rdfgo.FormatRDFXML),
		Encode:  encodeRDFXML,
		Triples: true,
	})
}

// decodeWith returns a decoder backed by the rdf-go parser for a format.
func decodeWith(f rdfgo.Format) func([]byte, string) ([]quad.Quad, error) {
	return func(data []byte, _ string) ([]quad.Quad, error) {
		var out []quad.Quad
		err := rdfgo.Parse(context.Background(), bytes.NewReader(data), f, func(st rdfgo.Statement) error {
			q, err := fromStatement(st)
			if err != nil {
				return err
			}
			out = append(out, q)
			return nil
		})
		return out, err
	}
}

const emptyRDFXML = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
	`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"/>` + "\n"

func encodeRDFXML(w io.Writer, quads []quad.Quad) error {
	if len(quads) == 0 {
		_, err := io.WriteString(w, emptyRDFXML)
		return err
	}
	rw, err := rdfgo.NewWriter(w, rdfgo.FormatRDFXML)
	if err != nil {
		return err
	}
	for _, q := range quads {
		st, err := toStatement(q)
		if err != nil {
			rw.Close()
			return err
		}
		if err = rw.Write(st); err != nil {
			rw.Close()
			return err
		}
	}
	return rw.Close()
}
