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
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/rdfstore/format"
)

func init() {
	Register(Codec{
		Format:  format.NTriples,
		Decode:  decodeNTriples,
		Encode:  encodeNTriples,
		Triples: true,
	})
}

func decodeNTriples(data []byte, _ string) ([]quad.Quad, error) {
	// raw mode keeps typed literals as they were written
	r := nquads.NewReader(bytes.NewReader(data), true)
	defer r.Close()
	var out []quad.Quad
	for {
		q, err := r.ReadQuad()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, q)
	}
}

func encodeNTriples(w io.Writer, quads []quad.Quad) error {
	nw := nquads.NewWriter(w)
	if _, err := nw.WriteQuads(quads); err != nil {
		nw.Close()
		return err
	}
	return nw.Close()
}
