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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/jsonld"
	"github.com/piprate/json-gold/ld"

	"github.com/cayleygraph/rdfstore/format"
)

func init() {
	Register(Codec{
		Format:       format.JSONLD,
		Decode:       decodeJSONLD,
		Encode:       encodeJSONLD,
		ResolvesBase: true,
	})
}

const defaultGraph = "@default"

// decodeJSONLD runs the JSON-LD toRDF algorithm with base as the document
// IRI. Plain strings come out typed as xsd:string, as the algorithm defines.
func decodeJSONLD(data []byte, base string) ([]quad.Quad, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	opts := ld.NewJsonLdOptions(base)
	proc := ld.NewJsonLdProcessor()
	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, err
	}
	ds, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("unexpected toRDF result %T", out)
	}
	names := make([]string, 0, len(ds.Graphs))
	for name := range ds.Graphs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		// default graph first
		if (names[i] == defaultGraph) != (names[j] == defaultGraph) {
			return names[i] == defaultGraph
		}
		return names[i] < names[j]
	})
	var quads []quad.Quad
	for _, name := range names {
		for _, lq := range ds.Graphs[name] {
			q, err := fromLD(lq)
			if err != nil {
				return quads, err
			}
			if name != defaultGraph && q.Label == nil {
				q.Label = fromGraphName(name)
			}
			quads = append(quads, q)
		}
	}
	return quads, nil
}

func fromGraphName(name string) quad.Value {
	if strings.HasPrefix(name, "_:") {
		return quad.BNode(name[2:])
	}
	return quad.IRI(name)
}

func fromLD(lq *ld.Quad) (quad.Quad, error) {
	var (
		q   quad.Quad
		err error
	)
	if q.Subject, err = fromNode(lq.Subject); err != nil {
		return q, err
	}
	if q.Predicate, err = fromNode(lq.Predicate); err != nil {
		return q, err
	}
	if q.Object, err = fromNode(lq.Object); err != nil {
		return q, err
	}
	if lq.Graph != nil {
		if q.Label, err = fromNode(lq.Graph); err != nil {
			return q, err
		}
		if iri, ok := q.Label.(quad.IRI); ok && iri == defaultGraph {
			q.Label = nil
		}
	}
	return q, nil
}

func fromNode(n ld.Node) (quad.Value, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case *ld.IRI:
		return quad.IRI(n.Value), nil
	case ld.IRI:
		return quad.IRI(n.Value), nil
	case *ld.BlankNode:
		return quad.BNode(strings.TrimPrefix(n.Attribute, "_:")), nil
	case ld.BlankNode:
		return quad.BNode(strings.TrimPrefix(n.Attribute, "_:")), nil
	case *ld.Literal:
		return fromLiteral(*n), nil
	case ld.Literal:
		return fromLiteral(n), nil
	}
	return nil, fmt.Errorf("unsupported JSON-LD node %T", n)
}

func fromLiteral(l ld.Literal) quad.Value {
	s := quad.String(l.Value)
	switch {
	case l.Language != "":
		return quad.LangString{Value: s, Lang: l.Language}
	case l.Datatype == "":
		return s
	}
	return quad.TypedString{Value: s, Type: quad.IRI(l.Datatype)}
}

func encodeJSONLD(w io.Writer, quads []quad.Quad) error {
	jw := jsonld.NewWriter(w)
	if _, err := jw.WriteQuads(quads); err != nil {
		jw.Close()
		return err
	}
	return jw.Close()
}
