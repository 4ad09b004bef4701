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
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/xsd"
	rdfgo "github.com/geoknoesis/rdf-go/rdf"
)

var (
	xsdString     = quad.IRI(xsd.String).Full()
	rdfLangString = quad.IRI(rdf.NS + "langString")
)

// fromTerm converts a term produced by the rdf-go parsers into a quad value.
// Literals typed as xsd:string are plain strings, as in RDF 1.1.
func fromTerm(t rdfgo.Term) (quad.Value, error) {
	switch t := t.(type) {
	case nil:
		return nil, nil
	case rdfgo.IRI:
		return quad.IRI(t.Value), nil
	case rdfgo.BlankNode:
		return quad.BNode(strings.TrimPrefix(t.ID, "_:")), nil
	case rdfgo.Literal:
		s := quad.String(t.Lexical)
		dt := quad.IRI(t.Datatype.Value)
		switch {
		case t.Lang != "":
			return quad.LangString{Value: s, Lang: t.Lang}, nil
		case dt == "" || dt == xsdString || dt == rdfLangString:
			return s, nil
		}
		return quad.TypedString{Value: s, Type: dt}, nil
	}
	return nil, fmt.Errorf("unsupported term %s", t.String())
}

func fromStatement(st rdfgo.Statement) (quad.Quad, error) {
	var (
		q   quad.Quad
		err error
	)
	if q.Subject, err = fromTerm(st.S); err != nil {
		return q, err
	}
	q.Predicate = quad.IRI(st.P.Value)
	if q.Object, err = fromTerm(st.O); err != nil {
		return q, err
	}
	if q.Label, err = fromTerm(st.G); err != nil {
		return q, err
	}
	return q, nil
}

// toTerm is the inverse of fromTerm.
func toTerm(v quad.Value) (rdfgo.Term, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case quad.IRI:
		return rdfgo.IRI{Value: string(v.Full())}, nil
	case quad.BNode:
		return rdfgo.BlankNode{ID: string(v)}, nil
	case quad.String:
		return rdfgo.Literal{Lexical: string(v)}, nil
	case quad.LangString:
		return rdfgo.Literal{Lexical: string(v.Value), Lang: v.Lang}, nil
	case quad.TypedString:
		return rdfgo.Literal{Lexical: string(v.Value), Datatype: rdfgo.IRI{Value: string(v.Type.Full())}}, nil
	}
	if ts, ok := v.(quad.TypedStringer); ok {
		return toTerm(ts.TypedString())
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

func toStatement(q quad.Quad) (rdfgo.Statement, error) {
	var (
		st  rdfgo.Statement
		err error
	)
	if st.S, err = toTerm(q.Subject); err != nil {
		return st, err
	}
	p, ok := q.Predicate.(quad.IRI)
	if !ok {
		return st, fmt.Errorf("predicate must be an IRI, got %v", q.Predicate)
	}
	st.P = rdfgo.IRI{Value: string(p.Full())}
	if st.O, err = toTerm(q.Object); err != nil {
		return st, err
	}
	if st.G, err = toTerm(q.Label); err != nil {
		return st, err
	}
	return st, nil
}
