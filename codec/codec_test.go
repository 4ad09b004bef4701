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
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfstore/format"
)

const base = "https://example.com/profile/card.ttl"

var single = []quad.Quad{{
	Subject:   quad.IRI("https://example.com/alice"),
	Predicate: quad.IRI("http://schema.org/name"),
	Object:    quad.String("Alice"),
}}

func TestGuess(t *testing.T) {
	for _, c := range []struct {
		name string
		data string
		exp  format.Format
	}{
		{"empty", "", format.Unknown},
		{"spaces", " \n\t", format.Unknown},
		{"jsonld object", `{"@id": "x"}`, format.JSONLD},
		{"jsonld array", "\n [ ]", format.JSONLD},
		{"xml decl", `<?xml version="1.0"?><rdf:RDF/>`, format.RDFXML},
		{"rdf root", `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"/>`, format.RDFXML},
		{"turtle prefix", "@prefix rdfs: <> .\n</> rdfs:comment '' .", format.Turtle},
		{"sparql prefix", "PREFIX ex: <http://example.com/>\nex:a ex:b ex:c .", format.Turtle},
		{"ntriples", "<http://a> <http://b> \"c\" .\n_:x <http://b> <http://c> .\n", format.NTriples},
		{"turtle lists", "<http://a> <http://b> \"c\" ;\n <http://d> \"e\" .", format.Turtle},
		{"ntriples line", "<https://example.com/a> <https://example.com/b> \"c\" .\n", format.NTriples},
		{"xmlns root", `<RDF xmlns="http://www.w3.org/1999/02/22-rdf-syntax-ns#"></RDF>`, format.RDFXML},
		{"long ntriples", strings.Repeat("<http://a> <http://b> \"c\" .\n", 300), format.NTriples},
		{"turtle keyword", "<http://a> a <http://b> .\n", format.Turtle},
		{"large jsonld", `{"http://schema.org/name": "` + strings.Repeat("x", 600) + `"}`, format.JSONLD},
		{"text", "hello world", format.Unknown},
	} {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.exp, Guess([]byte(c.data)))
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse([]byte("hello world"), ParseOptions{})
	require.ErrorIs(t, err, ErrUnknownFormat)

	quads, err := Parse([]byte("hello world"), ParseOptions{BestEffort: true})
	require.NoError(t, err)
	require.Empty(t, quads)
}

func TestParseBroken(t *testing.T) {
	data := []byte("{ not json")
	_, err := Parse(data, ParseOptions{Format: format.JSONLD})
	require.Error(t, err)

	_, err = Parse(data, ParseOptions{Format: format.Unknown, BestEffort: true})
	require.NoError(t, err)
}

func TestNoCodec(t *testing.T) {
	_, err := Serialize(single, "trig")
	require.ErrorIs(t, err, ErrNoCodec)
	_, err = Parse([]byte("x"), ParseOptions{Format: "trig"})
	require.ErrorIs(t, err, ErrNoCodec)
}

func TestNTriplesRoundTrip(t *testing.T) {
	data, err := Serialize(single, format.NTriples)
	require.NoError(t, err)
	require.Equal(t, "<https://example.com/alice> <http://schema.org/name> \"Alice\" .\n", string(data))

	quads, err := Parse(data, ParseOptions{Format: format.NTriples})
	require.NoError(t, err)
	require.Equal(t, single, quads)
}

func TestNTriplesDropsLabels(t *testing.T) {
	q := single[0]
	q.Label = quad.IRI("https://example.com/g")
	data, err := Serialize([]quad.Quad{q, single[0]}, format.NTriples)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "\n"))
	require.NotContains(t, string(data), "example.com/g")
}

func TestResolveRelative(t *testing.T) {
	data := []byte("<alice> <../name> \"Alice\" .\n")
	quads, err := Parse(data, ParseOptions{Format: format.NTriples, Base: base})
	require.NoError(t, err)
	require.Len(t, quads, 1)
	require.Equal(t, quad.IRI("https://example.com/profile/alice"), quads[0].Subject)
	require.Equal(t, quad.IRI("https://example.com/name"), quads[0].Predicate)

	// relative base leaves IRIs alone
	quads, err = Parse(data, ParseOptions{Format: format.NTriples, Base: "mock url"})
	require.NoError(t, err)
	require.Equal(t, quad.IRI("alice"), quads[0].Subject)
}

func TestTurtleWriter(t *testing.T) {
	s := quad.IRI("https://example.com/alice")
	quads := []quad.Quad{
		{Subject: s, Predicate: quad.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), Object: quad.IRI("http://schema.org/Person")},
		{Subject: s, Predicate: quad.IRI("http://schema.org/name"), Object: quad.String("Alice")},
		{Subject: s, Predicate: quad.IRI("http://schema.org/name"), Object: quad.LangString{Value: "Alicia", Lang: "es"}},
		{Subject: s, Predicate: quad.IRI("http://www.w3.org/2000/01/rdf-schema#comment"),
			Object: quad.TypedString{Value: "hi", Type: quad.IRI("http://www.w3.org/2001/XMLSchema#string")}},
		{Subject: s, Predicate: quad.IRI("http://schema.org/name"), Object: quad.String("Alice")},
	}
	data, err := Serialize(quads, format.Turtle)
	require.NoError(t, err)
	exp := `@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix schema: <http://schema.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<https://example.com/alice> a schema:Person ;
    schema:name "Alice" , "Alicia"@es ;
    rdfs:comment "hi"^^xsd:string .
`
	require.Equal(t, exp, string(data))

	n3, err := Serialize(quads, format.N3)
	require.NoError(t, err)
	require.Equal(t, exp, string(n3))
}

func TestTurtleWriterControlChars(t *testing.T) {
	quads := []quad.Quad{{
		Subject:   quad.IRI("https://example.com/alice"),
		Predicate: quad.IRI("https://example.com/note"),
		Object:    quad.String("bell\a\x01 \"q\"\n"),
	}}
	data, err := Serialize(quads, format.Turtle)
	require.NoError(t, err)
	// Turtle has no \a or \x escapes, control characters stay raw
	require.Contains(t, string(data), "\"bell\a\x01 \\\"q\\\"\\n\"")
	require.NotContains(t, string(data), `\a`)
	require.NotContains(t, string(data), `\x`)
}

func TestShortenLongestNamespace(t *testing.T) {
	ns := namespaces{
		{Full: "http://example.com/ns", Prefix: "a:"},
		{Full: "http://example.com/ns2", Prefix: "b:"},
	}
	s, ok := ns.shorten("http://example.com/ns2name")
	require.True(t, ok)
	require.Equal(t, "b:name", s)

	s, ok = ns.shorten("http://example.com/nsname")
	require.True(t, ok)
	require.Equal(t, "a:name", s)

	_, ok = ns.shorten("http://example.com/other")
	require.False(t, ok)
}

func TestRDFXMLEmpty(t *testing.T) {
	data, err := Serialize(nil, format.RDFXML)
	require.NoError(t, err)
	require.Contains(t, string(data), "<rdf:RDF")
	require.Equal(t, format.RDFXML, Guess(data))
}

func TestTurtleWriterEmpty(t *testing.T) {
	data, err := Serialize(nil, format.Turtle)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestTurtleParse(t *testing.T) {
	data := []byte("@prefix rdfs: <> .\n</> rdfs:comment '' .")
	quads, err := Parse(data, ParseOptions{Format: format.Turtle, Base: base})
	require.NoError(t, err)
	require.Len(t, quads, 1)
	require.Equal(t, quad.IRI("https://example.com/"), quads[0].Subject)
	// the empty namespace is the document itself, local names are appended
	require.Equal(t, quad.IRI("https://example.com/profile/card.ttlcomment"), quads[0].Predicate)
	require.Equal(t, quad.String(""), quads[0].Object)
}

func TestTurtleRelativePrefixes(t *testing.T) {
	data := []byte("@prefix v: <../vocab#> .\nPREFIX w: <words/>\n<#me> v:name w:alice .\n" +
		"@base <https://other.example/root/> .\n@prefix x: <x#> .\n<a> x:b w:c .\n")
	quads, err := Parse(data, ParseOptions{Format: format.Turtle, Base: base})
	require.NoError(t, err)
	require.Len(t, quads, 2)
	require.Equal(t, quad.IRI("https://example.com/profile/card.ttl#me"), quads[0].Subject)
	require.Equal(t, quad.IRI("https://example.com/vocab#name"), quads[0].Predicate)
	require.Equal(t, quad.IRI("https://example.com/profile/words/alice"), quads[0].Object)
	require.Equal(t, quad.IRI("https://other.example/root/x#b"), quads[1].Predicate)
	require.Equal(t, quad.IRI("https://example.com/profile/words/c"), quads[1].Object)

	// without an absolute base the namespaces are kept as written
	require.Equal(t, data, absDirectives(data, ""))
	require.Equal(t, data, absDirectives(data, "mock url"))
}

func TestJSONLDDecode(t *testing.T) {
	data := []byte(`{"@id": "", "http://schema.org/name": "Alice", "http://schema.org/knows": {"@id": "bob"}}`)
	quads, err := Parse(data, ParseOptions{Format: format.JSONLD, Base: base})
	require.NoError(t, err)
	require.Len(t, quads, 2)
	for _, q := range quads {
		require.Equal(t, quad.IRI(base), q.Subject)
		switch q.Predicate {
		case quad.IRI("http://schema.org/name"):
			require.Equal(t, quad.TypedString{Value: "Alice", Type: quad.IRI("http://www.w3.org/2001/XMLSchema#string")}, q.Object)
		case quad.IRI("http://schema.org/knows"):
			require.Equal(t, quad.IRI("https://example.com/profile/bob"), q.Object)
		default:
			t.Fatalf("unexpected predicate %v", q.Predicate)
		}
	}
}

func TestJSONLDEncode(t *testing.T) {
	data, err := Serialize(single, format.JSONLD)
	require.NoError(t, err)
	var doc interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, string(data), "https://example.com/alice")
	require.Contains(t, string(data), "Alice")
}

func TestRoundTrips(t *testing.T) {
	for _, from := range []format.Format{format.Turtle, format.NTriples, format.JSONLD, format.RDFXML, format.N3} {
		for _, to := range []format.Format{format.Turtle, format.NTriples, format.JSONLD, format.RDFXML, format.N3} {
			if from == to {
				continue
			}
			t.Run(string(from)+"-"+string(to), func(t *testing.T) {
				src, err := Serialize(single, from)
				require.NoError(t, err)
				g1, err := Parse(src, ParseOptions{Format: from})
				require.NoError(t, err)
				mid, err := Serialize(g1, to)
				require.NoError(t, err)
				g2, err := Parse(mid, ParseOptions{Format: to})
				require.NoError(t, err)
				require.Equal(t, plain(g1), plain(g2))
				require.Len(t, g2, 1)
			})
		}
	}
}

// plain maps xsd:string literals to plain strings so graphs coming from
// JSON-LD compare equal to others.
func plain(quads []quad.Quad) []quad.Quad {
	out := make([]quad.Quad, 0, len(quads))
	for _, q := range quads {
		if ts, ok := q.Object.(quad.TypedString); ok && ts.Type == xsdString {
			q.Object = ts.Value
		}
		out = append(out, q)
	}
	return out
}
