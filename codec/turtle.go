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
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc"
	"github.com/cayleygraph/quad/voc/rdf"
	rdfgo "github.com/geoknoesis/rdf-go/rdf"

	// namespaces offered as Turtle prefixes
	_ "github.com/cayleygraph/quad/voc/owl"
	_ "github.com/cayleygraph/quad/voc/rdfs"
	_ "github.com/cayleygraph/quad/voc/schema"
	_ "github.com/cayleygraph/quad/voc/xsd"

	"github.com/cayleygraph/rdfstore/format"
)

func init() {
	for _, f := range []format.Format{format.Turtle, format.N3} {
		Register(Codec{
			Format:  f,
			Decode:  decodeTurtle,
			Encode:  encodeTurtle,
			Triples: true,
		})
	}
}

var decodeTurtleDoc = decodeWith(rdfgo.FormatTurtle)

func decodeTurtle(data []byte, base string) ([]quad.Quad, error) {
	return decodeTurtleDoc(absDirectives(data, base), base)
}

var rdfType = quad.IRI(rdf.Type).Full()

// namespaces is a set of prefixes used by one document.
type namespaces []voc.Namespace

// usedNamespaces returns the registered namespaces that shorten at least one
// IRI in quads, sorted by prefix.
func usedNamespaces(quads []quad.Quad) namespaces {
	var reg voc.Namespaces
	voc.CloneTo(&reg)
	known := reg.List()
	// longest namespace wins
	sort.Slice(known, func(i, j int) bool { return len(known[i].Full) > len(known[j].Full) })
	used := make(map[string]voc.Namespace)
	note := func(v quad.Value) {
		switch v := v.(type) {
		case quad.IRI:
			if ns, ok := match(known, string(v.Full())); ok {
				used[ns.Prefix] = ns
			}
		case quad.TypedString:
			if ns, ok := match(known, string(v.Type.Full())); ok {
				used[ns.Prefix] = ns
			}
		}
	}
	for _, q := range quads {
		note(q.Subject)
		if p, ok := q.Predicate.(quad.IRI); !ok || p.Full() != rdfType {
			note(q.Predicate)
		}
		note(q.Object)
	}
	out := make(namespaces, 0, len(used))
	for _, ns := range used {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

func match(list []voc.Namespace, iri string) (voc.Namespace, bool) {
	for _, ns := range list {
		if strings.HasPrefix(iri, ns.Full) && isLocalName(iri[len(ns.Full):]) {
			return ns, true
		}
	}
	return voc.Namespace{}, false
}

// shorten returns a prefixed name for iri using the longest matching
// namespace.
func (n namespaces) shorten(iri string) (string, bool) {
	best := -1
	for i, ns := range n {
		if !strings.HasPrefix(iri, ns.Full) || !isLocalName(iri[len(ns.Full):]) {
			continue
		}
		if best < 0 || len(ns.Full) > len(n[best].Full) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return n[best].Prefix + iri[len(n[best].Full):], true
}

// isLocalName reports whether s can be written as the local part of a
// prefixed name without escaping.
func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 && r == '-' {
				return false
			}
		case r == '.':
			if i == len(s)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// turtleWriter groups statements by subject and predicate, in order of
// first appearance. Every object is followed by a space before the
// punctuation that ends it.
type turtleWriter struct {
	w  *bufio.Writer
	ns namespaces
}

func encodeTurtle(w io.Writer, quads []quad.Quad) error {
	tw := &turtleWriter{w: bufio.NewWriter(w), ns: usedNamespaces(quads)}
	for _, ns := range tw.ns {
		tw.w.WriteString("@prefix " + ns.Prefix + " <" + ns.Full + "> .\n")
	}
	if len(tw.ns) != 0 && len(quads) != 0 {
		tw.w.WriteString("\n")
	}
	for _, g := range groupBySubject(quads) {
		tw.writeGroup(g)
	}
	return tw.w.Flush()
}

type subjectGroup struct {
	subject quad.Value
	preds   []quad.Value
	objects map[string][]quad.Value
}

func groupBySubject(quads []quad.Quad) []*subjectGroup {
	var (
		order []*subjectGroup
		index = make(map[string]*subjectGroup)
		seen  = make(map[string]struct{})
	)
	for _, q := range quads {
		key := q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sk := q.Subject.String()
		g := index[sk]
		if g == nil {
			g = &subjectGroup{subject: q.Subject, objects: make(map[string][]quad.Value)}
			index[sk] = g
			order = append(order, g)
		}
		pk := q.Predicate.String()
		if _, ok := g.objects[pk]; !ok {
			g.preds = append(g.preds, q.Predicate)
		}
		g.objects[pk] = append(g.objects[pk], q.Object)
	}
	return order
}

func (tw *turtleWriter) writeGroup(g *subjectGroup) {
	tw.w.WriteString(tw.term(g.subject))
	for i, p := range g.preds {
		if i > 0 {
			tw.w.WriteString(" ;\n    ")
		} else {
			tw.w.WriteString(" ")
		}
		tw.w.WriteString(tw.predicate(p))
		for j, o := range g.objects[p.String()] {
			if j > 0 {
				tw.w.WriteString(" ,")
			}
			tw.w.WriteString(" " + tw.term(o))
		}
	}
	tw.w.WriteString(" .\n")
}

func (tw *turtleWriter) predicate(v quad.Value) string {
	if iri, ok := v.(quad.IRI); ok && iri.Full() == rdfType {
		return "a"
	}
	return tw.term(v)
}

func (tw *turtleWriter) iri(iri quad.IRI) string {
	full := string(iri.Full())
	if s, ok := tw.ns.shorten(full); ok {
		return s
	}
	return quad.IRI(full).String()
}

func (tw *turtleWriter) term(v quad.Value) string {
	switch v := v.(type) {
	case quad.IRI:
		return tw.iri(v)
	case quad.TypedString:
		return v.Value.String() + "^^" + tw.iri(v.Type)
	case quad.TypedStringer:
		return tw.term(v.TypedString())
	}
	return v.String()
}
