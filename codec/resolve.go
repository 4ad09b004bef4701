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
	"net/url"
	"regexp"

	"github.com/cayleygraph/quad"
)

// resolve rewrites relative IRIs in quads against base.
func resolve(quads []quad.Quad, base string) ([]quad.Quad, error) {
	if base == "" || len(quads) == 0 {
		return quads, nil
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		// a relative base cannot make anything absolute
		return quads, nil
	}
	out := make(quadSlice, 0, len(quads))
	w := quad.IRIWriter(&out, quad.IRIOptions{
		Func: func(_ quad.Direction, iri quad.IRI) (quad.IRI, error) {
			return resolveIRI(b, iri), nil
		},
	})
	if _, err := quad.Copy(w, quad.NewReader(quads)); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveIRI(base *url.URL, iri quad.IRI) quad.IRI {
	u, err := url.Parse(string(iri))
	if err != nil || u.IsAbs() {
		return iri
	}
	return quad.IRI(base.ResolveReference(u).String())
}

// directive matches Turtle prefix and base directives at the start of a line.
// Groups 1 and 2 are the prefix head and IRI, groups 3 and 4 the base head
// and IRI.
var directive = regexp.MustCompile(`(?mi)^([ \t]*(?:@prefix\s*|prefix\s+)[^\s<]*:\s*)<([^>]*)>|^([ \t]*(?:@base|base)\s*)<([^>]*)>`)

// absDirectives rewrites the IRIs of prefix and base directives to absolute
// IRIs. Prefixed names are expanded by plain concatenation, so a relative
// namespace has to be resolved before local names are appended to it.
// A base directive changes the base for the directives after it.
func absDirectives(data []byte, base string) []byte {
	if base == "" {
		return data
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return data
	}
	locs := directive.FindAllSubmatchIndex(data, -1)
	if len(locs) == 0 {
		return data
	}
	var out bytes.Buffer
	out.Grow(len(data) + len(locs)*len(base))
	last := 0
	for _, m := range locs {
		start, end := m[4], m[5]
		isBase := m[2] < 0
		if isBase {
			start, end = m[8], m[9]
		}
		abs := string(resolveIRI(b, quad.IRI(data[start:end])))
		out.Write(data[last:start])
		out.WriteString(abs)
		last = end
		if isBase {
			if nb, err := url.Parse(abs); err == nil && nb.IsAbs() {
				b = nb
			}
		}
	}
	out.Write(data[last:])
	return out.Bytes()
}
