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

	"github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/rdfstore/format"
)

const sniffLen = 4096

// Guess inspects the beginning of a document and returns its probable format,
// or format.Unknown.
//
// rdf-go only detects formats inside NewReader and does not report what it
// found, so the markup checks are done here. Line-based documents are handed
// to the N-Quads reader and count as N-Triples only if every complete line in
// the window parses as a statement.
func Guess(data []byte) format.Format {
	head, cut := data, len(data) > sniffLen
	if cut {
		head = head[:sniffLen]
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if len(trimmed) == 0 {
		return format.Unknown
	}
	switch trimmed[0] {
	case '{', '[':
		return format.JSONLD
	}
	if isXML(trimmed) {
		return format.RDFXML
	}
	if hasDirective(trimmed) {
		return format.Turtle
	}
	if isNTriples(head, cut) {
		return format.NTriples
	}
	switch trimmed[0] {
	case '<', '_', '#':
		return format.Turtle
	}
	if bytes.Contains(trimmed, []byte(" a ")) || bytes.Contains(trimmed, []byte(" ;")) {
		return format.Turtle
	}
	return format.Unknown
}

func isXML(b []byte) bool {
	if bytes.HasPrefix(b, []byte("<?xml")) || bytes.HasPrefix(b, []byte("<rdf:RDF")) {
		return true
	}
	if len(b) < 2 || b[0] != '<' || !isLetter(b[1]) {
		return false
	}
	// <name ... xmlns=...>; IRIs in Turtle never contain a space before '>'
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		end = len(b)
	}
	return bytes.Contains(b[:end], []byte("xmlns"))
}

func hasDirective(b []byte) bool {
	for _, d := range [][]byte{
		[]byte("@prefix"), []byte("@base"), []byte("PREFIX "), []byte("BASE "),
		[]byte("prefix "), []byte("base "),
	} {
		if bytes.HasPrefix(b, d) || bytes.Contains(b, append([]byte("\n"), d...)) {
			return true
		}
	}
	return false
}

// isNTriples reports whether the complete lines of b hold at least one
// statement and nothing but N-Triples statements. When cut is set the last
// line is ignored, since the window may end inside it.
func isNTriples(b []byte, cut bool) bool {
	if cut {
		i := bytes.LastIndexByte(b, '\n')
		if i < 0 {
			return false
		}
		b = b[:i+1]
	}
	r := nquads.NewReader(bytes.NewReader(b), true)
	defer r.Close()
	n := 0
	for {
		q, err := r.ReadQuad()
		if err == io.EOF {
			return n > 0
		} else if err != nil || q.Label != nil {
			return false
		}
		n++
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
