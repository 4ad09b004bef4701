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

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	for _, c := range []struct {
		path, ext string
	}{
		{"card.ttl", "ttl"},
		{"dir/Card.TTL", "ttl"},
		{"a.b/c", ""},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
		{"trailing.", ""},
	} {
		assert.Equal(t, c.ext, Extension(c.path), c.path)
	}
}

func TestDefaultLookups(t *testing.T) {
	require.Equal(t, Turtle, ForExtension("ttl"))
	require.Equal(t, Turtle, ForExtension(".TTL"))
	require.Equal(t, JSONLD, ForExtension("jsonld"))
	require.Equal(t, N3, ForExtension("n3"))
	require.Equal(t, NTriples, ForExtension("nt"))
	require.Equal(t, RDFXML, ForExtension("rdf"))
	require.Equal(t, None, ForExtension("exe"))
	require.Equal(t, None, ForExtension(""))

	require.Equal(t, JSONLD, ForMime("application/ld+json"))
	require.Equal(t, Turtle, ForMime("Text/Turtle; charset=utf-8"))
	require.Equal(t, None, ForMime("image/png"))
	require.Equal(t, None, ForMime(""))

	require.Equal(t, "application/ld+json", MimeFor(JSONLD))
	require.Equal(t, "text/turtle", MimeFor(Turtle))
	require.Equal(t, "", MimeFor(Unknown))
	require.Equal(t, "", MimeFor(None))
	require.Equal(t, "application/n-triples", MimeForExtension("nt"))
	require.Equal(t, "", MimeForExtension("txt"))

	require.Equal(t, Turtle, ForPath("profile/card.ttl"))
}

func TestSupported(t *testing.T) {
	for _, f := range []Format{Turtle, RDFXML, NTriples, N3, JSONLD} {
		require.True(t, Supported(f), f)
	}
	for _, f := range []Format{None, Unknown, "bogus", "TURTLE"} {
		require.False(t, Supported(f), f)
	}
	require.Len(t, List(), 5)
	require.Equal(t, JSONLD, List()[0].Name)
}

func TestRegisterConflicts(t *testing.T) {
	r := NewRegistry()
	r.Register(Spec{Name: "trig", Ext: []string{"trig"}, Mime: []string{"application/trig"}})
	require.Equal(t, Format("trig"), r.ForExtension("TRIG"))

	require.Panics(t, func() { r.Register(Spec{Name: "trig"}) })
	require.Panics(t, func() { r.Register(Spec{Name: "other", Ext: []string{"trig"}}) })
	require.Panics(t, func() { r.Register(Spec{Name: "other2", Mime: []string{"application/trig"}}) })
	require.Panics(t, func() { r.Register(Spec{Name: Unknown}) })
	require.Panics(t, func() { r.Register(Spec{Name: None}) })
}
