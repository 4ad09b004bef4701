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

// Default is the registry used by package-level helpers.
var Default = NewRegistry()

func init() {
	Default.Register(Spec{
		Name:  Turtle,
		Label: "Turtle",
		Ext:   []string{"ttl", "turtle"},
		Mime:  []string{"text/turtle", "application/turtle", "application/x-turtle"},
	})
	Default.Register(Spec{
		Name:  RDFXML,
		Label: "RDF/XML",
		Ext:   []string{"rdf", "xml", "owl"},
		Mime:  []string{"application/rdf+xml", "application/xml", "text/xml"},
	})
	Default.Register(Spec{
		Name:  NTriples,
		Label: "N-Triples",
		Ext:   []string{"nt", "ntriples"},
		Mime:  []string{"application/n-triples", "text/ntriples"},
	})
	Default.Register(Spec{
		Name:  N3,
		Label: "Notation3",
		Ext:   []string{"n3"},
		Mime:  []string{"text/n3", "text/rdf+n3", "application/n3"},
	})
	Default.Register(Spec{
		Name:  JSONLD,
		Label: "JSON-LD",
		Ext:   []string{"jsonld", "json"},
		Mime:  []string{"application/ld+json", "application/json"},
	})
}

// Register adds a format to the Default registry.
func Register(s Spec) { Default.Register(s) }

// ByName returns a format from the Default registry, or nil.
func ByName(f Format) *Spec { return Default.ByName(f) }

// Supported reports whether f is convertible with the Default registry.
func Supported(f Format) bool { return Default.Supported(f) }

// ForExtension returns the format registered for ext, or None.
func ForExtension(ext string) Format { return Default.ForExtension(ext) }

// ForMime returns the format registered for a MIME type, or None.
func ForMime(typ string) Format { return Default.ForMime(typ) }

// ForPath returns the format inferred from the extension of path, or None.
func ForPath(path string) Format { return Default.ForExtension(Extension(path)) }

// MimeFor returns the canonical MIME type of f, or an empty string.
func MimeFor(f Format) string { return Default.MimeFor(f) }

// MimeForExtension returns the MIME type for ext, or an empty string.
func MimeForExtension(ext string) string { return Default.MimeForExtension(ext) }

// List returns all formats from the Default registry.
func List() []*Spec { return Default.List() }
