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

// Package format is the registry of RDF serialization formats known to rdfstore.
//
// It maps file extensions and MIME types to format identifiers and back. All
// lookups are total: an unknown input yields None (or an empty MIME type)
// instead of an error.
package format

import (
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
)

// Format is a stable format identifier, e.g. "turtle" or "jsonld".
type Format string

const (
	// None means that no conversion was requested.
	None Format = ""
	// Unknown is a recognized sentinel for content whose format could not be
	// determined. It is never a valid conversion target.
	Unknown Format = "unknown"

	Turtle   Format = "turtle"
	RDFXML   Format = "rdfxml"
	NTriples Format = "ntriples"
	N3       Format = "n3"
	JSONLD   Format = "jsonld"
)

func (f Format) String() string { return string(f) }

// Spec describes a single serialization format.
type Spec struct {
	// Name is the identifier used by SetFormat and in configuration.
	Name Format `json:"id"`
	// Label is a human readable name.
	Label string `json:"label"`
	// Ext lists file extensions without the leading dot. The first one is canonical.
	Ext []string `json:"ext"`
	// Mime lists MIME types accepted for the format. The first one is canonical.
	Mime []string `json:"mime"`
}

// Registry holds format descriptions indexed by name, extension and MIME type.
type Registry struct {
	mu     sync.RWMutex
	byName map[Format]*Spec
	byExt  map[string]*Spec
	byMime map[string]*Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[Format]*Spec),
		byExt:  make(map[string]*Spec),
		byMime: make(map[string]*Spec),
	}
}

// Register adds a format. It panics if the name, an extension or a MIME type
// is already taken.
func (r *Registry) Register(s Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Name == None || s.Name == Unknown {
		panic(fmt.Errorf("format %q is reserved", s.Name))
	}
	if _, ok := r.byName[s.Name]; ok {
		panic(fmt.Errorf("format %s is already registered", s.Name))
	}
	for i, e := range s.Ext {
		s.Ext[i] = strings.ToLower(e)
		if o, ok := r.byExt[s.Ext[i]]; ok {
			panic(fmt.Errorf("format %s is already registered with extension %s", o.Name, e))
		}
	}
	for i, m := range s.Mime {
		s.Mime[i] = strings.ToLower(m)
		if o, ok := r.byMime[s.Mime[i]]; ok {
			panic(fmt.Errorf("format %s is already registered with MIME %s", o.Name, m))
		}
	}
	sp := &s
	for _, e := range s.Ext {
		r.byExt[e] = sp
	}
	for _, m := range s.Mime {
		r.byMime[m] = sp
	}
	r.byName[s.Name] = sp
}

// ByName returns a registered format by its name, or nil.
func (r *Registry) ByName(f Format) *Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[f]
}

// Supported reports whether f is a registered, convertible format.
func (r *Registry) Supported(f Format) bool {
	return r.ByName(f) != nil
}

// ForExtension returns the format for a file extension (with or without the
// leading dot), or None.
func (r *Registry) ForExtension(ext string) Format {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.byExt[ext]; s != nil {
		return s.Name
	}
	return None
}

// ForMime returns the format for a MIME type, or None. Media type parameters
// such as charset are ignored.
func (r *Registry) ForMime(typ string) Format {
	typ = baseMime(typ)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.byMime[typ]; s != nil {
		return s.Name
	}
	return None
}

// MimeFor returns the canonical MIME type of a format, or an empty string.
func (r *Registry) MimeFor(f Format) string {
	if s := r.ByName(f); s != nil && len(s.Mime) != 0 {
		return s.Mime[0]
	}
	return ""
}

// MimeForExtension returns the canonical MIME type of the format registered
// for ext, or an empty string.
func (r *Registry) MimeForExtension(ext string) string {
	return r.MimeFor(r.ForExtension(ext))
}

// List returns all registered formats sorted by name.
func (r *Registry) List() []*Spec {
	r.mu.RLock()
	list := make([]*Spec, 0, len(r.byName))
	for _, s := range r.byName {
		list = append(list, s)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Extension returns the lower-cased part of path after the last dot, or an
// empty string. Dots in directory names are not considered.
func Extension(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}

func baseMime(typ string) string {
	typ = strings.TrimSpace(typ)
	if mt, _, err := mime.ParseMediaType(typ); err == nil {
		return mt
	}
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.ToLower(strings.TrimSpace(typ))
}
