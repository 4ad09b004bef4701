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

// Package rdfhttp serves stored RDF resources over HTTP, negotiating the
// serialization format of every response.
package rdfhttp

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/rdfstore/format"
	"github.com/cayleygraph/rdfstore/internal/decompressor"
	"github.com/cayleygraph/rdfstore/storage"
	"github.com/cayleygraph/rdfstore/storage/rdf"
)

const prefix = "/files"

// Options configure a Server.
type Options struct {
	// BaseURL is the public URL of the files root. Relative references in a
	// resource are resolved against BaseURL joined with the resource path.
	// When empty, the URL is derived from the request.
	BaseURL string
	// ReadOnly disables PUT and DELETE.
	ReadOnly bool
	// Timeout limits the time spent on a single request.
	Timeout time.Duration
}

type HandlerWrapper func(http.Handler) http.Handler

// Server exposes a storage backend over HTTP.
type Server struct {
	backend storage.Backend
	opts    Options
	handler http.Handler
}

// New creates a server for the backend. Wrappers are applied in order.
func New(b storage.Backend, opts Options, wrappers ...HandlerWrapper) *Server {
	s := &Server{backend: b, opts: opts}
	r := httprouter.New()
	s.registerOn(r)
	var handler http.Handler = r
	for _, wrapper := range wrappers {
		handler = wrapper(handler)
	}
	s.handler = handler
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func toHandle(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}

func (s *Server) registerOn(r *httprouter.Router) {
	r.GET(prefix+"/*path", s.ServeGet)
	r.HEAD(prefix+"/*path", s.ServeHead)
	if !s.opts.ReadOnly {
		r.PUT(prefix+"/*path", s.ServePut)
		r.DELETE(prefix+"/*path", s.ServeDelete)
	}
	r.GET("/formats", toHandle(s.ServeFormats))
	r.GET("/health", toHandle(HandleHealth))
	r.GET("/metrics", toHandle(promhttp.Handler().ServeHTTP))
	r.GlobalOPTIONS = http.HandlerFunc(HandlePreflight)
}

func (s *Server) context(r *http.Request) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(r.Context(), s.opts.Timeout)
	}
	return context.WithCancel(r.Context())
}

// resourceURL returns the base URL used when parsing the resource at p.
func (s *Server) resourceURL(r *http.Request, p string) string {
	base := s.opts.BaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host + prefix + "/"
	}
	return strings.TrimSuffix(base, "/") + "/" + p
}

// adapter creates a per-request adapter with the negotiated format selected.
// An explicit ?format= takes precedence over the Accept header. Without an
// acceptable RDF format the resource is returned as stored.
func (s *Server) adapter(r *http.Request, p string) (*rdf.Adapter, error) {
	a := rdf.New(s.backend, rdf.WithBaseURL(s.resourceURL(r, p)))
	if name := r.URL.Query().Get("format"); name != "" {
		return a, a.SetFormat(format.Format(name))
	}
	for _, spec := range ParseAccept(r.Header, hdrAccept) {
		if f := format.ForMime(spec.Value); format.Supported(f) {
			return a, rdf.AsMime(a, spec.Value)
		}
	}
	return a, nil
}

func cleanPath(params httprouter.Params) string {
	return storage.Clean(params.ByName("path"))
}

// isDir reports whether p names a directory of the backend.
func (s *Server) isDir(ctx context.Context, p string) (bool, error) {
	if p == "" {
		return true, nil
	}
	m, err := s.backend.GetMetadata(ctx, p)
	if err != nil {
		return false, err
	}
	return m.Type == storage.TypeDir, nil
}

func writeMeta(w http.ResponseWriter, m *storage.Metadata) {
	if m.Mimetype != "" {
		w.Header().Set(hdrContentType, m.Mimetype)
	}
	w.Header().Set(hdrContentLength, strconv.FormatInt(m.Size, 10))
	if !m.Timestamp.IsZero() {
		w.Header().Set(hdrLastModified, m.Timestamp.UTC().Format(http.TimeFormat))
	}
}

func (s *Server) serveList(ctx context.Context, w http.ResponseWriter, r *http.Request, p string) {
	list, err := s.backend.ListContents(ctx, p, r.URL.Query().Get("recursive") == "true")
	if err != nil {
		errorResponse(w, err)
		return
	}
	if list == nil {
		list = []storage.Metadata{}
	}
	w.Header().Set(hdrContentType, contentTypeJSON)
	json.NewEncoder(w).Encode(list)
}

// ServeGet returns a resource in the negotiated format, or the listing of a
// directory.
func (s *Server) ServeGet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx, cancel := s.context(r)
	defer cancel()
	p := cleanPath(params)
	if dir, err := s.isDir(ctx, p); err != nil {
		errorResponse(w, err)
		return
	} else if dir {
		s.serveList(ctx, w, r, p)
		return
	}
	a, err := s.adapter(r, p)
	if err != nil {
		errorResponse(w, err)
		return
	}
	explicit := a.GetFormat() != format.None
	m, err := a.Read(ctx, p)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if !explicit {
		// stored representation; refine a generic type by the extension
		if mt, err := a.GetMimetype(ctx, p); err == nil {
			m.Mimetype = mt.Mimetype
		}
	}
	m.Size = int64(len(m.Contents))
	writeMeta(w, m)
	w.WriteHeader(http.StatusOK)
	w.Write(m.Contents)
}

// ServeHead returns the headers ServeGet would send for a resource.
func (s *Server) ServeHead(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx, cancel := s.context(r)
	defer cancel()
	p := cleanPath(params)
	if dir, err := s.isDir(ctx, p); err != nil {
		w.WriteHeader(errorCode(err))
		return
	} else if dir {
		w.Header().Set(hdrContentType, contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		return
	}
	a, err := s.adapter(r, p)
	if err != nil {
		w.WriteHeader(errorCode(err))
		return
	}
	explicit := a.GetFormat() != format.None
	m, err := a.GetMetadata(ctx, p)
	if err != nil {
		w.WriteHeader(errorCode(err))
		return
	}
	if !explicit {
		if mt, err := a.GetMimetype(ctx, p); err == nil {
			m.Mimetype = mt.Mimetype
		}
	}
	writeMeta(w, m)
	w.WriteHeader(http.StatusOK)
}

// ServePut stores the request body. The Content-Type is kept as the stored
// MIME type. Compressed bodies are unpacked before storing.
func (s *Server) ServePut(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx, cancel := s.context(r)
	defer cancel()
	p := cleanPath(params)
	if p == "" {
		jsonResponse(w, http.StatusBadRequest, "path is not set")
		return
	}
	var cfg storage.Config
	if ct := r.Header.Get(hdrContentType); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			cfg.Mimetype = mt
		}
	}
	if v := r.URL.Query().Get("visibility"); v != "" {
		cfg.Visibility = storage.Visibility(v)
	}
	existed, err := s.backend.Has(ctx, p)
	if err != nil {
		errorResponse(w, err)
		return
	}
	body, err := decompressor.ForEncoding(r.Body, r.Header.Get(hdrContentEncoding))
	if err != nil {
		jsonResponse(w, http.StatusUnsupportedMediaType, err)
		return
	}
	m, err := s.backend.WriteStream(ctx, p, body, cfg)
	if err != nil {
		errorResponse(w, err)
		return
	}
	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(m)
}

// ServeDelete removes a file or a whole directory.
func (s *Server) ServeDelete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx, cancel := s.context(r)
	defer cancel()
	p := cleanPath(params)
	err := s.backend.Delete(ctx, p)
	if errors.Is(err, storage.ErrIsDir) {
		err = s.backend.DeleteDir(ctx, p)
	}
	if err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeFormats lists the supported formats.
func (s *Server) ServeFormats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	json.NewEncoder(w).Encode(format.List())
}
