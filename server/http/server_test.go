package rdfhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/rdfstore/storage"
	"github.com/cayleygraph/rdfstore/storage/memstore"
)

const card = "@prefix rdfs: <> .\n</> rdfs:comment '' ."

func newServer(t testing.TB, opts Options) (*Server, storage.Backend) {
	b := memstore.New()
	ctx := context.TODO()
	_, err := b.Write(ctx, "profile/card.ttl", []byte(card), storage.Config{})
	require.NoError(t, err)
	_, err = b.Write(ctx, "broken.ttl", []byte("<a> <b"), storage.Config{})
	require.NoError(t, err)
	if opts.BaseURL == "" {
		opts.BaseURL = "https://example.com/"
	}
	return New(b, opts, LogRequest, CORS), b
}

func do(s http.Handler, method, target string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestGetStored(t *testing.T) {
	s, _ := newServer(t, Options{})
	w := do(s, "GET", "/files/profile/card.ttl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, card, w.Body.String())
	require.Equal(t, "text/turtle", w.Header().Get(hdrContentType))
}

func TestGetNegotiated(t *testing.T) {
	s, _ := newServer(t, Options{})
	for _, c := range []struct {
		name   string
		target string
		accept string
		mime   string
	}{
		{name: "accept", target: "/files/profile/card.ttl", accept: "text/html, application/ld+json;q=0.9", mime: "application/ld+json"},
		{name: "query", target: "/files/profile/card.ttl?format=jsonld", accept: "text/turtle", mime: "application/ld+json"},
		{name: "wildcard", target: "/files/profile/card.ttl", accept: "*/*", mime: "text/turtle"},
	} {
		t.Run(c.name, func(t *testing.T) {
			w := do(s, "GET", c.target, "", map[string]string{"Accept": c.accept})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			require.Equal(t, c.mime, w.Header().Get(hdrContentType))
		})
	}

	w := do(s, "GET", "/files/profile/card.ttl?format=jsonld", "", nil)
	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	require.Len(t, doc, 1)
	require.Equal(t, "https://example.com/", doc[0]["@id"])
}

func TestGetErrors(t *testing.T) {
	s, _ := newServer(t, Options{})
	for _, c := range []struct {
		target string
		code   int
	}{
		{target: "/files/missing.ttl", code: http.StatusNotFound},
		{target: "/files/profile/card.ttl?format=bogus", code: http.StatusNotAcceptable},
		{target: "/files/broken.ttl?format=jsonld", code: http.StatusUnprocessableEntity},
	} {
		w := do(s, "GET", c.target, "", nil)
		require.Equal(t, c.code, w.Code, c.target)
		require.Equal(t, contentTypeJSON, w.Header().Get(hdrContentType))
		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Error)
	}
}

func TestListDir(t *testing.T) {
	s, _ := newServer(t, Options{})
	w := do(s, "GET", "/files/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []storage.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	require.Equal(t, "broken.ttl", list[0].Path)
	require.Equal(t, "profile", list[1].Path)
	require.Equal(t, storage.TypeDir, list[1].Type)

	w = do(s, "GET", "/files/profile", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestHead(t *testing.T) {
	s, _ := newServer(t, Options{})
	w := do(s, "HEAD", "/files/profile/card.ttl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/turtle", w.Header().Get(hdrContentType))
	require.Equal(t, "40", w.Header().Get(hdrContentLength))

	w = do(s, "HEAD", "/files/profile/card.ttl", "", map[string]string{"Accept": "application/n-triples"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/n-triples", w.Header().Get(hdrContentType))

	w = do(s, "HEAD", "/files/missing.ttl", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutDelete(t *testing.T) {
	s, b := newServer(t, Options{})
	data := "<https://example.com/a> <https://example.com/b> \"c\" .\n"

	w := do(s, "PUT", "/files/new/data.nt", data, map[string]string{"Content-Type": "application/n-triples; charset=utf-8"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m, err := b.GetMimetype(context.TODO(), "new/data.nt")
	require.NoError(t, err)
	require.Equal(t, "application/n-triples", m.Mimetype)

	w = do(s, "PUT", "/files/new/data.nt", data, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, "GET", "/files/new/data.nt?format=turtle", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, data, w.Body.String())

	w = do(s, "DELETE", "/files/new/data.nt", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(s, "DELETE", "/files/new", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	ok, err := b.Has(context.TODO(), "new")
	require.NoError(t, err)
	require.False(t, ok)

	w = do(s, "DELETE", "/files/new", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadOnly(t *testing.T) {
	s, _ := newServer(t, Options{ReadOnly: true})
	w := do(s, "PUT", "/files/x.ttl", "x", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	w = do(s, "DELETE", "/files/profile/card.ttl", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServiceRoutes(t *testing.T) {
	s, _ := newServer(t, Options{})
	require.Equal(t, http.StatusNoContent, do(s, "GET", "/health", "", nil).Code)

	w := do(s, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, "GET", "/formats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var formats []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &formats))
	require.Len(t, formats, 5)

	w = do(s, "OPTIONS", "/files/x.ttl", "", map[string]string{"Origin": "https://app.example"})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseAccept(t *testing.T) {
	h := http.Header{}
	h.Add("Accept", "text/html;q=0.5, Application/LD+JSON, text/turtle;q=0.8")
	h.Add("Accept", "image/png;q=0")
	specs := ParseAccept(h, "accept")
	require.Equal(t, []AcceptSpec{
		{Value: "application/ld+json", Q: 1},
		{Value: "text/turtle", Q: 0.8},
		{Value: "text/html", Q: 0.5},
	}, specs)
}

func TestPutCompressed(t *testing.T) {
	s, b := newServer(t, Options{})
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(card))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest("PUT", "/files/packed.ttl", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	m, err := b.Read(context.TODO(), "packed.ttl")
	require.NoError(t, err)
	require.Equal(t, card, string(m.Contents))

	req = httptest.NewRequest("PUT", "/files/packed.ttl", strings.NewReader(card))
	req.Header.Set("Content-Encoding", "compress")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
