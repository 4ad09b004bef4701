package rdfhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/storage"
	"github.com/cayleygraph/rdfstore/storage/rdf"
)

const (
	hdrContentType     = "Content-Type"
	hdrContentLength   = "Content-Length"
	hdrContentEncoding = "Content-Encoding"
	hdrAccept          = "Accept"
	hdrLastModified    = "Last-Modified"
	contentTypeJSON    = "application/json"
)

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	w.Write([]byte(`{"error": `))
	var s string
	switch err := err.(type) {
	case string:
		s = err
	case error:
		s = err.Error()
	default:
		s = fmt.Sprint(err)
	}
	data, _ := json.Marshal(s)
	w.Write(data)
	w.Write([]byte(`}`))
}

// errorCode maps storage and conversion errors to a response status.
func errorCode(err error) int {
	var (
		unsupported *rdf.UnsupportedFormatError
		conversion  *rdf.ConversionError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unsupported):
		return http.StatusNotAcceptable
	case errors.As(err, &conversion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrExists), errors.Is(err, storage.ErrIsDir), errors.Is(err, storage.ErrNotDir):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func errorResponse(w http.ResponseWriter, err error) {
	code := errorCode(err)
	if code == http.StatusInternalServerError {
		clog.Errorf("request failed: %v", err)
	}
	jsonResponse(w, code, err)
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
	w.code = code
}

func getAddress(req *http.Request) string {
	addr := req.Header.Get("X-Real-IP")
	if addr == "" {
		addr = req.Header.Get("X-Forwarded-For")
		if addr == "" {
			addr = req.RemoteAddr
		}
	}
	return addr
}

// LogRequest logs the start and the outcome of every request.
func LogRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		clog.Infof("started %s %s for %s", req.Method, req.URL.Path, getAddress(req))
		handler.ServeHTTP(sw, req)
		clog.Infof("completed %v %s %s in %v", sw.code, http.StatusText(sw.code), req.URL.Path, time.Since(start))
	})
}

// CORS adds CORS related headers to responses.
func CORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if origin := req.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Type, Content-Length, Last-Modified")
		}
		h.ServeHTTP(w, req)
	})
}

// HandlePreflight answers CORS preflight requests.
func HandlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth answers health checks.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
