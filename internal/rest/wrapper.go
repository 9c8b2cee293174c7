package rest

import (
	"io"
	"net/http"
)

// countWrapper counts the bytes read from a request body.
type countWrapper struct {
	io.ReadCloser

	n int
}

func (w *countWrapper) Read(p []byte) (int, error) {
	n, err := w.ReadCloser.Read(p)
	w.n += n

	return n, err
}

// statusWrapper records the status code written to a response.
type statusWrapper struct {
	http.ResponseWriter

	status int
}

func (w *statusWrapper) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWrapper) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	return w.ResponseWriter.Write(p)
}

func (w *statusWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
