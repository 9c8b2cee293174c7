package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response represents an API response.
type Response interface {
	Render(w http.ResponseWriter) error
	String() string
	Code() int
}

// Sync response.
type syncResponse struct {
	etag     any
	metadata any
	location string
	code     int
}

// SyncResponse returns a new syncResponse rendering metadata as the JSON body.
func SyncResponse(metadata any) Response {
	return &syncResponse{metadata: metadata}
}

// SyncResponseETag returns a new syncResponse with an etag.
func SyncResponseETag(metadata any, etag any) Response {
	return &syncResponse{metadata: metadata, etag: etag}
}

// SyncResponseRedirect returns a new syncResponse with a location, indicating
// a temporary redirect.
func SyncResponseRedirect(address string) Response {
	return &syncResponse{location: address, code: http.StatusFound}
}

func (r *syncResponse) Render(w http.ResponseWriter) error {
	// Set an appropriate ETag header
	if r.etag != nil {
		etag, err := etagHash(r.etag)
		if err == nil {
			w.Header().Set("ETag", fmt.Sprintf("\"%s\"", etag))
		}
	}

	if r.location != "" {
		w.Header().Set("Location", r.location)

		if r.code == 0 {
			r.code = http.StatusCreated
		}
	}

	// Write header and status code.
	if r.code == 0 {
		r.code = http.StatusOK
	}

	if r.metadata != nil {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(r.code)

	if r.metadata == nil {
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return enc.Encode(r.metadata)
}

func (*syncResponse) String() string {
	return "success"
}

// Code returns the HTTP code.
func (r *syncResponse) Code() int {
	if r.code == 0 {
		return http.StatusOK
	}

	return r.code
}

// Error response.
type errorResponse struct {
	code    int    // Code to return in the HTTP header.
	msg     string // Message to return in the error field of the response body.
	headers map[string]string
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse returns an error response with the given code and msg.
func ErrorResponse(code int, msg string) Response {
	return &errorResponse{code: code, msg: msg}
}

// BadRequest returns a bad request response (400) with the given error.
func BadRequest(err error) Response {
	return &errorResponse{code: http.StatusBadRequest, msg: err.Error()}
}

// InternalError returns an internal error response (500) with the given error.
func InternalError(err error) Response {
	message := "internal server error"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}

	return &errorResponse{code: http.StatusInternalServerError, msg: message}
}

// NotFound returns a not found response (404) with the given error.
func NotFound(err error) Response {
	message := "not found"
	if err != nil {
		message = err.Error()
	}

	return &errorResponse{code: http.StatusNotFound, msg: message}
}

// MethodNotAllowed returns a method not allowed response (405) listing the allowed methods.
func MethodNotAllowed(allow string) Response {
	return &errorResponse{
		code:    http.StatusMethodNotAllowed,
		msg:     "method not allowed",
		headers: map[string]string{"Allow": allow},
	}
}

// TooLarge returns a request entity too large response (413).
func TooLarge(err error) Response {
	return &errorResponse{code: http.StatusRequestEntityTooLarge, msg: err.Error()}
}

// Unauthorized return an unauthorized response (401) with the given error,
// asking for a bearer credential.
func Unauthorized(err error) Response {
	message := "unauthorized"
	if err != nil {
		message = err.Error()
	}

	return &errorResponse{
		code:    http.StatusUnauthorized,
		msg:     message,
		headers: map[string]string{"WWW-Authenticate": "Bearer"},
	}
}

func (r *errorResponse) String() string {
	return r.msg
}

// Code returns the HTTP code.
func (r *errorResponse) Code() int {
	return r.code
}

func (r *errorResponse) Render(w http.ResponseWriter) error {
	for h, v := range r.headers {
		w.Header().Set(h, v)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(r.code)

	return json.NewEncoder(w).Encode(errorBody{Error: r.msg})
}

type manualResponse struct {
	code int
	hook func(w http.ResponseWriter) error
}

// ManualResponse creates a new manual response responder writing code before
// calling hook.
func ManualResponse(code int, hook func(w http.ResponseWriter) error) Response {
	return &manualResponse{code: code, hook: hook}
}

func (r *manualResponse) Render(w http.ResponseWriter) error {
	w.WriteHeader(r.code)

	return r.hook(w)
}

func (*manualResponse) String() string {
	return "manual"
}

// Code returns the HTTP code.
func (r *manualResponse) Code() int {
	return r.code
}
