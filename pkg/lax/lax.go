// Package lax implements tools for building easy RESTful APIs.
//
//      ^ ^
//  ("\(-_-)/")
//  )(       )(
// ((...) (...))
//
// Take it easy!
package lax

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// A flag for debugging the server.
var debug bool

// EnableDebugMode enables debugging for the API, so debug output is printed.
func EnableDebugMode() {
	debug = true
}

// DisableDebugMode disables debugging for the API, so debug output is hidden.
func DisableDebugMode() {
	debug = false
}

// DebugModeEnabled returns `true` if debug mode is enabled.
func DebugModeEnabled() bool {
	return debug
}

// Request wraps http.Request to provide convenience methods.
type Request struct {
	*http.Request
}

// ErrEmptyBody is returned by JSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// JSON loads JSON data from a request into the given address.
//
// Unknown fields are rejected so typos in field names are not silently ignored.
func (request *Request) JSON(ptr any) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(ptr); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}

		return err
	}

	return nil
}

// Var returns a route variable captured by the mux router.
func (request *Request) Var(name string) string {
	return mux.Vars(request.Request)[name]
}

// Query returns a query string parameter.
func (request *Request) Query(name string) string {
	return request.URL.Query().Get(name)
}

// MethodHandler is a handle for an HTTP method.
type MethodHandler = func(request *Request) any

// View represents a view for a RESTful API.
type View struct {
	// The handler for HEAD requests.
	Head MethodHandler
	// The handler for GET requests.
	Get MethodHandler
	// The handler for POST requests.
	Post MethodHandler
	// The handler for PUT requests.
	Put MethodHandler
	// The handler for PATCH requests.
	Patch MethodHandler
	// The handler for DELETE requests.
	Delete MethodHandler
}

// Methods lists the HTTP methods the view has handlers for.
func (view *View) Methods() []string {
	var methods []string

	for _, entry := range []struct {
		name    string
		handler MethodHandler
	}{
		{http.MethodHead, view.Head},
		{http.MethodGet, view.Get},
		{http.MethodPost, view.Post},
		{http.MethodPut, view.Put},
		{http.MethodPatch, view.Patch},
		{http.MethodDelete, view.Delete},
	} {
		if entry.handler != nil {
			methods = append(methods, entry.name)
		}
	}

	return methods
}

// Response represents a response to return.
type Response struct {
	Status int
	Data   any
}

// IssueDescription is an issue created with Issue.
type IssueDescription struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

// Issue creates an issue for use with MakeErrorListResponse.
func Issue(path, problem string) IssueDescription {
	return IssueDescription{path, problem}
}

// MakeResponse creates a response with a status code and data.
func MakeResponse(status int, data any) *Response {
	return &Response{status, data}
}

// MakeBadRequestResponse creates a 400 error response from one object.
func MakeBadRequestResponse(data any) *Response {
	switch v := data.(type) {
	case error:
		// Get the string from errors for 400 responses.
		return &Response{http.StatusBadRequest, v.Error()}
	default:
		return &Response{http.StatusBadRequest, v}
	}
}

// MakeErrorListResponse creates a 400 error response from parts.
func MakeErrorListResponse(parts ...IssueDescription) *Response {
	return &Response{http.StatusBadRequest, parts}
}

// A default handler for handling methods that are not allowed.
func methodNotAllowedHandler(request *Request) any {
	return &Response{http.StatusMethodNotAllowed, "Method Not Allowed"}
}

// Get the pointer to the handler for the HTTP request method.
func dispatch(view *View, requestMethod string) (MethodHandler, int) {
	var handler MethodHandler
	defaultStatus := http.StatusOK

	switch {
	case strings.EqualFold(requestMethod, http.MethodGet):
		handler = view.Get
	case strings.EqualFold(requestMethod, http.MethodPost):
		handler = view.Post
		defaultStatus = http.StatusCreated
	case strings.EqualFold(requestMethod, http.MethodPut):
		handler = view.Put
	case strings.EqualFold(requestMethod, http.MethodPatch):
		handler = view.Patch
	case strings.EqualFold(requestMethod, http.MethodDelete):
		handler = view.Delete
		defaultStatus = http.StatusNoContent
	case strings.EqualFold(requestMethod, http.MethodHead):
		handler = view.Head
	}

	if handler == nil {
		handler = methodNotAllowedHandler
		defaultStatus = http.StatusMethodNotAllowed
	}

	return handler, defaultStatus
}

// Normalise response data so we can consume it.
func normalise(response any, defaultStatus int) (*Response, error) {
	switch v := response.(type) {
	case *Response:
		return v, nil
	case error:
		return &Response{http.StatusInternalServerError, nil}, v
	default:
		return &Response{defaultStatus, v}, nil
	}
}

// Wrap creates an HandlerFunc from a View.
func Wrap(view View) http.HandlerFunc {
	return func(writer http.ResponseWriter, httpRequest *http.Request) {
		request := Request{httpRequest}
		method, defaultStatus := dispatch(&view, request.Method)
		response, responseErr := normalise(method(&request), defaultStatus)

		if responseErr != nil {
			if response.Status < 500 || debug {
				http.Error(writer, responseErr.Error(), response.Status)
			} else {
				http.Error(writer, "Internal Server Error", response.Status)
			}

			return
		}

		if response.Status == http.StatusNoContent {
			writer.WriteHeader(response.Status)

			return
		}

		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(response.Status)
		outputEncoder := json.NewEncoder(writer)
		outputEncoder.SetEscapeHTML(false)

		if err := outputEncoder.Encode(response.Data); err != nil {
			// The status line is already written, so only the body can change.
			if debug {
				_, _ = io.WriteString(writer, err.Error())
			}
		}
	}
}
