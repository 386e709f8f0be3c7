package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/webeat/weve/internal/model"
)

// maxJSONBody caps JSON request bodies. Photo uploads are multipart and
// carry their own limit.
const maxJSONBody = 1 << 20

var errTrailingData = errors.New("request body must hold a single JSON object")

// envelope is the success body for every JSON route: the payload under
// "data", navigation under "_links", and a cursor for paged lists.
type envelope struct {
	Data       interface{}       `json:"data"`
	Pagination *PaginationInfo   `json:"pagination,omitempty"`
	Links      map[string]string `json:"_links,omitempty"`
}

// PaginationInfo contains cursor-based pagination info
type PaginationInfo struct {
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// WriteJSON writes v as the whole body
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteData writes a single resource
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	WriteJSON(w, status, envelope{Data: data, Links: links})
}

// WriteCollection writes a list. A nil slice is sent as [] so clients
// never see "data": null.
func WriteCollection(w http.ResponseWriter, status int, items interface{}, page *PaginationInfo, links map[string]string) {
	if items == nil {
		items = []struct{}{}
	}
	WriteJSON(w, status, envelope{Data: items, Pagination: page, Links: links})
}

// WriteError writes an RFC 9457 problem
func WriteError(w http.ResponseWriter, p *model.ProblemDetails) {
	p.WriteJSON(w)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ReadJSON decodes the request body into v. Unknown fields, trailing
// data and bodies over 1 MiB are rejected. On failure it writes a 400
// naming the problem and returns false.
func ReadJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err == nil && dec.More() {
		err = errTrailingData
	}
	if err == nil {
		return true
	}
	WriteError(w, model.NewBadRequestError(describeDecodeError(err)))
	return false
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError

	switch {
	case errors.Is(err, errTrailingData):
		return err.Error()
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is truncated JSON"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)
		}
		return "request body has the wrong JSON type"
	case errors.As(err, &sizeErr):
		return fmt.Sprintf("request body exceeds %d bytes", sizeErr.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		return "invalid request body"
	}
}
