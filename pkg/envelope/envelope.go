// Package envelope defines the uniform {message, payload, status} result
// returned by every service operation and written verbatim to the wire.
package envelope

import (
	"encoding/json"
	"net/http"
)

const (
	MsgValidationError = "Validation Error"
	MsgInternalError   = "Something went wrong"
)

// FieldErrors maps a field name to the messages of every rule it violated.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// None is the payload type of operations that never carry data.
type None struct{}

type payloadKind uint8

const (
	payloadNull payloadKind = iota
	payloadData
	payloadFields
	payloadDetail
)

// Envelope is a tagged result: at most one of Data, Fields or Detail is set,
// selected by the constructor that built it.
type Envelope[T any] struct {
	Message string
	Status  int
	Data    *T
	Fields  FieldErrors
	Detail  string

	kind payloadKind
}

type wire struct {
	Message string `json:"message"`
	Payload any    `json:"payload"`
	Status  int    `json:"status"`
}

// OK builds a 200 envelope carrying data. A nil data pointer yields a null payload.
func OK[T any](message string, data *T) *Envelope[T] {
	e := &Envelope[T]{Message: message, Status: http.StatusOK, Data: data}
	if data != nil {
		e.kind = payloadData
	}
	return e
}

// Invalid builds a 400 envelope whose payload is the field error map.
func Invalid[T any](fields FieldErrors) *Envelope[T] {
	return &Envelope[T]{
		Message: MsgValidationError,
		Status:  http.StatusBadRequest,
		Fields:  fields,
		kind:    payloadFields,
	}
}

func Unauthorized[T any](message string) *Envelope[T] {
	return Empty[T](http.StatusUnauthorized, message)
}

func NotFound[T any](message string) *Envelope[T] {
	return Empty[T](http.StatusNotFound, message)
}

// Internal builds a 500 envelope whose payload is the error text.
func Internal[T any](err error) *Envelope[T] {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &Envelope[T]{
		Message: MsgInternalError,
		Status:  http.StatusInternalServerError,
		Detail:  detail,
		kind:    payloadDetail,
	}
}

// Empty builds an envelope with the given status and a null payload.
func Empty[T any](status int, message string) *Envelope[T] {
	return &Envelope[T]{Message: message, Status: status}
}

// HTTPStatus is the status to put on the wire; zero means 200.
func (e Envelope[T]) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusOK
	}
	return e.Status
}

// OK reports whether the envelope is a success.
func (e Envelope[T]) OK() bool {
	return e.HTTPStatus() == http.StatusOK
}

// Payload returns the active payload variant, or nil.
func (e Envelope[T]) Payload() any {
	switch e.kind {
	case payloadData:
		return e.Data
	case payloadFields:
		return e.Fields
	case payloadDetail:
		return e.Detail
	default:
		return nil
	}
}

func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{
		Message: e.Message,
		Payload: e.Payload(),
		Status:  e.HTTPStatus(),
	})
}
