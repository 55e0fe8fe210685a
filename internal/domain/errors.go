// Package domain defines the error kinds surfaced to API clients.
package domain

import (
	"errors"
	"net/http"
)

// HTTPError is an error that maps to an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrGenerationFailed = errors.New("generation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrUnauthorized     = errors.New("unauthorized")
)

// InvalidInputError rejects a request before any work is done, e.g. an empty
// utterance.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string        { return e.Message }
func (e *InvalidInputError) StatusCode() int      { return http.StatusBadRequest }
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// GenerationFailedError reports that the language model could not produce
// text within the retry budget, or produced none.
type GenerationFailedError struct {
	Message string
	Err     error
}

func (e *GenerationFailedError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}
func (e *GenerationFailedError) Unwrap() error        { return e.Err }
func (e *GenerationFailedError) StatusCode() int      { return http.StatusBadGateway }
func (e *GenerationFailedError) Is(target error) bool { return target == ErrGenerationFailed }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string        { return e.Message }
func (e *UnauthorizedError) StatusCode() int      { return http.StatusUnauthorized }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// StatusCode returns the HTTP status for err, 500 when err carries none.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}
