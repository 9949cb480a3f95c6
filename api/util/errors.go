package util

import (
	"errors"
	"net/http"
	"reflect"

	golog "github.com/ipfs/go-log"

	"github.com/nla/cdxserver/access"
	"github.com/nla/cdxserver/canon"
	"github.com/nla/cdxserver/cdx"
	"github.com/nla/cdxserver/index"
	"github.com/nla/cdxserver/record"
)

var log = golog.Logger("apiutil")

// APIError is an error that specifies its http status code.
type APIError struct {
	Code    int
	Message string
}

// NewAPIError returns a new APIError.
func NewAPIError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Error renders the APIError as a string.
func (err *APIError) Error() string {
	return err.Message
}

// RespondWithError writes err, with a status code derived from its kind, to
// the http response.
func RespondWithError(w http.ResponseWriter, err error) {
	if errors.Is(err, canon.ErrBadURL) {
		WriteErrResponse(w, http.StatusBadRequest, err)
		return
	}
	var badLine *cdx.BadLineError
	if errors.As(err, &badLine) {
		WriteErrResponse(w, http.StatusBadRequest, err)
		return
	}
	if errors.Is(err, cdx.ErrBadLine) {
		WriteErrResponse(w, http.StatusBadRequest, err)
		return
	}
	if errors.Is(err, record.ErrCorrupt) {
		log.Errorf("corrupt record: %s", err)
		WriteErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	if errors.Is(err, index.ErrNotFound) || errors.Is(err, access.ErrNotFound) {
		WriteErrResponse(w, http.StatusNotFound, err)
		return
	}
	if errors.Is(err, access.ErrInvalidRule) {
		WriteErrResponse(w, http.StatusBadRequest, err)
		return
	}
	if errors.Is(err, ErrUnauthorized) {
		WriteErrResponse(w, http.StatusForbidden, err)
		return
	}
	if errors.Is(err, index.ErrKv) {
		WriteErrResponse(w, http.StatusInternalServerError, err)
		return
	}
	var aerr *APIError
	if errors.As(err, &aerr) {
		WriteErrResponse(w, aerr.Code, err)
		return
	}
	log.Errorf("%s: treating this as a 500 is a bug, the code path that generated this should return a known error kind, which this function should map to a reasonable http status code", err)
	WriteErrResponse(w, http.StatusInternalServerError, err)
}

// ErrUnauthorized marks a write rejected because the server is a
// replication secondary or lacks write permission.
var ErrUnauthorized = errors.New("unauthorized")

// RespondWithDispatchTypeError writes an error describing a type mismatch
// from using dispatch.
func RespondWithDispatchTypeError(w http.ResponseWriter, got interface{}) {
	log.Errorf("type mismatch: %v of type %s", got, reflect.TypeOf(got))
	WriteErrResponse(w, http.StatusInternalServerError, NewAPIError(http.StatusInternalServerError, "internal type mismatch"))
}
