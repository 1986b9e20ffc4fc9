package sfs

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	// ErrInvalidOperation is returned for an unknown method name
	ErrInvalidOperation = errors.New("invalid method")
	// ErrInvalidEndpoint is returned when the service URL has no scheme or host
	ErrInvalidEndpoint = errors.New("invalid service url")
	// ErrArchiveCreate is returned when the upload archive cannot be written
	ErrArchiveCreate = errors.New("cannot create archive")
	// ErrArchiveRead is returned when the archive cannot be read or sent
	ErrArchiveRead = errors.New("cannot read archive")
	// ErrLocalFileCreate is returned when a downloaded file cannot be written
	ErrLocalFileCreate = errors.New("cannot create local file")
	// ErrInvalidResponse is returned when a success body is not valid JSON
	ErrInvalidResponse = errors.New("invalid response body")
	// ErrNoFiles is returned by file_most_recent on an empty listing
	ErrNoFiles = errors.New("no files in context")
	// ErrIncomparableDates is returned when listing dates cannot be ordered
	ErrIncomparableDates = errors.New("incomparable file dates")
)

// APIError is a non-2xx reply from the service. Body is kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is matches any *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel API errors for use with errors.Is.
var (
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden}
)

// ResponseError is a 2xx reply that could not be turned into a result,
// either because its body is unusable or because it holds no files.
type ResponseError struct {
	StatusCode int
	Body       string
	URL        string
	Err        error
}

func (e *ResponseError) Error() string {
	return e.Err.Error()
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// RequestError is a request that got no usable reply, such as a refused
// connection or a body cut short.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FailureFrom converts an invocation error into its failure document,
// carrying status code, raw body and URL when the error has them.
func FailureFrom(err error) *Failure {
	f := &Failure{Failed: true, Msg: err.Error()}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		f.Msg = "Something went wrong..."
		f.Response = apiErr.Body
		f.Code = apiErr.StatusCode
		f.URL = apiErr.URL
		return f
	}

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		f.Response = respErr.Body
		f.Code = respErr.StatusCode
		f.URL = respErr.URL
		return f
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		f.URL = reqErr.URL
	}
	return f
}
