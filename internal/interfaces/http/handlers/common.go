// Package handlers implements the HTTP endpoints of the discovery API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/turtacn/ChemSource/pkg/errors"
)

const maxBodyBytes = 64 << 10

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, statusCode int, code errors.ErrorCode, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: code.String(), Message: message})
}

// writeAppError maps application errors to HTTP status codes. Messages of
// 5xx errors are replaced by the code's default message, except for missing
// credentials which the operator needs to see.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	if code == errors.ErrCodeValidation {
		status = http.StatusBadRequest
	}

	resp := ErrorResponse{Code: code.String(), Message: errors.MessageForCode(code)}
	if status < http.StatusInternalServerError || code == errors.ErrCodeMissingCredential {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			resp.Message = appErr.Message
			resp.Detail = appErr.Detail
		} else {
			resp.Message = err.Error()
		}
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeBadRequest, "%s must be a non-negative integer", key)
	}
	return n, nil
}

//Personal.AI order the ending
