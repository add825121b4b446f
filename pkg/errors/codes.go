package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCachedNull         ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Configuration Error Codes
const (
	ErrCodeMissingCredential ErrorCode = "CONFIG_001"
	ErrCodeInvalidConfig     ErrorCode = "CONFIG_002"
)

// Discovery Error Codes
const (
	ErrCodeSearchFailed      ErrorCode = "SEARCH_001"
	ErrCodeFetchFailed       ErrorCode = "FETCH_001"
	ErrCodeFetchNotHTML      ErrorCode = "FETCH_002"
	ErrCodeRerankFailed      ErrorCode = "RERANK_001"
	ErrCodeRerankUnavailable ErrorCode = "RERANK_002"
	ErrCodeInvalidIdentifier ErrorCode = "CHEM_001"
	ErrCodeUnknownCountry    ErrorCode = "CHEM_002"
)

// Infrastructure Error Codes
const (
	ErrCodeMessageQueue ErrorCode = "INFRA_001"
	ErrCodeStorage      ErrorCode = "INFRA_002"
)

// Aliases
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCachedNull:         http.StatusNotFound,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeMissingCredential: http.StatusInternalServerError,
	ErrCodeInvalidConfig:     http.StatusInternalServerError,

	ErrCodeSearchFailed:      http.StatusBadGateway,
	ErrCodeFetchFailed:       http.StatusBadGateway,
	ErrCodeFetchNotHTML:      http.StatusBadGateway,
	ErrCodeRerankFailed:      http.StatusBadGateway,
	ErrCodeRerankUnavailable: http.StatusServiceUnavailable,
	ErrCodeInvalidIdentifier: http.StatusBadRequest,
	ErrCodeUnknownCountry:    http.StatusBadRequest,

	ErrCodeMessageQueue: http.StatusInternalServerError,
	ErrCodeStorage:      http.StatusInternalServerError,
}

// ErrorCodeMessage provides the default user-facing message per code.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:          "internal server error",
	ErrCodeBadRequest:        "bad request",
	ErrCodeNotFound:          "resource not found",
	ErrCodeTimeout:           "request timed out",
	ErrCodeMissingCredential: "required credential is not configured",
	ErrCodeInvalidConfig:     "invalid configuration",
	ErrCodeSearchFailed:      "search provider request failed",
	ErrCodeFetchFailed:       "page fetch failed",
	ErrCodeRerankFailed:      "reranking request failed",
	ErrCodeInvalidIdentifier: "invalid chemical identifier",
	ErrCodeUnknownCountry:    "unknown country",
}

// HTTPStatusForCode returns the HTTP status for code, defaulting to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if s, ok := ErrorCodeHTTPStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MessageForCode returns the default message for code.
func MessageForCode(code ErrorCode) string {
	if m, ok := ErrorCodeMessage[code]; ok {
		return m
	}
	return strings.ToLower(strings.ReplaceAll(code.String(), "_", " "))
}

//Personal.AI order the ending
