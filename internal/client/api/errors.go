package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// wireError is the backend's structured error body.
type wireError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Expected int64  `json:"expected,omitempty"`
	Actual   int64  `json:"actual,omitempty"`
}

// Backend error codes. Mirrors the server's taxonomy.
const (
	codeDuplicate       = "duplicate"
	codeForeignKey      = "foreign_key"
	codeNotNull         = "not_null"
	codeCheck           = "check"
	codeUndefinedTable  = "undefined_table"
	codeVersionConflict = "version_conflict"
	codeNotFound        = "not_found"
	codeUnauthorized    = "unauthorized"
	codeTokenExpired    = "token_expired"
)

// mapResponseError translates a non-2xx response into the shared error
// taxonomy. Unknown bodies degrade to a generic wrapped error so transient
// server failures stay retryable.
func mapResponseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && we.Code != "" {
		switch we.Code {
		case codeDuplicate:
			return &common.DuplicateError{Field: we.Field, Value: we.Value}
		case codeForeignKey:
			return fmt.Errorf("%s: %w", we.Message, common.ErrForeignKey)
		case codeNotNull:
			return fmt.Errorf("%s: %w", we.Message, common.ErrMissingField)
		case codeCheck:
			return fmt.Errorf("%s: %w", we.Message, common.ErrCheckViolation)
		case codeUndefinedTable:
			return fmt.Errorf("%s: %w", we.Message, common.ErrUndefinedTable)
		case codeVersionConflict:
			return &common.VersionConflictError{Expected: we.Expected, Actual: we.Actual}
		case codeNotFound:
			return common.ErrNotFound
		case codeTokenExpired:
			return common.ErrTokenExpired
		case codeUnauthorized:
			return common.ErrUnauthorized
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return common.ErrUnavailable
	}
	return fmt.Errorf("backend error: %s", resp.Status)
}
