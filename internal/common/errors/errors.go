// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput            ErrorCode = "INVALID_INPUT"
	ErrCodeSchemaValidationFailed  ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeProducerSearchFailed    ErrorCode = "PRODUCER_SEARCH_FAILED"
	ErrCodeOrderHistoryFailed      ErrorCode = "ORDER_HISTORY_FAILED"
	ErrCodeProfileNotFound         ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeCacheUnavailable        ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeNotificationSendFailed  ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeNotificationNoRecipient ErrorCode = "NOTIFICATION_NO_RECIPIENT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to Metadata and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false, nil)
}

// NewSchemaValidationFailedError reports job variables that do not satisfy
// the activity's input schema.
func NewSchemaValidationFailedError(taskType string, violations []string) *StandardError {
	details := fmt.Sprintf("taskType: %s, violations: %s", taskType, strings.Join(violations, "; "))
	return newError(ErrCodeSchemaValidationFailed, "Job variables failed schema validation", details, false, nil).
		WithMetadata("violations", violations)
}

// NewProducerSearchFailedError creates a retryable producer directory error.
func NewProducerSearchFailedError(err error) *StandardError {
	return newError(ErrCodeProducerSearchFailed, "Producer directory search failed", errText(err), true, err)
}

// NewOrderHistoryFailedError creates a retryable order history error.
func NewOrderHistoryFailedError(err error) *StandardError {
	return newError(ErrCodeOrderHistoryFailed, "Order history query failed", errText(err), true, err)
}

// NewProfileNotFoundError creates a non-retryable missing profile error.
func NewProfileNotFoundError(kind, id string) *StandardError {
	return newError(ErrCodeProfileNotFound, fmt.Sprintf("%s profile not found", kind),
		fmt.Sprintf("%sId: %s", strings.ToLower(kind), id), false, nil)
}

// NewCacheUnavailableError reports a Redis failure. Callers normally log it
// and fall through to the source of truth.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", errText(err), true, err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errText(err)), true, err)
}

func NewNotificationNoRecipientError(recipientID string) *StandardError {
	return newError(ErrCodeNotificationNoRecipient, "Recipient has no reachable contact",
		fmt.Sprintf("recipientId: %s", recipientID), false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errText(err), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, errText(err)), true, err)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("queryType: %s", queryType), true, nil)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", errText(err), true, err)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout",
		fmt.Sprintf("index: %s", index), true, nil)
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found",
		fmt.Sprintf("indexName: %s", indexName), false, nil)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errText(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errText(err), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errText(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes BPMN boundary events
// catch. Technical failures collapse onto a few catchable codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeSchemaValidationFailed:        "INVALID_INPUT",
	ErrCodeProducerSearchFailed:          "PRODUCER_SEARCH_FAILED",
	ErrCodeElasticsearchConnectionFailed: "PRODUCER_SEARCH_FAILED",
	ErrCodeSearchTimeout:                 "PRODUCER_SEARCH_FAILED",
	ErrCodeIndexNotFound:                 "PRODUCER_SEARCH_FAILED",
	ErrCodeOrderHistoryFailed:            "ORDER_HISTORY_FAILED",
	ErrCodeDatabaseConnectionFailed:      "ORDER_HISTORY_FAILED",
	ErrCodeQueryExecutionFailed:          "ORDER_HISTORY_FAILED",
	ErrCodeQueryTimeout:                  "ORDER_HISTORY_FAILED",
	ErrCodeProfileNotFound:               "PROFILE_NOT_FOUND",
	ErrCodeCacheUnavailable:              "CACHE_UNAVAILABLE",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeNotificationNoRecipient:       "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProducerSearchFailed,
		ErrCodeOrderHistoryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeTimeout,
		ErrCodeCacheUnavailable:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "ORDER"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
