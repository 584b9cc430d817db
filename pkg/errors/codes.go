package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeMessagingError     ErrorCode = "COMMON_012"
)

// Medication module error codes.
const (
	ErrCodeMedicationNotFound      ErrorCode = "MED_001"
	ErrCodeMedicationAlreadyExists ErrorCode = "MED_002"
	ErrCodeMedicationNameInvalid   ErrorCode = "MED_003"
	ErrCodeDoseEventNotFound       ErrorCode = "MED_004"
	ErrCodeDoseEventInvalid        ErrorCode = "MED_005"
)

// Assistant module error codes.
const (
	ErrCodeConversationNotFound ErrorCode = "AST_001"
	ErrCodeUtteranceTooLong     ErrorCode = "AST_002"
	ErrCodeAlertPublishFailed   ErrorCode = "AST_003"
)

// HTTPStatus maps an error code to the HTTP status the interface layer should
// return for it. Unmapped codes fall back to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeMedicationNameInvalid,
		ErrCodeDoseEventInvalid, ErrCodeUtteranceTooLong:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeMedicationNotFound, ErrCodeDoseEventNotFound,
		ErrCodeConversationNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeMedicationAlreadyExists:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
