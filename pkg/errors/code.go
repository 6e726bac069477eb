package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 12000-12999: Snapshot storage & cache errors
// 14000-14999: Ranklist & Replay errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheSetFailed ErrorCode = 10202

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Snapshot Storage Errors (12000-12999) ==========

	SnapshotNotFound    ErrorCode = 12000
	SnapshotFetchFailed ErrorCode = 12001
	SnapshotDecodeError ErrorCode = 12002
	SnapshotTooLarge    ErrorCode = 12003

	// ========== Ranklist & Replay Errors (14000-14999) ==========

	// Schema (14000-14099)
	UnsupportedSchema  ErrorCode = 14000
	UnsupportedVersion ErrorCode = 14001

	// Replay (14100-14199)
	ReplayUnsupported  ErrorCode = 14100
	ReplayFailed       ErrorCode = 14101
	InvalidCutoff      ErrorCode = 14102
	UnknownUser        ErrorCode = 14103
	InvalidLiveEvent   ErrorCode = 14104
	LiveUpdateDisabled ErrorCode = 14105

	// Ranking (14200-14299)
	RankingNotAvailable ErrorCode = 14200
	UnknownSeriesPreset ErrorCode = 14201
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Cache
	CacheError:     "Cache operation failed",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Snapshot storage
	SnapshotNotFound:    "Ranklist snapshot not found",
	SnapshotFetchFailed: "Failed to fetch ranklist snapshot",
	SnapshotDecodeError: "Failed to decode ranklist snapshot",
	SnapshotTooLarge:    "Ranklist snapshot is too large",

	// Schema
	UnsupportedSchema:  "Ranklist schema is not supported",
	UnsupportedVersion: "Ranklist version is not supported",

	// Replay
	ReplayUnsupported:  "Ranklist does not support replay",
	ReplayFailed:       "Ranklist replay failed",
	InvalidCutoff:      "Invalid playback cutoff time",
	UnknownUser:        "Solution event references unknown user",
	InvalidLiveEvent:   "Invalid live solution event",
	LiveUpdateDisabled: "Live update is disabled",

	// Ranking
	RankingNotAvailable: "Ranking is not available",
	UnknownSeriesPreset: "Unknown series rule preset",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == SnapshotNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == InvalidCutoff:
		return 400
	case c == UnsupportedSchema, c == UnsupportedVersion, c == ReplayUnsupported:
		return 422
	default:
		return 500
	}
}
