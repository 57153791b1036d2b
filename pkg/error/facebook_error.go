package error

import "net/http"

// Graph API error codes that mean the page token is dead or the app lost
// permission. Anything else is a generic API failure.
const (
	graphCodeInvalidToken   = 190
	graphCodeSessionExpired = 102
)

// Graph API codes for throttling, both app-level and page-level.
var graphRateLimitCodes = map[int]bool{4: true, 17: true, 32: true}

type AuthError struct {
	Message   string
	GraphCode int
}

func NewAuthError(message string, graphCode int) *AuthError {
	return &AuthError{Message: message, GraphCode: graphCode}
}

func (err *AuthError) Error() string   { return err.Message }
func (err *AuthError) ErrCode() string { return "AUTH_ERROR" }
func (err *AuthError) StatusCode() int { return http.StatusUnauthorized }

type RateLimitError struct {
	Message   string
	GraphCode int
}

func NewRateLimitError(message string, graphCode int) *RateLimitError {
	return &RateLimitError{Message: message, GraphCode: graphCode}
}

func (err *RateLimitError) Error() string   { return err.Message }
func (err *RateLimitError) ErrCode() string { return "RATE_LIMIT_ERROR" }
func (err *RateLimitError) StatusCode() int { return http.StatusTooManyRequests }

// GraphAPIError is any other error response from the Graph API.
type GraphAPIError struct {
	Message   string
	Type      string
	GraphCode int
	Subcode   int
	TraceID   string
}

func (err *GraphAPIError) Error() string   { return err.Message }
func (err *GraphAPIError) ErrCode() string { return "FACEBOOK_API_ERROR" }
func (err *GraphAPIError) StatusCode() int { return http.StatusBadGateway }

// NewGraphError classifies a Graph API error payload into the matching
// error type.
func NewGraphError(message, errType string, code, subcode int, traceID string) GenericError {
	switch {
	case code == graphCodeInvalidToken || code == graphCodeSessionExpired:
		return NewAuthError(message, code)
	case graphRateLimitCodes[code]:
		return NewRateLimitError(message, code)
	default:
		return &GraphAPIError{
			Message:   message,
			Type:      errType,
			GraphCode: code,
			Subcode:   subcode,
			TraceID:   traceID,
		}
	}
}
