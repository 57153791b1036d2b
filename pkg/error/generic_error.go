package error

// GenericError is implemented by every application error so the REST
// boundary can map it to an HTTP status and machine-readable code.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
