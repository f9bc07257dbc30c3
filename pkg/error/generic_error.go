package error

// GenericError is implemented by every typed error in this package so the
// protocol layers can translate them uniformly.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
