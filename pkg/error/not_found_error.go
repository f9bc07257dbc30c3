package error

import "net/http"

// NotFoundOrExpiredError signals that a response id is unknown or that its
// retention window has passed. Both cases are deliberately indistinguishable.
type NotFoundOrExpiredError string

func (err NotFoundOrExpiredError) Error() string {
	return string(err)
}

func (err NotFoundOrExpiredError) ErrCode() string {
	return "NOT_FOUND_OR_EXPIRED"
}

func (err NotFoundOrExpiredError) StatusCode() int {
	return http.StatusNotFound
}
