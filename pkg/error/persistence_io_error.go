package error

import "net/http"

// PersistenceIOError is only returned from persistence management operations
// (enable, explicit disable cleanup). Ordinary cache mutations never raise it.
type PersistenceIOError string

func (err PersistenceIOError) Error() string {
	return string(err)
}

func (err PersistenceIOError) ErrCode() string {
	return "PERSISTENCE_IO_ERROR"
}

func (err PersistenceIOError) StatusCode() int {
	return http.StatusInternalServerError
}
