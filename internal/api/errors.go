package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/jx"
)

// APIError is a server-signaled failure: a non-2xx response with a
// `{code, message}` body. When the body does not parse, Message falls back
// to a generic text so the prompt shown to the operator is never empty.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// NotFound reports whether the backend answered 404.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
	}

	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			code, err := d.Int()
			if err != nil {
				return err
			}
			apiErr.Code = code
		case "message":
			msg, err := d.Str()
			if err != nil {
				return err
			}
			if msg != "" {
				apiErr.Message = msg
			}
		default:
			return d.Skip()
		}
		return nil
	})

	return apiErr
}
