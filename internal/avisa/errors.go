package avisa

import "github.com/pkg/errors"

var (
	ErrTransport         = errors.New("request did not reach the scheduling service")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed response body")
)
