package client

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Sternrassler/geocode-cache/pkg/geocode"
)

// Messages returned to callers for classified upstream failures.
const (
	MsgUnauthorized      = "Unauthorized access"
	MsgInvalidParameters = "Invalid parameters provided"
	MsgResourceNotFound  = "Resource not found"
	MsgInvalidFormat     = "Invalid response format received"
	MsgInvalidAddress    = "Invalid address provided"
	MsgInvalidCoordinate = "Invalid coordinates provided"
)

// classifyStatus maps a non-2xx upstream status to an error kind.
//
//	401       -> Unauthorized
//	422       -> InvalidInput
//	otherwise -> UpstreamUnreachable
func classifyStatus(status int) *geocode.Error {
	switch status {
	case http.StatusUnauthorized:
		return &geocode.Error{Kind: geocode.KindUnauthorized, StatusCode: status, Message: MsgUnauthorized}
	case http.StatusUnprocessableEntity:
		return &geocode.Error{Kind: geocode.KindInvalidInput, StatusCode: status, Message: MsgInvalidParameters}
	default:
		return &geocode.Error{Kind: geocode.KindUpstreamUnreachable, StatusCode: status, Message: MsgResourceNotFound}
	}
}

// transportError classifies a failure to get any HTTP response.
// The *url.Error wrapper is dropped because its text carries the request URL
// and with it the access key.
func transportError(message string, err error) *geocode.Error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return &geocode.Error{Kind: geocode.KindUpstreamUnreachable, Message: message, Err: err}
}

func malformedError(status int, err error) *geocode.Error {
	return &geocode.Error{Kind: geocode.KindMalformedResponse, StatusCode: status, Message: MsgInvalidFormat, Err: err}
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
