package ruter

import (
	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter/status"
)

// The builders below pair every member of the status set with a ready made
// part. Text forms encode and delegate to the byte forms. None of them set
// a content type, compose with SetMimeType when one is needed.

func OK(body string) Part {
	return OKBytes([]byte(body))
}

func OKBytes(body []byte) Part {
	return Respond(status.OK, body)
}

func Created(body string) Part {
	return CreatedBytes([]byte(body))
}

func CreatedBytes(body []byte) Part {
	return Respond(status.Created, body)
}

func Accepted(body string) Part {
	return AcceptedBytes([]byte(body))
}

func AcceptedBytes(body []byte) Part {
	return Respond(status.Accepted, body)
}

// NoContent stages a bodiless 204.
func NoContent() Part {
	return Respond(status.NoContent, nil)
}

func redirect(s status.Status, location string) Part {
	return Compose(
		SetHeader(strong.HeaderLocation, location),
		Respond(s, []byte(s.Message())),
	)
}

func MovedPermanently(location string) Part {
	return redirect(status.MovedPermanently, location)
}

func Found(location string) Part {
	return redirect(status.Found, location)
}

// Redirect is Found under the name most callers look for.
func Redirect(location string) Part {
	return Found(location)
}

// NotModified stages a bodiless 304.
func NotModified() Part {
	return Respond(status.NotModified, nil)
}

func BadRequest(body string) Part {
	return BadRequestBytes([]byte(body))
}

func BadRequestBytes(body []byte) Part {
	return Respond(status.BadRequest, body)
}

func Unauthorized(body string) Part {
	return UnauthorizedBytes([]byte(body))
}

func UnauthorizedBytes(body []byte) Part {
	return Respond(status.Unauthorized, body)
}

func Forbidden(body string) Part {
	return ForbiddenBytes([]byte(body))
}

func ForbiddenBytes(body []byte) Part {
	return Respond(status.Forbidden, body)
}

func NotFound(body string) Part {
	return NotFoundBytes([]byte(body))
}

func NotFoundBytes(body []byte) Part {
	return Respond(status.NotFound, body)
}

func MethodNotAllowed(body string) Part {
	return MethodNotAllowedBytes([]byte(body))
}

func MethodNotAllowedBytes(body []byte) Part {
	return Respond(status.MethodNotAllowed, body)
}

func Conflict(body string) Part {
	return ConflictBytes([]byte(body))
}

func ConflictBytes(body []byte) Part {
	return Respond(status.Conflict, body)
}

func Gone(body string) Part {
	return GoneBytes([]byte(body))
}

func GoneBytes(body []byte) Part {
	return Respond(status.Gone, body)
}

func UnsupportedMediaType(body string) Part {
	return UnsupportedMediaTypeBytes([]byte(body))
}

func UnsupportedMediaTypeBytes(body []byte) Part {
	return Respond(status.UnsupportedMediaType, body)
}

func UnprocessableEntity(body string) Part {
	return UnprocessableEntityBytes([]byte(body))
}

func UnprocessableEntityBytes(body []byte) Part {
	return Respond(status.UnprocessableEntity, body)
}

func TooManyRequests(body string) Part {
	return TooManyRequestsBytes([]byte(body))
}

func TooManyRequestsBytes(body []byte) Part {
	return Respond(status.TooManyRequests, body)
}

func InternalError(body string) Part {
	return InternalErrorBytes([]byte(body))
}

func InternalErrorBytes(body []byte) Part {
	return Respond(status.InternalServerError, body)
}

func NotImplemented(body string) Part {
	return NotImplementedBytes([]byte(body))
}

func NotImplementedBytes(body []byte) Part {
	return Respond(status.NotImplemented, body)
}

func BadGateway(body string) Part {
	return BadGatewayBytes([]byte(body))
}

func BadGatewayBytes(body []byte) Part {
	return Respond(status.BadGateway, body)
}

func ServiceUnavailable(body string) Part {
	return ServiceUnavailableBytes([]byte(body))
}

func ServiceUnavailableBytes(body []byte) Part {
	return Respond(status.ServiceUnavailable, body)
}

func GatewayTimeout(body string) Part {
	return GatewayTimeoutBytes([]byte(body))
}

func GatewayTimeoutBytes(body []byte) Part {
	return Respond(status.GatewayTimeout, body)
}

// InvalidHTTPVersion rejects the request with a 505 and the standard
// description.
func InvalidHTTPVersion() Part {
	return Respond(status.HTTPVersionNotSupported, []byte(status.HTTPVersionNotSupported.Message()))
}
