// Package status defines the closed set of HTTP statuses the router knows
// how to speak, together with their reason phrases and the longer human
// readable messages used as default response bodies.
package status

import (
	"fmt"
	"sort"
)

// Status is one member of the fixed status set. The zero value is invalid.
type Status int

const (
	Continue           Status = 100
	SwitchingProtocols Status = 101

	OK                          Status = 200
	Created                     Status = 201
	Accepted                    Status = 202
	NonAuthoritativeInformation Status = 203
	NoContent                   Status = 204
	ResetContent                Status = 205
	PartialContent              Status = 206

	MultipleChoices   Status = 300
	MovedPermanently  Status = 301
	Found             Status = 302
	SeeOther          Status = 303
	NotModified       Status = 304
	UseProxy          Status = 305
	SwitchProxy       Status = 306
	TemporaryRedirect Status = 307

	BadRequest                   Status = 400
	Unauthorized                 Status = 401
	PaymentRequired              Status = 402
	Forbidden                    Status = 403
	NotFound                     Status = 404
	MethodNotAllowed             Status = 405
	NotAcceptable                Status = 406
	ProxyAuthenticationRequired  Status = 407
	RequestTimeout               Status = 408
	Conflict                     Status = 409
	Gone                         Status = 410
	LengthRequired               Status = 411
	PreconditionFailed           Status = 412
	RequestEntityTooLarge        Status = 413
	RequestURITooLong            Status = 414
	UnsupportedMediaType         Status = 415
	RequestedRangeNotSatisfiable Status = 416
	ExpectationFailed            Status = 417
	UnprocessableEntity          Status = 422
	PreconditionRequired         Status = 428
	TooManyRequests              Status = 429

	InternalServerError     Status = 500
	NotImplemented          Status = 501
	BadGateway              Status = 502
	ServiceUnavailable      Status = 503
	GatewayTimeout          Status = 504
	HTTPVersionNotSupported Status = 505
)

type entry struct {
	reason  string
	message string
}

var table = map[Status]entry{
	Continue:           {"Continue", "Request received, please continue."},
	SwitchingProtocols: {"Switching Protocols", "Switching to the protocol named in the Upgrade header."},

	OK:                          {"OK", "The request has succeeded."},
	Created:                     {"Created", "The request has been fulfilled and a new resource was created."},
	Accepted:                    {"Accepted", "The request has been accepted for processing, but processing has not completed."},
	NonAuthoritativeInformation: {"Non-Authoritative Information", "The returned metadata comes from a copy rather than the origin server."},
	NoContent:                   {"No Content", "The request has been fulfilled and there is no additional content to send."},
	ResetContent:                {"Reset Content", "The request has been fulfilled and the document view should be reset."},
	PartialContent:              {"Partial Content", "The server is delivering only part of the resource."},

	MultipleChoices:   {"Multiple Choices", "The requested resource corresponds to more than one representation."},
	MovedPermanently:  {"Moved Permanently", "The requested resource has been assigned a new permanent URI."},
	Found:             {"Found", "The requested resource resides temporarily under a different URI."},
	SeeOther:          {"See Other", "The response to the request can be found under a different URI."},
	NotModified:       {"Not Modified", "The resource has not been modified since it was last requested."},
	UseProxy:          {"Use Proxy", "The requested resource must be accessed through the proxy given by the Location header."},
	SwitchProxy:       {"Switch Proxy", "Subsequent requests should use the specified proxy."},
	TemporaryRedirect: {"Temporary Redirect", "The requested resource resides temporarily under a different URI."},

	BadRequest:                   {"Bad Request", "The request could not be understood by the server due to malformed syntax."},
	Unauthorized:                 {"Unauthorized", "The request requires user authentication."},
	PaymentRequired:              {"Payment Required", "Payment is required before the request can be fulfilled."},
	Forbidden:                    {"Forbidden", "The server understood the request, but is refusing to fulfill it."},
	NotFound:                     {"Not Found", "The server has not found anything matching the request URI."},
	MethodNotAllowed:             {"Method Not Allowed", "The method specified in the request is not allowed for the requested resource."},
	NotAcceptable:                {"Not Acceptable", "The resource cannot generate a response acceptable to the Accept headers sent in the request."},
	ProxyAuthenticationRequired:  {"Proxy Authentication Required", "The client must first authenticate itself with the proxy."},
	RequestTimeout:               {"Request Timeout", "The client did not produce a request within the time that the server was prepared to wait."},
	Conflict:                     {"Conflict", "The request could not be completed due to a conflict with the current state of the resource."},
	Gone:                         {"Gone", "The requested resource is no longer available and no forwarding address is known."},
	LengthRequired:               {"Length Required", "The server refuses to accept the request without a defined Content-Length."},
	PreconditionFailed:           {"Precondition Failed", "A precondition given in the request evaluated to false on the server."},
	RequestEntityTooLarge:        {"Request Entity Too Large", "The request entity is larger than the server is willing or able to process."},
	RequestURITooLong:            {"Request-URI Too Long", "The request URI is longer than the server is willing to interpret."},
	UnsupportedMediaType:         {"Unsupported Media Type", "The entity of the request is in a format not supported by the requested resource."},
	RequestedRangeNotSatisfiable: {"Requested Range Not Satisfiable", "None of the ranges in the request's Range header overlap the extent of the resource."},
	ExpectationFailed:            {"Expectation Failed", "The expectation given in the Expect header could not be met by the server."},
	UnprocessableEntity:          {"Unprocessable Entity", "The request was well-formed but could not be followed due to semantic errors."},
	PreconditionRequired:         {"Precondition Required", "The origin server requires the request to be conditional."},
	TooManyRequests:              {"Too Many Requests", "The user has sent too many requests in a given amount of time."},

	InternalServerError:     {"Internal Server Error", "The server encountered an unexpected condition which prevented it from fulfilling the request."},
	NotImplemented:          {"Not Implemented", "The server does not support the functionality required to fulfill the request."},
	BadGateway:              {"Bad Gateway", "The server received an invalid response from an upstream server."},
	ServiceUnavailable:      {"Service Unavailable", "The server is currently unable to handle the request due to temporary overloading or maintenance."},
	GatewayTimeout:          {"Gateway Timeout", "The server did not receive a timely response from an upstream server."},
	HTTPVersionNotSupported: {"HTTP Version Not Supported", "The server does not support the HTTP protocol version that was used in the request."},
}

var all []Status

func init() {
	all = make([]Status, 0, len(table))
	for s := range table {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
}

// Code returns the numeric status code.
func (s Status) Code() int {
	return int(s)
}

// Reason returns the short reason phrase sent on the status line.
func (s Status) Reason() string {
	return table[s].reason
}

// Message returns the longer human readable description used as the default
// body for responses built from this status.
func (s Status) Message() string {
	return table[s].message
}

// Valid reports whether s belongs to the known status set.
func (s Status) Valid() bool {
	_, ok := table[s]
	return ok
}

func (s Status) String() string {
	if e, ok := table[s]; ok {
		return fmt.Sprintf("%d %s", int(s), e.reason)
	}
	return fmt.Sprintf("%d", int(s))
}

// Parse maps a numeric code onto the status set. The second return value
// reports whether the code is a member; codes outside the set, 418 included,
// yield false.
func Parse(code int) (Status, bool) {
	s := Status(code)
	if _, ok := table[s]; ok {
		return s, true
	}
	return 0, false
}

// BodyAllowed reports whether a response with the given code may carry a
// body. Informational statuses, 204 and 304 must not.
func BodyAllowed(code int) bool {
	if code >= 100 && code < 200 {
		return false
	}
	return code != int(NoContent) && code != int(NotModified)
}

// All returns every member of the status set in ascending code order.
func All() []Status {
	out := make([]Status, len(all))
	copy(out, all)
	return out
}
