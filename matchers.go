package ruter

import (
	"fmt"
	"math"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/kildevaeld/strong"
	"go.uber.org/zap"

	"github.com/kildevaeld/ruter/httpcontext"
)

// Method matches requests using the given HTTP method.
func Method(method string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if ctx.Request().Method == method {
			return Matched(ctx), nil
		}
		return NoMatch(), nil
	}
}

var (
	GET     = Method(strong.GET)
	POST    = Method(strong.POST)
	PUT     = Method(strong.PUT)
	PATCH   = Method(strong.PATCH)
	DELETE  = Method(strong.DELETE)
	HEAD    = Method(strong.HEAD)
	OPTIONS = Method(strong.OPTIONS)
	CONNECT = Method(strong.CONNECT)
	TRACE   = Method(strong.TRACE)
)

// Path matches the request path exactly.
func Path(path string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if ctx.Request().URL.Path == path {
			return Matched(ctx), nil
		}
		return NoMatch(), nil
	}
}

// PathPrefix matches any request path starting with prefix.
func PathPrefix(prefix string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if strings.HasPrefix(ctx.Request().URL.Path, prefix) {
			return Matched(ctx), nil
		}
		return NoMatch(), nil
	}
}

// PathStrip matches paths starting with prefix and continues with a request
// whose path has the prefix removed. The incoming request is left untouched.
func PathStrip(prefix string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		req := ctx.Request()
		if !strings.HasPrefix(req.URL.Path, prefix) {
			return NoMatch(), nil
		}

		stripped := strings.TrimPrefix(req.URL.Path, prefix)
		if stripped == "" {
			stripped = "/"
		}

		r2 := new(http.Request)
		*r2 = *req
		u2 := *req.URL
		u2.Path = stripped
		r2.URL = &u2

		return Matched(ctx.WithRequest(r2)), nil
	}
}

// PathRegex matches the request path against a regular expression compiled
// once at construction. Named capture groups are exposed as params on the
// continuing context. An invalid pattern panics.
func PathRegex(pattern string) Part {
	re := regexp.MustCompile(pattern)
	names := re.SubexpNames()

	return func(ctx *httpcontext.Context) (Result, error) {
		match := re.FindStringSubmatch(ctx.Request().URL.Path)
		if match == nil {
			return NoMatch(), nil
		}

		var params httpcontext.Params
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			params = append(params, httpcontext.Param{Key: name, Value: match[i]})
		}

		if len(params) == 0 {
			return Matched(ctx), nil
		}
		return Matched(ctx.WithParams(params)), nil
	}
}

// Host matches the request host, ignoring any port and case.
func Host(host string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		h := ctx.Request().Host
		if i := strings.IndexByte(h, ':'); i >= 0 {
			h = h[:i]
		}
		if strings.EqualFold(h, host) {
			return Matched(ctx), nil
		}
		return NoMatch(), nil
	}
}

// IsSecure matches requests that arrived over TLS.
func IsSecure(ctx *httpcontext.Context) (Result, error) {
	if ctx.Secure() {
		return Matched(ctx), nil
	}
	return NoMatch(), nil
}

// MinVersion matches requests speaking at least the given HTTP version.
func MinVersion(major, minor int) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if ctx.Request().ProtoAtLeast(major, minor) {
			return Matched(ctx), nil
		}
		return NoMatch(), nil
	}
}

// Log emits a line built from the context and always continues. A nil
// logger falls back to the global one.
func Log(log *zap.Logger, format func(*httpcontext.Context) string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		l := log
		if l == nil {
			l = zap.L()
		}
		l.Info(format(ctx))
		return Matched(ctx), nil
	}
}

// scanVerb is one typed capture in a PathScan format, preceded by the
// literal text that must appear before it.
type scanVerb struct {
	verb byte
	lit  string
	stop byte
}

type scanFormat struct {
	raw   string
	verbs []scanVerb
	tail  string
}

func parseScanFormat(format string) (*scanFormat, error) {
	sf := &scanFormat{raw: format}
	var lit []byte

	i := 0
	for i < len(format) {
		ch := format[i]
		if ch != '%' {
			lit = append(lit, ch)
			i++
			continue
		}
		if i+1 >= len(format) {
			return nil, fmt.Errorf("scan format '%s' ends with a bare %%", format)
		}
		verb := format[i+1]
		if verb == '%' {
			lit = append(lit, '%')
			i += 2
			continue
		}
		switch verb {
		case 'd', 's', 'f', 'x':
			sf.verbs = append(sf.verbs, scanVerb{verb: verb, lit: string(lit)})
			lit = nil
			i += 2
		default:
			return nil, fmt.Errorf("scan format '%s' uses unsupported verb %%%c", format, verb)
		}
	}
	sf.tail = string(lit)

	// a %s capture stops at the next literal, or at the segment end
	for i := range sf.verbs {
		var next string
		if i+1 < len(sf.verbs) {
			next = sf.verbs[i+1].lit
		} else {
			next = sf.tail
		}
		if next != "" {
			sf.verbs[i].stop = next[0]
		}
	}

	return sf, nil
}

func (sf *scanFormat) match(path string) ([]string, bool) {
	rest := path
	captures := make([]string, 0, len(sf.verbs))

	for _, v := range sf.verbs {
		if !strings.HasPrefix(rest, v.lit) {
			return nil, false
		}
		rest = rest[len(v.lit):]

		n := scanToken(rest, v.verb, v.stop)
		if n == 0 {
			return nil, false
		}
		captures = append(captures, rest[:n])
		rest = rest[n:]
	}

	if rest != sf.tail {
		return nil, false
	}
	return captures, true
}

func scanToken(s string, verb, stop byte) int {
	i := 0
	switch verb {
	case 'd':
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return 0
		}
		return i

	case 'x':
		for i < len(s) && isHexDigit(s[i]) {
			i++
		}
		return i

	case 'f':
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		start := i
		dot := false
		for i < len(s) {
			c := s[i]
			if c >= '0' && c <= '9' {
				i++
			} else if c == '.' && !dot {
				dot = true
				i++
			} else {
				break
			}
		}
		if i == start || (dot && i == start+1) {
			return 0
		}
		return i

	case 's':
		for i < len(s) && s[i] != '/' && (stop == 0 || s[i] != stop) {
			i++
		}
		return i
	}
	return 0
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

var partType = reflect.TypeOf(Part(nil))

// PathScan matches the request path against a scan format and hands the
// typed captures to handler, which must be a func taking one argument per
// verb and returning a Part. Supported verbs are %d for integers, %x for
// hex integers, %f for floats and %s for a path segment. Mismatched formats
// and handlers panic at construction; paths that do not parse decline at
// request time.
func PathScan(format string, handler interface{}) Part {
	sf, err := parseScanFormat(format)
	if err != nil {
		panic(err)
	}

	fn := reflect.ValueOf(handler)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		panic(fmt.Errorf("scan handler for '%s' is not a func but %T", format, handler))
	}
	if ft.NumIn() != len(sf.verbs) {
		panic(fmt.Errorf("scan format '%s' captures %d values but handler takes %d", format, len(sf.verbs), ft.NumIn()))
	}
	if ft.NumOut() != 1 || ft.Out(0) != partType {
		panic(fmt.Errorf("scan handler for '%s' must return a single Part", format))
	}
	for i, v := range sf.verbs {
		if !verbAssignable(v.verb, ft.In(i)) {
			panic(fmt.Errorf("scan format '%s' capture %d (%%%c) does not fit handler argument %s", format, i, v.verb, ft.In(i)))
		}
	}

	return func(ctx *httpcontext.Context) (Result, error) {
		captures, ok := sf.match(ctx.Request().URL.Path)
		if !ok {
			return NoMatch(), nil
		}

		args := make([]reflect.Value, len(captures))
		for i, capture := range captures {
			val, ok := convertCapture(sf.verbs[i].verb, capture, ft.In(i))
			if !ok {
				return NoMatch(), nil
			}
			args[i] = val
		}

		part := fn.Call(args)[0].Interface().(Part)
		return part(ctx)
	}
}

func verbAssignable(verb byte, t reflect.Type) bool {
	switch verb {
	case 'd':
		return t.Kind() == reflect.Int || t.Kind() == reflect.Int64
	case 'x':
		return t.Kind() == reflect.Uint64 || t.Kind() == reflect.Int64 || t.Kind() == reflect.Int
	case 'f':
		return t.Kind() == reflect.Float64 || t.Kind() == reflect.Float32
	case 's':
		return t.Kind() == reflect.String
	}
	return false
}

func convertCapture(verb byte, capture string, t reflect.Type) (reflect.Value, bool) {
	switch verb {
	case 'd':
		n, err := strconv.ParseInt(capture, 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		if t.Kind() == reflect.Int && reflect.Zero(t).OverflowInt(n) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true

	case 'x':
		n, err := strconv.ParseUint(capture, 16, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		if t.Kind() == reflect.Uint64 {
			return reflect.ValueOf(n).Convert(t), true
		}
		if n > math.MaxInt64 {
			return reflect.Value{}, false
		}
		m := int64(n)
		if t.Kind() == reflect.Int && reflect.Zero(t).OverflowInt(m) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(m).Convert(t), true

	case 'f':
		n, err := strconv.ParseFloat(capture, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true

	case 's':
		return reflect.ValueOf(capture).Convert(t), true
	}
	return reflect.Value{}, false
}
