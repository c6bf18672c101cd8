// Package httpcontext carries the per request state the router threads
// through its handler pipeline. Response status, headers and body are staged
// on the Context and only written to the wire when Finalize runs, so a
// handler can be rejected or replaced without anything having been sent.
package httpcontext

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter/status"
)

var (
	requestPool sync.Pool
	contextPool sync.Pool
)

func init() {
	requestPool = sync.Pool{
		New: func() interface{} {
			return &RequestBody{}
		},
	}

	contextPool = sync.Pool{
		New: func() interface{} {
			return &Context{}
		},
	}
}

type RequestBody struct {
	reader      io.ReadCloser
	contentType string
	done        bool
}

func (r *RequestBody) Read(bs []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	read, err := r.reader.Read(bs)
	if err == io.EOF {
		r.done = true
	}
	return read, err
}

func (r *RequestBody) Close() error {
	r.done = true
	return r.reader.Close()
}

func (r *RequestBody) ReadAll() ([]byte, error) {
	bs, err := ioutil.ReadAll(r.reader)
	r.done = true
	return bs, err
}

// Decode unmarshals the request body with the decoder registered for the
// request's content type.
func (r *RequestBody) Decode(v interface{}) error {
	if r.done {
		return io.EOF
	}

	bs, err := r.ReadAll()
	defer r.Close()
	if err != nil {
		return err
	}

	decoder := GetDecoder(r.contentType)
	if decoder == nil {
		return fmt.Errorf("cannot decode content type '%s'", r.contentType)
	}

	return decoder.Decode(bs, v)
}

func (r *RequestBody) reset() *RequestBody {
	r.done = false
	r.reader = nil
	return r
}

// response is the staging area shared between a Context and every narrowed
// copy made from it, so a part writing through a copy still reaches the wire.
type response struct {
	w        http.ResponseWriter
	status   int
	body     io.ReadCloser
	hijacked bool
}

// Context carries one request through the handler pipeline.
type Context struct {
	req     *http.Request
	reqBody *RequestBody
	params  Params
	u       map[string]interface{}

	resp *response
	rv   response
}

func (c *Context) Params() Params {
	return c.params
}

// WithParams returns a copy of the context whose params are extended with
// ps. The copy shares the staged response with the original.
func (c *Context) WithParams(ps Params) *Context {
	cc := new(Context)
	*cc = *c
	merged := make(Params, 0, len(c.params)+len(ps))
	merged = append(merged, c.params...)
	merged = append(merged, ps...)
	cc.params = merged
	return cc
}

// WithRequest returns a copy of the context carrying req instead of the
// original request. The copy shares the staged response with the original.
func (c *Context) WithRequest(req *http.Request) *Context {
	cc := new(Context)
	*cc = *c
	cc.req = req
	return cc
}

func (c *Context) Request() *http.Request {
	return c.req
}

func (c *Context) Response() http.ResponseWriter {
	return c.resp.w
}

func (c *Context) SetContentType(contentType string) *Context {
	c.Header().Set(strong.HeaderContentType, contentType)
	return c
}

// SetBody stages v as the response body, closing any previously staged body.
// Nothing is written to the wire until Finalize.
func (c *Context) SetBody(v io.ReadCloser) *Context {
	if c.resp.body != nil {
		c.resp.body.Close()
	}
	c.resp.body = v
	return c
}

func (c *Context) Body() io.ReadCloser {
	return c.resp.body
}

// SwapBody stages v and hands back the previous body without closing it,
// for middleware that wraps the staged body in a transforming reader.
func (c *Context) SwapBody(v io.ReadCloser) io.ReadCloser {
	old := c.resp.body
	c.resp.body = v
	return old
}

func (c *Context) SetStatusCode(status int) *Context {
	c.resp.status = status
	return c
}

func (c *Context) StatusCode() int {
	return c.resp.status
}

func (c *Context) RequestBody() *RequestBody {
	if c.reqBody == nil {
		c.reqBody = requestPool.Get().(*RequestBody)
		c.reqBody.reader = c.req.Body
		c.reqBody.contentType = c.req.Header.Get(strong.HeaderContentType)
	}
	return c.reqBody
}

func (c *Context) Query(name string) string {
	return c.req.URL.Query().Get(name)
}

func (c *Context) FormValue(name string) string {
	return c.req.FormValue(name)
}

// Secure reports whether the request arrived over TLS.
func (c *Context) Secure() bool {
	return c.req.TLS != nil
}

func (c *Context) Text(str string) error {
	c.SetContentType(strong.MIMETextPlain)
	return c.bytes([]byte(str))
}

func (c *Context) JSON(v interface{}) error {
	c.SetContentType(strong.MIMEApplicationJSONCharsetUTF8)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.bytes(bs)
}

func (c *Context) HTML(str string) error {
	c.SetContentType(strong.MIMETextHTMLCharsetUTF8)
	return c.bytes([]byte(str))
}

func (c *Context) Bytes(bs []byte) error {
	c.SetContentType(strong.MIMEOctetStream)
	return c.bytes(bs)
}

// Raw stages bs as the response body without touching the content type.
func (c *Context) Raw(bs []byte) error {
	return c.bytes(bs)
}

// Encode stages v serialized with the encoder registered for contentType.
func (c *Context) Encode(contentType string, v interface{}) error {
	encoder := GetEncoder(contentType)
	if encoder == nil {
		return fmt.Errorf("cannot encode content type '%s'", contentType)
	}

	bs, err := encoder.Encode(v)
	if err != nil {
		return err
	}

	c.SetContentType(contentType)
	return c.bytes(bs)
}

func (c *Context) bytes(bs []byte) error {
	c.Header().Set(strong.HeaderContentLength, fmt.Sprintf("%d", len(bs)))
	body := new(bufferBody)
	body.Write(bs)
	c.SetBody(body)
	return nil
}

// bufferBody is the in memory body used for byte responses. It keeps the
// raw bytes reachable so middleware can inspect staged content.
type bufferBody struct {
	bytes.Buffer
}

func (b *bufferBody) Close() error {
	return nil
}

// ResponseWriter
func (c *Context) Write(bs []byte) (int, error) {
	if c.resp.body == nil {
		c.resp.body = new(bufferBody)
	}

	if writer, ok := c.resp.body.(io.Writer); ok {
		return writer.Write(bs)
	}

	return 0, fmt.Errorf("body not a writer")
}

func (c *Context) WriteHeader(statusCode int) {
	c.resp.status = statusCode
}

func (c *Context) Error(status int, msg ...interface{}) error {
	return strong.NewHTTPError(status, msg...)
}

// Redirect aborts the pipeline with a redirect error the server translates
// into a Location header and the given status.
func (c *Context) Redirect(status int, path string) error {
	return &RedirectError{status, path}
}

func (c *Context) SetUserValue(k string, v interface{}) *Context {
	if c.u == nil {
		c.u = make(map[string]interface{})
	}
	c.u[k] = v
	return c
}

func (c *Context) UserValue(k string) interface{} {
	if c.u == nil {
		return nil
	}
	return c.u[k]
}

func (c *Context) Header() http.Header {
	return c.resp.w.Header()
}

func (c *Context) SetHeader(key, value string) *Context {
	c.Header().Set(key, value)
	return c
}

// SetCookie stages a Set-Cookie header. Re-adding a cookie with a name that
// was already staged replaces the earlier one, last write wins.
func (c *Context) SetCookie(cookie *http.Cookie) *Context {
	h := c.Header()
	prefix := cookie.Name + "="
	if existing := h[strong.HeaderSetCookie]; len(existing) > 0 {
		kept := make([]string, 0, len(existing))
		for _, line := range existing {
			if !strings.HasPrefix(line, prefix) {
				kept = append(kept, line)
			}
		}
		h[strong.HeaderSetCookie] = kept
	}
	h.Add(strong.HeaderSetCookie, cookie.String())
	return c
}

// UnsetCookie stages a Set-Cookie header that expires the named cookie.
func (c *Context) UnsetCookie(name string) *Context {
	return c.SetCookie(&http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0).UTC(),
		MaxAge:  -1,
	})
}

func (c *Context) Cookie(name string) (*http.Cookie, error) {
	return c.req.Cookie(name)
}

func (c *Context) Websocket(upgrader *websocket.Upgrader) (*websocket.Conn, error) {
	var (
		conn *websocket.Conn
		err  error
	)
	if upgrader == nil {
		conn, err = websocket.Upgrade(c.resp.w, c.req, c.Header(), 1024, 1024)
	} else {
		conn, err = upgrader.Upgrade(c.resp.w, c.req, c.Header())
	}
	if err == nil {
		c.resp.hijacked = true
	}
	return conn, err
}

// Hijacked reports whether the connection left HTTP handling, after a
// websocket upgrade or an explicit hijack. Finalize is a no op then.
func (c *Context) Hijacked() bool {
	return c.resp.hijacked
}

func (c *Context) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := c.resp.w.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}

	conn, rw, err := hijacker.Hijack()
	if err == nil {
		c.resp.hijacked = true
	}
	return conn, rw, err
}

// Finalize copies the staged response to the wire. A missing status defaults
// to 200 when a body was staged and 404 otherwise. Bodies are suppressed for
// statuses that must not carry one and for HEAD requests.
func (c *Context) Finalize() error {
	if c.resp.hijacked {
		return nil
	}

	code := c.resp.status
	body := c.resp.body

	if code <= 0 {
		if body != nil {
			code = strong.StatusOK
		} else {
			code = strong.StatusNotFound
			c.SetContentType(strong.MIMETextPlain)
			c.bytes([]byte(status.NotFound.Message()))
			body = c.resp.body
		}
	}

	if !status.BodyAllowed(code) {
		if body != nil {
			body.Close()
			c.resp.body = nil
			body = nil
		}
		c.Header().Del(strong.HeaderContentLength)
	} else if c.req.Method == strong.HEAD && body != nil {
		body.Close()
		c.resp.body = nil
		body = nil
	}

	c.resp.w.WriteHeader(code)
	if body != nil {
		if _, err := io.Copy(c.resp.w, body); err != nil {
			return err
		}
	}

	return nil
}

type Link struct {
	Last    int
	First   int
	Current int
	Path    string
}

func writelink(rel string, u fmt.Stringer) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("<")
	buf.WriteString(u.String())
	buf.WriteString(`>; rel="` + rel + `"`)

	return buf.Bytes()
}

// SetLinkHeader stages pagination links for list endpoints as a Link header.
func (c *Context) SetLinkHeader(l Link) *Context {
	u := *c.Request().URL
	if l.Path != "" {
		u.Path = l.Path
	}

	var links [][]byte
	var page = "page"
	args := c.Request().URL.Query()

	args.Set(page, fmt.Sprintf("%d", l.First))
	u.RawQuery = args.Encode()
	links = append(links, writelink("first", &u))

	args.Set(page, fmt.Sprintf("%d", l.Current))
	u.RawQuery = args.Encode()
	links = append(links, writelink("current", &u))

	if l.Last > l.Current {
		args.Set(page, fmt.Sprintf("%d", l.Current+1))
		u.RawQuery = args.Encode()
		links = append(links, writelink("next", &u))
	}
	if l.Current > l.First {
		args.Set(page, fmt.Sprintf("%d", l.Current-1))
		u.RawQuery = args.Encode()
		links = append(links, writelink("prev", &u))
	}
	args.Set(page, fmt.Sprintf("%d", l.Last))
	u.RawQuery = args.Encode()
	links = append(links, writelink("last", &u))

	c.Header().Set(strong.HeaderLink, string(bytes.Join(links, []byte(", "))))
	return c
}

func (c *Context) reset() *Context {
	c.req = nil
	if c.reqBody != nil {
		c.reqBody.Close()
		requestPool.Put(c.reqBody.reset())
	}
	c.reqBody = nil
	c.params = nil
	c.u = nil

	if c.resp != nil && c.resp.body != nil {
		c.resp.body.Close()
	}
	c.resp = nil
	c.rv = response{}
	return c
}

// Acquire fetches a pooled context bound to w and r. Release it when the
// request is done; narrowed copies must not be released.
func Acquire(w http.ResponseWriter, r *http.Request) *Context {
	ctx := contextPool.Get().(*Context)
	ctx.rv = response{w: w}
	ctx.resp = &ctx.rv
	ctx.req = r
	return ctx
}

func Release(ctx *Context) {
	contextPool.Put(ctx.reset())
}
