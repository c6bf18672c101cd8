// Package files serves static content from a virtual filesystem through
// router parts. Requests resolve against a serving root that paths cannot
// escape, responses stream straight from the filesystem into the staged
// body, and missing files decline the request instead of answering it, so
// file serving composes with other routes.
package files

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/kildevaeld/strong"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	gzip "github.com/kildevaeld/ruter/middlewares/compress"
	"github.com/kildevaeld/ruter/status"
)

// ErrOutsideRoot rejects resolutions that would escape the serving root.
var ErrOutsideRoot = errors.New("path resolves outside the serving root")

type Option func(*Files)

// WithRoot serves from dir inside the filesystem instead of its root.
func WithRoot(dir string) Option {
	return func(f *Files) {
		f.root = dir
	}
}

// WithIndex changes the index file served for directories. An empty name
// disables index lookup.
func WithIndex(name string) Option {
	return func(f *Files) {
		f.index = name
	}
}

// WithBrowsing enables generated directory listings.
func WithBrowsing() Option {
	return func(f *Files) {
		f.browse = true
	}
}

// WithCompression gzips compressible types for clients that accept it.
func WithCompression() Option {
	return func(f *Files) {
		f.compress = true
	}
}

// WithDefaultType sets the content type for unknown extensions. Without it
// unknown extensions are served without a content type.
func WithDefaultType(name string) Option {
	return func(f *Files) {
		f.defaultType = name
	}
}

// WithMimeTypes overrides or extends the builtin extension table. Keys are
// extensions without the leading dot.
func WithMimeTypes(types map[string]MimeType) Option {
	return func(f *Files) {
		if f.types == nil {
			f.types = make(map[string]MimeType, len(types))
		}
		for ext, mt := range types {
			f.types[normalizeExt(ext)] = mt
		}
	}
}

// Files serves a directory tree from a virtual filesystem.
type Files struct {
	fs          vfs.FileSystem
	root        string
	index       string
	browse      bool
	compress    bool
	defaultType string
	types       map[string]MimeType
}

func New(fs vfs.FileSystem, opts ...Option) *Files {
	f := &Files{
		fs:    fs,
		root:  "/",
		index: "index.html",
	}
	for _, opt := range opts {
		opt(f)
	}
	f.root = path.Clean("/" + f.root)
	return f
}

// Resolve maps a request name onto a filesystem path under the serving
// root. Names whose cleaned form escapes the root fail with ErrOutsideRoot.
func (f *Files) Resolve(name string) (string, error) {
	joined := path.Join(f.root, name)
	if joined != f.root && !strings.HasPrefix(joined, f.rootPrefix()) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}

func (f *Files) rootPrefix() string {
	if f.root == "/" {
		return "/"
	}
	return f.root + "/"
}

func (f *Files) mimeFor(p string) (MimeType, bool) {
	ext := normalizeExt(path.Ext(p))
	if f.types != nil {
		if mt, ok := f.types[ext]; ok {
			return mt, true
		}
	}
	return DefaultMimeType(ext)
}

// Send serves the file at p, a filesystem path, with the configured
// compression setting. Missing files decline.
func (f *Files) Send(p string) ruter.Part {
	return f.send(p, f.compress)
}

// SendWith serves p with an explicit compression choice overriding the
// configured one.
func (f *Files) SendWith(p string, allowCompression bool) ruter.Part {
	return f.send(p, allowCompression)
}

// BrowseFile resolves name against the serving root and serves it.
func (f *Files) BrowseFile(name string) ruter.Part {
	p, err := f.Resolve(name)
	if err != nil {
		return ruter.Fail
	}
	return f.send(p, f.compress)
}

// Browse serves the file named by the request path, resolved against the
// serving root. Directories and missing files decline.
func (f *Files) Browse() ruter.Part {
	return ruter.Request(func(r *http.Request) ruter.Part {
		p, err := f.Resolve(r.URL.Path)
		if err != nil {
			return ruter.Fail
		}
		return f.send(p, f.compress)
	})
}

// Dir serves directories named by the request path: the index file when one
// exists, otherwise a generated listing when browsing is enabled and a 403
// when it is not.
func (f *Files) Dir() ruter.Part {
	return ruter.Request(func(r *http.Request) ruter.Part {
		if r.Method != strong.GET && r.Method != strong.HEAD {
			return ruter.Fail
		}

		p, err := f.Resolve(r.URL.Path)
		if err != nil {
			return ruter.Fail
		}

		info, err := f.fs.Stat(p)
		if err != nil || !info.IsDir() {
			return ruter.Fail
		}

		if f.index != "" {
			indexPath := path.Join(p, f.index)
			if fi, err := f.fs.Stat(indexPath); err == nil && !fi.IsDir() {
				return f.send(indexPath, f.compress)
			}
		}

		if !f.browse {
			return ruter.Forbidden(status.Forbidden.Message())
		}

		return f.serveListing(p, r.URL.Path)
	})
}

// Site serves a whole tree: files first, directories after.
func (f *Files) Site() ruter.Part {
	return ruter.Choose(f.Browse(), f.Dir())
}

// Part implements ruter.Mountable, serving the tree like Site.
func (f *Files) Part() ruter.Part {
	return f.Site()
}

func (f *Files) send(p string, allowCompression bool) ruter.Part {
	return func(ctx *httpcontext.Context) (ruter.Result, error) {
		method := ctx.Request().Method
		if method != strong.GET && method != strong.HEAD {
			return ruter.NoMatch(), nil
		}

		file, err := f.fs.Open(p)
		if err != nil {
			return ruter.NoMatch(), nil
		}

		info, err := file.Stat()
		if err != nil || info.IsDir() {
			file.Close()
			return ruter.NoMatch(), nil
		}

		modtime := info.ModTime().UTC()
		if ims := ctx.Request().Header.Get(strong.HeaderIfModifiedSince); ims != "" {
			if t, err := http.ParseTime(ims); err == nil && !modtime.Truncate(time.Second).After(t) {
				file.Close()
				ctx.SetStatusCode(status.NotModified.Code())
				return ruter.Matched(ctx), nil
			}
		}

		mt, hasType := f.mimeFor(p)
		switch {
		case hasType:
			ctx.SetContentType(mt.Name)
		case f.defaultType != "":
			ctx.SetContentType(f.defaultType)
		}

		ctx.SetHeader(strong.HeaderLastModified, modtime.Format(http.TimeFormat))
		ctx.SetStatusCode(status.OK.Code())

		if method == strong.HEAD {
			ctx.SetHeader(strong.HeaderContentLength, fmt.Sprintf("%d", info.Size()))
			file.Close()
			return ruter.Matched(ctx), nil
		}

		if allowCompression && hasType && mt.Compressible && gzip.Accepts(ctx.Request()) {
			ctx.Header().Del(strong.HeaderContentLength)
			ctx.SetHeader(strong.HeaderContentEncoding, "gzip")
			ctx.Header().Add(strong.HeaderVary, strong.HeaderAcceptEncoding)
			ctx.SetBody(gzip.Reader(file))
		} else {
			ctx.SetHeader(strong.HeaderContentLength, fmt.Sprintf("%d", info.Size()))
			ctx.SetBody(file)
		}

		return ruter.Matched(ctx), nil
	}
}

func (f *Files) serveListing(p, display string) ruter.Part {
	return func(ctx *httpcontext.Context) (ruter.Result, error) {
		page, err := f.listing(p, display)
		if err != nil {
			return ruter.NoMatch(), err
		}

		ctx.SetContentType(strong.MIMETextHTMLCharsetUTF8)
		ctx.SetStatusCode(status.OK.Code())
		ctx.Raw(page)
		return ruter.Matched(ctx), nil
	}
}

func (f *Files) listing(p, display string) ([]byte, error) {
	dir, err := f.fs.Open(p)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	infos, err := dir.Readdir(-1)
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDir() != infos[j].IsDir() {
			return infos[i].IsDir()
		}
		return infos[i].Name() < infos[j].Name()
	})

	title := html.EscapeString(display)

	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html>\n<head><meta charset=\"utf-8\"><title>Index of ")
	buf.WriteString(title)
	buf.WriteString("</title></head>\n<body>\n<h1>Index of ")
	buf.WriteString(title)
	buf.WriteString("</h1>\n<hr>\n<pre>\n")

	if display != "/" {
		buf.WriteString("<a href=\"../\">../</a>\n")
	}

	for _, info := range infos {
		name := info.Name()
		href := (&url.URL{Path: name}).EscapedPath()
		label := html.EscapeString(name)
		size := fmt.Sprintf("%d", info.Size())
		if info.IsDir() {
			href += "/"
			label += "/"
			size = "-"
		}
		fmt.Fprintf(&buf, "<a href=\"%s\">%s</a>  %s  %s\n",
			href, label, info.ModTime().UTC().Format("2006-01-02 15:04"), size)
	}

	buf.WriteString("</pre>\n<hr>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}
