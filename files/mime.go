package files

import (
	"strings"

	"github.com/kildevaeld/strong"
)

// MimeType pairs a content type with whether it benefits from transfer
// compression. Already compressed formats are marked incompressible so they
// are sent as is.
type MimeType struct {
	Name         string
	Compressible bool
}

// Mime builds a MimeType entry for registration.
func Mime(name string, compressible bool) MimeType {
	return MimeType{Name: name, Compressible: compressible}
}

var defaultTypes = map[string]MimeType{
	"html": Mime(strong.MIMETextHTMLCharsetUTF8, true),
	"htm":  Mime(strong.MIMETextHTMLCharsetUTF8, true),
	"css":  Mime("text/css; charset=utf-8", true),
	"js":   Mime("text/javascript; charset=utf-8", true),
	"mjs":  Mime("text/javascript; charset=utf-8", true),
	"json": Mime(strong.MIMEApplicationJSON, true),
	"xml":  Mime("text/xml; charset=utf-8", true),
	"txt":  Mime(strong.MIMETextPlain, true),
	"text": Mime(strong.MIMETextPlain, true),
	"md":   Mime(strong.MIMETextPlain, true),
	"csv":  Mime("text/csv; charset=utf-8", true),
	"svg":  Mime("image/svg+xml", true),
	"wasm": Mime("application/wasm", true),
	"pdf":  Mime("application/pdf", false),

	"png":  Mime("image/png", false),
	"jpg":  Mime("image/jpeg", false),
	"jpeg": Mime("image/jpeg", false),
	"gif":  Mime("image/gif", false),
	"webp": Mime("image/webp", false),
	"ico":  Mime("image/x-icon", false),
	"bmp":  Mime("image/bmp", false),

	"woff":  Mime("font/woff", false),
	"woff2": Mime("font/woff2", false),
	"ttf":   Mime("font/ttf", true),
	"otf":   Mime("font/otf", true),

	"mp3":  Mime("audio/mpeg", false),
	"ogg":  Mime("audio/ogg", false),
	"wav":  Mime("audio/wav", false),
	"mp4":  Mime("video/mp4", false),
	"webm": Mime("video/webm", false),
	"mov":  Mime("video/quicktime", false),

	"zip": Mime("application/zip", false),
	"gz":  Mime("application/gzip", false),
	"tar": Mime("application/x-tar", true),
	"7z":  Mime("application/x-7z-compressed", false),
}

// DefaultMimeType looks up the builtin table by extension, with or without
// the leading dot. The second return value reports whether the extension is
// known.
func DefaultMimeType(ext string) (MimeType, bool) {
	mt, ok := defaultTypes[normalizeExt(ext)]
	return mt, ok
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
