// Package asset describes the files a legacy document links to: images,
// documents and media referenced by relative path.
package asset

import (
	"path"
	"strings"
)

// Asset types.
const (
	TypeGraphic       = "graphic"
	TypeSupplementary = "supplementary-material"
	TypeMedia         = "media"
)

// Kind is the description of an extension.
type Kind struct {
	AssetType   string
	MimeType    string
	MimeSubtype string
}

// IsImage reports whether the asset renders as a graphic.
func (k Kind) IsImage() bool {
	return k.AssetType == TypeGraphic
}

var extensions = map[string]Kind{
	"jpg":  {TypeGraphic, "image", "jpeg"},
	"jpeg": {TypeGraphic, "image", "jpeg"},
	"png":  {TypeGraphic, "image", "png"},
	"gif":  {TypeGraphic, "image", "gif"},
	"tif":  {TypeGraphic, "image", "tiff"},
	"tiff": {TypeGraphic, "image", "tiff"},
	"bmp":  {TypeGraphic, "image", "bmp"},
	"svg":  {TypeGraphic, "image", "svg+xml"},
	"webp": {TypeGraphic, "image", "webp"},
	"eps":  {TypeGraphic, "application", "postscript"},

	"pdf":  {TypeSupplementary, "application", "pdf"},
	"doc":  {TypeSupplementary, "application", "msword"},
	"docx": {TypeSupplementary, "application", "vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"xls":  {TypeSupplementary, "application", "vnd.ms-excel"},
	"xlsx": {TypeSupplementary, "application", "vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"ppt":  {TypeSupplementary, "application", "vnd.ms-powerpoint"},
	"pptx": {TypeSupplementary, "application", "vnd.openxmlformats-officedocument.presentationml.presentation"},
	"odt":  {TypeSupplementary, "application", "vnd.oasis.opendocument.text"},
	"ods":  {TypeSupplementary, "application", "vnd.oasis.opendocument.spreadsheet"},
	"rtf":  {TypeSupplementary, "application", "rtf"},
	"zip":  {TypeSupplementary, "application", "zip"},
	"txt":  {TypeSupplementary, "text", "plain"},
	"csv":  {TypeSupplementary, "text", "csv"},
	"xml":  {TypeSupplementary, "application", "xml"},

	"mp3":  {TypeMedia, "audio", "mpeg"},
	"wav":  {TypeMedia, "audio", "x-wav"},
	"mp4":  {TypeMedia, "video", "mp4"},
	"avi":  {TypeMedia, "video", "x-msvideo"},
	"mov":  {TypeMedia, "video", "quicktime"},
	"mpg":  {TypeMedia, "video", "mpeg"},
	"mpeg": {TypeMedia, "video", "mpeg"},
	"swf":  {TypeMedia, "application", "x-shockwave-flash"},
}

// Lookup returns the kind of the file at p, judged by its extension.
// Pages (.htm, .html) and unknown extensions are not assets.
func Lookup(p string) (Kind, bool) {
	ext := Extension(p)
	if ext == "" {
		return Kind{}, false
	}
	k, ok := extensions[ext]
	return k, ok
}

// Extension returns the lowercase extension of p without the dot, ignoring
// any query or fragment.
func Extension(p string) string {
	p = StripQuery(p)
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}

// StripQuery drops the query string and fragment of a link.
func StripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

// Extensions lists the known extensions.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	return out
}
