// Package converters turns an uploaded PDF into the requested target format.
//
// Every target format is served by a Converter. The Registry is the closed
// table that maps a client supplied format token to its Converter.
package converters

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Converter writes a converted copy of inputPath to outputPath and returns
// the path it actually wrote.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) (string, error)
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc func(ctx context.Context, inputPath, outputPath string) (string, error)

func (f ConverterFunc) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	return f(ctx, inputPath, outputPath)
}

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatWord  Format = "word"
	FormatExcel Format = "excel"
	FormatImage Format = "image"
	FormatHTML  Format = "html"
)

type ImageType string

const (
	ImageJPEG ImageType = "jpeg"
	ImagePNG  ImageType = "png"
)

// Target is the outcome of a successful dispatch.
type Target struct {
	Token     string
	Format    Format
	ImageType ImageType // only set for FormatImage
	Ext       string    // with leading dot
	Converter Converter
}

var ErrUnsupportedFormat = errors.New("unsupported format")

// Options tune the converters built by NewRegistry.
type Options struct {
	JPEGQuality int
	Logger      zerolog.Logger
}

// Registry resolves format tokens. Its table is fixed at construction.
type Registry struct {
	targets map[string]Target
}

// NewRegistry builds the table of supported formats:
//
//	pdf          -> .pdf   structural round trip
//	word         -> .docx  extracted text in one paragraph
//	excel        -> .xlsx  extracted text in cell A1
//	jpeg|jpg|png -> image  first page only
//	html         -> .html  extracted text in <pre>
func NewRegistry(opts Options) *Registry {
	text := NewPlainTextExtractor()
	pdf := NewPDFConverter(opts.Logger)
	word := NewWordConverter(text, opts.Logger)
	excel := NewExcelConverter(text, opts.Logger)
	jpeg := NewImageConverter(ImageJPEG, opts.JPEGQuality, opts.Logger)
	png := NewImageConverter(ImagePNG, opts.JPEGQuality, opts.Logger)
	html := NewHTMLConverter(text, opts.Logger)

	return &Registry{targets: map[string]Target{
		"pdf":   {Token: "pdf", Format: FormatPDF, Ext: ".pdf", Converter: pdf},
		"word":  {Token: "word", Format: FormatWord, Ext: ".docx", Converter: word},
		"excel": {Token: "excel", Format: FormatExcel, Ext: ".xlsx", Converter: excel},
		"jpeg":  {Token: "jpeg", Format: FormatImage, ImageType: ImageJPEG, Ext: ".jpeg", Converter: jpeg},
		"jpg":   {Token: "jpg", Format: FormatImage, ImageType: ImageJPEG, Ext: ".jpg", Converter: jpeg},
		"png":   {Token: "png", Format: FormatImage, ImageType: ImagePNG, Ext: ".png", Converter: png},
		"html":  {Token: "html", Format: FormatHTML, Ext: ".html", Converter: html},
	}}
}

// Resolve matches token case-insensitively. Unknown tokens return
// ErrUnsupportedFormat.
func (r *Registry) Resolve(token string) (Target, error) {
	t, ok := r.targets[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return Target{}, ErrUnsupportedFormat
	}
	return t, nil
}

// Tokens lists the accepted format tokens in sorted order.
func (r *Registry) Tokens() []string {
	tokens := make([]string, 0, len(r.targets))
	for token := range r.targets {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
