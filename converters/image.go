package converters

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

// Raster settings for the first-page preview: A4 at 300 DPI.
const (
	RenderDPI   = 300
	ImageWidth  = 2480
	ImageHeight = 3508

	DefaultJPEGQuality = 90
)

// ImageConverter rasterizes page 1 of the document. Later pages are never
// rendered.
type ImageConverter struct {
	imageType ImageType
	quality   int
	logger    zerolog.Logger
}

func NewImageConverter(imageType ImageType, quality int, logger zerolog.Logger) *ImageConverter {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &ImageConverter{
		imageType: imageType,
		quality:   quality,
		logger:    logger.With().Str("converter", string(FormatImage)).Str("image_type", string(imageType)).Logger(),
	}
}

func (c *ImageConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, err := fitz.New(inputPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	page, err := doc.ImageDPI(0, RenderDPI)
	if err != nil {
		return "", fmt.Errorf("render page 1: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	draw.CatmullRom.Scale(img, img.Bounds(), page, page.Bounds(), draw.Src, nil)

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := c.encode(out, img); err != nil {
		out.Close()
		return "", fmt.Errorf("encode %s: %w", c.imageType, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}

	c.logger.Debug().
		Int("pages", doc.NumPage()).
		Int("source_width", page.Bounds().Dx()).
		Int("source_height", page.Bounds().Dy()).
		Str("output", outputPath).
		Msg("first page rasterized")
	return outputPath, nil
}

func (c *ImageConverter) encode(f *os.File, img image.Image) error {
	switch c.imageType {
	case ImagePNG:
		return png.Encode(f, img)
	case ImageJPEG:
		return jpeg.Encode(f, img, &jpeg.Options{Quality: c.quality})
	default:
		return fmt.Errorf("unsupported image type %q", c.imageType)
	}
}
