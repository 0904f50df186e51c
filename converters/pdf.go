package converters

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
)

func init() {
	// pdfcpu otherwise writes a config.yml into the user's config directory,
	// which is read-only on hosted functions.
	api.DisableConfigDir()
}

// PDFConverter loads the document and saves it again unchanged. A document
// that cannot be parsed or validated fails the conversion.
type PDFConverter struct {
	logger zerolog.Logger
}

func NewPDFConverter(logger zerolog.Logger) *PDFConverter {
	return &PDFConverter{logger: logger.With().Str("converter", string(FormatPDF)).Logger()}
}

func (c *PDFConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	pdfCtx, err := api.ReadContext(in, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("load pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := api.WriteContext(pdfCtx, out); err != nil {
		out.Close()
		return "", fmt.Errorf("save pdf: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}

	c.logger.Debug().Int("pages", pdfCtx.PageCount).Str("output", outputPath).Msg("pdf re-saved")
	return outputPath, nil
}

// PageCount reports the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
