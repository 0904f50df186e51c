package converters

import (
	"context"
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/rs/zerolog"
)

// WordConverter writes the extracted text as a single paragraph of a new
// .docx document. Layout, images and formatting are not carried over.
type WordConverter struct {
	text   TextExtractor
	logger zerolog.Logger
}

func NewWordConverter(text TextExtractor, logger zerolog.Logger) *WordConverter {
	return &WordConverter{
		text:   text,
		logger: logger.With().Str("converter", string(FormatWord)).Logger(),
	}
}

func (c *WordConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	text, err := c.text.ExtractText(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	doc.AddParagraph(text)
	if err := doc.SaveTo(outputPath); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}

	c.logger.Debug().Int("chars", len(text)).Str("output", outputPath).Msg("word document written")
	return outputPath, nil
}
