package converters

import (
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/rs/zerolog"
)

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Converted PDF</title>
</head>
<body>
    <pre>{{.}}</pre>
</body>
</html>
`))

// HTMLConverter wraps the extracted text in a static page. The text is
// escaped, so markup inside the PDF shows up literally.
type HTMLConverter struct {
	text   TextExtractor
	logger zerolog.Logger
}

func NewHTMLConverter(text TextExtractor, logger zerolog.Logger) *HTMLConverter {
	return &HTMLConverter{
		text:   text,
		logger: logger.With().Str("converter", string(FormatHTML)).Logger(),
	}
}

func (c *HTMLConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	text, err := c.text.ExtractText(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := htmlPage.Execute(out, text); err != nil {
		out.Close()
		return "", fmt.Errorf("render html: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}

	c.logger.Debug().Int("chars", len(text)).Str("output", outputPath).Msg("html written")
	return outputPath, nil
}
