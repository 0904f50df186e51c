package converters

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only worksheet of the generated workbook.
const SheetName = "Sheet1"

// ExcelConverter stores the whole extracted text in cell A1 of a new
// workbook. No per-line or per-cell structuring is attempted.
type ExcelConverter struct {
	text   TextExtractor
	logger zerolog.Logger
}

func NewExcelConverter(text TextExtractor, logger zerolog.Logger) *ExcelConverter {
	return &ExcelConverter{
		text:   text,
		logger: logger.With().Str("converter", string(FormatExcel)).Logger(),
	}
}

func (c *ExcelConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	text, err := c.text.ExtractText(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	cell, truncated := truncateRunes(text, excelize.TotalCellChars)
	if truncated {
		c.logger.Warn().
			Int("chars", utf8.RuneCountInString(text)).
			Int("limit", excelize.TotalCellChars).
			Msg("extracted text exceeds spreadsheet cell limit, truncating")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellStr(SheetName, "A1", cell); err != nil {
		return "", fmt.Errorf("set cell: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	c.logger.Debug().Int("chars", len(cell)).Str("output", outputPath).Msg("workbook written")
	return outputPath, nil
}

func truncateRunes(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}
