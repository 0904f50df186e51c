package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akila/pdf-conversion-api/app"
	"github.com/akila/pdf-conversion-api/artifacts"
	"github.com/akila/pdf-conversion-api/config"
	"github.com/akila/pdf-conversion-api/converters"
	"github.com/akila/pdf-conversion-api/models"
)

func newConvertCmd(configPath *string) *cobra.Command {
	var format, out string

	tokens := converters.NewRegistry(converters.Options{Logger: zerolog.Nop()}).Tokens()

	cmd := &cobra.Command{
		Use:   "convert <input.pdf>",
		Short: "Convert a local PDF without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := convertFile(cmd.Context(), *configPath, args[0], format, out, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", models.DefaultFormat, "target format ("+strings.Join(tokens, ", ")+")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: current directory)")
	return cmd
}

// convertFile runs one conversion through the orchestrator and copies the
// artifact to out. The input file is never touched.
func convertFile(ctx context.Context, configPath, input, format, out string, logOut io.Writer) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("input: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input %s is a directory", input)
	}

	cfg, logger, err := app.Bootstrap(config.Defaults(), configPath, logOut)
	if err != nil {
		return "", err
	}

	scratch, err := os.MkdirTemp("", "pdfconv-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)
	cfg.Storage.UploadDir = scratch
	cfg.Storage.OutputDir = scratch

	a, err := app.New(cfg, logger)
	if err != nil {
		return "", err
	}

	scope := artifacts.NewScope(logger)
	defer scope.Release()

	result := a.Orchestrator.Handle(ctx, models.ConversionRequest{
		ID:           uuid.NewString(),
		SourcePath:   input,
		Format:       format,
		OriginalName: filepath.Base(input),
	}, scope)
	if !result.Success {
		return "", result.Error
	}

	dest := out
	if dest == "" {
		dest = filepath.Base(result.Path)
	} else if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		dest = filepath.Join(dest, filepath.Base(result.Path))
	}

	if err := copyFile(result.Path, dest); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
