package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
	"github.com/spf13/cobra"
)

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var template, codes, codesFile, outDir string
	var fontSize int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write one card per code into the output folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := codes
			if codesFile != "" {
				b, err := os.ReadFile(codesFile)
				if err != nil {
					return fmt.Errorf("read codes file: %w", err)
				}
				raw = strings.Join([]string{raw, string(b)}, "\n")
			}

			a, err := newApp(flags, historyLazy)
			if err != nil {
				return err
			}
			defer closeApp(a)

			job := card.Job{
				TemplatePath: template,
				Codes:        card.ParseCodes(raw),
				OutputDir:    outDir,
				FontSize:     fontSize,
			}

			out := cmd.OutOrStdout()
			progress := func(done, total int) {
				if !flags.asJSON {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rGenerating %d/%d", done, total)
				}
			}

			result, err := a.service.Generate(context.Background(), job, progress)
			if err != nil {
				appLogger.Error("Card generation failed", appLogger.LoggerInfo{
					ContextFunction: constant.CtxCLI,
					Error: &appLogger.CustomError{
						Code:    constant.ErrCodeAppGenerate,
						Message: err.Error(),
						Type:    constant.ErrTypeApp,
					},
				})
				return err
			}

			if flags.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(cmd.ErrOrStderr())
			fmt.Fprintln(out, constant.MsgGenerationSucceeded)
			fmt.Fprintf(out, "%d cards written to %s\n", len(result.Files), result.OutputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "base image, 1050x600 or the same aspect ratio (PNG/JPEG)")
	cmd.Flags().StringVar(&codes, "codes", "", "codes separated by commas or newlines")
	cmd.Flags().StringVar(&codesFile, "codes-file", "", "file with codes separated by commas or newlines")
	cmd.Flags().StringVar(&outDir, "out", "", "existing output folder")
	cmd.Flags().IntVar(&fontSize, "font-size", flags.cfg.FontSize, "label font size (10-50)")
	return cmd
}
