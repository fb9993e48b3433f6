package card

import (
	"fmt"
	"image"
	"strings"

	"github.com/prasetyowira/cardgen/constant"
)

// Job is a complete batch request. It is built once by a front end and not
// modified after generation starts.
type Job struct {
	// ID identifies the run. Generate assigns a UUID when empty.
	ID string
	// TemplatePath is the template file. When Template is set it is only
	// used as a label for logs and history.
	TemplatePath string
	// Template is an already decoded template, e.g. from an upload.
	Template  image.Image
	Codes     []string
	OutputDir string
	FontSize  int
}

// ParseCodes splits free text on commas and newlines, trims every entry and
// drops empty ones. Order and duplicates are kept.
func ParseCodes(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	codes := make([]string, 0, len(fields))
	for _, f := range fields {
		if code := strings.TrimSpace(f); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Validate runs the checks that need no I/O, in the order the user sees them.
func (j Job) Validate() error {
	if len(j.Codes) == 0 {
		return ErrNoCodes
	}
	if j.Template == nil && j.TemplatePath == "" {
		return ErrNoTemplate
	}
	if j.OutputDir == "" {
		return ErrNoOutputDir
	}
	if j.FontSize < constant.MinFontSize || j.FontSize > constant.MaxFontSize {
		return fmt.Errorf("%w (got %d)", ErrFontSize, j.FontSize)
	}
	for _, code := range j.Codes {
		if err := validateCode(code); err != nil {
			return err
		}
	}
	return nil
}

// validateCode rejects codes that are empty, untrimmed or would not stay
// inside the output directory when used as a file name.
func validateCode(code string) error {
	switch {
	case code == "", strings.TrimSpace(code) != code:
		return fmt.Errorf("%w: %q", ErrUnsafeCode, code)
	case code == ".", code == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeCode, code)
	case strings.ContainsAny(code, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrUnsafeCode, code)
	}
	return nil
}
