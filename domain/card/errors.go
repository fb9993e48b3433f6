package card

import (
	"errors"

	"github.com/prasetyowira/cardgen/constant"
)

// Input errors. A run that fails with one of these has written nothing.
var (
	ErrNoCodes        = errors.New(constant.ErrNoCodes)
	ErrNoTemplate     = errors.New(constant.ErrNoTemplate)
	ErrNoOutputDir    = errors.New(constant.ErrNoOutputDir)
	ErrFontSize       = errors.New(constant.ErrFontSize)
	ErrUnsafeCode     = errors.New(constant.ErrUnsafeCode)
	ErrTemplateDecode = errors.New(constant.ErrTemplateDecode)
	ErrTemplateSize   = errors.New(constant.ErrTemplateSize)
)

// Resource errors. They abort the run; cards already written stay on disk.
var (
	ErrOutputDir       = errors.New(constant.ErrOutputDirInvalid)
	ErrFontLoad        = errors.New(constant.ErrFontLoad)
	ErrHistoryDisabled = errors.New(constant.ErrHistoryDisabled)
)

var inputErrors = []error{
	ErrNoCodes,
	ErrNoTemplate,
	ErrNoOutputDir,
	ErrFontSize,
	ErrUnsafeCode,
	ErrTemplateDecode,
	ErrTemplateSize,
}

// IsInputError reports whether err was caused by the job's inputs rather than
// by the environment.
func IsInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationCode(err error) string {
	codes := map[error]string{
		ErrNoCodes:        constant.ErrCodeNoCodes,
		ErrNoTemplate:     constant.ErrCodeNoTemplate,
		ErrNoOutputDir:    constant.ErrCodeNoOutputDir,
		ErrFontSize:       constant.ErrCodeFontSize,
		ErrUnsafeCode:     constant.ErrCodeUnsafeCode,
		ErrTemplateDecode: constant.ErrCodeTemplateDecode,
		ErrTemplateSize:   constant.ErrCodeTemplateSize,
	}
	for target, code := range codes {
		if errors.Is(err, target) {
			return code
		}
	}
	return ""
}
