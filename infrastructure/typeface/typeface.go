package typeface

import (
	"fmt"
	"os"

	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/infrastructure/cache"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const builtinKey = "builtin:goregular"

// Loader resolves the label typeface. An empty path selects the bundled Go
// Regular font.
type Loader struct {
	path  string
	cache *cache.NamespaceLRU[*opentype.Font]
}

// NewLoader creates a loader for the font at path. fonts may be nil.
func NewLoader(path string, fonts *cache.NamespaceLRU[*opentype.Font]) *Loader {
	return &Loader{
		path:  path,
		cache: fonts,
	}
}

// Path returns the configured font file, or "" for the bundled font.
func (l *Loader) Path() string {
	return l.path
}

// Face returns a new face rendering at size pixels. Faces are not safe for
// concurrent use, so every call builds its own.
func (l *Loader) Face(size int) (font.Face, error) {
	f, err := l.font()
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face at size %d: %w", size, err)
	}
	return face, nil
}

func (l *Loader) font() (*opentype.Font, error) {
	key := l.path
	if key == "" {
		key = builtinKey
	}
	if l.cache == nil {
		return l.parse()
	}
	return l.cache.GetOrLoad(constant.FontNamespace, key, l.parse)
}

func (l *Loader) parse() (*opentype.Font, error) {
	data := goregular.TTF
	if l.path != "" {
		raw, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", l.path, err)
		}
		data = raw
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", l.path, err)
	}

	appLogger.Debug("Font loaded", appLogger.LoggerInfo{
		ContextFunction: constant.CtxTypeface,
		Data: map[string]interface{}{
			constant.DataFontPath: l.path,
		},
	})
	return f, nil
}
