package storage

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/prasetyowira/cardgen/constant"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
)

// FileStore writes card images into a local directory.
type FileStore struct{}

// NewFileStore creates a new file store
func NewFileStore() *FileStore {
	return &FileStore{}
}

// CheckDir reports an error unless dir exists and is a directory.
func (s *FileStore) CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Write encodes img as PNG to dir/name.png, replacing any existing file.
func (s *FileStore) Write(ctx context.Context, dir, name string, img image.Image) (string, error) {
	path := filepath.Join(dir, name+constant.CardExtension)

	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	appLogger.CtxDebug(ctx, "Card written", appLogger.LoggerInfo{
		ContextFunction: constant.CtxStorage,
		Data: map[string]interface{}{
			constant.DataFile: path,
		},
	})
	return path, nil
}
