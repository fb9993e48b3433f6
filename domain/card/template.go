package card

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/prasetyowira/cardgen/constant"
)

// LoadTemplate decodes a PNG or JPEG template from path.
func LoadTemplate(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateDecode, err)
	}
	return img, nil
}

// PrepareTemplate returns a template of exactly the canvas size. A template
// with the canvas aspect ratio but another size is resized; any other ratio
// is rejected.
func PrepareTemplate(img image.Image) (image.Image, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	if w == constant.CanvasWidth && h == constant.CanvasHeight {
		return img, nil
	}

	if w > 0 && w*constant.CanvasHeight == h*constant.CanvasWidth {
		return imaging.Resize(img, constant.CanvasWidth, constant.CanvasHeight, imaging.Lanczos), nil
	}

	return nil, fmt.Errorf("%w (got %dx%d)", ErrTemplateSize, w, h)
}
