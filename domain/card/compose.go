package card

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/prasetyowira/cardgen/constant"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Compose builds one card: the QR symbol alpha-composited at the centre of
// the template and the code drawn in black around the label anchor. The
// template is never modified.
func Compose(template, qr image.Image, code string, face font.Face) *image.NRGBA {
	// Overlay works on a fresh NRGBA copy of the template.
	canvas := imaging.Overlay(template, qr, QROffset(qr.Bounds().Size()), 1.0)
	DrawLabel(canvas, face, code)
	return canvas
}

// QROffset centres a symbol of the given size on the canvas, rounding down.
func QROffset(size image.Point) image.Point {
	return image.Pt(
		floorHalf(constant.CanvasWidth-size.X),
		floorHalf(constant.CanvasHeight-size.Y),
	)
}

// MeasureLabel returns the label box measured from the draw origin (left
// edge, ascender line) to the right and bottom edge of the ink.
func MeasureLabel(face font.Face, text string) image.Point {
	bounds, _ := font.BoundString(face, text)
	ascent := face.Metrics().Ascent
	return image.Pt(bounds.Max.X.Ceil(), (ascent + bounds.Max.Y).Ceil())
}

// LabelOrigin returns the top-left draw origin that centres a label box of
// the given size on the label anchor.
func LabelOrigin(size image.Point) image.Point {
	return image.Pt(
		constant.LabelAnchorX-size.X/2,
		constant.LabelAnchorY-size.Y/2,
	)
}

// DrawLabel draws text in solid black straight onto dst.
func DrawLabel(dst *image.NRGBA, face font.Face, text string) {
	origin := LabelOrigin(MeasureLabel(face, text))

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(origin.X),
			Y: fixed.I(origin.Y) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

func floorHalf(n int) int {
	if n < 0 {
		return -((1 - n) / 2)
	}
	return n / 2
}
