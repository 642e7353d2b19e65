package forensics

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/gen2brain/heic"

	"github.com/veripay/veripay/internal/domain"
)

// decodeGray decodes capture bytes into a grayscale image. Standard formats
// go through the stdlib registry; HEIC/HEIF (common for iPhone captures) is
// detected by its ftyp box and decoded with the pure-Go heic package.
func decodeGray(data []byte) (*image.Gray, error) {
	var img image.Image
	var err error

	if isHEIC(data) {
		img, err = heic.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableImage, err)
	}

	return toGray(img), nil
}

// isHEIC checks for an ftyp box with a HEIC-related brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// toGray converts to a grayscale raster anchored at the origin, so the
// signal math can index Pix directly.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == image.Pt(0, 0) {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			gray.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return gray
}
