package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"asset-store/internal/database"
	"asset-store/internal/logging"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Resize decodes src, scales it down to fit within width x height while
// preserving aspect ratio, and encodes the result in the requested
// format. Images already smaller than the bounding box are never
// upscaled. Quality applies to lossy formats (1-100); for PNG it is
// treated as a compression hint.
func Resize(src []byte, width, height int, format database.ThumbnailFormat, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail dimensions %dx%d", width, height)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	bounds := img.Bounds()
	logging.Debug("Resizing %dx%d image to fit %dx%d (format: %s)",
		bounds.Dx(), bounds.Dy(), width, height, format)

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case database.FormatJPEG:
		// JPEG has no alpha channel; composite onto white so
		// transparent regions don't come out black.
		flat := flattenOnWhite(thumb)
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case database.FormatPNG:
		level := png.DefaultCompression
		if quality < 50 {
			level = png.BestCompression
		}
		if err := imaging.Encode(&buf, thumb, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	case database.FormatWebP:
		data, err := encodeWebP(thumb, quality)
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported thumbnail format: %s", format)
	}

	return buf.Bytes(), nil
}

// Dimensions reports the pixel size an image encoded in data would have
// after a bounding-box fit, without performing the resize.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func flattenOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
