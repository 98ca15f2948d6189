package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// jpegQuality is the lossy compression quality for stored images.
const jpegQuality = 80

// Transcode decodes an image in any supported format and re-encodes it
// as a compressed JPEG.
func Transcode(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
