package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// Image is a picture attached to a generation or chat request.
type Image struct {
	Data     []byte
	MIMEType string
}

// LoadImage reads an image file and sniffs its MIME type.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return &Image{Data: data, MIMEType: mime}, nil
}

// Encoded returns the MIME type and base64 payload to send. Images wider than
// maxWidth are downscaled and re-encoded as JPEG; maxWidth <= 0 disables this.
// Formats without a decoder (webp, bmp, ...) are sent unchanged.
func (img *Image) Encoded(maxWidth int) (string, string, error) {
	data, mime := img.Data, img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	if maxWidth > 0 {
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return mime, base64.StdEncoding.EncodeToString(data), nil
		}
		bounds := decoded.Bounds()
		if bounds.Dx() > maxWidth {
			height := uint(float64(maxWidth) * float64(bounds.Dy()) / float64(bounds.Dx()))
			resized := resize.Resize(uint(maxWidth), height, decoded, resize.Lanczos3)

			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
				return "", "", fmt.Errorf("encode resized image: %w", err)
			}
			data, mime = buf.Bytes(), "image/jpeg"
		}
	}

	return mime, base64.StdEncoding.EncodeToString(data), nil
}

// DataURL returns the image as a base64 data URL, downscaled as in Encoded.
func (img *Image) DataURL(maxWidth int) (string, error) {
	mime, payload, err := img.Encoded(maxWidth)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + payload, nil
}
