package server

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp"
)

const qrImageSize = 200

// PNGRenderer draws a provisioning URI as a base64 encoded PNG QR code.
type PNGRenderer struct {
	Size int
}

func (r PNGRenderer) Render(uri string) (string, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", err
	}

	size := r.Size
	if size <= 0 {
		size = qrImageSize
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
