// Package qr renders payment URLs as scannable images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

type Generator interface {
	DataURI(content string) (string, error)
}

type pngGenerator struct{}

func NewGenerator() Generator {
	return pngGenerator{}
}

// DataURI encodes content as a QR PNG wrapped in a data URI, ready to
// drop into an <img> src attribute.
func (pngGenerator) DataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
