package utils

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCodePNG renders content as a PNG QR code for the check-in screen.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return png, nil
}
