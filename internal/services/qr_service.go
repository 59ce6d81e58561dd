package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// GenerateLinkQR renders a subscription URL as a PNG QR code so that
// visitors can import a link by scanning instead of copying.
func GenerateLinkQR(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("empty QR content")
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
