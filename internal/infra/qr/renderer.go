package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
)

var _ adapter.QRRenderer = (*Renderer)(nil)

// Renderer produces PNG data URLs the mobile client can show directly in an
// <img> tag without another round trip.
type Renderer struct {
	size int
}

func NewRenderer() *Renderer {
	return &Renderer{size: 256}
}

func (r *Renderer) RenderDataURL(payload string) (string, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	png, err := code.PNG(r.size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code PNG: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
