package adapter

// QRRenderer turns scannable text into a displayable image.
type QRRenderer interface {
	// RenderDataURL returns the payload as a base64 PNG data URL.
	RenderDataURL(payload string) (string, error)
}
