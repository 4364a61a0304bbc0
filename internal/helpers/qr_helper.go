package helpers

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrDataURLPrefix = "data:image/png;base64,"

// TicketQRCode renders the ticket identifier as a QR PNG and returns it
// as a data URL. The payload is only the ticket id: the code is an
// opaque reference resolved at the door, not a credential.
func TicketQRCode(ticketID uuid.UUID) (string, error) {
	png, err := qrcode.Encode(ticketID.String(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return qrDataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// QRCodePNG decodes a data URL produced by TicketQRCode back into PNG bytes.
func QRCodePNG(dataURL string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, qrDataURLPrefix))
}
