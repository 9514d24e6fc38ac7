// Package passes renders QR entry passes for registered attendees. The QR
// payload is an HMAC-signed token, so a scanner holding the same secret can
// verify a pass offline without a database round trip.
package passes

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"

	"ms-registration/internal/models"
)

var ErrInvalidPass = errors.New("invalid pass token")

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	// Normalize the configured secret to a fixed-size key.
	hashed := sha256.Sum256([]byte(secret))
	return &Generator{secret: hashed[:]}
}

type PassClaims struct {
	AttendeeID string `json:"attendee_id"`
	EventID    string `json:"event_id"`
	Email      string `json:"email"`
}

// GeneratePass returns a PNG QR code wrapping the signed token for the
// attendee.
func (g *Generator) GeneratePass(attendee models.Attendee) ([]byte, error) {
	token, err := g.Token(attendee)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, 256)
}

// Token builds the signed pass token: base64(claims) "." base64(hmac).
func (g *Generator) Token(attendee models.Attendee) (string, error) {
	claims, err := json.Marshal(PassClaims{
		AttendeeID: attendee.ID,
		EventID:    attendee.EventID,
		Email:      attendee.Email,
	})
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(claims) + "." + g.sign(claims), nil
}

// Verify checks the token signature and returns the embedded claims.
func (g *Generator) Verify(token string) (*PassClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidPass
	}

	claimsBytes, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidPass
	}
	if !hmac.Equal([]byte(g.sign(claimsBytes)), []byte(parts[1])) {
		return nil, ErrInvalidPass
	}

	var claims PassClaims
	if err := json.Unmarshal(claimsBytes, &claims); err != nil {
		return nil, ErrInvalidPass
	}
	return &claims, nil
}

func (g *Generator) sign(data []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(data)
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
