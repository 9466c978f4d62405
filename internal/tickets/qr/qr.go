package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/skip2/go-qrcode"
)

// Payload is what a scanned ticket QR decrypts to. The door app decrypts it
// offline and then hits the validate endpoint with the ticket id.
type Payload struct {
	TicketID string    `json:"ticket_id"`
	OrderID  string    `json:"order_id"`
	EventID  string    `json:"event_id"`
	Seq      int       `json:"seq"`
	IssuedAt time.Time `json:"issued_at"`
}

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// GenerateEncryptedQR renders a 256px PNG QR code whose content is the
// AES-CFB encrypted, base64-encoded payload.
func (g *Generator) GenerateEncryptedQR(payload Payload) ([]byte, error) {
	encrypted, err := g.EncryptPayload(payload)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// EncryptPayload produces the string a generated QR code carries.
func (g *Generator) EncryptPayload(payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

// Decrypt reverses the encoding applied to the QR content.
func (g *Generator) Decrypt(encoded string) (*Payload, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("ciphertext too short")
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
