package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the gateway's HMAC-SHA256 over "orderID|paymentID" and
// returns it hex-encoded, matching what the checkout callback carries.
func Signature(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback signature in constant time.
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Signature(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
