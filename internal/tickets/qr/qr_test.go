package qr_test

import (
	"testing"
	"time"

	"ms-booking/internal/tickets/qr"
)

func TestGenerateEncryptedQR(t *testing.T) {
	gen := qr.NewGenerator("test-secret-key")

	qrBytes, err := gen.GenerateEncryptedQR(qr.Payload{
		TicketID: "tkt_1",
		OrderID:  "order1",
		EventID:  "event1",
		Seq:      1,
		IssuedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to generate QR code: %v", err)
	}
	if len(qrBytes) == 0 {
		t.Error("Generated QR code is empty")
	}
}

func TestDifferentTicketsProduceDifferentQRs(t *testing.T) {
	gen := qr.NewGenerator("test-secret-key")

	first, err := gen.GenerateEncryptedQR(qr.Payload{TicketID: "tkt_1", OrderID: "order1", Seq: 1})
	if err != nil {
		t.Fatalf("Failed to generate first QR: %v", err)
	}
	second, err := gen.GenerateEncryptedQR(qr.Payload{TicketID: "tkt_2", OrderID: "order1", Seq: 2})
	if err != nil {
		t.Fatalf("Failed to generate second QR: %v", err)
	}

	if string(first) == string(second) {
		t.Error("QR codes for different tickets should differ")
	}
}

func TestRandomIVMakesRepeatedEncodingsDiffer(t *testing.T) {
	gen := qr.NewGenerator("test-secret-key")
	payload := qr.Payload{
		TicketID: "tkt_1",
		OrderID:  "order1",
		EventID:  "event1",
		Seq:      1,
		IssuedAt: time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC),
	}

	first, err := gen.GenerateEncryptedQR(payload)
	if err != nil {
		t.Fatalf("Failed to generate first QR: %v", err)
	}
	second, err := gen.GenerateEncryptedQR(payload)
	if err != nil {
		t.Fatalf("Failed to generate second QR: %v", err)
	}

	if string(first) == string(second) {
		t.Error("QR codes should differ due to the random IV")
	}
}

func TestDecryptRoundTrip(t *testing.T) {
	gen := qr.NewGenerator("test-secret-key")
	payload := qr.Payload{
		TicketID: "tkt_1",
		OrderID:  "order1",
		EventID:  "event1",
		Seq:      3,
		IssuedAt: time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC),
	}

	// Exercise the cipher path directly: encrypt via the generator's QR
	// content and decrypt it back.
	data, err := gen.EncryptPayload(payload)
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}

	decoded, err := gen.Decrypt(data)
	if err != nil {
		t.Fatalf("Failed to decrypt payload: %v", err)
	}
	if decoded.TicketID != payload.TicketID || decoded.Seq != payload.Seq {
		t.Errorf("Round trip mismatch: got %+v", decoded)
	}
	if !decoded.IssuedAt.Equal(payload.IssuedAt) {
		t.Errorf("Expected issued at %v, got %v", payload.IssuedAt, decoded.IssuedAt)
	}
}

func TestDecryptRejectsWrongSecret(t *testing.T) {
	gen := qr.NewGenerator("secret-one")
	other := qr.NewGenerator("secret-two")

	data, err := gen.EncryptPayload(qr.Payload{TicketID: "tkt_1"})
	if err != nil {
		t.Fatalf("Failed to encrypt payload: %v", err)
	}

	if decoded, err := other.Decrypt(data); err == nil && decoded.TicketID == "tkt_1" {
		t.Error("Decrypting with the wrong secret should not yield the payload")
	}
}
