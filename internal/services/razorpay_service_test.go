package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	s := &RazorpayService{keyID: "rzp_test_key", keySecret: "test_secret"}

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"

	if !s.verifySignature(orderID, paymentID, signPayment("test_secret", orderID, paymentID)) {
		t.Error("valid signature rejected")
	}
	if s.verifySignature(orderID, paymentID, signPayment("wrong_secret", orderID, paymentID)) {
		t.Error("signature from wrong secret accepted")
	}
	if s.verifySignature(orderID, "pay_other", signPayment("test_secret", orderID, paymentID)) {
		t.Error("signature for different payment accepted")
	}
	if s.verifySignature(orderID, paymentID, "") {
		t.Error("empty signature accepted")
	}
}
