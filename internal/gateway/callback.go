package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/shoply/checkout/internal/models"
)

// SignatureHeader carries the gateway's signature over the raw callback body.
const SignatureHeader = "X-Gateway-Signature"

// CallbackPayload is the decoded gateway notification
type CallbackPayload struct {
	OrderID            string `json:"order_id"`
	TransactionDetails struct {
		Success       bool   `json:"success"`
		StatusCode    string `json:"status_code"`
		TransactionID string `json:"transaction_id"`
	} `json:"transaction_details"`
}

// Signal normalizes the callback into a status signal.
func (p *CallbackPayload) Signal() models.StatusSignal {
	state := models.SignalFailure
	if p.TransactionDetails.Success {
		state = models.SignalSuccess
	}

	return models.StatusSignal{
		State:         state,
		Code:          p.TransactionDetails.StatusCode,
		TransactionID: p.TransactionDetails.TransactionID,
	}
}

// DecodeCallback validates and decodes a raw gateway notification. The body
// is base64 of a JSON document; the signature is HMAC-SHA256 of the raw body
// in hex. With an empty secret only signature presence is enforced. Any
// failure is ErrInvalidCallback and no order has been touched yet.
func DecodeCallback(raw []byte, signature string, secret string) (*CallbackPayload, error) {
	if signature == "" {
		return nil, models.ErrInvalidCallback
	}

	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(raw)
		want := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(want), []byte(signature)) {
			return nil, models.ErrInvalidCallback
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, models.ErrInvalidCallback
	}

	payload := CallbackPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, models.ErrInvalidCallback
	}

	if payload.OrderID == "" {
		return nil, models.ErrInvalidCallback
	}

	return &payload, nil
}

// Sign computes the callback signature for the raw body. Used by tests and
// matches what the gateway sends.
func Sign(raw []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}
