// Package stripesig verifies the Stripe v1 webhook signature scheme.
//
// The signature header format is:
//
//	Stripe-Signature: t={timestamp},v1={signature}
//
// Where signature = HMAC-SHA256(secret, "{timestamp}.{payload}").
package stripesig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingHeader           = errors.New("signature header is missing")
	ErrMalformedHeader         = errors.New("signature header is malformed")
	ErrNoValidSignature        = errors.New("no valid signature found")
	ErrTimestampOutOfTolerance = errors.New("signature timestamp outside tolerance")
)

// Header is the parsed form of a Stripe-Signature header value. A header may
// carry multiple v1 candidates after a secret rotation; any one matching is
// sufficient.
type Header struct {
	Timestamp  time.Time
	Signatures []string
}

func ParseHeader(value string) (Header, error) {
	if value == "" {
		return Header{}, ErrMissingHeader
	}

	h := Header{}
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return Header{}, ErrMalformedHeader
		}
		switch strings.TrimSpace(parts[0]) {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return Header{}, ErrMalformedHeader
			}
			h.Timestamp = time.Unix(ts, 0)
		case "v1":
			h.Signatures = append(h.Signatures, parts[1])
		default:
			// Unknown schemes (v0 etc.) are ignored, same as stripe-go.
		}
	}

	if h.Timestamp.IsZero() || len(h.Signatures) == 0 {
		return Header{}, ErrMalformedHeader
	}
	return h, nil
}

// Verify checks the signature header against the payload and shared secret.
// A zero tolerance disables the timestamp check.
func Verify(payload []byte, headerValue, secret string, tolerance time.Duration, now time.Time) error {
	h, err := ParseHeader(headerValue)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := now.Sub(h.Timestamp)
		if age < 0 {
			age = -age
		}
		if age > tolerance {
			return ErrTimestampOutOfTolerance
		}
	}

	expected := ComputeSignature(h.Timestamp.Unix(), payload, secret)
	for _, candidate := range h.Signatures {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrNoValidSignature
}

// ComputeSignature computes the Stripe v1 HMAC-SHA256 signature over
// "{timestamp}.{payload}".
func ComputeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader renders a header value for the given timestamp and payload.
// Test helper counterpart of Verify.
func SignatureHeader(timestamp int64, payload []byte, secret string) string {
	return "t=" + strconv.FormatInt(timestamp, 10) + ",v1=" + ComputeSignature(timestamp, payload, secret)
}
