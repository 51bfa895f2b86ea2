package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignatureHeader = errors.New("invalid signature header")
	ErrNoValidSignature       = errors.New("no valid signature found")
	ErrTimestampTooOld        = errors.New("signature timestamp outside tolerance")
)

// DefaultTolerance bounds how old a signed payload may be. Matches the
// provider's recommended replay window.
const DefaultTolerance = 5 * time.Minute

// VerifySignature checks the Stripe-Signature header against the raw
// request body. The header carries a timestamp and one or more v1
// signatures: "t=<unix>,v1=<hex>[,v1=<hex>]". The signed message is
// "<timestamp>.<raw body>", so the body bytes must be exactly as
// delivered.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrTimestampTooOld
		}
	}

	// Step 1: compute the expected MAC over "<timestamp>.<payload>"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	// Step 2: constant-time compare against every presented signature
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrNoValidSignature
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignatureHeader
	}

	var (
		timestamp  int64
		haveTs     bool
		signatures []string
	)
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return 0, nil, ErrInvalidSignatureHeader
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignatureHeader)
			}
			timestamp = ts
			haveTs = true
		case "v1":
			signatures = append(signatures, parts[1])
		default:
			// Unknown schemes (v0 etc.) are ignored.
		}
	}

	if !haveTs || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignatureHeader
	}
	return timestamp, signatures, nil
}
