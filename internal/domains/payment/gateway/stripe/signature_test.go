package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("valid signature", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now)
		err := VerifySignature(payload, header, testSecret, DefaultTolerance, now)
		assert.NoError(t, err)
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now)
		tampered := append([]byte{}, payload...)
		tampered[len(tampered)-2] = 'X'
		err := VerifySignature(tampered, header, testSecret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrNoValidSignature)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		header := signPayload(t, payload, "whsec_other", now)
		err := VerifySignature(payload, header, testSecret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrNoValidSignature)
	})

	t.Run("stale timestamp is rejected", func(t *testing.T) {
		old := now.Add(-10 * time.Minute)
		header := signPayload(t, payload, testSecret, old)
		err := VerifySignature(payload, header, testSecret, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrTimestampTooOld)
	})

	t.Run("second v1 signature still verifies", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(testSecret))
		fmt.Fprintf(mac, "%d.", now.Unix())
		mac.Write(payload)
		good := hex.EncodeToString(mac.Sum(nil))

		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), good)
		err := VerifySignature(payload, header, testSecret, DefaultTolerance, now)
		assert.NoError(t, err)
	})

	t.Run("malformed headers", func(t *testing.T) {
		tests := []struct {
			name   string
			header string
		}{
			{"empty", ""},
			{"no timestamp", "v1=abcdef"},
			{"no signature", fmt.Sprintf("t=%d", now.Unix())},
			{"garbage", "not-a-header"},
			{"bad timestamp", "t=soon,v1=abcdef"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := VerifySignature(payload, tt.header, testSecret, DefaultTolerance, now)
				require.Error(t, err)
			})
		}
	})

	t.Run("zero tolerance disables the age check", func(t *testing.T) {
		old := now.Add(-24 * time.Hour)
		header := signPayload(t, payload, testSecret, old)
		err := VerifySignature(payload, header, testSecret, 0, now)
		assert.NoError(t, err)
	})
}
