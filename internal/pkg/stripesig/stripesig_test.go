//go:build unit

package stripesig_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/stripesig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func TestVerify(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tolerance := 5 * time.Minute

	t.Run("accepts a freshly signed payload", func(t *testing.T) {
		header := stripesig.SignatureHeader(now.Unix(), payload, testSecret)
		err := stripesig.Verify(payload, header, testSecret, tolerance, now)
		assert.NoError(t, err)
	})

	t.Run("accepts any matching v1 candidate after rotation", func(t *testing.T) {
		stale := stripesig.ComputeSignature(now.Unix(), payload, "whsec_old_secret")
		good := stripesig.ComputeSignature(now.Unix(), payload, testSecret)
		header := "t=" + timestampString(now) + ",v1=" + stale + ",v1=" + good
		err := stripesig.Verify(payload, header, testSecret, tolerance, now)
		assert.NoError(t, err)
	})

	t.Run("rejects a tampered payload", func(t *testing.T) {
		header := stripesig.SignatureHeader(now.Unix(), payload, testSecret)
		tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
		err := stripesig.Verify(tampered, header, testSecret, tolerance, now)
		assert.ErrorIs(t, err, stripesig.ErrNoValidSignature)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		header := stripesig.SignatureHeader(now.Unix(), payload, "whsec_forged")
		err := stripesig.Verify(payload, header, testSecret, tolerance, now)
		assert.ErrorIs(t, err, stripesig.ErrNoValidSignature)
	})

	t.Run("rejects a stale timestamp", func(t *testing.T) {
		signedAt := now.Add(-6 * time.Minute)
		header := stripesig.SignatureHeader(signedAt.Unix(), payload, testSecret)
		err := stripesig.Verify(payload, header, testSecret, tolerance, now)
		assert.ErrorIs(t, err, stripesig.ErrTimestampOutOfTolerance)
	})

	t.Run("zero tolerance disables the timestamp check", func(t *testing.T) {
		signedAt := now.Add(-24 * time.Hour)
		header := stripesig.SignatureHeader(signedAt.Unix(), payload, testSecret)
		err := stripesig.Verify(payload, header, testSecret, 0, now)
		assert.NoError(t, err)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		err := stripesig.Verify(payload, "", testSecret, tolerance, now)
		assert.ErrorIs(t, err, stripesig.ErrMissingHeader)
	})

	t.Run("rejects malformed headers", func(t *testing.T) {
		for _, header := range []string{
			"nonsense",
			"t=notanumber,v1=abc",
			"v1=abc",               // no timestamp
			"t=" + "1748779200",    // no signature
			"t=1748779200,v0=abc",  // only unknown scheme
		} {
			err := stripesig.Verify(payload, header, testSecret, tolerance, now)
			assert.ErrorIs(t, err, stripesig.ErrMalformedHeader, "header: %s", header)
		}
	})
}

func TestParseHeader(t *testing.T) {
	payload := []byte("{}")
	ts := int64(1748779200)
	header := stripesig.SignatureHeader(ts, payload, testSecret)

	parsed, err := stripesig.ParseHeader(header)
	require.NoError(t, err)
	assert.Equal(t, ts, parsed.Timestamp.Unix())
	require.Len(t, parsed.Signatures, 1)
	assert.Equal(t, stripesig.ComputeSignature(ts, payload, testSecret), parsed.Signatures[0])
}

func timestampString(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
