package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how old a signed delivery may be when verified.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMalformedSignature = errors.New("webhook signature header is malformed")
	ErrSignatureMismatch  = errors.New("webhook signature does not match payload")
	ErrStaleSignature     = errors.New("webhook signature timestamp outside tolerance")
)

// SignPayload returns the signature header value "t=<unix>,v1=<hex>" where
// v1 is HMAC-SHA256 over "<unix>.<payload>". Retries are re-signed at send
// time so receivers can reject replays.
func SignPayload(secret string, at time.Time, payload []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + digest(secret, ts, payload)
}

// VerifySignature checks a header produced by SignPayload. A zero tolerance
// skips the freshness check.
func VerifySignature(secret string, payload []byte, header string, now time.Time, tolerance time.Duration) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return ErrMalformedSignature
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			sig = value
		}
	}
	if ts == "" || sig == "" {
		return ErrMalformedSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrMalformedSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return ErrStaleSignature
		}
	}

	if !hmac.Equal([]byte(sig), []byte(digest(secret, ts, payload))) {
		return ErrSignatureMismatch
	}
	return nil
}

func digest(secret, ts string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
