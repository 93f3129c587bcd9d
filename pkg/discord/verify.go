package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Verify authenticates an interaction webhook request. The platform signs
// `timestamp || body` with the application's Ed25519 key; anything malformed
// (missing headers, bad hex, wrong size) is a verification failure, not an
// internal error. Requests whose timestamp falls outside the tolerance
// window are rejected even if the signature itself is correct, so a captured
// request cannot be replayed later.
func Verify(key ed25519.PublicKey, signature, timestamp string, body []byte, tolerance time.Duration, now time.Time) error {
	if signature == "" {
		return fmt.Errorf("signature can not empty")
	}

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return err
	}

	if len(sig) != ed25519.SignatureSize || sig[63]&224 != 0 {
		return fmt.Errorf("signature is not valid")
	}

	if timestamp == "" {
		return fmt.Errorf("timestamp can not empty")
	}

	if tolerance > 0 {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp is not valid")
		}

		at := time.Unix(ts, 0)
		if at.Before(now.Add(-tolerance)) || at.After(now.Add(tolerance)) {
			return fmt.Errorf("timestamp is outside of the accepted window")
		}
	}

	signed := append([]byte(timestamp), body...)
	if !ed25519.Verify(key, signed, sig) {
		return fmt.Errorf("signature is not valid")
	}

	return nil
}
