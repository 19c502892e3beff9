package discord

import (
	"crypto/ed25519"
	"encoding/hex"
)

// VerifySignature checks that the detached Ed25519 signature over
// timestamp+body matches the configured public key. All inputs arrive
// hex-encoded. Any missing value, malformed hex, or wrong key/signature
// length fails closed.
func VerifySignature(publicKeyHex, signatureHex, timestamp string, body []byte) bool {
	if publicKeyHex == "" || signatureHex == "" || timestamp == "" {
		return false
	}

	publicKey, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	signature, err := hex.DecodeString(signatureHex)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return false
	}

	payload := make([]byte, 0, len(timestamp)+len(body))
	payload = append(payload, timestamp...)
	payload = append(payload, body...)

	return ed25519.Verify(ed25519.PublicKey(publicKey), payload, signature)
}
