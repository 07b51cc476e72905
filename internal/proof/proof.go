// Package proof embeds the composite hash into issued certificate PDFs and
// extracts it back out during verification. The proof travels in the
// document's Keywords metadata field as a small JSON blob, which is the wire
// format between issuance and verification and must stay stable.
package proof

import (
	"errors"
	"fmt"
)

// Proof is the self-contained authenticity claim carried inside a document.
type Proof struct {
	CompositeHash string `json:"compositeHash"`
	Version       string `json:"version"`
}

var (
	// ErrInvalidDocument means the input bytes are not a readable PDF.
	ErrInvalidDocument = errors.New("not a valid PDF document")
	// ErrNoProof means the PDF parsed but carries no embedded proof.
	ErrNoProof = errors.New("no embedded proof found")
	// ErrEmbed means embedding failed; issuance must abort, no partial
	// artifact is returned.
	ErrEmbed = errors.New("failed to embed proof")
)

// VerifyLink builds the URL encoded into the QR code and shared manually.
func VerifyLink(baseURL, hash string) string {
	return fmt.Sprintf("%s/verifier?verify-hash=%s", baseURL, hash)
}
