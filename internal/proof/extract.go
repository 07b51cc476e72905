package proof

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Extract reads the embedded proof back out of a distributed document and
// returns its composite hash. Any downstream reader that can parse the PDF
// Info dictionary can do the same.
func Extract(pdf []byte) (string, error) {
	p, err := ExtractProof(pdf)
	if err != nil {
		return "", err
	}
	return p.CompositeHash, nil
}

// ExtractProof returns the full proof blob including its schema version.
func ExtractProof(pdf []byte) (*Proof, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if ctx.Info == nil {
		return nil, ErrNoProof
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return nil, ErrNoProof
	}

	obj, found := d.Find("Keywords")
	if !found {
		return nil, ErrNoProof
	}
	obj, err = ctx.Dereference(obj)
	if err != nil {
		return nil, ErrNoProof
	}

	var raw string
	switch s := obj.(type) {
	case types.StringLiteral:
		raw, err = types.StringLiteralToString(s)
	case types.HexLiteral:
		raw, err = types.HexLiteralToString(s)
	default:
		return nil, ErrNoProof
	}
	if err != nil {
		return nil, ErrNoProof
	}

	var p Proof
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: keywords field is not a proof blob", ErrNoProof)
	}
	if p.CompositeHash == "" {
		return nil, fmt.Errorf("%w: proof blob carries no hash", ErrNoProof)
	}
	return &p, nil
}
