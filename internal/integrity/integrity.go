// Package integrity computes the composite hash that ties an issued
// certificate PDF back to its authoritative record. The hash covers the
// record's canonical fields, not the document bytes: it proves "this record
// was issued", and any change to the stored record invalidates documents in
// circulation.
package integrity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vishwaspatra/types"
)

// VersionPrefix namespaces every hash computation. Bumping it invalidates all
// hashes computed under the previous schema, which is the designated
// schema-evolution mechanism.
const VersionPrefix = "VISHWASPATRA:v1|"

// Version is the schema tag embedded alongside the hash in document metadata.
const Version = "v1"

// ErrMissingField is returned when a canonical field is absent from the
// record. Every field is required; hashing a placeholder would silently
// change the hash domain.
var ErrMissingField = errors.New("missing canonical field")

// CanonicalFields is the fixed set of facts that define a certificate's
// authenticity. Field names are stable; adding, removing, or renaming one
// requires a new VersionPrefix.
type CanonicalFields struct {
	CollegeContractAddress string
	StudentContractAddress string
	CollegeID              string
	CollegeFullName        string
	CollegeShortName       string
	CollegeRegID           string
	StudentID              string
	TemplateID             string
	PDFIpfs                string
	MetaURI                string
	MintedAt               string
}

// FieldsFromRecord selects the canonical subset of a certificate record.
func FieldsFromRecord(rec *types.CertificateRecord) CanonicalFields {
	return CanonicalFields{
		CollegeContractAddress: rec.CollegeContractAddress,
		StudentContractAddress: rec.StudentContractAddress,
		CollegeID:              rec.CollegeID,
		CollegeFullName:        rec.CollegeDetails.FullName,
		CollegeShortName:       rec.CollegeDetails.ShortName,
		CollegeRegID:           rec.CollegeDetails.RegID,
		StudentID:              rec.StudentID,
		TemplateID:             rec.TemplateID,
		PDFIpfs:                rec.PDFIpfs,
		MetaURI:                rec.MetaURI,
		MintedAt:               rec.MintedAt,
	}
}

// Canonical serializes the field set as a JSON object with keys sorted
// lexicographically and values taken verbatim. Two computations over the same
// values produce byte-identical output regardless of field supply order.
func (f CanonicalFields) Canonical() (string, error) {
	m := map[string]string{
		"collegeContractAddress": f.CollegeContractAddress,
		"studentContractAddress": f.StudentContractAddress,
		"collegeId":              f.CollegeID,
		"collegeFullName":        f.CollegeFullName,
		"collegeShortName":       f.CollegeShortName,
		"collegeRegId":           f.CollegeRegID,
		"studentId":              f.StudentID,
		"templateId":             f.TemplateID,
		"pdfIpfs":                f.PDFIpfs,
		"metaUri":                f.MetaURI,
		"mintedAt":               f.MintedAt,
	}

	for key, value := range m {
		if value == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	// The encoder emits map keys in sorted order, which is exactly the
	// canonical form. HTML escaping must stay off: values like "Arts &
	// Science College" have to serialize verbatim or the hash domain shifts
	// for every record containing &, < or >.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("failed to serialize canonical fields: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// CompositeHash digests the version prefix plus the canonical string,
// rendered as lowercase hex. Pure function, no side effects.
func CompositeHash(canonical string) string {
	sum := sha256.Sum256([]byte(VersionPrefix + canonical))
	return hex.EncodeToString(sum[:])
}

// HashRecord is the one-call path from record to composite hash.
func HashRecord(rec *types.CertificateRecord) (string, error) {
	canonical, err := FieldsFromRecord(rec).Canonical()
	if err != nil {
		return "", err
	}
	return CompositeHash(canonical), nil
}
