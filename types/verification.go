package types

// VerificationStatus labels the terminal outcome of one verification request.
type VerificationStatus string

const (
	// StatusAuthentic means the recomputed hash matched the presented one.
	StatusAuthentic VerificationStatus = "Authentic"
	// StatusUnregistered means the hash is unknown to the registry. This is a
	// well-formed "no" answer, not a fault.
	StatusUnregistered VerificationStatus = "Unregistered"
	// StatusRecordMismatch means a registry entry exists but its backing
	// certificate record is gone. An upstream invariant was violated.
	StatusRecordMismatch VerificationStatus = "RecordMismatch"
	// StatusTampered means the hashes were computed but do not match.
	StatusTampered VerificationStatus = "Tampered"
	// StatusInvalidRequest means the caller supplied neither a document nor a
	// hash, or the document could not be parsed at all.
	StatusInvalidRequest VerificationStatus = "InvalidRequest"
	// StatusNoProofFound means the document parsed but carries no embedded
	// proof metadata.
	StatusNoProofFound VerificationStatus = "NoProofFound"
)

// VerificationResult is the outcome of one verification. Negative outcomes
// (Unregistered, Tampered, ...) are values, not errors; only malformed input
// and infrastructure faults travel on the error channel.
type VerificationResult struct {
	Verified               bool               `json:"verified"`
	Status                 VerificationStatus `json:"status"`
	Message                string             `json:"message"`
	CompositeHash          string             `json:"compositeHash,omitempty"`
	RecomputedHash         string             `json:"recomputedHash,omitempty"`
	CertificateID          string             `json:"certificateId,omitempty"`
	CollegeID              string             `json:"collegeId,omitempty"`
	StudentID              string             `json:"studentId,omitempty"`
	CollegeName            string             `json:"collegeName,omitempty"`
	CollegeShortName       string             `json:"collegeShortName,omitempty"`
	CollegeRegID           string             `json:"collegeRegId,omitempty"`
	PDFURL                 string             `json:"pdfUrl,omitempty"`
	IssuedTo               string             `json:"issuedTo,omitempty"`
	IssuedAt               string             `json:"issuedAt,omitempty"`
	StudentContractAddress string             `json:"studentContractAddress,omitempty"`
}
