package types

// RegistryEntry maps a composite hash to the record it was derived from.
// Entries are created once at issuance and never updated or deleted.
type RegistryEntry struct {
	Hash          string `json:"hash" db:"hash"`
	CollegeID     string `json:"collegeId" db:"college_id"`
	StudentID     string `json:"studentId" db:"student_id"`
	CertificateID string `json:"certificateId" db:"certificate_id"`
	CreatedAt     string `json:"createdAt" db:"created_at"`
}

// SameProvenance reports whether two entries point at the same certificate.
func (e *RegistryEntry) SameProvenance(other *RegistryEntry) bool {
	return e.CollegeID == other.CollegeID &&
		e.StudentID == other.StudentID &&
		e.CertificateID == other.CertificateID
}
