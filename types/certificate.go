package types

import "time"

// CollegeDetails is the issuer identity snapshot carried on every certificate.
// The three fields all participate in the composite hash.
type CollegeDetails struct {
	FullName  string `json:"fullName" db:"college_full_name"`
	ShortName string `json:"shortName" db:"college_short_name"`
	RegID     string `json:"regId" db:"college_reg_id"`
}

// CertificateRecord is the authoritative record of one issued certificate.
// Fields that participate in the composite hash are immutable after creation;
// re-issuance creates a new record under a new template/timestamp.
type CertificateRecord struct {
	CollegeID              string         `json:"collegeId" db:"college_id"`
	StudentID              string         `json:"studentId" db:"student_id"`
	CertificateID          string         `json:"certificateId" db:"certificate_id"`
	TemplateID             string         `json:"templateId" db:"template_id"`
	CollegeContractAddress string         `json:"collegeContractAddress" db:"college_contract_address"`
	StudentContractAddress string         `json:"studentContractAddress" db:"student_contract_address"`
	CollegeDetails         CollegeDetails `json:"collegeDetails"`
	MetaURI                string         `json:"metaUri" db:"meta_uri"`
	PDFIpfs                string         `json:"pdfIpfs" db:"pdf_ipfs"`
	PNGIpfs                string         `json:"pngIpfs" db:"png_ipfs"`
	PDFURL                 string         `json:"pdfUrl" db:"pdf_url"`
	PNGURL                 string         `json:"pngUrl" db:"png_url"`
	// MintedAt is the issuance timestamp as an ISO 8601 string. It is kept
	// verbatim because it is hash input; reformatting it would change the hash.
	MintedAt  string    `json:"mintedAt" db:"minted_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
