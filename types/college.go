package types

import "time"

// College is one registered institution.
type College struct {
	ID                  string    `json:"id" db:"id"`
	FullName            string    `json:"fullName" db:"full_name"`
	ShortName           string    `json:"shortName" db:"short_name"`
	RegID               string    `json:"regId" db:"reg_id"`
	WalletID            string    `json:"walletId" db:"wallet_id"`
	LogoURL             string    `json:"logoUrl" db:"logo_url"`
	LogoContractAddress string    `json:"logoContractAddress" db:"logo_contract_address"`
	CertificatesIssued  int64     `json:"certificatesIssued" db:"certificates_issued"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// CollegeSBTMetadata is the identity-credential document persisted after a
// college soulbound token is minted during onboarding.
type CollegeSBTMetadata struct {
	CollegeID       string `json:"collegeId" db:"college_id"`
	InstitutionName string `json:"institutionName" db:"institution_name"`
	RegistrationID  string `json:"registrationId" db:"registration_id"`
	VerifiedBy      string `json:"verifiedBy" db:"verified_by"`
	MetaURI         string `json:"metaUri" db:"meta_uri"`
	CertificateIpfs string `json:"certificateIpfs" db:"certificate_ipfs"`
	VoicIpfs        string `json:"voicIpfs" db:"voic_ipfs"`
	ContractAddress string `json:"contractAddress" db:"contract_address"`
	IssuedAt        string `json:"issuedAt" db:"issued_at"`
	Network         string `json:"network" db:"network"`
}
