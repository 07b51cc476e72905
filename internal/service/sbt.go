package service

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"vishwaspatra/internal/contentstore"
	"vishwaspatra/internal/ledger"
	"vishwaspatra/internal/renderer"
	"vishwaspatra/internal/repository"
	"vishwaspatra/types"
)

//go:embed templates/certificate.html
var collegeCertificateTemplate string

//go:embed templates/voic.html
var voicTemplate string

const sbtNetwork = "TON Testnet"

type GenerateSBTRequest struct {
	CollegeName string `json:"collegeName"`
	RegID       string `json:"regId"`
	WalletID    string `json:"walletId"`
	CollegeID   string `json:"collegeId"`
	VerifiedBy  string `json:"verifiedBy"`
}

type GenerateSBTResult struct {
	MetaURI         string `json:"metaUri"`
	CertificateIpfs string `json:"certificate"`
	VoicIpfs        string `json:"voic"`
	ContractAddress string `json:"contractAddress"`
}

// CollegeSBTService handles institution onboarding: it renders the verified-
// organization credential artifacts, mints the college's soulbound identity
// token, and persists the credential metadata.
type CollegeSBTService interface {
	GenerateCollegeSBT(ctx context.Context, req *GenerateSBTRequest) (*GenerateSBTResult, error)
	// VerifySBTOwner reports whether wallet owns the item at contractAddress.
	VerifySBTOwner(ctx context.Context, wallet, contractAddress string) (bool, error)
}

type collegeSBTService struct {
	renderer renderer.Renderer
	store    contentstore.Store
	ledger   ledger.Client
	colleges repository.CollegeRepository
	logger   *zap.Logger
}

func NewCollegeSBTService(r renderer.Renderer, store contentstore.Store, l ledger.Client, colleges repository.CollegeRepository, logger *zap.Logger) CollegeSBTService {
	return &collegeSBTService{
		renderer: r,
		store:    store,
		ledger:   l,
		colleges: colleges,
		logger:   logger,
	}
}

func (s *collegeSBTService) GenerateCollegeSBT(ctx context.Context, req *GenerateSBTRequest) (*GenerateSBTResult, error) {
	switch {
	case req.CollegeName == "":
		return nil, fmt.Errorf("collegeName cannot be empty")
	case req.RegID == "":
		return nil, fmt.Errorf("regId cannot be empty")
	case req.WalletID == "":
		return nil, fmt.Errorf("walletId cannot be empty")
	case req.CollegeID == "":
		return nil, fmt.Errorf("collegeId cannot be empty")
	}
	verifiedBy := req.VerifiedBy
	if verifiedBy == "" {
		verifiedBy = "VishwasPatra"
	}

	log := s.logger.With(zap.String("college_id", req.CollegeID), zap.String("reg_id", req.RegID))
	log.Info("college SBT generation started")

	certPin, err := s.renderCollegeCertificate(ctx, req, verifiedBy)
	if err != nil {
		return nil, err
	}

	voicPin, err := s.renderVOIC(ctx, req, certPin.URL)
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC().Format(isoTimestamp)
	metaURI, err := s.uploadSBTMetadata(ctx, req, verifiedBy, certPin, voicPin, issuedAt)
	if err != nil {
		return nil, err
	}

	contractAddress, err := s.ledger.MintSBT(ctx, req.WalletID, metaURI)
	if err != nil {
		return nil, fmt.Errorf("failed to mint college SBT: %w", err)
	}

	college := &types.College{
		ID:                  req.CollegeID,
		FullName:            req.CollegeName,
		RegID:               req.RegID,
		WalletID:            req.WalletID,
		LogoURL:             voicPin.URL,
		LogoContractAddress: contractAddress,
	}
	if err := s.colleges.Upsert(ctx, college); err != nil {
		return nil, fmt.Errorf("failed to persist college: %w", err)
	}

	meta := &types.CollegeSBTMetadata{
		CollegeID:       req.CollegeID,
		InstitutionName: req.CollegeName,
		RegistrationID:  req.RegID,
		VerifiedBy:      verifiedBy,
		MetaURI:         metaURI,
		CertificateIpfs: certPin.IPFSURI(),
		VoicIpfs:        voicPin.IPFSURI(),
		ContractAddress: contractAddress,
		IssuedAt:        issuedAt,
		Network:         sbtNetwork,
	}
	if err := s.colleges.SaveSBTMetadata(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to persist college SBT metadata: %w", err)
	}

	log.Info("college SBT generated",
		zap.String("contract_address", contractAddress),
		zap.String("meta_uri", metaURI))

	return &GenerateSBTResult{
		MetaURI:         metaURI,
		CertificateIpfs: certPin.IPFSURI(),
		VoicIpfs:        voicPin.IPFSURI(),
		ContractAddress: contractAddress,
	}, nil
}

func (s *collegeSBTService) VerifySBTOwner(ctx context.Context, wallet, contractAddress string) (bool, error) {
	if wallet == "" || contractAddress == "" {
		return false, fmt.Errorf("wallet and contractAddress are required")
	}

	owner, err := s.ledger.Owner(ctx, contractAddress)
	if err != nil {
		return false, fmt.Errorf("failed to query SBT owner: %w", err)
	}
	if owner == "" {
		s.logger.Debug("SBT has no owner", zap.String("contract_address", contractAddress))
		return false, nil
	}

	return owner == wallet, nil
}

func (s *collegeSBTService) renderCollegeCertificate(ctx context.Context, req *GenerateSBTRequest, verifiedBy string) (contentstore.Pin, error) {
	html := strings.NewReplacer(
		"{{INSTITUTION_NAME}}", req.CollegeName,
		"{{REGISTRATION_ID}}", req.RegID,
		"{{VERIFIED_BY}}", verifiedBy,
		"{{YEAR}}", strconv.Itoa(time.Now().UTC().Year()),
	).Replace(collegeCertificateTemplate)

	png, err := s.renderer.RenderPNG(ctx, html, renderer.CertificateViewport)
	if err != nil {
		return contentstore.Pin{}, fmt.Errorf("failed to render college certificate: %w", err)
	}

	pin, err := s.store.Put(ctx, png, req.RegID+"_certificate.png")
	if err != nil {
		return contentstore.Pin{}, fmt.Errorf("failed to pin college certificate: %w", err)
	}
	return pin, nil
}

func (s *collegeSBTService) renderVOIC(ctx context.Context, req *GenerateSBTRequest, certificateURL string) (contentstore.Pin, error) {
	qrPNG, err := qrcode.Encode(certificateURL, qrcode.Medium, 220)
	if err != nil {
		return contentstore.Pin{}, fmt.Errorf("failed to generate VOIC QR code: %w", err)
	}
	qrDataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG)

	html := strings.NewReplacer(
		"{{COLLEGE_NAME}}", req.CollegeName,
		"{{CERTIFICATE_URL}}", certificateURL,
		"{{QRCODE}}", qrDataURL,
	).Replace(voicTemplate)

	png, err := s.renderer.RenderPNG(ctx, html, renderer.VOICViewport)
	if err != nil {
		return contentstore.Pin{}, fmt.Errorf("failed to render VOIC card: %w", err)
	}

	pin, err := s.store.Put(ctx, png, req.RegID+"_voic.png")
	if err != nil {
		return contentstore.Pin{}, fmt.Errorf("failed to pin VOIC card: %w", err)
	}
	return pin, nil
}

type sbtMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	ExternalURL string          `json:"external_url"`
	Attributes  []nftAttribute  `json:"attributes"`
	Properties  sbtMetaProperty `json:"properties"`
}

type sbtMetaProperty struct {
	Certificate sbtMetaLink `json:"certificate"`
	Voic        sbtMetaLink `json:"voic"`
	Creator     string      `json:"metadata_creator"`
	Network     string      `json:"network"`
}

type sbtMetaLink struct {
	Ipfs string `json:"ipfs"`
	URL  string `json:"url"`
}

func (s *collegeSBTService) uploadSBTMetadata(ctx context.Context, req *GenerateSBTRequest, verifiedBy string, certPin, voicPin contentstore.Pin, issuedAt string) (string, error) {
	meta := sbtMetadata{
		Name:        fmt.Sprintf("VishwasPatra – %s", req.CollegeName),
		Description: fmt.Sprintf("Officially verified VishwasPatra certificate issued to %s by %s.", req.CollegeName, verifiedBy),
		Image:       voicPin.IPFSURI(),
		ExternalURL: voicPin.URL,
		Attributes: []nftAttribute{
			{TraitType: "Institution Name", Value: req.CollegeName},
			{TraitType: "Registration ID", Value: req.RegID},
			{TraitType: "Verified By", Value: verifiedBy},
			{TraitType: "Issued At", Value: issuedAt},
			{TraitType: "Certificate IPFS", Value: certPin.IPFSURI()},
		},
		Properties: sbtMetaProperty{
			Certificate: sbtMetaLink{Ipfs: certPin.IPFSURI(), URL: certPin.URL},
			Voic:        sbtMetaLink{Ipfs: voicPin.IPFSURI(), URL: voicPin.URL},
			Creator:     "VishwasPatra",
			Network:     sbtNetwork,
		},
	}

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SBT metadata: %w", err)
	}

	pin, err := s.store.Put(ctx, payload, req.RegID+"_metadata.json")
	if err != nil {
		return "", fmt.Errorf("failed to pin SBT metadata: %w", err)
	}
	return pin.IPFSURI(), nil
}
