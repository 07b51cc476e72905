package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vishwaspatra/internal/contentstore"
	"vishwaspatra/internal/integrity"
	"vishwaspatra/internal/ledger"
	"vishwaspatra/internal/messaging"
	"vishwaspatra/internal/metrics"
	"vishwaspatra/internal/proof"
	"vishwaspatra/internal/renderer"
	"vishwaspatra/internal/repository"
	"vishwaspatra/types"
)

// isoTimestamp matches the millisecond ISO 8601 form issued timestamps have
// always used. The string is hash input, so the layout must never drift.
const isoTimestamp = "2006-01-02T15:04:05.000Z"

type IssueRequest struct {
	HTML           string               `json:"html"`
	StudentID      string               `json:"studentId"`
	TemplateID     string               `json:"templateId"`
	StudentWallet  string               `json:"studentWallet"`
	CollegeWallet  string               `json:"collegeWallet"`
	CollegeID      string               `json:"collegeId"`
	CollegeDetails types.CollegeDetails `json:"collegeDetails"`
}

type IssueResult struct {
	Message                string `json:"message"`
	MetaURI                string `json:"metaUri"`
	PDFIpfs                string `json:"pdfIpfs"`
	PNGIpfs                string `json:"pngIpfs"`
	PDFURL                 string `json:"pdfUrl"`
	CompositeHash          string `json:"compositeHash"`
	StudentContractAddress string `json:"studentContractAddress"`
	CollegeContractAddress string `json:"collegeContractAddress"`
}

// IssuanceService runs the full issuance pipeline: render, pin, mint, hash,
// embed, persist, register.
type IssuanceService interface {
	IssueCertificate(ctx context.Context, req *IssueRequest) (*IssueResult, error)
}

type issuanceService struct {
	renderer      renderer.Renderer
	store         contentstore.Store
	ledger        ledger.Client
	certificates  repository.CertificateRepository
	registry      repository.RegistryRepository
	colleges      repository.CollegeRepository
	nats          messaging.NATSClient
	metrics       *metrics.Metrics
	verifyBaseURL string
	embed         func(pdf []byte, hash, verifyBaseURL string, issuer proof.Issuer) ([]byte, error)
	logger        *zap.Logger
}

func NewIssuanceService(
	r renderer.Renderer,
	store contentstore.Store,
	l ledger.Client,
	certificates repository.CertificateRepository,
	registry repository.RegistryRepository,
	colleges repository.CollegeRepository,
	nats messaging.NATSClient,
	m *metrics.Metrics,
	verifyBaseURL string,
	logger *zap.Logger,
) IssuanceService {
	return &issuanceService{
		renderer:      r,
		store:         store,
		ledger:        l,
		certificates:  certificates,
		registry:      registry,
		colleges:      colleges,
		nats:          nats,
		metrics:       m,
		verifyBaseURL: verifyBaseURL,
		embed:         proof.Embed,
		logger:        logger,
	}
}

func (s *issuanceService) IssueCertificate(ctx context.Context, req *IssueRequest) (*IssueResult, error) {
	if err := validateIssueRequest(req); err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("college_id", req.CollegeID),
		zap.String("student_id", req.StudentID),
		zap.String("template_id", req.TemplateID))
	log.Info("issuance started")

	// Render both artifacts before touching any durable state.
	pdfBytes, err := s.renderer.RenderPDF(ctx, req.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate PDF: %w", err)
	}
	pngBytes, err := s.renderer.RenderPNG(ctx, req.HTML, renderer.CertificateViewport)
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate PNG: %w", err)
	}

	baseName := fmt.Sprintf("%s-%s", req.StudentID, req.TemplateID)
	pdfPin, err := s.store.Put(ctx, pdfBytes, baseName+".pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to pin certificate PDF: %w", err)
	}
	pngPin, err := s.store.Put(ctx, pngBytes, baseName+".png")
	if err != nil {
		return nil, fmt.Errorf("failed to pin certificate PNG: %w", err)
	}

	mintedAt := time.Now().UTC().Format(isoTimestamp)

	metaURI, err := s.uploadNFTMetadata(ctx, req, pdfPin, pngPin, baseName, mintedAt)
	if err != nil {
		return nil, err
	}

	// Student first, then college, matching the on-chain credential pairing.
	studentAddr, err := s.ledger.MintSBT(ctx, req.StudentWallet, metaURI)
	if err != nil {
		return nil, fmt.Errorf("failed to mint student SBT: %w", err)
	}
	collegeAddr, err := s.ledger.MintSBT(ctx, req.CollegeWallet, metaURI)
	if err != nil {
		return nil, fmt.Errorf("failed to mint college SBT: %w", err)
	}

	rec := &types.CertificateRecord{
		CollegeID:              req.CollegeID,
		StudentID:              req.StudentID,
		CertificateID:          req.TemplateID,
		TemplateID:             req.TemplateID,
		CollegeContractAddress: collegeAddr,
		StudentContractAddress: studentAddr,
		CollegeDetails:         req.CollegeDetails,
		MetaURI:                metaURI,
		PDFIpfs:                pdfPin.IPFSURI(),
		PNGIpfs:                pngPin.IPFSURI(),
		PDFURL:                 pdfPin.URL,
		PNGURL:                 pngPin.URL,
		MintedAt:               mintedAt,
	}

	// Hash failure aborts before anything is persisted, so a bad record
	// never leaves a registry entry behind.
	hash, err := integrity.HashRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to compute composite hash: %w", err)
	}

	embedded, err := s.embed(pdfBytes, hash, s.verifyBaseURL, proof.Issuer{CollegeFullName: req.CollegeDetails.FullName})
	if err != nil {
		return nil, fmt.Errorf("failed to embed proof: %w", err)
	}
	embeddedPin, err := s.store.Put(ctx, embedded, baseName+"_verified.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to pin verified PDF: %w", err)
	}
	// The distributed artifact is the embedded one; pdfIpfs keeps pointing
	// at the pre-embed render because it is hash input.
	rec.PDFURL = embeddedPin.URL

	// The record must be durable before the registry points at it; the
	// reverse order can leave a registry entry with no backing record.
	if err := s.certificates.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist certificate record: %w", err)
	}

	entry := &types.RegistryEntry{
		Hash:          hash,
		CollegeID:     rec.CollegeID,
		StudentID:     rec.StudentID,
		CertificateID: rec.CertificateID,
	}
	if err := s.registry.Register(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to register composite hash: %w", err)
	}

	if err := s.colleges.IncrementIssued(ctx, req.CollegeID); err != nil {
		log.Warn("failed to increment issued counter", zap.Error(err))
	}

	event := &messaging.CertificateIssuedEvent{
		EventID:         uuid.New().String(),
		CollegeID:       rec.CollegeID,
		StudentID:       rec.StudentID,
		CertificateID:   rec.CertificateID,
		CompositeHash:   hash,
		MetaURI:         metaURI,
		StudentContract: studentAddr,
		CollegeContract: collegeAddr,
		IssuedAt:        mintedAt,
	}
	if err := s.nats.PublishCertificateIssued(ctx, event); err != nil {
		log.Warn("failed to publish certificate issued event", zap.Error(err))
	}

	s.metrics.CertificateIssued()
	log.Info("issuance completed", zap.String("composite_hash", hash))

	return &IssueResult{
		Message:                "Certificate minted successfully",
		MetaURI:                metaURI,
		PDFIpfs:                rec.PDFIpfs,
		PNGIpfs:                rec.PNGIpfs,
		PDFURL:                 rec.PDFURL,
		CompositeHash:          hash,
		StudentContractAddress: studentAddr,
		CollegeContractAddress: collegeAddr,
	}, nil
}

func validateIssueRequest(req *IssueRequest) error {
	switch {
	case req.HTML == "":
		return fmt.Errorf("html cannot be empty")
	case req.StudentID == "":
		return fmt.Errorf("studentId cannot be empty")
	case req.TemplateID == "":
		return fmt.Errorf("templateId cannot be empty")
	case req.StudentWallet == "":
		return fmt.Errorf("studentWallet cannot be empty")
	case req.CollegeWallet == "":
		return fmt.Errorf("collegeWallet cannot be empty")
	case req.CollegeID == "":
		return fmt.Errorf("collegeId cannot be empty")
	case req.CollegeDetails.FullName == "" || req.CollegeDetails.ShortName == "" || req.CollegeDetails.RegID == "":
		return fmt.Errorf("collegeDetails fullName, shortName and regId are required")
	}
	return nil
}

type nftMetadata struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Image          string               `json:"image"`
	PDF            string               `json:"pdf"`
	PublicImageURL string               `json:"publicImageUrl"`
	PublicPDFURL   string               `json:"publicPdfUrl"`
	StudentID      string               `json:"studentId"`
	CollegeID      string               `json:"collegeId"`
	TemplateID     string               `json:"templateId"`
	CollegeDetails types.CollegeDetails `json:"collegeDetails"`
	UploadedAt     string               `json:"uploadedAt"`
	Attributes     []nftAttribute       `json:"attributes"`
}

type nftAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

func (s *issuanceService) uploadNFTMetadata(ctx context.Context, req *IssueRequest, pdfPin, pngPin contentstore.Pin, baseName, uploadedAt string) (string, error) {
	meta := nftMetadata{
		Name:           fmt.Sprintf("Certificate - %s", req.StudentID),
		Description:    fmt.Sprintf("Degree/Certificate for student %s from %s", req.StudentID, req.CollegeDetails.FullName),
		Image:          pngPin.IPFSURI(),
		PDF:            pdfPin.IPFSURI(),
		PublicImageURL: pngPin.URL,
		PublicPDFURL:   pdfPin.URL,
		StudentID:      req.StudentID,
		CollegeID:      req.CollegeID,
		TemplateID:     req.TemplateID,
		CollegeDetails: req.CollegeDetails,
		UploadedAt:     uploadedAt,
		Attributes: []nftAttribute{
			{TraitType: "College Short Name", Value: req.CollegeDetails.ShortName},
			{TraitType: "College Full Name", Value: req.CollegeDetails.FullName},
			{TraitType: "Student Wallet", Value: req.StudentWallet},
			{TraitType: "Template ID", Value: req.TemplateID},
		},
	}

	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal NFT metadata: %w", err)
	}

	metaPin, err := s.store.Put(ctx, payload, baseName+"_metadata.json")
	if err != nil {
		return "", fmt.Errorf("failed to pin NFT metadata: %w", err)
	}
	return metaPin.IPFSURI(), nil
}
