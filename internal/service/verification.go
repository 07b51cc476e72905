package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vishwaspatra/internal/integrity"
	"vishwaspatra/internal/metrics"
	"vishwaspatra/internal/proof"
	"vishwaspatra/internal/repository"
	"vishwaspatra/types"
)

// VerificationService answers whether a presented certificate is authentic.
// It is a pure read path: neither mode mutates the registry or record store.
type VerificationService interface {
	// VerifyHash verifies a bare composite hash, e.g. from a QR link.
	VerifyHash(ctx context.Context, hash string) (*types.VerificationResult, error)
	// VerifyDocument extracts the embedded proof from PDF bytes and verifies it.
	VerifyDocument(ctx context.Context, pdf []byte) (*types.VerificationResult, error)
}

type verificationService struct {
	certificates repository.CertificateRepository
	registry     repository.RegistryRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewVerificationService(certificates repository.CertificateRepository, registry repository.RegistryRepository, m *metrics.Metrics, logger *zap.Logger) VerificationService {
	return &verificationService{
		certificates: certificates,
		registry:     registry,
		metrics:      m,
		logger:       logger,
	}
}

func (s *verificationService) VerifyHash(ctx context.Context, hash string) (*types.VerificationResult, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return s.complete(&types.VerificationResult{
			Status:  types.StatusInvalidRequest,
			Message: "No hash or PDF found for verification.",
		}), nil
	}

	entry, err := s.registry.Lookup(ctx, hash)
	if err != nil {
		s.logger.Error("registry lookup failed", zap.Error(err), zap.String("hash", hash))
		return nil, fmt.Errorf("failed to verify hash: %w", err)
	}
	if entry == nil {
		return s.complete(&types.VerificationResult{
			Status:        types.StatusUnregistered,
			Message:       "No record found for this certificate hash.",
			CompositeHash: hash,
		}), nil
	}

	rec, err := s.certificates.Get(ctx, entry.CollegeID, entry.StudentID, entry.CertificateID)
	if err != nil {
		s.logger.Error("certificate fetch failed", zap.Error(err), zap.String("hash", hash))
		return nil, fmt.Errorf("failed to verify hash: %w", err)
	}
	if rec == nil {
		// A registry entry without a backing record means an upstream
		// invariant was violated; surface it and flag it for operators.
		s.logger.Error("registry entry has no backing certificate record",
			zap.String("hash", hash),
			zap.String("college_id", entry.CollegeID),
			zap.String("student_id", entry.StudentID),
			zap.String("certificate_id", entry.CertificateID))
		return s.complete(&types.VerificationResult{
			Status:        types.StatusRecordMismatch,
			Message:       "Certificate not found under registered student record.",
			CompositeHash: hash,
			CertificateID: entry.CertificateID,
			CollegeID:     entry.CollegeID,
			StudentID:     entry.StudentID,
		}), nil
	}

	// Recompute over the current stored values, not whatever the document
	// claims about itself.
	recomputed, err := integrity.HashRecord(rec)
	if err != nil {
		if errors.Is(err, integrity.ErrMissingField) {
			s.logger.Error("stored certificate record is incomplete", zap.Error(err), zap.String("hash", hash))
			return s.complete(&types.VerificationResult{
				Status:        types.StatusRecordMismatch,
				Message:       "Registered certificate record is incomplete.",
				CompositeHash: hash,
				CertificateID: entry.CertificateID,
				CollegeID:     entry.CollegeID,
				StudentID:     entry.StudentID,
			}), nil
		}
		return nil, fmt.Errorf("failed to recompute hash: %w", err)
	}

	result := &types.VerificationResult{
		CompositeHash:          hash,
		RecomputedHash:         recomputed,
		CertificateID:          entry.CertificateID,
		CollegeID:              entry.CollegeID,
		StudentID:              entry.StudentID,
		CollegeName:            rec.CollegeDetails.FullName,
		CollegeShortName:       rec.CollegeDetails.ShortName,
		CollegeRegID:           rec.CollegeDetails.RegID,
		PDFURL:                 rec.PDFURL,
		IssuedTo:               rec.StudentID,
		IssuedAt:               rec.MintedAt,
		StudentContractAddress: rec.StudentContractAddress,
	}

	if recomputed == hash {
		result.Verified = true
		result.Status = types.StatusAuthentic
		result.Message = "This certificate has been verified as authentic and untampered."
		s.logger.Info("certificate verified",
			zap.String("hash", hash),
			zap.String("certificate_id", entry.CertificateID))
	} else {
		result.Status = types.StatusTampered
		result.Message = "This certificate appears to be modified or invalid."
		s.logger.Warn("certificate hash mismatch",
			zap.String("hash", hash),
			zap.String("recomputed_hash", recomputed),
			zap.String("certificate_id", entry.CertificateID))
	}

	return s.complete(result), nil
}

func (s *verificationService) VerifyDocument(ctx context.Context, pdf []byte) (*types.VerificationResult, error) {
	hash, err := proof.Extract(pdf)
	if err != nil {
		switch {
		case errors.Is(err, proof.ErrInvalidDocument):
			return s.complete(&types.VerificationResult{
				Status:  types.StatusInvalidRequest,
				Message: "The uploaded file is not a readable PDF document.",
			}), nil
		case errors.Is(err, proof.ErrNoProof):
			return s.complete(&types.VerificationResult{
				Status:  types.StatusNoProofFound,
				Message: "This document carries no VishwasPatra proof.",
			}), nil
		default:
			return nil, fmt.Errorf("failed to extract proof: %w", err)
		}
	}

	return s.VerifyHash(ctx, hash)
}

func (s *verificationService) complete(result *types.VerificationResult) *types.VerificationResult {
	s.metrics.VerificationCompleted(result.Status)
	return result
}
