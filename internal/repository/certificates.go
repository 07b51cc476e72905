package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"vishwaspatra/types"
)

// CertificateRepository is the record store for issued certificates.
type CertificateRepository interface {
	Get(ctx context.Context, collegeID, studentID, certificateID string) (*types.CertificateRecord, error)
	// Save persists a record once. Records are immutable; a conflicting
	// insert is a no-op so re-running issuance never mutates hash inputs.
	Save(ctx context.Context, rec *types.CertificateRecord) error
}

type certificateRepository struct {
	db     DB
	logger *zap.Logger
}

func NewCertificateRepository(db DB, logger *zap.Logger) CertificateRepository {
	return &certificateRepository{
		db:     db,
		logger: logger,
	}
}

func (r *certificateRepository) Get(ctx context.Context, collegeID, studentID, certificateID string) (*types.CertificateRecord, error) {
	query := `
		SELECT college_id, student_id, certificate_id, template_id,
		       college_contract_address, student_contract_address,
		       college_full_name, college_short_name, college_reg_id,
		       meta_uri, pdf_ipfs, png_ipfs, pdf_url, png_url, minted_at, created_at
		FROM certificates
		WHERE college_id = $1 AND student_id = $2 AND certificate_id = $3
	`

	var rec types.CertificateRecord
	err := r.db.QueryRow(ctx, query, collegeID, studentID, certificateID).
		Scan(&rec.CollegeID, &rec.StudentID, &rec.CertificateID, &rec.TemplateID,
			&rec.CollegeContractAddress, &rec.StudentContractAddress,
			&rec.CollegeDetails.FullName, &rec.CollegeDetails.ShortName, &rec.CollegeDetails.RegID,
			&rec.MetaURI, &rec.PDFIpfs, &rec.PNGIpfs, &rec.PDFURL, &rec.PNGURL, &rec.MintedAt, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to get certificate",
			zap.Error(err),
			zap.String("college_id", collegeID),
			zap.String("student_id", studentID),
			zap.String("certificate_id", certificateID))
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return &rec, nil
}

func (r *certificateRepository) Save(ctx context.Context, rec *types.CertificateRecord) error {
	query := `
		INSERT INTO certificates (
			college_id, student_id, certificate_id, template_id,
			college_contract_address, student_contract_address,
			college_full_name, college_short_name, college_reg_id,
			meta_uri, pdf_ipfs, png_ipfs, pdf_url, png_url, minted_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
		ON CONFLICT (college_id, student_id, certificate_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		rec.CollegeID, rec.StudentID, rec.CertificateID, rec.TemplateID,
		rec.CollegeContractAddress, rec.StudentContractAddress,
		rec.CollegeDetails.FullName, rec.CollegeDetails.ShortName, rec.CollegeDetails.RegID,
		rec.MetaURI, rec.PDFIpfs, rec.PNGIpfs, rec.PDFURL, rec.PNGURL, rec.MintedAt)
	if err != nil {
		r.logger.Error("failed to save certificate",
			zap.Error(err),
			zap.String("college_id", rec.CollegeID),
			zap.String("student_id", rec.StudentID),
			zap.String("certificate_id", rec.CertificateID))
		return fmt.Errorf("failed to save certificate: %w", err)
	}

	return nil
}
