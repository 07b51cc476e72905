package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"vishwaspatra/types"
)

type CollegeRepository interface {
	Get(ctx context.Context, id string) (*types.College, error)
	Upsert(ctx context.Context, college *types.College) error
	IncrementIssued(ctx context.Context, id string) error
	SaveSBTMetadata(ctx context.Context, meta *types.CollegeSBTMetadata) error
}

type collegeRepository struct {
	db     DB
	logger *zap.Logger
}

func NewCollegeRepository(db DB, logger *zap.Logger) CollegeRepository {
	return &collegeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *collegeRepository) Get(ctx context.Context, id string) (*types.College, error) {
	query := `
		SELECT id, full_name, short_name, reg_id, wallet_id, logo_url,
		       logo_contract_address, certificates_issued, created_at, updated_at
		FROM colleges
		WHERE id = $1
	`

	var college types.College
	err := r.db.QueryRow(ctx, query, id).
		Scan(&college.ID, &college.FullName, &college.ShortName, &college.RegID,
			&college.WalletID, &college.LogoURL, &college.LogoContractAddress,
			&college.CertificatesIssued, &college.CreatedAt, &college.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to get college", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get college: %w", err)
	}

	return &college, nil
}

func (r *collegeRepository) Upsert(ctx context.Context, college *types.College) error {
	query := `
		INSERT INTO colleges (id, full_name, short_name, reg_id, wallet_id, logo_url, logo_contract_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			short_name = EXCLUDED.short_name,
			reg_id = EXCLUDED.reg_id,
			wallet_id = EXCLUDED.wallet_id,
			logo_url = EXCLUDED.logo_url,
			logo_contract_address = EXCLUDED.logo_contract_address,
			updated_at = now()
	`

	_, err := r.db.Exec(ctx, query,
		college.ID, college.FullName, college.ShortName, college.RegID,
		college.WalletID, college.LogoURL, college.LogoContractAddress)
	if err != nil {
		r.logger.Error("failed to upsert college", zap.Error(err), zap.String("id", college.ID))
		return fmt.Errorf("failed to upsert college: %w", err)
	}

	return nil
}

func (r *collegeRepository) IncrementIssued(ctx context.Context, id string) error {
	query := `
		UPDATE colleges
		SET certificates_issued = certificates_issued + 1, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to increment issued counter", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to increment issued counter: %w", err)
	}

	return nil
}

func (r *collegeRepository) SaveSBTMetadata(ctx context.Context, meta *types.CollegeSBTMetadata) error {
	// Mirrors the "latest" document semantics: each onboarding run replaces
	// the previous credential metadata for the college.
	query := `
		INSERT INTO college_sbt_metadata (
			college_id, institution_name, registration_id, verified_by,
			meta_uri, certificate_ipfs, voic_ipfs, contract_address, issued_at, network
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (college_id) DO UPDATE SET
			institution_name = EXCLUDED.institution_name,
			registration_id = EXCLUDED.registration_id,
			verified_by = EXCLUDED.verified_by,
			meta_uri = EXCLUDED.meta_uri,
			certificate_ipfs = EXCLUDED.certificate_ipfs,
			voic_ipfs = EXCLUDED.voic_ipfs,
			contract_address = EXCLUDED.contract_address,
			issued_at = EXCLUDED.issued_at,
			network = EXCLUDED.network
	`

	_, err := r.db.Exec(ctx, query,
		meta.CollegeID, meta.InstitutionName, meta.RegistrationID, meta.VerifiedBy,
		meta.MetaURI, meta.CertificateIpfs, meta.VoicIpfs, meta.ContractAddress, meta.IssuedAt, meta.Network)
	if err != nil {
		r.logger.Error("failed to save college SBT metadata", zap.Error(err), zap.String("college_id", meta.CollegeID))
		return fmt.Errorf("failed to save college SBT metadata: %w", err)
	}

	return nil
}
