package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"vishwaspatra/types"
)

// RegistryRepository is the durable hash -> provenance index.
type RegistryRepository interface {
	// Register creates an entry if and only if none exists for the hash.
	// Re-running issuance for the same inputs is a silent no-op.
	Register(ctx context.Context, entry *types.RegistryEntry) error
	// Lookup is a pure read; a missing hash returns (nil, nil).
	Lookup(ctx context.Context, hash string) (*types.RegistryEntry, error)
}

type registryRepository struct {
	db     DB
	logger *zap.Logger
}

func NewRegistryRepository(db DB, logger *zap.Logger) RegistryRepository {
	return &registryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *registryRepository) Register(ctx context.Context, entry *types.RegistryEntry) error {
	query := `
		INSERT INTO composite_registry (hash, college_id, student_id, certificate_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (hash) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, entry.Hash, entry.CollegeID, entry.StudentID, entry.CertificateID)
	if err != nil {
		r.logger.Error("failed to register composite hash", zap.Error(err), zap.String("hash", entry.Hash))
		return fmt.Errorf("failed to register composite hash: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// An entry already exists. Identical provenance is the idempotent
		// re-issuance case; different provenance means a hash collision or an
		// upstream bug and must never be silently overwritten.
		existing, err := r.Lookup(ctx, entry.Hash)
		if err != nil {
			return err
		}
		if existing != nil && !existing.SameProvenance(entry) {
			r.logger.Error("integrity alarm: registry entry exists with different provenance",
				zap.String("hash", entry.Hash),
				zap.String("existing_college_id", existing.CollegeID),
				zap.String("existing_student_id", existing.StudentID),
				zap.String("existing_certificate_id", existing.CertificateID),
				zap.String("college_id", entry.CollegeID),
				zap.String("student_id", entry.StudentID),
				zap.String("certificate_id", entry.CertificateID))
			return fmt.Errorf("registry entry for hash %s exists with different provenance", entry.Hash)
		}
		r.logger.Debug("composite hash already registered", zap.String("hash", entry.Hash))
		return nil
	}

	r.logger.Info("composite hash registered",
		zap.String("hash", entry.Hash),
		zap.String("college_id", entry.CollegeID),
		zap.String("student_id", entry.StudentID),
		zap.String("certificate_id", entry.CertificateID))
	return nil
}

func (r *registryRepository) Lookup(ctx context.Context, hash string) (*types.RegistryEntry, error) {
	query := `
		SELECT hash, college_id, student_id, certificate_id, created_at
		FROM composite_registry
		WHERE hash = $1
	`

	var entry types.RegistryEntry
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query, hash).
		Scan(&entry.Hash, &entry.CollegeID, &entry.StudentID, &entry.CertificateID, &createdAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to lookup composite hash", zap.Error(err), zap.String("hash", hash))
		return nil, fmt.Errorf("failed to lookup composite hash: %w", err)
	}
	entry.CreatedAt = createdAt.Format(time.RFC3339)

	return &entry, nil
}
