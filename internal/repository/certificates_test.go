package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap/zaptest"

	"vishwaspatra/types"
)

func sampleCertificate() *types.CertificateRecord {
	return &types.CertificateRecord{
		CollegeID:              "college_001",
		StudentID:              "s1",
		CertificateID:          "t1",
		TemplateID:             "t1",
		CollegeContractAddress: "EQCcollege",
		StudentContractAddress: "EQCstudent",
		CollegeDetails: types.CollegeDetails{
			FullName:  "Mahatma Institute of Technology",
			ShortName: "MRIT",
			RegID:     "REG-2025-014",
		},
		MetaURI:  "ipfs://meta",
		PDFIpfs:  "ipfs://pdf",
		PNGIpfs:  "ipfs://png",
		PDFURL:   "https://gateway.test/ipfs/pdf",
		PNGURL:   "https://gateway.test/ipfs/png",
		MintedAt: "2025-01-01T00:00:00.000Z",
	}
}

func TestGetCertificateNotFound(t *testing.T) {
	repo := NewCertificateRepository(&mockDB{}, zaptest.NewLogger(t))

	rec, err := repo.Get(context.Background(), "college_001", "s1", "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, but got %+v", rec)
	}
}

func TestGetCertificateFound(t *testing.T) {
	want := sampleCertificate()
	createdAt := time.Date(2025, 1, 1, 0, 0, 5, 0, time.UTC)

	db := &mockDB{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFunc: func(dest ...any) error {
				*dest[0].(*string) = want.CollegeID
				*dest[1].(*string) = want.StudentID
				*dest[2].(*string) = want.CertificateID
				*dest[3].(*string) = want.TemplateID
				*dest[4].(*string) = want.CollegeContractAddress
				*dest[5].(*string) = want.StudentContractAddress
				*dest[6].(*string) = want.CollegeDetails.FullName
				*dest[7].(*string) = want.CollegeDetails.ShortName
				*dest[8].(*string) = want.CollegeDetails.RegID
				*dest[9].(*string) = want.MetaURI
				*dest[10].(*string) = want.PDFIpfs
				*dest[11].(*string) = want.PNGIpfs
				*dest[12].(*string) = want.PDFURL
				*dest[13].(*string) = want.PNGURL
				*dest[14].(*string) = want.MintedAt
				*dest[15].(*time.Time) = createdAt
				return nil
			}}
		},
	}

	repo := NewCertificateRepository(db, zaptest.NewLogger(t))

	rec, err := repo.Get(context.Background(), want.CollegeID, want.StudentID, want.CertificateID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, but got nil")
	}
	if rec.MintedAt != want.MintedAt {
		t.Errorf("expected minted at '%s', but got '%s'", want.MintedAt, rec.MintedAt)
	}
	if rec.CollegeDetails != want.CollegeDetails {
		t.Errorf("expected college details %+v, but got %+v", want.CollegeDetails, rec.CollegeDetails)
	}
}

func TestSaveCertificate(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	db := &mockDB{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			gotArgs = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := NewCertificateRepository(db, zaptest.NewLogger(t))

	if err := repo.Save(context.Background(), sampleCertificate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotSQL, "ON CONFLICT (college_id, student_id, certificate_id) DO NOTHING") {
		t.Errorf("expected immutable insert, but got query: %s", gotSQL)
	}
	if len(gotArgs) != 15 {
		t.Errorf("expected 15 insert args, but got %d", len(gotArgs))
	}
	if gotArgs[14] != "2025-01-01T00:00:00.000Z" {
		t.Errorf("expected minted at to be stored verbatim, but got %v", gotArgs[14])
	}
}

func TestSaveCertificateFailure(t *testing.T) {
	db := &mockDB{
		execFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("database connection failed")
		},
	}

	repo := NewCertificateRepository(db, zaptest.NewLogger(t))

	if err := repo.Save(context.Background(), sampleCertificate()); err == nil {
		t.Fatal("expected error, but got nil")
	}
}
