package generations

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/settham78ths/V2/internal/registry"
)

func TestPGRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO generations").
		WithArgs("g-1", "s-1", "", "up-1", "optimize", "pl", "free", true, false, 120,
			"raw model output", []byte(`{"optimized_cv":"output"}`), "output", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPGRepository(db).Create(context.Background(), Generation{
		ID:          "g-1",
		SessionID:   "s-1",
		UploadID:    "up-1",
		Operation:   registry.OpOptimize,
		Language:    "pl",
		Tier:        "free",
		Watermarked: true,
		InputChars:  120,
		RawText:     "raw model output",
		Fields:      map[string]any{"optimized_cv": "output"},
		OutputText:  "output",
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("g-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPGRepository(db).GetByID(context.Background(), "g-missing")
	if err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func generationColumns() []string {
	return []string{"id", "session_id", "user_id", "upload_id", "operation", "language", "tier", "watermarked", "fallback", "input_chars", "raw_text", "fields", "output_text", "created_at"}
}

func TestPGRepositoryGetByIDDecodesFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(generationColumns()).
			AddRow("g-1", "s-1", "", "up-1", "optimize", "pl", "free", false, false, 100,
				"raw text", []byte(`{"optimized_cv":"Better"}`), "Better", now))

	g, err := NewPGRepository(db).GetByID(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if g.UploadID != "up-1" || g.RawText != "raw text" {
		t.Fatalf("unexpected record: %+v", g)
	}
	if g.Fields["optimized_cv"] != "Better" {
		t.Fatalf("fields not decoded: %+v", g.Fields)
	}
}

func TestPGRepositoryListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(generationColumns()).
		AddRow("g-2", "s-1", "", "", "optimize", "pl", "one_time_paid", false, false, 100, "raw2", []byte(`{}`), "newer", now).
		AddRow("g-1", "s-1", "u-1", "up-1", "ats_check", "en", "premium", false, true, 80, "raw1", []byte(`{}`), "older", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("s-1", 20).
		WillReturnRows(rows)

	items, err := NewPGRepository(db).ListBySession(context.Background(), "s-1", 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].ID != "g-2" || items[1].Operation != registry.OpATSCheck {
		t.Fatalf("unexpected rows: %+v", items)
	}
}
