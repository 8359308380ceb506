package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
)

var teamCols = []string{
	"id", "name", "role", "label", "image_url", "mobile_image_url", "is_featured",
	"display_order", "created_at", "updated_at",
}

func sampleTeamRow() *sqlmock.Rows {
	return sqlmock.NewRows(teamCols).
		AddRow("tm-1", "Анна Иванова", "Главный архитектор", nil,
			"/uploads/anna.avif", nil, true, 0, time.Now(), time.Now())
}

func newTeamRepo(t *testing.T) (*TeamRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTeamRepository(db), mock
}

func TestTeamListAll(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM team_members.*ORDER BY display_order").
		WillReturnRows(sampleTeamRow())

	members, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1", len(members))
	}
	if !members[0].IsFeatured {
		t.Error("IsFeatured not scanned")
	}
}

func TestTeamCreate_AppendsAtEnd(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(display_order\)`).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec("INSERT INTO team_members").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := &models.TeamMember{Name: "Пётр Сидоров"}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Order != 2 {
		t.Errorf("Order = %d, want 2", m.Order)
	}
}

func TestTeamUpdate_Partial(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM team_members.*WHERE id").
		WithArgs("tm-1").
		WillReturnRows(sampleTeamRow())
	mock.ExpectExec("UPDATE team_members").
		WillReturnResult(sqlmock.NewResult(0, 1))

	featured := false
	m, err := repo.Update(context.Background(), "tm-1", &TeamMemberUpdate{
		Role:       strPtr(""), // clears
		IsFeatured: &featured,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Role != nil {
		t.Errorf("Role = %v, want nil", *m.Role)
	}
	if m.IsFeatured {
		t.Error("IsFeatured not updated")
	}
	if m.Name != "Анна Иванова" {
		t.Errorf("Name changed unexpectedly: %s", m.Name)
	}
}

func TestTeamUpdate_NotFound(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectQuery("SELECT.*FROM team_members.*WHERE id").
		WillReturnRows(sqlmock.NewRows(teamCols))

	m, err := repo.Update(context.Background(), "missing", &TeamMemberUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestTeamDelete_Resequences(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM team_members WHERE id").
		WithArgs("tm-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM team_members ORDER BY display_order").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("tm-2"))
	mock.ExpectExec("UPDATE team_members SET display_order").
		WithArgs(0, "tm-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	found, err := repo.Delete(context.Background(), "tm-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected found = true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTeamReorder_PartialListStaysGapFree(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE team_members SET display_order").
		WithArgs(0, "tm-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Members left out of the list are pushed behind it, keeping the
	// display order a gap-free sequence.
	mock.ExpectQuery("SELECT id FROM team_members WHERE id NOT IN").
		WithArgs("tm-3").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("tm-1").AddRow("tm-2"))
	mock.ExpectExec("UPDATE team_members SET display_order").
		WithArgs(1, "tm-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE team_members SET display_order").
		WithArgs(2, "tm-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Reorder(context.Background(), []string{"tm-3"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTeamReorder_UnknownID(t *testing.T) {
	repo, mock := newTeamRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE team_members SET display_order").
		WithArgs(0, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM team_members WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), []string{"ghost"})
	if !errors.Is(err, ErrUnknownSlug) {
		t.Errorf("err = %v, want ErrUnknownSlug", err)
	}
}
