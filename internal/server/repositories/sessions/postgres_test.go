package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

const (
	qInsertSession = `(?s)^INSERT\s+INTO\s+sessions\s*\(id,\s*user_id,\s*access_token,\s*refresh_token,\s*is_valid,\s*user_agent,\s*ip\)\s*VALUES.*RETURNING\s+created_at,\s*updated_at\s*$`
	qByAccess      = `(?s)^UPDATE\s+sessions\s+SET\s+access_token\s*=\s*COALESCE\(\$1,\s*access_token\).*WHERE\s+access_token\s*=\s*\$3.*RETURNING\s+id,.*$`
	qByRefresh     = `(?s)^UPDATE\s+sessions\s+SET\s+access_token\s*=\s*COALESCE\(\$1,\s*access_token\).*WHERE\s+refresh_token\s*=\s*\$3.*RETURNING\s+id,.*$`
)

var sessionCols = []string{"id", "user_id", "access_token", "refresh_token", "is_valid", "user_agent", "ip", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgresCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qInsertSession).
		WithArgs(sqlmock.AnyArg(), "u1", "acc", "ref", true, "curl/8", "10.0.0.1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	s := &models.Session{UserID: "u1", AccessToken: "acc", RefreshToken: "ref", IsValid: true, UserAgent: "curl/8", IP: "10.0.0.1"}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if s.ID == "" || !s.CreatedAt.Equal(now) {
		t.Fatalf("row not filled: %+v", s)
	}
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertSession).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Session{UserID: "u1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresFindOneAndUpdate_ByAccessInvalidates(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qByAccess).
		WithArgs(nil, false, "acc").
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow("s1", "u1", "acc", "ref", false, "", "", now, now))

	invalid := false
	got, err := repo.FindOneAndUpdate(context.Background(), ByAccessToken("acc"), Patch{IsValid: &invalid})
	if err != nil {
		t.Fatalf("FindOneAndUpdate error: %v", err)
	}
	if got.ID != "s1" || got.IsValid {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresFindOneAndUpdate_ByRefreshSetsAccess(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qByRefresh).
		WithArgs("acc2", nil, "ref").
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow("s1", "u1", "acc2", "ref", true, "", "", now, now))

	newAccess := "acc2"
	got, err := repo.FindOneAndUpdate(context.Background(), ByRefreshToken("ref"), Patch{AccessToken: &newAccess})
	if err != nil {
		t.Fatalf("FindOneAndUpdate error: %v", err)
	}
	if got.AccessToken != "acc2" {
		t.Fatalf("access token not updated: %+v", got)
	}
}

func TestPostgresFindOneAndUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByAccess).WillReturnError(sql.ErrNoRows)

	invalid := false
	_, err := repo.FindOneAndUpdate(context.Background(), ByAccessToken("gone"), Patch{IsValid: &invalid})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresFindOneAndUpdate_EmptyMatcher(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.FindOneAndUpdate(context.Background(), Matcher{}, Patch{})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}
