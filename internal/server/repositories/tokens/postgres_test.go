package tokens

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
	qInsert       = `(?s)^INSERT\s+INTO\s+tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+created_at\s*$`
	qFindOne      = `(?s)^SELECT\s+id,\s*token,\s*user_id,\s*kind,\s*expires_at,\s*blacklisted,\s*created_at\s+FROM\s+tokens\s+WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s+AND\s+blacklisted\s*=\s*false\s+LIMIT\s+1\s*$`
	qDeleteMany   = `(?s)^DELETE\s+FROM\s+tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s*$`
	qFindAndDel   = `(?s)^DELETE\s+FROM\s+tokens\s+WHERE\s+id\s*=\s*\(.*FOR\s+UPDATE\s+SKIP\s+LOCKED\s*\)\s*RETURNING\s+id,.*created_at\s*$`
	qBlacklistTok = `(?s)^UPDATE\s+tokens\s+SET\s+blacklisted\s*=\s*true\s+WHERE\s+token\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2\s*$`
)

var tokenCols = []string{"id", "token", "user_id", "kind", "expires_at", "blacklisted", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(15 * time.Minute)
	created := time.Now()
	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "tok123", "u1", "access", exp, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	tok := &models.Token{Token: "tok123", UserID: "u1", Kind: models.TokenAccess, ExpiresAt: exp}
	if err := repo.Create(context.Background(), tok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID == "" || !tok.CreatedAt.Equal(created) {
		t.Fatalf("row not filled: %+v", tok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UnknownKind(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	tok := &models.Token{Token: "tok123", UserID: "u1", Kind: "apiKey", ExpiresAt: time.Now()}
	if err := repo.Create(context.Background(), tok); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected sql: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Token{Token: "tok123", UserID: "u1", Kind: models.TokenRefresh})
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindOne_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute)
	mock.ExpectQuery(qFindOne).
		WithArgs("tok123", "refresh").
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow("id1", "tok123", "u1", "refresh", exp, false, time.Now()))

	got, err := repo.FindOne(context.Background(), "tok123", models.TokenRefresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || got.Kind != models.TokenRefresh || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindOne_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindOne).WithArgs("missing", "access").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOne(context.Background(), "missing", models.TokenAccess)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindOne_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindOne).WithArgs("tok", "access").WillReturnError(errors.New("boom"))

	_, err := repo.FindOne(context.Background(), "tok", models.TokenAccess)
	if err == nil || errors.Is(err, common.ErrorNotFound) || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteMany_ReportsCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDeleteMany).
		WithArgs("u1", "resetPassword").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteMany(context.Background(), "u1", models.TokenResetPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 deleted, got %d", n)
	}
}

func TestDeleteMany_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDeleteMany).WillReturnError(errors.New("boom"))

	if _, err := repo.DeleteMany(context.Background(), "u1", models.TokenVerifyEmail); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFindOneAndDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindAndDel).
		WithArgs("acc", "access").
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow("id1", "acc", "u1", "access", time.Now(), false, time.Now()))
	mock.ExpectQuery(qFindAndDel).
		WithArgs("acc", "access").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindOneAndDelete(context.Background(), "acc", models.TokenAccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "id1" || got.UserID != "u1" {
		t.Fatalf("unexpected row: %+v", got)
	}

	_, err = repo.FindOneAndDelete(context.Background(), "acc", models.TokenAccess)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("second delete: want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBlacklist(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qBlacklistTok).WithArgs("tok", "refresh").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qBlacklistTok).WithArgs("gone", "refresh").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Blacklist(context.Background(), "tok", models.TokenRefresh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Blacklist(context.Background(), "gone", models.TokenRefresh); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
