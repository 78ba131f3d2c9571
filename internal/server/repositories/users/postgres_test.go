package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

const (
	testUserID  = "0b9c3f5e-2f0e-4a3f-9a49-6a3e0f1f2d11"
	qInsertUser = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*role,\s*is_active,\s*is_email_verified\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+created_at,\s*updated_at\s*$`
	qSelectByEm = `(?s)^SELECT\s+id,\s*name,\s*email,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	qSelectByID = `(?s)^SELECT\s+id,\s*name,\s*email,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	qUpdateUser = `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,.*WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at\s*$`
	qEmailTaken = `(?s)^SELECT\s+EXISTS\s*\(.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1.*\)\s*$`
	qSetRole    = `(?s)^UPDATE\s+users\s+SET\s+role\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1$`
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "is_active", "is_email_verified", "created_at", "updated_at"}

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

	now := time.Now()
	mock.ExpectQuery(qInsertUser).
		WithArgs(sqlmock.AnyArg(), "Alice", "alice@example.com", "$argon2id$hash", "user", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "$argon2id$hash", Role: "user", IsActive: true}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	if !errors.Is(err, common.ErrorEmailTaken) {
		t.Fatalf("want common.ErrorEmailTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsertUser).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qSelectByEm).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(testUserID, "Alice", "alice@example.com", "h", "admin", true, true, now, now))

	got, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != testUserID || got.Role != "admin" || !got.IsEmailVerified {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelectByEm).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_MalformedIDSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelectByID).WithArgs(testUserID).WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByID(context.Background(), testUserID)
	if err == nil || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qUpdateUser).
		WithArgs(testUserID, "Alice", "alice@example.com", "h2", "user", false, true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &models.User{ID: testUserID, Name: "Alice", Email: "alice@example.com", PasswordHash: "h2", Role: "user", IsActive: false, IsEmailVerified: true}
	if err := repo.Save(context.Background(), u); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !u.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at not applied: %v", u.UpdatedAt)
	}
}

func TestSave_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpdateUser).WillReturnError(sql.ErrNoRows)

	err := repo.Save(context.Background(), &models.User{ID: testUserID})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestIsEmailTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qEmailTaken).
		WithArgs("alice@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(qEmailTaken).
		WithArgs("alice@example.com", testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.IsEmailTaken(context.Background(), "alice@example.com", "")
	if err != nil || !taken {
		t.Fatalf("want taken, got %v err=%v", taken, err)
	}

	taken, err = repo.IsEmailTaken(context.Background(), "alice@example.com", testUserID)
	if err != nil || taken {
		t.Fatalf("want not taken when excluding owner, got %v err=%v", taken, err)
	}
}

func TestSetRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qSetRole).WithArgs(testUserID, "admin").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qSetRole).WithArgs(testUserID, "admin").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetRole(context.Background(), testUserID, "admin"); err != nil {
		t.Fatalf("SetRole error: %v", err)
	}
	if err := repo.SetRole(context.Background(), testUserID, "admin"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound on zero rows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
