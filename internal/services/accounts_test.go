package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/elencho/elencho/internal/auth"
	"github.com/elencho/elencho/internal/config"
	"github.com/elencho/elencho/internal/db/models"
	"github.com/elencho/elencho/internal/db/repositories"
)

func TestMain(m *testing.M) {
	os.Setenv("ELENCHO_JWT_SECRET", "test-jwt-secret-that-is-32-chars-!")
	os.Exit(m.Run())
}

// stubNotifier records dispatched notifications on buffered channels so tests
// can wait for the fire-and-forget goroutines.
type stubNotifier struct {
	logins  chan string
	resets  chan string
	invites chan [3]string
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{
		logins:  make(chan string, 1),
		resets:  make(chan string, 1),
		invites: make(chan [3]string, 1),
	}
}

func (n *stubNotifier) SendLoginAlert(email string)         { n.logins <- email }
func (n *stubNotifier) SendPasswordResetAlert(email string) { n.resets <- email }
func (n *stubNotifier) SendInvite(email, acceptLink, cancelLink string) {
	n.invites <- [3]string{email, acceptLink, cancelLink}
}

func awaitString(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not dispatched within timeout")
		return ""
	}
}

// testAuthCfg uses bcrypt's minimum cost so hashing does not dominate test time.
func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		InviteTTL:       7 * 24 * time.Hour,
		BcryptCost:      4,
	}
}

func newAccountService(t *testing.T) (*AccountService, sqlmock.Sqlmock, *stubNotifier, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	notifier := newStubNotifier()
	svc := NewAccountService(
		db,
		repositories.NewUserRepository(db),
		repositories.NewOrganisationRepository(db),
		repositories.NewMemberRepository(db),
		testAuthCfg(),
		notifier,
	)
	return svc, mock, notifier, db
}

var userCols = []string{"id", "email", "password_hash", "profile", "status", "settings", "created_at", "updated_at"}

func userRowWithPassword(t *testing.T, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return sqlmock.NewRows(userCols).
		AddRow("user-1", email, hash, []byte("{}"), models.StatusActive, []byte("{}"), time.Now(), time.Now())
}

// ---------------------------------------------------------------------------
// SignUp
// ---------------------------------------------------------------------------

func TestSignUp_ProvisionsEverythingInOneTransaction(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO organisations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO roles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO roles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO members").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.SignUp(context.Background(), "new@example.com", "password", "New Org")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserID == "" || result.OrganisationID == "" {
		t.Errorf("SignUp returned incomplete result: %+v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("taken@example.com").
		WillReturnRows(userRowWithPassword(t, "taken@example.com", "whatever"))

	_, err := svc.SignUp(context.Background(), "taken@example.com", "password", "Org")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestSignUp_RollsBackWhenProvisioningFails(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO organisations").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.SignUp(context.Background(), "new@example.com", "password", "Org")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction was not rolled back: %v", err)
	}
}

// ---------------------------------------------------------------------------
// SignIn
// ---------------------------------------------------------------------------

func TestSignIn_Success(t *testing.T) {
	svc, mock, notifier, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "alice@example.com", "correct-password"))

	pair, err := svc.SignIn(context.Background(), "alice@example.com", "correct-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("SignIn returned empty tokens")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", pair.TokenType)
	}

	// Access token must decode back to the account email.
	subject, err := auth.ParseSubjectToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not parse: %v", err)
	}
	if subject != "alice@example.com" {
		t.Errorf("token subject = %q, want alice@example.com", subject)
	}

	if got := awaitString(t, notifier.logins); got != "alice@example.com" {
		t.Errorf("login alert sent to %q, want alice@example.com", got)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "alice@example.com", "correct-password"))

	_, err := svc.SignIn(context.Background(), "alice@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignIn_UnknownEmailIndistinguishable(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := svc.SignIn(context.Background(), "ghost@example.com", "any")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials for unknown email", err)
	}
}

// ---------------------------------------------------------------------------
// ResetPassword
// ---------------------------------------------------------------------------

func TestResetPassword_Success(t *testing.T) {
	svc, mock, notifier, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "alice@example.com", "old-password"))
	mock.ExpectExec("UPDATE users.*SET password_hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.ResetPassword(context.Background(), "alice@example.com", "new-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := awaitString(t, notifier.resets); got != "alice@example.com" {
		t.Errorf("reset alert sent to %q, want alice@example.com", got)
	}
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	svc, mock, _, _ := newAccountService(t)

	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	err := svc.ResetPassword(context.Background(), "ghost@example.com", "new-password")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
