package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	accountdomain "reportdesk/backend/internal/account/domain"
	"reportdesk/backend/internal/security"
	sessiondomain "reportdesk/backend/internal/session/domain"
)

// AccountRepo is the minimal account repository needed by the auth service.
type AccountRepo interface {
	GetByID(ctx context.Context, id string) (*accountdomain.Account, error)
	GetByUsername(ctx context.Context, username string) (*accountdomain.Account, error)
	ListAll(ctx context.Context) ([]*accountdomain.Account, error)
	Create(ctx context.Context, a *accountdomain.Account) error
	Update(ctx context.Context, a *accountdomain.Account) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (*accountdomain.Account, error)
	ResetFailedAttempts(ctx context.Context, id string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, tokenHash, replacedByHash string, revokedAt time.Time) (bool, error)
	RevokeAllByAccount(ctx context.Context, accountID string, revokedAt time.Time) error
}

// Auditor records security-relevant events. Implementations must not fail the
// calling operation; recording is best-effort.
type Auditor interface {
	Record(ctx context.Context, accountID, action, detail string)
}

// LoginParams carries one login attempt. IPAddress and UserAgent are
// informational only and never affect the decision.
type LoginParams struct {
	Username   string
	Password   string
	RememberMe bool
	IPAddress  string
	UserAgent  string
}

// LoginResult is the outcome of Login or Refresh: a short-lived bearer access
// token plus a persisted, revocable refresh secret.
type LoginResult struct {
	AccessToken      string
	TokenType        string // always "Bearer"
	ExpiresIn        int64  // access token lifetime in seconds
	RefreshSecret    string
	RefreshExpiresAt time.Time
	Account          accountdomain.View
}

// AuthService owns the lockout and rotation policies. All methods are safe
// for concurrent use; same-account and same-secret races are resolved by the
// stores' atomic single-row updates.
type AuthService struct {
	accounts        AccountRepo
	sessions        SessionRepo
	hasher          *security.Hasher
	tokens          *security.TokenProvider
	refreshTTL      time.Duration
	maxFailedLogins int
	lockoutDuration time.Duration
	audit           Auditor
}

// NewAuthService returns an AuthService with the given dependencies. audit
// may be nil.
func NewAuthService(
	accounts AccountRepo,
	sessions SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
	maxFailedLogins int,
	lockoutDuration time.Duration,
	audit Auditor,
) *AuthService {
	return &AuthService{
		accounts:        accounts,
		sessions:        sessions,
		hasher:          hasher,
		tokens:          tokens,
		refreshTTL:      refreshTTL,
		maxFailedLogins: maxFailedLogins,
		lockoutDuration: lockoutDuration,
		audit:           audit,
	}
}

func (s *AuthService) record(ctx context.Context, accountID, action, detail string) {
	if s.audit != nil {
		s.audit.Record(ctx, accountID, action, detail)
	}
}

// Login authenticates username/password, applying the lockout policy, and on
// success issues an access token and a fresh refresh session. An unknown
// username fails exactly like a first wrong password. Empty username or
// password is deliberately reported as invalid credentials too, not as a
// distinct validation failure: every non-success path a caller can trigger
// with a credential pair looks the same, so response shape reveals nothing
// about which part was wrong. No failed-attempt counter is touched for the
// empty case.
func (s *AuthService) Login(ctx context.Context, p LoginParams) (*LoginResult, error) {
	username := strings.TrimSpace(p.Username)
	if username == "" || p.Password == "" {
		return nil, &InvalidCredentialsError{Remaining: s.maxFailedLogins - 1}
	}
	acct, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeFailure(err)
	}
	if acct == nil {
		return nil, &InvalidCredentialsError{Remaining: s.maxFailedLogins - 1}
	}
	now := time.Now().UTC()
	if acct.LockedOut(now) {
		return nil, &LockedError{Until: *acct.LockoutUntil}
	}
	if acct.ClearExpiredLockout(now) {
		// Expired lockout: this attempt re-enters the normal flow with a
		// fresh failure window.
		if err := s.accounts.ResetFailedAttempts(ctx, acct.ID); err != nil {
			return nil, storeFailure(err)
		}
	}
	if !acct.IsActive {
		return nil, ErrAccountDisabled
	}
	if !s.hasher.Verify(p.Password, acct.PasswordHash) {
		updated, err := s.accounts.RecordFailedAttempt(ctx, acct.ID, s.maxFailedLogins, now.Add(s.lockoutDuration))
		if err != nil {
			return nil, storeFailure(err)
		}
		if updated == nil {
			return nil, &InvalidCredentialsError{Remaining: s.maxFailedLogins - 1}
		}
		if updated.LockedOut(now) {
			s.record(ctx, acct.ID, "account.locked", "failed login threshold reached")
			return nil, &LockedError{Until: *updated.LockoutUntil}
		}
		s.record(ctx, acct.ID, "login.failed", "wrong password")
		return nil, &InvalidCredentialsError{Remaining: s.maxFailedLogins - updated.FailedLoginAttempts}
	}
	if acct.FailedLoginAttempts > 0 || acct.LockoutUntil != nil {
		if err := s.accounts.ResetFailedAttempts(ctx, acct.ID); err != nil {
			return nil, storeFailure(err)
		}
	}
	ttl := s.refreshTTL
	if p.RememberMe {
		ttl *= 2
	}
	res, err := s.issueSession(ctx, acct, ttl, p.IPAddress, p.UserAgent)
	if err != nil {
		return nil, err
	}
	s.record(ctx, acct.ID, "login.success", "")
	return res, nil
}

// Refresh redeems a refresh secret for a new access token and a rotated
// refresh secret. The old session is revoked with a pointer to its successor;
// exactly one concurrent caller per secret can win the rotation. Presenting
// an already-revoked secret is treated as reuse and revokes every session for
// the account.
func (s *AuthService) Refresh(ctx context.Context, refreshSecret, ipAddress, userAgent string) (*LoginResult, error) {
	if refreshSecret == "" {
		return nil, ErrInvalidToken
	}
	hash := security.HashRefreshSecret(refreshSecret)
	sess, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, storeFailure(err)
	}
	if sess == nil {
		return nil, ErrInvalidToken
	}
	now := time.Now().UTC()
	if sess.Expired(now) {
		return nil, ErrTokenExpired
	}
	if sess.Revoked() {
		// Reuse of a rotated or logged-out secret signals possible theft.
		if err := s.sessions.RevokeAllByAccount(ctx, sess.AccountID, now); err != nil {
			return nil, storeFailure(err)
		}
		s.record(ctx, sess.AccountID, "session.reuse_detected", "all sessions revoked")
		return nil, ErrTokenRevoked
	}
	acct, err := s.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if acct == nil {
		return nil, ErrInvalidToken
	}
	if !acct.IsActive {
		return nil, ErrAccountDisabled
	}
	newSecret, err := security.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	newHash := security.HashRefreshSecret(newSecret)
	won, err := s.sessions.Revoke(ctx, hash, newHash, now)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !won {
		// Another caller rotated this secret between our read and the
		// conditional revoke.
		return nil, ErrTokenRevoked
	}
	accessToken, _, err := s.tokens.IssueAccess(acct.ID, string(acct.Role))
	if err != nil {
		return nil, err
	}
	// The child inherits the parent's window length so an extended session
	// stays extended across rotations.
	child := &sessiondomain.Session{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		TokenHash: newHash,
		ExpiresAt: now.Add(sess.ExpiresAt.Sub(sess.CreatedAt)),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, child); err != nil {
		return nil, storeFailure(err)
	}
	return &LoginResult{
		AccessToken:      accessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.tokens.AccessTTL() / time.Second),
		RefreshSecret:    newSecret,
		RefreshExpiresAt: child.ExpiresAt,
		Account:          acct.PublicView(),
	}, nil
}

// Revoke ends the session for the refresh secret. Absent, expired, or
// already-revoked secrets still return success: logout never fails visibly
// just because the token was already gone.
func (s *AuthService) Revoke(ctx context.Context, refreshSecret string) error {
	if refreshSecret == "" {
		return nil
	}
	if _, err := s.sessions.Revoke(ctx, security.HashRefreshSecret(refreshSecret), "", time.Now().UTC()); err != nil {
		return storeFailure(err)
	}
	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session for the account so all outstanding refresh secrets
// die with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return storeFailure(err)
	}
	if acct == nil {
		return ErrNotFound
	}
	if !s.hasher.Verify(currentPassword, acct.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	acct.PasswordHash = hashed
	acct.UpdatedAt = now
	if err := s.accounts.Update(ctx, acct); err != nil {
		return storeFailure(err)
	}
	if err := s.sessions.RevokeAllByAccount(ctx, accountID, now); err != nil {
		return storeFailure(err)
	}
	s.record(ctx, accountID, "password.changed", "all sessions revoked")
	return nil
}

// GetCurrentUser returns the public view of the account. Pure read.
func (s *AuthService) GetCurrentUser(ctx context.Context, accountID string) (*accountdomain.View, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	v := acct.PublicView()
	return &v, nil
}

// Register creates a new active account. Username and normalized email must
// be unique.
func (s *AuthService) Register(ctx context.Context, username, email, password string, role accountdomain.Role, employeeID string) (*accountdomain.View, error) {
	username = strings.TrimSpace(username)
	email = accountdomain.NormalizeEmail(email)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errors.New("invalid role")
	}
	taken, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return nil, storeFailure(err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = s.accounts.EmailExists(ctx, email)
	if err != nil {
		return nil, storeFailure(err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	acct := &accountdomain.Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		EmployeeID:   strings.TrimSpace(employeeID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, storeFailure(err)
	}
	s.record(ctx, acct.ID, "account.registered", "role "+string(role))
	v := acct.PublicView()
	return &v, nil
}

// ListAccounts returns public views of every account.
func (s *AuthService) ListAccounts(ctx context.Context) ([]accountdomain.View, error) {
	all, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	out := make([]accountdomain.View, len(all))
	for i, a := range all {
		out[i] = a.PublicView()
	}
	return out, nil
}

// SetAccountActive enables or disables an account. Disabling revokes every
// session for it.
func (s *AuthService) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return storeFailure(err)
	}
	if acct == nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	acct.IsActive = active
	acct.UpdatedAt = now
	if err := s.accounts.Update(ctx, acct); err != nil {
		return storeFailure(err)
	}
	if !active {
		if err := s.sessions.RevokeAllByAccount(ctx, accountID, now); err != nil {
			return storeFailure(err)
		}
		s.record(ctx, accountID, "account.disabled", "all sessions revoked")
	}
	return nil
}

// SetAccountRole changes an account's role.
func (s *AuthService) SetAccountRole(ctx context.Context, accountID string, role accountdomain.Role) error {
	if !role.Valid() {
		return errors.New("invalid role")
	}
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return storeFailure(err)
	}
	if acct == nil {
		return ErrNotFound
	}
	acct.Role = role
	acct.UpdatedAt = time.Now().UTC()
	if err := s.accounts.Update(ctx, acct); err != nil {
		return storeFailure(err)
	}
	s.record(ctx, accountID, "account.role_changed", string(role))
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, acct *accountdomain.Account, refreshTTL time.Duration, ipAddress, userAgent string) (*LoginResult, error) {
	secret, err := security.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	accessToken, _, err := s.tokens.IssueAccess(acct.ID, string(acct.Role))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		TokenHash: security.HashRefreshSecret(secret),
		ExpiresAt: now.Add(refreshTTL),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, storeFailure(err)
	}
	return &LoginResult{
		AccessToken:      accessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.tokens.AccessTTL() / time.Second),
		RefreshSecret:    secret,
		RefreshExpiresAt: sess.ExpiresAt,
		Account:          acct.PublicView(),
	}, nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 64 {
		return errors.New("username must be 3-64 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
