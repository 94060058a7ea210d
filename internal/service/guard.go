package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/hash"
	"github.com/jmsantos/tindahan/internal/logging"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/repo"
	"github.com/jmsantos/tindahan/internal/tokens"
)

const (
	maxLoginAttempts = 5
	lockDuration     = 2 * time.Hour
	minPasswordLen   = 6
)

// Guard gates access to the system: it verifies identities, maintains
// the brute-force lockout counters and issues session tokens.
type Guard struct {
	Repo   *repo.GormRepo
	Hasher hash.Hasher
	Signer tokens.Signer
	Now    func() time.Time
}

func NewGuard(r *repo.GormRepo, h hash.Hasher, s tokens.Signer) *Guard {
	return &Guard{Repo: r, Hasher: h, Signer: s, Now: time.Now}
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  models.Address
}

func (g *Guard) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "guard.register")

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return "", nil, fmt.Errorf("name, email and password are required: %w", apperr.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return "", nil, fmt.Errorf("password must be at least %d characters long: %w", minPasswordLen, apperr.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := g.Repo.FindUserByEmail(ctx, email, false)
	switch {
	case err == nil:
		return "", nil, fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		l.Error("register_error", "error", err)
		return "", nil, err
	}

	pwHash, err := g.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return "", nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: pwHash,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         models.RoleCustomer,
		Status:       models.StatusActive,
	}
	if err := g.Repo.CreateUser(ctx, user); err != nil {
		l.Error("register_error", "error", err)
		return "", nil, err
	}

	token, err := g.Signer.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("register_error", "reason", "cannot sign token", "error", err)
		return "", nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	return token, user, nil
}

// defaultNewUserPassword is the fallback credential for accounts an
// admin provisions without a password. The user is expected to change
// it on first login.
const defaultNewUserPassword = "default123"

// AdminCreateInput is the admin provisioning form. Unlike RegisterInput
// the caller picks role and status.
type AdminCreateInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
	Status   string
	Address  models.Address
}

func (g *Guard) AdminCreate(ctx context.Context, in AdminCreateInput) (string, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "guard.admin_create")

	if in.Name == "" || in.Email == "" {
		return "", nil, fmt.Errorf("name and email are required: %w", apperr.ErrValidation)
	}

	password := in.Password
	if password == "" {
		password = defaultNewUserPassword
	}
	if len(password) < minPasswordLen {
		return "", nil, fmt.Errorf("password must be at least %d characters long: %w", minPasswordLen, apperr.ErrValidation)
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return "", nil, fmt.Errorf("unknown role %q: %w", in.Role, apperr.ErrValidation)
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}
	if !models.ValidStatus(status) {
		return "", nil, fmt.Errorf("unknown status %q: %w", in.Status, apperr.ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := g.Repo.FindUserByEmail(ctx, email, false)
	switch {
	case err == nil:
		return "", nil, fmt.Errorf("email already registered: %w", apperr.ErrConflict)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		l.Error("admin_create_error", "error", err)
		return "", nil, err
	}

	pwHash, err := g.Hasher.Hash(password)
	if err != nil {
		l.Error("admin_create_error", "reason", "cannot hash the password", "error", err)
		return "", nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: pwHash,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         role,
		Status:       status,
	}
	if err := g.Repo.CreateUser(ctx, user); err != nil {
		l.Error("admin_create_error", "error", err)
		return "", nil, err
	}

	token, err := g.Signer.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("admin_create_error", "reason", "cannot sign token", "error", err)
		return "", nil, err
	}

	l.Info("user created by admin", "user_id", user.ID, "role", user.Role)
	return token, user, nil
}

// Login verifies the credentials and maintains the lockout state
// machine. Unknown email and wrong password produce the same message so
// the response does not leak which addresses are registered.
func (g *Guard) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "guard.login")

	if email == "" || password == "" {
		return "", nil, fmt.Errorf("email and password are required: %w", apperr.ErrValidation)
	}

	user, err := g.Repo.FindUserByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuth)
		}
		l.Error("login_error", "error", err)
		return "", nil, err
	}

	now := g.now()

	if user.IsLocked(now) {
		return "", nil, fmt.Errorf("account temporarily locked due to too many failed login attempts: %w", apperr.ErrLocked)
	}

	if user.Status != models.StatusActive {
		return "", nil, fmt.Errorf("account is not active: %w", apperr.ErrForbidden)
	}

	if !g.Hasher.Verify(user.PasswordHash, password) {
		if err := g.Repo.RecordFailedLogin(ctx, user.ID, now, maxLoginAttempts, lockDuration); err != nil {
			l.Error("login_error", "reason", "cannot record failed attempt", "error", err)
		}
		return "", nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuth)
	}

	if err := g.Repo.ResetLoginAttempts(ctx, user.ID, now); err != nil {
		l.Error("login_error", "reason", "cannot reset attempts", "error", err)
		return "", nil, err
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now

	token, err := g.Signer.Issue(user.ID, user.Role)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign token", "error", err)
		return "", nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// VerifyToken checks the signature and validity window, then confirms
// the referenced account still exists and is active.
func (g *Guard) VerifyToken(ctx context.Context, raw string) (tokens.Identity, error) {
	claims, err := g.Signer.Verify(raw)
	if err != nil {
		return tokens.Identity{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return tokens.Identity{}, fmt.Errorf("invalid token subject: %w", apperr.ErrAuth)
	}

	user, err := g.Repo.FindUserByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tokens.Identity{}, fmt.Errorf("token is no longer valid: %w", apperr.ErrAuth)
		}
		return tokens.Identity{}, err
	}

	if user.Status != models.StatusActive {
		return tokens.Identity{}, fmt.Errorf("account is not active: %w", apperr.ErrForbidden)
	}

	return tokens.Identity{UserID: user.ID, Role: user.Role}, nil
}

func (g *Guard) RequireRole(identity tokens.Identity, allowed ...string) error {
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return fmt.Errorf("admin privileges required: %w", apperr.ErrForbidden)
}

// ChangePassword swaps the credential after re-verifying the current
// one. A wrong current password is a 400, not a 401: the caller is
// already authenticated.
func (g *Guard) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	l := logging.FromContext(ctx).With("svc", "guard.change_password")

	if current == "" || next == "" {
		return fmt.Errorf("current password and new password are required: %w", apperr.ErrValidation)
	}
	if len(next) < minPasswordLen {
		return fmt.Errorf("new password must be at least %d characters long: %w", minPasswordLen, apperr.ErrValidation)
	}

	user, err := g.Repo.FindUserByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return err
	}

	if !g.Hasher.Verify(user.PasswordHash, current) {
		return fmt.Errorf("current password is incorrect: %w", apperr.ErrValidation)
	}

	pwHash, err := g.Hasher.Hash(next)
	if err != nil {
		l.Error("change_password_error", "error", err)
		return err
	}

	return g.Repo.UpdateUserFields(ctx, userID, map[string]any{"password_hash": pwHash})
}
