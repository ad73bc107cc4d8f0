package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// tokenClaims is the JWT payload of a session token.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements the auth gateway: signup, login, logout, profile and user administration.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	activity  ports.ActivityPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	activity ports.ActivityPublisher,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		activity:  activity,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates the account and opens its first session. The returned user carries the token.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name must not be blank", domain.ErrInvalidInput)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !role.SelfAssignable() {
		return nil, fmt.Errorf("%w: %s cannot be self-assigned", domain.ErrInvalidRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.openSession(ctx, created); err != nil {
		// The account must not outlive a failed first session.
		if delErr := s.users.Delete(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", created.ID).Msg("failed to roll back user after session error")
		}
		return nil, err
	}

	s.publish(domain.ActionSignup, created.ID, "", created.Role)
	s.log.Info().Str("user_id", created.ID).Str("role", created.Role.String()).Msg("user signed up")
	return created, nil
}

// Login verifies the credential hash and issues a fresh token, invalidating any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.openSession(ctx, user); err != nil {
		return nil, err
	}

	s.publish(domain.ActionLogin, user.ID, "", user.Role)
	return user, nil
}

// Logout revokes the user's session. Failures are reported but callers treat logout as done.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	var errs []error
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("revoke session: %w", err))
	}
	if err := s.users.SetToken(ctx, userID, ""); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		errs = append(errs, fmt.Errorf("clear token: %w", err))
	}

	s.publish(domain.ActionLogout, userID, "", "")
	return errors.Join(errs...)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile replaces the caller's profile picture. Role and token are left untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, profilePic string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	updated, err := s.users.UpdateProfilePic(ctx, userID, profilePic, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(domain.ActionProfileUpdated, userID, "", updated.Role)
	return updated, nil
}

// ListByRole returns the users holding role, without their tokens. An empty result is not an error.
func (s *AuthService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// AssignRole changes a user's role and revokes their session so the next token carries it.
func (s *AuthService) AssignRole(ctx context.Context, actorID, targetID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	updated, err := s.users.UpdateRole(ctx, targetID, role, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Revoke(ctx, targetID); err != nil {
		s.log.Warn().Err(err).Str("user_id", targetID).Msg("failed to revoke session after role change")
	}

	s.publish(domain.ActionRoleAssigned, actorID, targetID, role)
	s.log.Info().Str("actor_id", actorID).Str("user_id", targetID).Str("role", role.String()).Msg("role assigned")
	return updated.Public(), nil
}

// RemoveUser deletes targetID. Admins cannot remove their own account.
func (s *AuthService) RemoveUser(ctx context.Context, actorID, targetID string) error {
	if targetID == "" {
		return domain.ErrUserNotFound
	}
	if actorID == targetID {
		return fmt.Errorf("%w: cannot remove own account", domain.ErrForbidden)
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, targetID); err != nil {
		s.log.Warn().Err(err).Str("user_id", targetID).Msg("failed to revoke session of removed user")
	}

	s.publish(domain.ActionUserRemoved, actorID, targetID, "")
	s.log.Info().Str("actor_id", actorID).Str("user_id", targetID).Msg("user removed")
	return nil
}

// EnsureAdmin makes sure an admin account exists for email. A missing account
// is created; an existing non-admin account is promoted. It reports whether
// anything changed.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, fmt.Errorf("admin bootstrap: email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.Role == domain.RoleAdmin:
		return existing.Public(), false, nil
	case err == nil:
		promoted, err := s.users.UpdateRole(ctx, existing.ID, domain.RoleAdmin, s.now())
		if err != nil {
			return nil, false, fmt.Errorf("admin bootstrap promote: %w", err)
		}
		if err := s.sessions.Revoke(ctx, promoted.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", promoted.ID).Msg("failed to revoke session after promotion")
		}
		s.log.Info().Str("user_id", promoted.ID).Msg("existing user promoted to admin")
		return promoted.Public(), true, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("admin bootstrap lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("admin bootstrap hash password: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, false, fmt.Errorf("admin bootstrap create: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("admin account created")
	return created.Public(), true, nil
}

// Verify checks signature and expiry, then that the token is still the user's active session.
func (s *AuthService) Verify(ctx context.Context, token string) (*ports.Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	active, err := s.sessions.IsActive(ctx, claims.Subject, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if !active {
		return nil, domain.ErrSessionRevoked
	}

	out := &ports.Claims{
		UserID:  claims.Subject,
		Role:    domain.Role(claims.Role),
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// openSession mints a new token for user, registers it as the only active session and
// stores it on the user record.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) error {
	tokenID := uuid.NewString()
	token, err := s.generateToken(user, tokenID)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Activate(ctx, user.ID, tokenID, s.tokenTTL); err != nil {
		return fmt.Errorf("activate session: %w", err)
	}
	if err := s.users.SetToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	user.Token = token
	return nil
}

func (s *AuthService) generateToken(user *domain.User, tokenID string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

func (s *AuthService) publish(action domain.ActivityAction, actorID, targetID string, role domain.Role) {
	if s.activity == nil {
		return
	}
	s.activity.Publish(domain.Activity{
		Action:     action,
		ActorID:    actorID,
		TargetID:   targetID,
		Role:       role,
		OccurredAt: s.now(),
	})
}
