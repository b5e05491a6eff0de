package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"rescuetrack/internal/caching"
	"rescuetrack/internal/common"
	"rescuetrack/internal/config"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "rescuetrack-auth"
	TokenAudience = "rescuetrack-api"
)

// AuthService handles signup, login and session backed access tokens
type AuthService interface {
	SignupAdmin(ctx context.Context, req SignupAdminRequest) (*models.TokenResponse, error)
	SignupUser(ctx context.Context, req SignupUserRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, sessionToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, principal models.Principal) error

	// ResolvePrincipal checks the session behind a verified access token.
	ResolvePrincipal(ctx context.Context, claims *AccessClaims) (models.Principal, error)
	// ResolveExternal maps an identity provider e-mail claim to a staff member.
	ResolveExternal(ctx context.Context, email string) (models.Principal, error)
	Me(ctx context.Context, principal models.Principal) (*models.Staff, error)
}

// AccessClaims represents the JWT claims of an access token. Subject is the staff id.
type AccessClaims struct {
	OrganizationID string `json:"org"`
	Role           string `json:"role"`
	SessionID      string `json:"sid"`
	Email          string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type SignupAdminRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	OrganizationName    string `json:"organization_name"`
	OrganizationAddress string `json:"organization_address"`
}

type SignupUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type authService struct {
	staffRepo   repositories.StaffRepository
	orgRepo     repositories.OrganizationRepository
	inviteRepo  repositories.InviteRepository
	sessionRepo repositories.SessionRepository
	cacheSvc    caching.CacheService
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         config.AuthConfig
	jwtSecret   []byte
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	staffRepo repositories.StaffRepository,
	orgRepo repositories.OrganizationRepository,
	inviteRepo repositories.InviteRepository,
	sessionRepo repositories.SessionRepository,
	cacheSvc caching.CacheService,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthService {
	return &authService{
		staffRepo:   staffRepo,
		orgRepo:     orgRepo,
		inviteRepo:  inviteRepo,
		sessionRepo: sessionRepo,
		cacheSvc:    cacheSvc,
		metrics:     m,
		logger:      logger,
		cfg:         cfg,
		jwtSecret:   []byte(cfg.JWTSecret),
		now:         time.Now,
	}
}

// dummyHash keeps the response time of unknown e-mails close to a real bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rescuetrack-dummy-password"), bcrypt.DefaultCost)

func validateCredentials(name, email, password string) error {
	if err := common.ValidateMinLength(name, "name", 2); err != nil {
		return invalid("name", err)
	}
	if err := common.ValidateEmail(email); err != nil {
		return invalid("email", err)
	}
	if len(password) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}

func (s *authService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.staffRepo.GetByEmail(ctx, email)
	if err == nil {
		return ErrEmailInUse
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) SignupAdmin(ctx context.Context, req SignupAdminRequest) (*models.TokenResponse, error) {
	if err := validateCredentials(req.Name, req.Email, req.Password); err != nil {
		return nil, err
	}
	if err := common.ValidateMinLength(req.OrganizationName, "organization_name", 2); err != nil {
		return nil, invalid("organization_name", err)
	}
	if err := common.ValidateMinLength(req.OrganizationAddress, "organization_address", 5); err != nil {
		return nil, invalid("organization_address", err)
	}

	email := common.NormalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	org := &models.Organization{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.OrganizationName),
		Address:    strings.TrimSpace(req.OrganizationAddress),
		Email:      email,
		InviteCode: GenerateInviteCode(),
	}
	admin := &models.Staff{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleAdmin,
	}

	if err := s.orgRepo.CreateWithAdmin(ctx, org, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Info("organization created", zap.String("organization_id", org.ID.String()), zap.String("admin_id", admin.ID.String()))
	return s.openSession(ctx, admin)
}

func (s *authService) SignupUser(ctx context.Context, req SignupUserRequest) (*models.TokenResponse, error) {
	if err := validateCredentials(req.Name, req.Email, req.Password); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if err := common.ValidateMinLength(code, "invite_code", 4); err != nil {
		return nil, invalid("invite_code", err)
	}

	email := common.NormalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	staff := &models.Staff{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	invite, err := s.inviteRepo.GetByCode(ctx, code)
	switch {
	case err == nil:
		if !invite.Usable(s.now()) {
			return nil, ErrInviteUnusable
		}
		if common.NormalizeEmail(invite.Email) != email {
			return nil, ErrInviteEmailMismatch
		}
		staff.OrganizationID = invite.OrganizationID
		staff.Role = invite.Role
		if err := s.inviteRepo.Accept(ctx, invite, staff); err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return nil, ErrInviteUnusable
			case errors.Is(err, repositories.ErrDuplicate):
				return nil, ErrEmailInUse
			}
			return nil, fmt.Errorf("failed to accept invite: %w", err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		org, err := s.orgRepo.GetByInviteCode(ctx, code)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidInviteCode
		}
		if err != nil {
			return nil, err
		}
		staff.OrganizationID = org.ID
		if err := s.staffRepo.Create(ctx, staff); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, ErrEmailInUse
			}
			return nil, fmt.Errorf("failed to create staff: %w", err)
		}
	default:
		return nil, err
	}

	s.logger.Info("staff joined organization",
		zap.String("organization_id", staff.OrganizationID.String()),
		zap.String("staff_id", staff.ID.String()),
		zap.String("role", staff.Role))
	return s.openSession(ctx, staff)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	email = common.NormalizeEmail(email)
	rateKey := "login:" + email

	limited, err := s.cacheSvc.IsRateLimited(ctx, rateKey, s.cfg.LoginAttempts, s.cfg.LoginWindow.Duration)
	if err != nil {
		s.logger.Warn("login rate limiter unavailable", zap.Error(err))
	}
	if limited {
		s.metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
		return nil, ErrTooManyAttempts
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.cacheSvc.ResetRateLimit(ctx, rateKey); err != nil {
		s.logger.Debug("failed to reset login rate limit", zap.Error(err))
	}
	s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.openSession(ctx, staff)
}

func (s *authService) Refresh(ctx context.Context, sessionToken string) (*models.TokenResponse, error) {
	if sessionToken == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessionRepo.GetByTokenHash(ctx, hashToken(sessionToken))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	staff, err := s.staffRepo.GetByID(ctx, session.StaffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	resp, err := s.issueAccessToken(staff, session)
	if err != nil {
		return nil, err
	}
	resp.SessionToken = sessionToken
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, principal models.Principal) error {
	if principal.SessionID == uuid.Nil {
		return nil
	}
	if err := s.cacheSvc.DeleteSession(ctx, principal.SessionID); err != nil {
		s.logger.Warn("failed to evict cached session", zap.Error(err))
	}
	return s.sessionRepo.Delete(ctx, principal.SessionID)
}

func (s *authService) ResolvePrincipal(ctx context.Context, claims *AccessClaims) (models.Principal, error) {
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return models.Principal{}, ErrUnauthenticated
	}

	session, err := s.cacheSvc.GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Debug("session cache lookup failed", zap.Error(err))
	}
	if session == nil {
		session, err = s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return models.Principal{}, ErrUnauthenticated
			}
			return models.Principal{}, err
		}
		if cacheErr := s.cacheSvc.SetSession(ctx, session); cacheErr != nil {
			s.logger.Debug("failed to cache session", zap.Error(cacheErr))
		}
	}
	if session.Expired(s.now()) {
		return models.Principal{}, ErrSessionExpired
	}

	staff, err := s.staffRepo.GetByID(ctx, session.StaffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Principal{}, ErrUnauthenticated
		}
		return models.Principal{}, err
	}
	return principalFor(staff, session.ID), nil
}

func (s *authService) ResolveExternal(ctx context.Context, email string) (models.Principal, error) {
	if email == "" {
		return models.Principal{}, ErrUnauthenticated
	}
	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Principal{}, ErrUnauthenticated
		}
		return models.Principal{}, err
	}
	return principalFor(staff, uuid.Nil), nil
}

func (s *authService) Me(ctx context.Context, principal models.Principal) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, principal.StaffID)
	if err != nil {
		return nil, notFoundAs(err, "Staff")
	}
	return staff, nil
}

func principalFor(staff *models.Staff, sessionID uuid.UUID) models.Principal {
	return models.Principal{
		StaffID:        staff.ID,
		OrganizationID: staff.OrganizationID,
		Role:           staff.Role,
		Name:           staff.Name,
		Email:          staff.Email,
		SessionID:      sessionID,
	}
}

func (s *authService) openSession(ctx context.Context, staff *models.Staff) (*models.TokenResponse, error) {
	token := generateSecureToken()
	session := &models.Session{
		ID:             uuid.New(),
		StaffID:        staff.ID,
		OrganizationID: staff.OrganizationID,
		TokenHash:      hashToken(token),
		ExpiresAt:      s.now().Add(s.cfg.SessionTTL.Duration),
		CreatedAt:      s.now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.cacheSvc.SetSession(ctx, session); err != nil {
		s.logger.Debug("failed to cache session", zap.Error(err))
	}

	resp, err := s.issueAccessToken(staff, session)
	if err != nil {
		return nil, err
	}
	resp.SessionToken = token
	return resp, nil
}

func (s *authService) issueAccessToken(staff *models.Staff, session *models.Session) (*models.TokenResponse, error) {
	now := s.now()
	ttl := s.cfg.AccessTokenTTL.Duration
	claims := AccessClaims{
		OrganizationID: staff.OrganizationID.String(),
		Role:           staff.Role,
		SessionID:      session.ID.String(),
		Email:          staff.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   staff.ID.String(),
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:      signed,
		TokenType:        "Bearer",
		ExpiresIn:        int(ttl.Seconds()),
		SessionExpiresAt: session.ExpiresAt,
		Staff:            staff,
	}, nil
}

// GenerateInviteCode returns an 8 character uppercase alphanumeric code.
func GenerateInviteCode() string {
	return random.String(8, random.Uppercase, random.Numeric)
}

// generateSecureToken returns 32 random bytes hex encoded
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
