package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rescuetrack/internal/config"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	staffRepo   *MockStaffRepository
	orgRepo     *MockOrganizationRepository
	inviteRepo  *MockInviteRepository
	sessionRepo *MockSessionRepository
	cacheSvc    *MockCacheService
	service     *authService
	now         time.Time
	ctx         context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.staffRepo = &MockStaffRepository{}
	s.orgRepo = &MockOrganizationRepository{}
	s.inviteRepo = &MockInviteRepository{}
	s.sessionRepo = &MockSessionRepository{}
	s.cacheSvc = &MockCacheService{}
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cfg := config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: config.Duration{Duration: 15 * time.Minute},
		SessionTTL:     config.Duration{Duration: 24 * time.Hour},
		LoginAttempts:  5,
		LoginWindow:    config.Duration{Duration: time.Minute},
	}
	svc := NewAuthService(s.staffRepo, s.orgRepo, s.inviteRepo, s.sessionRepo, s.cacheSvc, metrics.NewNop(), zap.NewNop(), cfg)
	s.service = svc.(*authService)
	s.service.now = func() time.Time { return s.now }
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.staffRepo.AssertExpectations(s.T())
	s.orgRepo.AssertExpectations(s.T())
	s.inviteRepo.AssertExpectations(s.T())
	s.sessionRepo.AssertExpectations(s.T())
	s.cacheSvc.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) staffWithPassword(password string) *models.Staff {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return &models.Staff{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Name:           "Jane Keeper",
		Email:          "jane@shelter.org",
		PasswordHash:   string(hash),
		Role:           models.RoleUser,
	}
}

func (s *AuthServiceTestSuite) expectSessionOpened() {
	s.sessionRepo.On("Create", s.ctx, mock.AnythingOfType("*models.Session")).Return(nil).Once()
	s.cacheSvc.On("SetSession", s.ctx, mock.AnythingOfType("*models.Session")).Return(nil).Once()
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	staff := s.staffWithPassword("secret123")
	s.cacheSvc.On("IsRateLimited", s.ctx, "login:jane@shelter.org", 5, time.Minute).Return(false, nil)
	s.staffRepo.On("GetByEmail", s.ctx, "jane@shelter.org").Return(staff, nil)
	s.cacheSvc.On("ResetRateLimit", s.ctx, "login:jane@shelter.org").Return(nil)
	s.expectSessionOpened()

	resp, err := s.service.Login(s.ctx, "  Jane@Shelter.org ", "secret123")
	s.Require().NoError(err)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(900, resp.ExpiresIn)
	s.Len(resp.SessionToken, 64)
	s.Equal(s.now.Add(24*time.Hour), resp.SessionExpiresAt)

	claims := &AccessClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now }))
	s.Require().NoError(err)
	s.Equal(staff.ID.String(), claims.Subject)
	s.Equal(staff.OrganizationID.String(), claims.OrganizationID)
	s.Equal(models.RoleUser, claims.Role)
	s.Equal(TokenIssuer, claims.Issuer)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	staff := s.staffWithPassword("secret123")
	s.cacheSvc.On("IsRateLimited", s.ctx, "login:jane@shelter.org", 5, time.Minute).Return(false, nil)
	s.staffRepo.On("GetByEmail", s.ctx, "jane@shelter.org").Return(staff, nil)

	_, err := s.service.Login(s.ctx, "jane@shelter.org", "nope")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.cacheSvc.On("IsRateLimited", s.ctx, "login:ghost@shelter.org", 5, time.Minute).Return(false, nil)
	s.staffRepo.On("GetByEmail", s.ctx, "ghost@shelter.org").Return(nil, repositories.ErrNotFound)

	_, err := s.service.Login(s.ctx, "ghost@shelter.org", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_RateLimited() {
	s.cacheSvc.On("IsRateLimited", s.ctx, "login:jane@shelter.org", 5, time.Minute).Return(true, nil)

	_, err := s.service.Login(s.ctx, "jane@shelter.org", "secret123")
	s.ErrorIs(err, ErrTooManyAttempts)
}

func (s *AuthServiceTestSuite) TestLogin_LimiterDownFailsOpen() {
	staff := s.staffWithPassword("secret123")
	s.cacheSvc.On("IsRateLimited", s.ctx, "login:jane@shelter.org", 5, time.Minute).Return(false, errors.New("redis down"))
	s.staffRepo.On("GetByEmail", s.ctx, "jane@shelter.org").Return(staff, nil)
	s.cacheSvc.On("ResetRateLimit", s.ctx, "login:jane@shelter.org").Return(errors.New("redis down"))
	s.expectSessionOpened()

	_, err := s.service.Login(s.ctx, "jane@shelter.org", "secret123")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestSignupAdmin_CreatesOrganization() {
	s.staffRepo.On("GetByEmail", s.ctx, "boss@shelter.org").Return(nil, repositories.ErrNotFound)
	s.orgRepo.On("CreateWithAdmin", s.ctx, mock.MatchedBy(func(o *models.Organization) bool {
		return o.Name == "Fox Haven" && len(o.InviteCode) == 8
	}), mock.MatchedBy(func(a *models.Staff) bool {
		return a.Role == models.RoleAdmin && a.Email == "boss@shelter.org"
	})).Return(nil)
	s.expectSessionOpened()

	resp, err := s.service.SignupAdmin(s.ctx, SignupAdminRequest{
		Name:                "Boss",
		Email:               "Boss@shelter.org",
		Password:            "secret123",
		OrganizationName:    " Fox Haven ",
		OrganizationAddress: "1 Forest Road",
	})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, resp.Staff.Role)
}

func (s *AuthServiceTestSuite) TestSignupAdmin_EmailTaken() {
	s.staffRepo.On("GetByEmail", s.ctx, "boss@shelter.org").Return(&models.Staff{ID: uuid.New()}, nil)

	_, err := s.service.SignupAdmin(s.ctx, SignupAdminRequest{
		Name: "Boss", Email: "boss@shelter.org", Password: "secret123",
		OrganizationName: "Fox Haven", OrganizationAddress: "1 Forest Road",
	})
	s.ErrorIs(err, ErrEmailInUse)
}

func (s *AuthServiceTestSuite) TestSignupAdmin_Validation() {
	_, err := s.service.SignupAdmin(s.ctx, SignupAdminRequest{
		Name: "Boss", Email: "boss@shelter.org", Password: "123",
		OrganizationName: "Fox Haven", OrganizationAddress: "1 Forest Road",
	})
	var ve *ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("password", ve.Field)
}

func (s *AuthServiceTestSuite) TestSignupUser_PersonalInvite() {
	orgID := uuid.New()
	invite := &models.Invite{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          "new@shelter.org",
		Role:           models.RoleAdmin,
		Code:           "ABCD1234",
		Status:         models.InviteStatusPending,
		ExpiresAt:      s.now.Add(time.Hour),
	}
	s.staffRepo.On("GetByEmail", s.ctx, "new@shelter.org").Return(nil, repositories.ErrNotFound)
	s.inviteRepo.On("GetByCode", s.ctx, "ABCD1234").Return(invite, nil)
	s.inviteRepo.On("Accept", s.ctx, invite, mock.MatchedBy(func(st *models.Staff) bool {
		return st.OrganizationID == orgID && st.Role == models.RoleAdmin
	})).Return(nil)
	s.expectSessionOpened()

	resp, err := s.service.SignupUser(s.ctx, SignupUserRequest{
		Name: "Newbie", Email: "new@shelter.org", Password: "secret123", InviteCode: "abcd1234",
	})
	s.Require().NoError(err)
	s.Equal(orgID, resp.Staff.OrganizationID)
}

func (s *AuthServiceTestSuite) TestSignupUser_ExpiredInvite() {
	invite := &models.Invite{
		Email:     "new@shelter.org",
		Status:    models.InviteStatusPending,
		ExpiresAt: s.now.Add(-time.Minute),
	}
	s.staffRepo.On("GetByEmail", s.ctx, "new@shelter.org").Return(nil, repositories.ErrNotFound)
	s.inviteRepo.On("GetByCode", s.ctx, "ABCD1234").Return(invite, nil)

	_, err := s.service.SignupUser(s.ctx, SignupUserRequest{
		Name: "Newbie", Email: "new@shelter.org", Password: "secret123", InviteCode: "ABCD1234",
	})
	s.ErrorIs(err, ErrInviteUnusable)
}

func (s *AuthServiceTestSuite) TestSignupUser_InviteEmailMismatch() {
	invite := &models.Invite{
		Email:     "someone@shelter.org",
		Status:    models.InviteStatusPending,
		ExpiresAt: s.now.Add(time.Hour),
	}
	s.staffRepo.On("GetByEmail", s.ctx, "new@shelter.org").Return(nil, repositories.ErrNotFound)
	s.inviteRepo.On("GetByCode", s.ctx, "ABCD1234").Return(invite, nil)

	_, err := s.service.SignupUser(s.ctx, SignupUserRequest{
		Name: "Newbie", Email: "new@shelter.org", Password: "secret123", InviteCode: "ABCD1234",
	})
	s.ErrorIs(err, ErrInviteEmailMismatch)
}

func (s *AuthServiceTestSuite) TestSignupUser_OrganizationCode() {
	org := &models.Organization{ID: uuid.New(), InviteCode: "ORG12345"}
	s.staffRepo.On("GetByEmail", s.ctx, "new@shelter.org").Return(nil, repositories.ErrNotFound)
	s.inviteRepo.On("GetByCode", s.ctx, "ORG12345").Return(nil, repositories.ErrNotFound)
	s.orgRepo.On("GetByInviteCode", s.ctx, "ORG12345").Return(org, nil)
	s.staffRepo.On("Create", s.ctx, mock.MatchedBy(func(st *models.Staff) bool {
		return st.OrganizationID == org.ID && st.Role == models.RoleUser
	})).Return(nil)
	s.expectSessionOpened()

	resp, err := s.service.SignupUser(s.ctx, SignupUserRequest{
		Name: "Newbie", Email: "new@shelter.org", Password: "secret123", InviteCode: "ORG12345",
	})
	s.Require().NoError(err)
	s.Equal(models.RoleUser, resp.Staff.Role)
}

func (s *AuthServiceTestSuite) TestSignupUser_UnknownCode() {
	s.staffRepo.On("GetByEmail", s.ctx, "new@shelter.org").Return(nil, repositories.ErrNotFound)
	s.inviteRepo.On("GetByCode", s.ctx, "NOPE1234").Return(nil, repositories.ErrNotFound)
	s.orgRepo.On("GetByInviteCode", s.ctx, "NOPE1234").Return(nil, repositories.ErrNotFound)

	_, err := s.service.SignupUser(s.ctx, SignupUserRequest{
		Name: "Newbie", Email: "new@shelter.org", Password: "secret123", InviteCode: "NOPE1234",
	})
	s.ErrorIs(err, ErrInvalidInviteCode)
}

func (s *AuthServiceTestSuite) TestRefresh_ExpiredSession() {
	session := &models.Session{ID: uuid.New(), ExpiresAt: s.now.Add(-time.Second)}
	s.sessionRepo.On("GetByTokenHash", s.ctx, hashToken("tok")).Return(session, nil)

	_, err := s.service.Refresh(s.ctx, "tok")
	s.ErrorIs(err, ErrSessionExpired)
}

func (s *AuthServiceTestSuite) TestRefresh_KeepsSessionToken() {
	staff := s.staffWithPassword("secret123")
	session := &models.Session{ID: uuid.New(), StaffID: staff.ID, ExpiresAt: s.now.Add(time.Hour)}
	s.sessionRepo.On("GetByTokenHash", s.ctx, hashToken("tok")).Return(session, nil)
	s.staffRepo.On("GetByID", s.ctx, staff.ID).Return(staff, nil)

	resp, err := s.service.Refresh(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal("tok", resp.SessionToken)
	s.Equal(session.ExpiresAt, resp.SessionExpiresAt)
}

func (s *AuthServiceTestSuite) TestResolvePrincipal_FallsBackToDatabase() {
	staff := s.staffWithPassword("secret123")
	session := &models.Session{ID: uuid.New(), StaffID: staff.ID, ExpiresAt: s.now.Add(time.Hour)}
	s.cacheSvc.On("GetSession", s.ctx, session.ID).Return(nil, nil)
	s.sessionRepo.On("GetByID", s.ctx, session.ID).Return(session, nil)
	s.cacheSvc.On("SetSession", s.ctx, session).Return(nil)
	s.staffRepo.On("GetByID", s.ctx, staff.ID).Return(staff, nil)

	p, err := s.service.ResolvePrincipal(s.ctx, &AccessClaims{SessionID: session.ID.String()})
	s.Require().NoError(err)
	s.Equal(staff.ID, p.StaffID)
	s.Equal(session.ID, p.SessionID)
}

func (s *AuthServiceTestSuite) TestResolvePrincipal_RevokedSession() {
	sessionID := uuid.New()
	s.cacheSvc.On("GetSession", s.ctx, sessionID).Return(nil, nil)
	s.sessionRepo.On("GetByID", s.ctx, sessionID).Return(nil, repositories.ErrNotFound)

	_, err := s.service.ResolvePrincipal(s.ctx, &AccessClaims{SessionID: sessionID.String()})
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *AuthServiceTestSuite) TestLogout_DeletesSession() {
	p := userOf(uuid.New())
	p.SessionID = uuid.New()
	s.cacheSvc.On("DeleteSession", s.ctx, p.SessionID).Return(nil)
	s.sessionRepo.On("Delete", s.ctx, p.SessionID).Return(nil)

	s.NoError(s.service.Logout(s.ctx, p))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestGenerateInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateInviteCode()
		if len(code) != 8 {
			t.Fatalf("unexpected code length %q", code)
		}
		for _, r := range code {
			if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
				t.Fatalf("unexpected rune in %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("codes not random enough: %d distinct", len(seen))
	}
}
