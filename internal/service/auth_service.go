package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "gym-platform"

type AuthService interface {
	// Register creates a client or coach account. Coach accounts also get a
	// coach profile sharing the user id.
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// EnsureAdmin creates the admin account when it does not exist yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo      repository.UserRepository
	coachRepo     repository.CoachRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, coachRepo repository.CoachRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		coachRepo:     coachRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var missing []string
	for _, f := range []struct{ field, value string }{
		{"name", name}, {"email", email}, {"password", password}, {"role", string(role)},
	} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &ValidationError{Kind: KindValidation, Code: "INVALID_EMAIL", Fields: []string{"email"}, Message: "Invalid email address"}
	}
	if role != domain.RoleClient && role != domain.RoleCoach {
		return nil, &ValidationError{Kind: KindValidation, Code: "INVALID_ROLE", Fields: []string{"role"}, Message: "Role must be either client or coach"}
	}

	user, err := s.createUser(ctx, name, email, password, role)
	if err != nil {
		return nil, err
	}

	if role == domain.RoleCoach {
		first, last := domain.SplitName(name)
		coach := &domain.Coach{
			ID:        user.ID,
			FirstName: first,
			LastName:  last,
			Email:     user.Email,
		}
		if _, err := s.coachRepo.Create(ctx, coach); err != nil {
			logger.WithError(err).Error("failed to create coach profile", "userId", user.ID.Hex())
			return nil, err
		}
	}
	return user, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	// The unique email index decides races between concurrent sign-ups.
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err = s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	_, err = s.createUser(ctx, "Administrator", email, password, domain.RoleAdmin)
	if errors.Is(err, ErrUserAlreadyExists) {
		return nil
	}
	if err == nil {
		logger.Info("admin account created", "email", email)
	}
	return err
}

// TokenClaims is the JWT payload shared with the auth middleware.
type TokenClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
