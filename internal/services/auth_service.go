package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lumo/internal/cache"
	"lumo/internal/config"
	"lumo/internal/domain/user"
	lumoredis "lumo/internal/redis"
	"lumo/internal/repository"
	lumo_errors "lumo/pkg/errors"
)

// AuthService handles organizer registration, login and session
// validation. Sessions live in redis; a small in-process TTL cache fronts
// the lookups and is invalidated on logout.
type AuthService struct {
	users        repository.UserRepository
	sessions     *lumoredis.SessionStore
	sessionCache *cache.TTL[lumoredis.Session]
	jwtSecret    []byte
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions *lumoredis.SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		sessionCache: cache.NewTTL[lumoredis.Session](cfg.Auth.SessionCacheTTL),
		jwtSecret:    []byte(cfg.Auth.JWTSecret),
		accessTTL:    cfg.Auth.AccessTTL,
		now:          time.Now,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	SessionID   string `json:"session_id"`
	ExpiresAt   string `json:"expires_at"`
}

type AccessClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResponse, error) {
	if input.Email == "" || len(input.Password) < 8 {
		return AuthResponse{}, lumo_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	u := user.User{
		ID:           uuid.New(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return AuthResponse{}, err
	}
	return s.openSession(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, lumo_errors.ErrNotFound) {
			return AuthResponse{}, lumo_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)) != nil {
		return AuthResponse{}, lumo_errors.ErrUnauthorized
	}
	return s.openSession(ctx, u)
}

func (s *AuthService) openSession(ctx context.Context, u user.User) (AuthResponse, error) {
	now := s.now()
	session := lumoredis.Session{
		ID:        uuid.New(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.accessTTL),
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return AuthResponse{}, err
	}
	s.sessionCache.Set(session.ID.String(), session)

	claims := AccessClaims{
		UserID:    u.ID.String(),
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		UserID:      u.ID.String(),
		AccessToken: signed,
		SessionID:   session.ID.String(),
		ExpiresAt:   session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, lumo_errors.ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, lumo_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, lumo_errors.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok {
		return nil, lumo_errors.ErrUnauthorized
	}
	return claims, nil
}

// ValidateSession confirms the session exists, belongs to the user and
// has not expired. Cache hits skip redis.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	if cached, ok := s.sessionCache.Get(sessionID.String()); ok {
		if cached.UserID == userID && s.now().Before(cached.ExpiresAt) {
			return nil
		}
		s.sessionCache.Invalidate(sessionID.String())
		return lumo_errors.ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.UserID != userID || !s.now().Before(session.ExpiresAt) {
		return lumo_errors.ErrUnauthorized
	}
	s.sessionCache.Set(sessionID.String(), *session)
	return nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	s.sessionCache.Invalidate(sessionID.String())
	return s.sessions.Delete(ctx, sessionID)
}
