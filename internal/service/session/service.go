package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/iamasit07/blog/backend/internal/domain"
	"github.com/iamasit07/blog/backend/pkg/auth"
)

const profileKeyPrefix = "user_profile:"

type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionStore is the single source of truth for which refresh token is
// live. Implementations serialize operations per identity.
type SessionStore interface {
	Bind(ctx context.Context, userID int64, refreshToken string) error
	LookupByRefreshToken(ctx context.Context, refreshToken string) (int64, error)
	Revoke(ctx context.Context, userID int64) error
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type LoginResult struct {
	User         domain.PublicUser
	AccessToken  string
	RefreshToken string
}

type ReissueResult struct {
	User        domain.PublicUser
	AccessToken string
}

// AuthService handles registration, login and the token lifecycle
type AuthService struct {
	users    UserRepository
	sessions SessionStore
	issuer   *auth.Issuer
	hasher   *auth.Hasher

	cache      CacheRepository // Optional, can be nil
	profileTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserRepository, sessions SessionStore, issuer *auth.Issuer, hasher *auth.Hasher) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		hasher:   hasher,
	}
}

// WithProfileCache enables caching of /user profiles.
func (s *AuthService) WithProfileCache(cache CacheRepository, ttl time.Duration) *AuthService {
	s.cache = cache
	s.profileTTL = ttl
	return s
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) error {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return domain.ErrValidation
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.Insert(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	log.Printf("[AUTH] Registered user %d", id)
	return nil
}

// Login checks credentials, issues a token pair and binds the refresh token
// as the identity's only session. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		// burn a comparison so timing does not reveal unknown emails
		s.hasher.CheckPasswordHash(password, s.dummyPasswordHash())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !s.hasher.CheckPasswordHash(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	identity := identityOf(user)
	accessToken, err := s.issuer.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.issuer.IssueRefresh(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.sessions.Bind(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("[AUTH] User %d logged in", user.ID)
	return &LoginResult{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the session owning refreshToken. Unknown tokens are not an
// error; the caller still clears the cookie.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	userID, err := s.sessions.LookupByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	log.Printf("[AUTH] User %d logged out", userID)
	return nil
}

// Reissue exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (*ReissueResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		s.dropSession(ctx, refreshToken)
		return nil, domain.ErrForbidden
	}

	// a valid signature is not enough: the token must still be the
	// identity's current session
	userID, err := s.sessions.LookupByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrSessionNotFound) {
		log.Printf("[SESSION] Refresh token for user %d is not the live session", claims.UserID)
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("refresh token lookup failed: %w", err)
	}
	if userID != claims.UserID {
		log.Printf("[SESSION] Refresh token claims user %d but session belongs to %d", claims.UserID, userID)
		return nil, domain.ErrForbidden
	}

	accessToken, err := s.issuer.IssueAccess(claims.Identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &ReissueResult{
		User:        domain.PublicUser{Username: claims.Username, Email: claims.Email},
		AccessToken: accessToken,
	}, nil
}

// Authenticate validates a bearer access token. It is stateless: a token
// stays valid until expiry even after logout.
func (s *AuthService) Authenticate(accessToken string) (*auth.Claims, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return nil, domain.ErrForbidden
	}
	return claims, nil
}

// Profile returns the public profile for userID. The bool reports a cache hit.
func (s *AuthService) Profile(ctx context.Context, userID int64) (domain.Profile, bool, error) {
	key := fmt.Sprintf("%s%d", profileKeyPrefix, userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil && cached != "" {
			var profile domain.Profile
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return profile, true, nil
			}
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, false, err
	}
	profile := user.Profile()

	if s.cache != nil {
		if data, err := json.Marshal(profile); err == nil {
			if err := s.cache.Set(ctx, key, data, s.profileTTL); err != nil {
				log.Printf("[SESSION] Warning: Failed to cache profile: %v", err)
			}
		}
	}
	return profile, false, nil
}

// dropSession clears the session still bound to a token that no longer
// verifies (for example an expired refresh token).
func (s *AuthService) dropSession(ctx context.Context, refreshToken string) {
	userID, err := s.sessions.LookupByRefreshToken(ctx, refreshToken)
	if err != nil {
		return
	}
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		log.Printf("[SESSION] Warning: Failed to revoke stale session for user %d: %v", userID, err)
		return
	}
	log.Printf("[SESSION] Revoked session for user %d after failed refresh verification", userID)
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.HashPassword("not-a-real-password")
		if err != nil {
			log.Printf("[AUTH] Warning: Failed to build dummy hash: %v", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func identityOf(user *domain.User) auth.Identity {
	return auth.Identity{UserID: user.ID, Email: user.Email, Username: user.Username}
}
