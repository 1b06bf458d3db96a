package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoSession          = errors.New("session closed, log in again")
)

const minPasswordLength = 6

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles operator accounts and the terminal's login session.
type AuthService struct {
	db     *sqlx.DB
	state  *appstate.State
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewAuthService(db *sqlx.DB, state *appstate.State, opts Options) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{db: db, state: state, secret: []byte(opts.Secret), ttl: ttl, cost: cost}
}

func (s *AuthService) Register(ctx context.Context, username, password, fullName, role string) (domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return domain.User{}, domain.Invalid("username is required")
	}
	if len(password) < minPasswordLength {
		return domain.User{}, domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	if role != domain.RoleOwner && role != domain.RoleEmployee {
		return domain.User{}, domain.Invalid("role must be owner or employee")
	}
	q := store.New(s.db)
	if _, err := q.GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, domain.Invalid("username %s is taken", username)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		Username:     username,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsActive:     true,
	}
	if err := q.CreateUser(ctx, &u); err != nil {
		return domain.User{}, err
	}
	log.Info().Str("username", u.Username).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// Bootstrap creates the first owner account when no users exist yet.
func (s *AuthService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	count, err := store.New(s.db).CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.Register(ctx, username, password, "Owner", domain.RoleOwner); err != nil {
		return false, err
	}
	return true, nil
}

// Login verifies the password, opens the terminal session and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	u, err := store.New(s.db).GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if !u.IsActive || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	sessionID := uuid.NewString()
	token, err := s.issue(u, sessionID)
	if err != nil {
		return "", domain.User{}, err
	}
	s.state.SetSession(domain.Session{ID: sessionID, UserID: u.ID, Username: u.Username, Role: u.Role, LoginAt: timeutil.Stamp()})
	log.Info().Str("username", u.Username).Msg("login")
	return token, u, nil
}

func (s *AuthService) Logout() {
	if session, ok := s.state.Session(); ok {
		log.Info().Str("username", session.Username).Msg("logout")
	}
	s.state.ClearSession()
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	q := store.New(s.db)
	u, err := q.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}
	return q.SetPasswordHash(ctx, userID, string(hashed))
}

func (s *AuthService) issue(u domain.User, sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate validates a bearer token and checks that it belongs to the
// open session.
func (s *AuthService) Authenticate(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if !s.state.Authorized(claims.UserID, claims.ID) {
		return Claims{}, ErrNoSession
	}
	return claims, nil
}
