package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrWrongType    = errors.New("token has wrong type")
)

// Claims are carried by every token this service issues.
type Claims struct {
	jwt.RegisteredClaims
	TenantID      string    `json:"tenant_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	IsTenantAdmin bool      `json:"is_tenant_admin,omitempty"`
	IsSuperuser   bool      `json:"is_superuser,omitempty"`
	Type          TokenType `json:"typ"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Identity is what a token says about its holder.
type Identity struct {
	UserID        int64
	TenantID      string
	Email         string
	IsTenantAdmin bool
	IsSuperuser   bool
}

// Pair is returned by login and refresh.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenConfig configures HS256 token signing.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Tokens issues and verifies HS256 JWTs.
type Tokens struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokens(cfg TokenConfig) *Tokens {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}
}

func (t *Tokens) sign(id Identity, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID:      id.TenantID,
		Email:         id.Email,
		IsTenantAdmin: id.IsTenantAdmin,
		IsSuperuser:   id.IsSuperuser,
		Type:          typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Issue returns a fresh access/refresh pair for id.
func (t *Tokens) Issue(id Identity) (Pair, error) {
	access, err := t.sign(id, TokenAccess, t.cfg.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.sign(id, TokenRefresh, t.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse verifies signature, issuer, expiry and type.
func (t *Tokens) Parse(raw string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongType
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new access token.
func (t *Tokens) Refresh(raw string) (string, error) {
	claims, err := t.Parse(raw, TokenRefresh)
	if err != nil {
		return "", err
	}
	uid, _ := claims.UserID()
	return t.sign(Identity{
		UserID:        uid,
		TenantID:      claims.TenantID,
		Email:         claims.Email,
		IsTenantAdmin: claims.IsTenantAdmin,
		IsSuperuser:   claims.IsSuperuser,
	}, TokenAccess, t.cfg.AccessTTL)
}
