package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	defaultIssuer = "marlang"
	defaultTTL    = 24 * time.Hour
)

var ErrMissingSubject = errors.New("token missing sub claim")

// Claims 는 access token 에 담기는 클레임이다. role 이 비어 있으면 일반 사용자로 본다.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager 는 HS256 단일 시크릿으로 관리자 API 토큰을 발급/검증한다.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret, issuer string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// NewJWTManagerFromEnv 는 환경변수에서 JWTManager 를 생성한다.
//
// - JWT_SECRET: HS256 서명 시크릿(필수)
// - JWT_ISSUER: iss 클레임(선택, 기본값 "marlang")
// - JWT_TTL: 토큰 유효기간, time.ParseDuration 형식(선택, 기본값 24h)
func NewJWTManagerFromEnv() (*JWTManager, error) {
	var ttl time.Duration
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
		ttl = d
	}
	return NewJWTManager(os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"), ttl)
}

func (m *JWTManager) Sign(sub, role string) (string, error) {
	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 는 서명, 만료, issuer 를 검증하고 (sub, role) 을 돌려준다.
func (m *JWTManager) Parse(tokenString string) (string, string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", "", err
	}
	if claims.Subject == "" {
		return "", "", ErrMissingSubject
	}
	return claims.Subject, claims.Role, nil
}
