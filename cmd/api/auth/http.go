package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marlang/cmd/api/dto"
)

var (
	ErrMissingHeader = errors.New("missing_authorization_header")
	ErrInvalidFormat = errors.New("invalid_authorization_header")
	ErrEmptyToken    = errors.New("empty_token")
)

const (
	CodeInvalidToken = "invalid_token"
	CodeForbidden    = "forbidden_insufficient_permissions"
)

// ExtractBearerToken 은 Authorization: Bearer <token> 헤더에서 토큰을 꺼낸다.
func ExtractBearerToken(c *gin.Context) (string, error) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if scheme == "" && !ok {
		return "", ErrMissingHeader
	}
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidFormat
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// AbortWithUnauthorized 는 헤더 형식 오류면 그 코드를, 토큰 검증 실패면 invalid_token 을 돌려준다.
func AbortWithUnauthorized(c *gin.Context, err error) {
	code := CodeInvalidToken
	switch {
	case errors.Is(err, ErrMissingHeader), errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrEmptyToken):
		code = err.Error()
	}
	AbortWithCode(c, http.StatusUnauthorized, code)
}

func AbortWithForbidden(c *gin.Context) {
	AbortWithCode(c, http.StatusForbidden, CodeForbidden)
}

func AbortWithCode(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponseDTO{Error: code})
}
