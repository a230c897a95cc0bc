package middleware

import (
	"context"
	"net/http"

	"marlang/cmd/api/auth"
	"marlang/config"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserCode = "user_code"
	ContextKeyRole     = "role"
)

// TokenParser 는 access token 에서 (sub, role) 을 꺼낸다. *auth.JWTManager 가 구현한다.
type TokenParser interface {
	Parse(token string) (string, string, error)
}

// AdminRegistry 는 admins 컬렉션 조회만 필요로 한다.
type AdminRegistry interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// AdminAuthMiddleware 는 요청 헤더의 JWT를 검증하고, role 이 'admin' 이거나
// admins 컬렉션에 등록된 사용자인지 확인합니다.
func AdminAuthMiddleware(tokens TokenParser, admins AdminRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		userCode, role, err := tokens.Parse(token)
		if err != nil {
			config.Logger.Warnf("token parse error: %v", err)
			auth.AbortWithUnauthorized(c, err)
			return
		}

		if role != auth.RoleAdmin {
			registered := false
			if admins != nil {
				registered, err = admins.IsAdmin(c.Request.Context(), userCode)
				if err != nil {
					config.Logger.Errorf("admin lookup failed for %s: %v", userCode, err)
					auth.AbortWithCode(c, http.StatusInternalServerError, "admin_lookup_failed")
					return
				}
			}
			if !registered {
				config.Logger.Warnf("access denied: user %s has role %s, want admin", userCode, role)
				auth.AbortWithForbidden(c)
				return
			}
			role = auth.RoleAdmin
		}

		// 컨텍스트에 사용자 정보 저장
		c.Set(ContextKeyUserCode, userCode)
		c.Set(ContextKeyRole, role)

		c.Next()
	}
}
