package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/example/gomarket/internal/auth"
	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/datamodels/user"
)

const userContextKey = "current_user"

// Authenticate 校验 Bearer Token 并把用户挂到请求上下文。
// 解析结果走 Redis 缓存；命中后仍回库确认用户没有被删除。
func Authenticate(jwtCfg *config.JWTConfig, cache *auth.TokenCache, users user.Repository) iris.Handler {
	return func(ctx iris.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.StopWithJSON(401, iris.Map{"status": "fail", "message": "您还未登录，请先登录。"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			ctx.StopWithJSON(401, iris.Map{"status": "fail", "message": "认证头格式应为 'Bearer <token>'。"})
			return
		}

		claims, hit, err := cache.Get(ctx.Request().Context(), token)
		if err != nil || !hit {
			claims, err = auth.ParseToken(jwtCfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"status": "fail", "message": "无效或已过期的 Token。"})
				return
			}
			_ = cache.Set(ctx.Request().Context(), token, claims)
		}

		u, err := users.GetByID(ctx.Request().Context(), claims.UserID)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"status": "fail", "message": "该 Token 对应的用户已不存在。"})
			return
		}

		ctx.Values().Set(userContextKey, u)
		ctx.Next()
	}
}

// RequireRoles 角色门禁，必须排在 Authenticate 之后
func RequireRoles(roles ...string) iris.Handler {
	return func(ctx iris.Context) {
		u := CurrentUser(ctx)
		if u == nil {
			ctx.StopWithJSON(401, iris.Map{"status": "fail", "message": "您还未登录，请先登录。"})
			return
		}
		for _, role := range roles {
			if u.Role == role {
				ctx.Next()
				return
			}
		}
		ctx.StopWithJSON(403, iris.Map{"status": "fail", "message": "您没有权限执行此操作。"})
	}
}

// CurrentUser 取当前登录用户，未登录返回 nil
func CurrentUser(ctx iris.Context) *user.User {
	if v := ctx.Values().Get(userContextKey); v != nil {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}
