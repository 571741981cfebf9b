package server

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/gomarket/internal/apperr"
)

// success 统一成功响应：{"status":"success","data":{<key>:<v>}}
func success(ctx iris.Context, code int, key string, v interface{}) {
	ctx.StatusCode(code)
	_ = ctx.JSON(iris.Map{
		"status": "success",
		"data":   iris.Map{key: v},
	})
}

// successList 列表响应，附带 results 条数
func successList(ctx iris.Context, key string, v interface{}, count int) {
	_ = ctx.JSON(iris.Map{
		"status":  "success",
		"results": count,
		"data":    iris.Map{key: v},
	})
}

// fail 统一错误响应：业务错误原样返回，其余屏蔽细节只记日志
func fail(ctx iris.Context, err error) {
	code := apperr.StatusCode(err)
	status := "fail"
	msg := err.Error()
	if code >= 500 {
		status = "error"
		if !apperr.IsOperational(err) {
			zap.L().Error("request failed",
				zap.String("path", ctx.Path()),
				zap.String("method", ctx.Method()),
				zap.Error(err))
			msg = "服务器内部错误，请稍后再试。"
		}
	}
	ctx.StopWithJSON(code, iris.Map{
		"status":  status,
		"message": msg,
	})
}
