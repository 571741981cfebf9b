package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 400, StatusCode(BadRequest("库存不足")))
	assert.Equal(t, 400, StatusCode(Conflict("订单已取消")))
	assert.Equal(t, 401, StatusCode(Unauthorized("请先登录")))
	assert.Equal(t, 403, StatusCode(Forbidden("无权操作")))
	assert.Equal(t, 404, StatusCode(NotFound("商品不存在")))

	// 未知错误按 500 处理
	assert.Equal(t, 500, StatusCode(errors.New("boom")))
}

func TestStatusCodeWrapped(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NotFound("商品不存在"))
	assert.Equal(t, 404, StatusCode(err))
}

func TestIsOperational(t *testing.T) {
	assert.True(t, IsOperational(BadRequest("参数错误")))
	assert.False(t, IsOperational(errors.New("db closed")))
}
