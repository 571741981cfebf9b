package logger

import (
	"go.uber.org/zap"
)

// Init 初始化全局 zap Logger，其他包通过 zap.L() 使用
func Init(debug bool) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
}
