package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/datamodels/category"
	"github.com/example/gomarket/internal/datamodels/notification"
	"github.com/example/gomarket/internal/datamodels/order"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/review"
	"github.com/example/gomarket/internal/datamodels/user"
)

// Open 建立 GORM 连接并自动迁移表结构。
// 句柄由调用方往下传，不再挂全局变量。
func Open(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	if err = db.AutoMigrate(
		&user.User{},
		&category.Category{},
		&product.Product{},
		&order.Order{},
		&order.Item{},
		&review.Review{},
		&notification.Notification{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}
