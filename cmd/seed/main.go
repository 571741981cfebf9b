package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/datamodels/category"
	"github.com/example/gomarket/internal/datamodels/product"
	"github.com/example/gomarket/internal/datamodels/user"
	"github.com/example/gomarket/internal/repository/mysql"
)

// 灌入演示数据：一个管理员、一个卖家、一个买家，外加分类和商品
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := mysql.Open(&cfg.MySQL)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}

	ctx := context.Background()
	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)

	seedUsers := []struct {
		name, email, password, role string
	}{
		{"管理员", "admin@gomarket.dev", "admin123", user.RoleAdmin},
		{"张三的菜摊", "seller@gomarket.dev", "seller123", user.RoleSeller},
		{"李四", "buyer@gomarket.dev", "buyer123", user.RoleBuyer},
	}
	ids := make(map[string]int64)
	for _, su := range seedUsers {
		if existing, err := userRepo.GetByEmail(ctx, su.email); err == nil {
			ids[su.role] = existing.ID
			log.Printf("user %s already exists, skipping", su.email)
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u := &user.User{Name: su.name, Email: su.email, Password: string(hashed), Role: su.role}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("failed to create user %s: %v", su.email, err)
		}
		ids[su.role] = u.ID
		log.Printf("created user %s (%s)", su.email, su.role)
	}

	seedCategories := []category.Category{
		{Name: "蔬菜", Description: "新鲜时蔬"},
		{Name: "水果", Description: "应季水果"},
		{Name: "粮油", Description: "米面粮油"},
	}
	catIDs := make(map[string]int64)
	for i := range seedCategories {
		c := &seedCategories[i]
		if existing, err := categoryRepo.GetByName(ctx, c.Name); err == nil {
			catIDs[c.Name] = existing.ID
			continue
		}
		if err := categoryRepo.Create(ctx, c); err != nil {
			log.Fatalf("failed to create category %s: %v", c.Name, err)
		}
		catIDs[c.Name] = c.ID
		log.Printf("created category %s", c.Name)
	}

	sellerID := ids[user.RoleSeller]
	seedProducts := []product.Product{
		{Name: "西红柿", Description: "本地沙瓤西红柿", Price: 590, Stock: 100, Unit: "kg", CategoryID: catIDs["蔬菜"]},
		{Name: "黄瓜", Description: "旱地黄瓜", Price: 390, Stock: 80, Unit: "kg", CategoryID: catIDs["蔬菜"]},
		{Name: "苹果", Description: "烟台红富士", Price: 880, Stock: 50, Unit: "kg", CategoryID: catIDs["水果"]},
		{Name: "大米", Description: "东北五常大米 5kg", Price: 4990, Stock: 0, Unit: "袋", CategoryID: catIDs["粮油"]},
	}
	for i := range seedProducts {
		p := &seedProducts[i]
		p.UserID = sellerID
		p.Status = product.StatusForStock(p.Stock)
		if err := productRepo.Create(ctx, p); err != nil {
			log.Fatalf("failed to create product %s: %v", p.Name, err)
		}
		log.Printf("created product %s", p.Name)
	}

	log.Println("seed done")
}
