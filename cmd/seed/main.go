package main

import (
	"flag"
	"log"

	"sneaker_shop/internal/config"
	"sneaker_shop/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// seed 工具：灌入演示用品牌/分类/商品/变体与一个管理员账号，
// 方便本地起服务后直接点流程。重复执行是幂等的（按名称/邮箱跳过）。
func main() {
	adminEmail := flag.String("admin-email", "admin@sneaker.shop", "admin account email")
	adminPassword := flag.String("admin-password", "admin12345", "admin account password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	seedAdmin(db, *adminEmail, *adminPassword, cfg.BcryptCost)
	seedCatalog(db)

	log.Println("seed done")
}

func seedAdmin(db *gorm.DB, email, password string, cost int) {
	var count int64
	db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		log.Printf("admin %s already exists, skip", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("admin %s created", email)
}

func seedCatalog(db *gorm.DB) {
	brands := map[string]*model.Brand{}
	for _, name := range []string{"Nike", "Adidas", "New Balance"} {
		b := &model.Brand{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(b).Error; err != nil {
			log.Fatalf("brand %s: %v", name, err)
		}
		brands[name] = b
	}

	sneakers := &model.Category{Name: "Sneakers"}
	if err := db.Where("name = ? AND parent_id IS NULL", sneakers.Name).
		FirstOrCreate(sneakers).Error; err != nil {
		log.Fatalf("category: %v", err)
	}

	type seedProduct struct {
		name     string
		brand    string
		price    string
		variants []struct {
			size  string
			color string
			stock int
		}
	}
	products := []seedProduct{
		{
			name: "Air Force 1 'Camo'", brand: "Nike", price: "405.00",
			variants: []struct {
				size  string
				color string
				stock int
			}{{"EU 43", "Noir", 8}, {"EU 44", "Noir", 5}},
		},
		{
			name: "KD 7 'Away'", brand: "Nike", price: "299.00",
			variants: []struct {
				size  string
				color string
				stock int
			}{{"EU 43", "Blanc", 3}},
		},
		{
			name: "Samba OG", brand: "Adidas", price: "119.90",
			variants: []struct {
				size  string
				color string
				stock int
			}{{"EU 42", "Blanc/Noir", 20}, {"EU 43", "Blanc/Noir", 12}},
		},
	}

	for _, sp := range products {
		var count int64
		db.Model(&model.Product{}).Where("name = ?", sp.name).Count(&count)
		if count > 0 {
			continue
		}

		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			log.Fatalf("price %s: %v", sp.price, err)
		}
		brandID := brands[sp.brand].ID
		p := &model.Product{
			Name:       sp.name,
			BrandID:    &brandID,
			CategoryID: &sneakers.ID,
			BasePrice:  &price,
			IsActive:   true,
		}
		if err := db.Create(p).Error; err != nil {
			log.Fatalf("product %s: %v", sp.name, err)
		}
		for _, v := range sp.variants {
			variant := &model.ProductVariant{
				ProductID:     p.ID,
				Size:          v.size,
				Color:         v.color,
				Price:         price,
				StockQuantity: v.stock,
			}
			if err := db.Create(variant).Error; err != nil {
				log.Fatalf("variant %s %s: %v", sp.name, v.size, err)
			}
		}
		log.Printf("product %s seeded", sp.name)
	}
}
