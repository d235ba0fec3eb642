package utils

import (
	"context"
	"log"
	"time"

	"github.com/amirhose1n/miropet-server/config"
	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// InitializeAdminUser makes sure a default admin account exists. It runs at
// startup, before the server accepts requests, and is idempotent.
func InitializeAdminUser() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminEmail := config.GetEnv("ADMIN_EMAIL", "miropet@miro.com")
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "miro@2024!petShop")

	users := database.DB.Collection("users")

	err := users.FindOne(ctx, bson.M{"email": adminEmail}).Err()
	if err == nil {
		log.Println("✅ Admin user already exists:", adminEmail)
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "MiroPet Admin",
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	if _, err := users.InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Println("🚀 Initial admin user created:", adminEmail)
	log.Println("⚠️  Change the password after first login!")
	return nil
}

// SeedDeliveryMethods inserts the default delivery options when the
// collection is empty. Idempotent; skipped when no admin user exists yet.
func SeedDeliveryMethods() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	methods := database.DB.Collection("deliverymethods")

	count, err := methods.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("✅ Delivery methods already exist")
		return nil
	}

	var admin models.User
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"role": models.RoleAdmin}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Println("❌ No admin user found for seeding delivery methods")
			return nil
		}
		return err
	}

	now := time.Now()
	defaults := []interface{}{
		models.DeliveryMethod{
			Name:           "ارسال عادی",
			Subtitle:       "ارسال با پست پیشتاز (۳-۵ روز کاری)",
			Price:          50000,
			ValidationDesc: "برای سفارش‌های زیر ۵۰۰،۰۰۰ تومان",
			IsEnabled:      true,
			CreatedAt:      now, UpdatedAt: now,
			CreatedBy: admin.ID, UpdatedBy: admin.ID,
		},
		models.DeliveryMethod{
			Name:           "ارسال رایگان",
			Subtitle:       "ارسال رایگان برای سفارش‌های بالای ۵۰۰،۰۰۰ تومان",
			Price:          0,
			ValidationDesc: "فقط برای سفارش‌های بالای ۵۰۰،۰۰۰ تومان",
			IsEnabled:      true,
			CreatedAt:      now, UpdatedAt: now,
			CreatedBy: admin.ID, UpdatedBy: admin.ID,
		},
		models.DeliveryMethod{
			Name:           "ارسال فوری",
			Subtitle:       "ارسال در همان روز (تهران و کرج)",
			Price:          150000,
			ValidationDesc: "فقط برای شهرهای تهران و کرج - سفارش تا ساعت ۱۴",
			IsEnabled:      true,
			CreatedAt:      now, UpdatedAt: now,
			CreatedBy: admin.ID, UpdatedBy: admin.ID,
		},
		models.DeliveryMethod{
			Name:           "پیک موتوری",
			Subtitle:       "ارسال با پیک موتوری (۲-۴ ساعت)",
			Price:          80000,
			ValidationDesc: "فقط در محدوده شهر تهران",
			IsEnabled:      true,
			CreatedAt:      now, UpdatedAt: now,
			CreatedBy: admin.ID, UpdatedBy: admin.ID,
		},
		models.DeliveryMethod{
			Name:           "باربری",
			Subtitle:       "ارسال با باربری (برای سفارش‌های سنگین)",
			Price:          200000,
			ValidationDesc: "برای سفارش‌های بالای ۱۰ کیلوگرم",
			IsEnabled:      false,
			CreatedAt:      now, UpdatedAt: now,
			CreatedBy: admin.ID, UpdatedBy: admin.ID,
		},
	}

	if _, err := methods.InsertMany(ctx, defaults); err != nil {
		return err
	}

	log.Println("✅ Default delivery methods seeded")
	return nil
}
