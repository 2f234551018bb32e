package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser creates the bootstrap admin account. The password comes from
// ADMIN_PASSWORD so fresh environments never ship a hardcoded credential.
func SeedAdminUser() error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️ ADMIN_PASSWORD not set, skipping admin user seed")
		return nil
	}

	var existing common.User
	err := db.DB.First(&existing, "username = ?", username).Error
	if err == nil {
		log.Printf("⚠️ User exists, skipping: %s", username)
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("DB error on user %s: %w", username, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := common.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "admin",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", username, err)
	}

	log.Printf("✅ Seeded admin user %s", username)
	return nil
}
