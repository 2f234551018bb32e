package monitoring

import (
	"log"

	"github.com/PioneData/CAT-Backend/internal/db"
)

func Init() {
	err := db.DB.AutoMigrate(
		&Alert{},
		&AlertAffectedArea{},
		&AlertSyncLog{},
	)
	if err != nil {
		log.Fatal("Failed to migrate monitoring tables: ", err)
	}
}
