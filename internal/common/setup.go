package common

import (
	"log"

	"github.com/PioneData/CAT-Backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(
		&State{},
		&ZoneCounty{},
		&Zipcode{},
		&ZipcodeDataset{},
		&Category{},
		&Event{},
		&CategoryEventMapping{},
		&Policyholder{},
		&User{},
	); err != nil {
		log.Fatal("Failed to auto-migrate common tables: ", err)
	}

	log.Println("Common module initialized")
}
