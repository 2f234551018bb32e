package main

import (
	"log"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/PioneData/CAT-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	common.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
