package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Loads the static zipcode reference table from a uszips-style CSV export.
// Expected header: zip,lat,lng,city,state_id,state_name,county_fips,county_name,population,density,timezone
func main() {
	godotenv.Load(".env.local")

	csvPath := flag.String("csv", "data/uszips.csv", "path to the zipcode CSV export")
	batchSize := flag.Int("batch", 500, "insert batch size")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Could not open %s: %v", *csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Could not read CSV header: %v", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"zip", "state_id", "county_fips", "county_name"} {
		if _, ok := col[required]; !ok {
			log.Fatalf("CSV missing required column %q", required)
		}
	}

	titleCaser := cases.Title(language.AmericanEnglish)

	var rows []common.ZipcodeDataset
	total := 0
	skipped := 0

	flush := func() {
		if len(rows) == 0 {
			return
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "zip"}},
			DoNothing: true,
		}).Create(&rows).Error
		if err != nil {
			log.Fatalf("Insert error: %v", err)
		}
		total += len(rows)
		rows = rows[:0]
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("CSV read error: %v", err)
		}

		zip := strings.TrimSpace(record[col["zip"]])
		fips := strings.TrimSpace(record[col["county_fips"]])
		if zip == "" || fips == "" {
			skipped++
			continue
		}

		row := common.ZipcodeDataset{
			Zip:        zip,
			StateID:    strings.ToUpper(strings.TrimSpace(record[col["state_id"]])),
			CountyFIPS: fips,
			CountyName: titleCaser.String(strings.TrimSpace(record[col["county_name"]])),
		}
		row.City = field(record, col, "city")
		row.StateName = field(record, col, "state_name")
		row.Timezone = field(record, col, "timezone")
		row.Lat = floatField(record, col, "lat")
		row.Lng = floatField(record, col, "lng")
		row.Population = floatField(record, col, "population")
		row.Density = floatField(record, col, "density")

		rows = append(rows, row)
		if len(rows) >= *batchSize {
			flush()
		}
	}
	flush()

	fmt.Printf("Imported %d zipcodes (%d rows skipped)\n", total, skipped)

	// Spot-check a few hurricane-prone counties so a bad export fails loudly.
	sampleFIPS := []string{"12086", "12011", "22071", "48201"}

	type countRow struct {
		CountyFIPS string
		Zips       int64
	}
	var counts []countRow
	err = db.Raw(
		`SELECT county_fips, COUNT(*) AS zips FROM zipcode_dataset WHERE county_fips = ANY(?) GROUP BY county_fips ORDER BY county_fips`,
		pq.Array(sampleFIPS),
	).Scan(&counts).Error
	if err != nil {
		log.Fatalf("Verification query error: %v", err)
	}

	for _, c := range counts {
		fmt.Printf("  %s: %d zipcodes\n", c.CountyFIPS, c.Zips)
	}
	if len(counts) == 0 {
		fmt.Println("  WARNING: none of the sample county FIPS codes were found")
	}
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func floatField(record []string, col map[string]int, name string) float64 {
	v, err := strconv.ParseFloat(field(record, col, name), 64)
	if err != nil {
		return 0
	}
	return v
}
