package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipebook/config"
	"recipebook/internal/database"
	"recipebook/internal/models"
)

// Seeds the default tag set and, when -ingredients is given, imports
// ingredients from a CSV of "name,measurement_unit" rows.
func main() {
	ingredientsCSV := flag.String("ingredients", "", "path to ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seedTags(db); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	if *ingredientsCSV != "" {
		n, err := importIngredients(db, *ingredientsCSV)
		if err != nil {
			log.Fatalf("Failed to import ingredients: %v", err)
		}
		log.Printf("Imported %d ingredients", n)
	}

	log.Println("Seeding complete")
}

func seedTags(db *gorm.DB) error {
	tags := []models.Tag{
		{Name: "Breakfast", Color: "#fff0f5", Slug: "breakfast"},
		{Name: "Lunch", Color: "#ffb6c1", Slug: "lunch"},
		{Name: "Dinner", Color: "#cd5c5c", Slug: "dinner"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error
}

func importIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading %s: %w", path, err)
		}

		ingredient := models.Ingredient{Name: record[0], MeasurementUnit: record[1]}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
