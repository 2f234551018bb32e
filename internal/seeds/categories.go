package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/goccy/go-yaml"
	"gorm.io/gorm"
)

type categorySeed struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Events      []string `yaml:"events"`
}

type categoryFile struct {
	Categories []categorySeed `yaml:"categories"`
}

// SeedCategories loads the category/event taxonomy and the mappings between
// them. Events shared by several categories (Hurricane, Tornado) are created
// once and linked from each.
func SeedCategories() error {
	file, err := os.ReadFile("internal/seeds/data/categories.yaml")
	if err != nil {
		return fmt.Errorf("could not read categories.yaml: %w", err)
	}

	var data categoryFile
	if err := yaml.Unmarshal(file, &data); err != nil {
		return fmt.Errorf("failed to parse categories.yaml: %w", err)
	}

	for _, seed := range data.Categories {
		category, err := ensureCategory(seed)
		if err != nil {
			return err
		}

		for _, eventName := range seed.Events {
			event, err := ensureEvent(eventName)
			if err != nil {
				return err
			}
			if err := ensureMapping(category.ID, event.ID); err != nil {
				return err
			}
		}
	}

	log.Printf("✅ Seeded %d categories", len(data.Categories))
	return nil
}

func ensureCategory(seed categorySeed) (*common.Category, error) {
	var existing common.Category
	err := db.DB.First(&existing, "name = ?", seed.Name).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("DB error on category %s: %w", seed.Name, err)
	}

	category := common.Category{
		Name:        seed.Name,
		Description: seed.Description,
		Status:      true,
	}
	if err := db.DB.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", seed.Name, err)
	}
	return &category, nil
}

func ensureEvent(name string) (*common.Event, error) {
	var existing common.Event
	err := db.DB.First(&existing, "name = ?", name).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("DB error on event %s: %w", name, err)
	}

	event := common.Event{Name: name, Status: true}
	if err := db.DB.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event %s: %w", name, err)
	}
	return &event, nil
}

func ensureMapping(categoryID, eventID uint) error {
	var existing common.CategoryEventMapping
	err := db.DB.First(&existing, "category_id = ? AND event_id = ?", categoryID, eventID).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("DB error on mapping %d/%d: %w", categoryID, eventID, err)
	}

	mapping := common.CategoryEventMapping{CategoryID: categoryID, EventID: eventID}
	if err := db.DB.Create(&mapping).Error; err != nil {
		return fmt.Errorf("failed to create mapping %d/%d: %w", categoryID, eventID, err)
	}
	return nil
}
