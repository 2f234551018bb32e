package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func idParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err
}

// --- Categories ---

func ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var categories []Category
	q := db.DB
	if r.URL.Query().Get("include_inactive") != "true" {
		q = q.Where("status = ?", true)
	}
	if err := q.Order("name").Find(&categories).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, categories)
}

func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input Category
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	input.ID = 0
	input.Status = true
	if err := db.DB.Create(&input).Error; err != nil {
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, input)
}

func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var category Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	allowed := map[string]bool{"name": true, "description": true, "image_url": true, "status": true}
	for k := range updates {
		if !allowed[k] {
			delete(updates, k)
		}
	}

	if err := db.DB.Model(&category).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update category", http.StatusInternalServerError)
		return
	}
	writeJSON(w, category)
}

func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	softDelete(w, r, &Category{}, "Category")
}

// --- Events ---

func ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	var events []Event
	q := db.DB
	if r.URL.Query().Get("include_inactive") != "true" {
		q = q.Where("status = ?", true)
	}
	if err := q.Order("name").Find(&events).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var input Event
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	input.ID = 0
	input.Status = true
	if err := db.DB.Create(&input).Error; err != nil {
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, input)
}

func DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	softDelete(w, r, &Event{}, "Event")
}

// --- States / Zipcodes (read-only reference data) ---

func ListStatesHandler(w http.ResponseWriter, r *http.Request) {
	var states []State
	if err := db.DB.Order("code").Find(&states).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, states)
}

func ListZipcodesHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Where("status = ?", true)
	if region := r.URL.Query().Get("zone_county_id"); region != "" {
		q = q.Where("zone_county_id = ?", region)
	}

	var zipcodes []Zipcode
	if err := q.Order("code").Limit(500).Find(&zipcodes).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, zipcodes)
}

// --- Policyholders ---

func ListPolicyholdersHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Where("status = ?", true)
	if zip := r.URL.Query().Get("zipcode_id"); zip != "" {
		q = q.Where("zipcode_id = ?", zip)
	}

	var holders []Policyholder
	if err := q.Order("policy_id").Limit(500).Find(&holders).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, holders)
}

func CreatePolicyholderHandler(w http.ResponseWriter, r *http.Request) {
	var input Policyholder
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.PolicyID == "" || input.Name == "" || input.ZipcodeID == 0 {
		http.Error(w, "policy_id, name and zipcode_id are required", http.StatusBadRequest)
		return
	}

	var zip Zipcode
	if err := db.DB.First(&zip, input.ZipcodeID).Error; err != nil {
		http.Error(w, "Unknown zipcode_id", http.StatusBadRequest)
		return
	}

	input.ID = 0
	input.Status = true
	if err := db.DB.Create(&input).Error; err != nil {
		http.Error(w, "Failed to create policyholder", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, input)
}

func DeletePolicyholderHandler(w http.ResponseWriter, r *http.Request) {
	softDelete(w, r, &Policyholder{}, "Policyholder")
}

// softDelete flips the status flag instead of removing the row; the
// reference tables are append-only.
func softDelete(w http.ResponseWriter, r *http.Request, model interface{}, label string) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	res := db.DB.Model(model).Where("id = ?", id).Update("status", false)
	if res.Error != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, label+" not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
