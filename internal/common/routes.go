package common

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/categories", ListCategoriesHandler)
	r.Post("/categories", CreateCategoryHandler)
	r.Patch("/categories/{id}", UpdateCategoryHandler)
	r.Delete("/categories/{id}", DeleteCategoryHandler)

	r.Get("/events", ListEventsHandler)
	r.Post("/events", CreateEventHandler)
	r.Delete("/events/{id}", DeleteEventHandler)

	r.Get("/states", ListStatesHandler)
	r.Get("/zipcodes", ListZipcodesHandler)

	r.Get("/policyholders", ListPolicyholdersHandler)
	r.Post("/policyholders", CreatePolicyholderHandler)
	r.Delete("/policyholders/{id}", DeletePolicyholderHandler)

	return r
}
