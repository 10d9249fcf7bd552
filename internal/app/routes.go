package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Daily budget
	r.HandleFunc("/api/budget/daily", deps.CalculationHandler.CalculateDaily).Methods("POST")
	r.HandleFunc("/api/budget/history", deps.CalculationHandler.GetHistory).Methods("GET")
}
