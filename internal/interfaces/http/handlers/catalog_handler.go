package handlers

import (
	"net/http"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
)

// CatalogHandler serves the static reference lists.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler { return &CatalogHandler{} }

// CountriesResponse lists every country the classifier can emit and the
// accepted short codes.
type CountriesResponse struct {
	Countries []string          `json:"countries"`
	Codes     map[string]string `json:"codes"`
}

// Countries handles GET /api/v1/countries.
func (h *CatalogHandler) Countries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CountriesResponse{
		Countries: supplier.Countries(),
		Codes:     supplier.CountryCodes(),
	})
}

// Examples handles GET /api/v1/examples.
func (h *CatalogHandler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"examples": supplier.Examples()})
}

//Personal.AI order the ending
