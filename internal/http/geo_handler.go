package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/geo"
)

type GeoHandler struct {
	loader *geo.Loader
}

func NewGeoHandler(loader *geo.Loader) *GeoHandler {
	return &GeoHandler{loader: loader}
}

type ProvinceDTO struct {
	ID     int    `json:"id"`
	NameTH string `json:"name_th"`
	NameEN string `json:"name_en"`
}

type DistrictDTO struct {
	ID     int    `json:"id"`
	NameTH string `json:"name_th"`
}

type SubDistrictDTO struct {
	ID         int    `json:"id"`
	NameTH     string `json:"name_th"`
	PostalCode string `json:"postal_code"`
}

func (h *GeoHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.loader.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "dataset_unavailable", err.Error())
		return
	}

	out := make([]ProvinceDTO, 0, len(provinces))
	for _, p := range provinces {
		out = append(out, ProvinceDTO{ID: p.ID, NameTH: p.NameTH, NameEN: p.NameEN})
	}
	respondJSON(w, http.StatusOK, out)
}

// Districts lists the districts of one province. An unknown province id
// yields an empty list, mirroring the resolver's silent-miss behavior.
func (h *GeoHandler) Districts(w http.ResponseWriter, r *http.Request) {
	provinceID, err := strconv.Atoi(chi.URLParam(r, "province_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "province_id must be an integer")
		return
	}

	provinces, err := h.loader.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "dataset_unavailable", err.Error())
		return
	}

	resolver := geo.NewResolver(provinces)
	districts := resolver.SelectProvince(provinceID)

	out := make([]DistrictDTO, 0, len(districts))
	for _, d := range districts {
		out = append(out, DistrictDTO{ID: d.ID, NameTH: d.NameTH})
	}
	respondJSON(w, http.StatusOK, out)
}

// SubDistricts lists the sub-districts of a district within a province,
// with their resolved postal codes.
func (h *GeoHandler) SubDistricts(w http.ResponseWriter, r *http.Request) {
	provinceID, err := strconv.Atoi(chi.URLParam(r, "province_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "province_id must be an integer")
		return
	}
	districtID, err := strconv.Atoi(chi.URLParam(r, "district_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "district_id must be an integer")
		return
	}

	provinces, err := h.loader.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "dataset_unavailable", err.Error())
		return
	}

	resolver := geo.NewResolver(provinces)
	resolver.SelectProvince(provinceID)
	tambons, err := resolver.SelectDistrict(districtID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]SubDistrictDTO, 0, len(tambons))
	for _, t := range tambons {
		out = append(out, SubDistrictDTO{ID: t.ID, NameTH: t.NameTH, PostalCode: t.PostalCode()})
	}
	respondJSON(w, http.StatusOK, out)
}
