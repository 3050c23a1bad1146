package geo

import (
	"errors"
	"sync"
)

// ErrInvalidState is returned when a child level is selected before its
// parent: district before province, sub-district before district.
var ErrInvalidState = errors.New("geo selection out of order")

// Selection is the resolver's current cascade state. PostalCode is derived
// from the sub-district and is the only way it is ever produced.
type Selection struct {
	ProvinceID    int
	DistrictID    int
	SubDistrictID int
	PostalCode    string
}

// Resolver walks the province → district → sub-district cascade, enforcing
// that each level is only selectable once its parent is chosen and that
// re-selecting a parent resets every descendant selection.
type Resolver struct {
	mu        sync.Mutex
	provinces []Province
	sel       Selection
	province  *Province
	district  *Amphure
}

func NewResolver(provinces []Province) *Resolver {
	return &Resolver{provinces: provinces}
}

// Provinces returns the full top-level list for the address form.
func (r *Resolver) Provinces() []Province {
	return r.provinces
}

// SelectProvince picks a province and returns its districts. Descendant
// selections are always cleared. An unknown id clears the whole selection
// and yields an empty list rather than an error.
func (r *Resolver) SelectProvince(id int) []Amphure {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.district = nil
	r.sel.DistrictID = 0
	r.sel.SubDistrictID = 0
	r.sel.PostalCode = ""

	for i := range r.provinces {
		if r.provinces[i].ID == id {
			r.province = &r.provinces[i]
			r.sel.ProvinceID = id
			return r.provinces[i].Amphures
		}
	}

	r.province = nil
	r.sel.ProvinceID = 0
	return nil
}

// SelectDistrict picks a district within the selected province and returns
// its sub-districts. Requires a province selection.
func (r *Resolver) SelectDistrict(id int) ([]Tambon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.province == nil {
		return nil, ErrInvalidState
	}

	r.sel.SubDistrictID = 0
	r.sel.PostalCode = ""

	for i := range r.province.Amphures {
		if r.province.Amphures[i].ID == id {
			r.district = &r.province.Amphures[i]
			r.sel.DistrictID = id
			return r.province.Amphures[i].Tambons, nil
		}
	}

	r.district = nil
	r.sel.DistrictID = 0
	return nil, nil
}

// SelectSubDistrict picks a sub-district within the selected district and
// resolves the postal code. Requires a district selection.
func (r *Resolver) SelectSubDistrict(id int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.district == nil {
		return "", ErrInvalidState
	}

	for _, t := range r.district.Tambons {
		if t.ID == id {
			r.sel.SubDistrictID = id
			r.sel.PostalCode = t.PostalCode()
			return r.sel.PostalCode, nil
		}
	}

	r.sel.SubDistrictID = 0
	r.sel.PostalCode = ""
	return "", nil
}

// Selection returns a copy of the current cascade state.
func (r *Resolver) Selection() Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel
}

// Complete reports whether all three levels are selected, which address
// submission requires. A missing postal code does not block completion.
func (r *Resolver) Complete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel.ProvinceID != 0 && r.sel.DistrictID != 0 && r.sel.SubDistrictID != 0
}

// Reset clears the whole cascade.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.province = nil
	r.district = nil
	r.sel = Selection{}
}
