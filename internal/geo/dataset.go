package geo

import "strconv"

// The dataset is the public Thai administrative hierarchy: provinces own
// amphures (districts), amphures own tambons (sub-districts), and the tambon
// carries the authoritative postal code. Loaded once, read-only afterwards.

type Province struct {
	ID       int       `json:"id"`
	NameTH   string    `json:"name_th"`
	NameEN   string    `json:"name_en"`
	Amphures []Amphure `json:"amphure"`
}

type Amphure struct {
	ID      int      `json:"id"`
	NameTH  string   `json:"name_th"`
	NameEN  string   `json:"name_en"`
	Tambons []Tambon `json:"tambon"`
}

type Tambon struct {
	ID      int    `json:"id"`
	NameTH  string `json:"name_th"`
	NameEN  string `json:"name_en"`
	ZipCode int    `json:"zip_code"`
}

// PostalCode renders the tambon zip as a string. Some dataset entries have
// no zip; those resolve to "" and the address form shows "to be confirmed"
// instead of blocking submission.
func (t Tambon) PostalCode() string {
	if t.ZipCode == 0 {
		return ""
	}
	return strconv.Itoa(t.ZipCode)
}
