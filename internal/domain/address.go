package domain

// AddressKind distinguishes the preset "home" address from labelled extras.
type AddressKind string

const (
	AddressHome  AddressKind = "home"
	AddressOther AddressKind = "other"
)

// Address is one delivery address in the user's address book.
// PostalCode is derived from the sub-district selection and is never
// accepted from callers directly. IsDefault is a hint only; the backend
// enforces at-most-one default per user.
type Address struct {
	ID            int64       `json:"id"`
	RecipientName string      `json:"recipient_name"`
	LastName      string      `json:"last_name"`
	Phone         string      `json:"phone"`
	AddressText   string      `json:"address_text"`
	ProvinceID    int         `json:"province_id"`
	DistrictID    int         `json:"district_id"`
	SubDistrictID int         `json:"sub_district_id"`
	PostalCode    string      `json:"postal_code"`
	Kind          AddressKind `json:"kind"`
	Label         string      `json:"label,omitempty"`
	IsDefault     bool        `json:"is_default"`
}

// DefaultOrFirst picks the address checkout should preselect: the default
// if one exists, otherwise the first entry, otherwise nil.
func DefaultOrFirst(addrs []Address) *Address {
	for i := range addrs {
		if addrs[i].IsDefault {
			return &addrs[i]
		}
	}
	if len(addrs) > 0 {
		return &addrs[0]
	}
	return nil
}
