// Package address manages the user's address book. Geo selections are
// validated through the hierarchy resolver before anything reaches the
// backend, and the postal code is always derived from the sub-district,
// never accepted from the caller.
package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/geo"
)

var (
	// ErrIncompleteSelection rejects forms whose province/district/
	// sub-district cascade is not fully selected. Raised before any
	// network call.
	ErrIncompleteSelection = errors.New("address requires province, district and sub-district")

	// ErrLabelRequired rejects kind=other addresses without a label.
	ErrLabelRequired = errors.New("label is required for addresses of kind other")
)

// API is the slice of the backend client the address book uses.
type API interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateAddress(ctx context.Context, addr domain.Address) (domain.Address, error)
	UpdateAddress(ctx context.Context, addr domain.Address) (domain.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
}

// Form is the client-supplied address input. Note there is no postal code
// field: it is resolved from the sub-district.
type Form struct {
	RecipientName string             `json:"recipient_name"`
	LastName      string             `json:"last_name"`
	Phone         string             `json:"phone"`
	AddressText   string             `json:"address_text"`
	ProvinceID    int                `json:"province_id"`
	DistrictID    int                `json:"district_id"`
	SubDistrictID int                `json:"sub_district_id"`
	Kind          domain.AddressKind `json:"kind"`
	Label         string             `json:"label"`
	IsDefault     bool               `json:"is_default"`
}

type Service struct {
	api    API
	loader *geo.Loader
	log    zerolog.Logger
}

func NewService(api API, loader *geo.Loader, log zerolog.Logger) *Service {
	return &Service{
		api:    api,
		loader: loader,
		log:    log.With().Str("component", "address").Logger(),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Address, error) {
	return s.api.ListAddresses(ctx)
}

func (s *Service) Create(ctx context.Context, form Form) (domain.Address, error) {
	addr, err := s.resolve(ctx, form)
	if err != nil {
		return domain.Address{}, err
	}

	created, err := s.api.CreateAddress(ctx, addr)
	if err != nil {
		return domain.Address{}, fmt.Errorf("create address: %w", err)
	}
	s.log.Info().Int64("address_id", created.ID).Msg("address created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, form Form) (domain.Address, error) {
	addr, err := s.resolve(ctx, form)
	if err != nil {
		return domain.Address{}, err
	}
	addr.ID = id

	updated, err := s.api.UpdateAddress(ctx, addr)
	if err != nil {
		return domain.Address{}, fmt.Errorf("update address: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteAddress(ctx, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// resolve validates the form and walks the geo cascade to derive the postal
// code. Validation failures never reach the network.
func (s *Service) resolve(ctx context.Context, form Form) (domain.Address, error) {
	if form.ProvinceID == 0 || form.DistrictID == 0 || form.SubDistrictID == 0 {
		return domain.Address{}, ErrIncompleteSelection
	}
	kind := form.Kind
	if kind == "" {
		kind = domain.AddressHome
	}
	if kind == domain.AddressOther && form.Label == "" {
		return domain.Address{}, ErrLabelRequired
	}

	provinces, err := s.loader.Load(ctx)
	if err != nil {
		return domain.Address{}, fmt.Errorf("load geo dataset: %w", err)
	}

	r := geo.NewResolver(provinces)
	if districts := r.SelectProvince(form.ProvinceID); len(districts) == 0 {
		return domain.Address{}, ErrIncompleteSelection
	}
	if _, err := r.SelectDistrict(form.DistrictID); err != nil {
		return domain.Address{}, err
	}
	postal, err := r.SelectSubDistrict(form.SubDistrictID)
	if err != nil {
		return domain.Address{}, err
	}
	if !r.Complete() {
		return domain.Address{}, ErrIncompleteSelection
	}

	return domain.Address{
		RecipientName: form.RecipientName,
		LastName:      form.LastName,
		Phone:         form.Phone,
		AddressText:   form.AddressText,
		ProvinceID:    form.ProvinceID,
		DistrictID:    form.DistrictID,
		SubDistrictID: form.SubDistrictID,
		PostalCode:    postal,
		Kind:          kind,
		Label:         form.Label,
		IsDefault:     form.IsDefault,
	}, nil
}
