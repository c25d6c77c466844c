package domain

// CatalogService is the read-only view of a provider's service offering that
// the reservation core depends on. The catalog itself is owned elsewhere;
// the core only reads owner, rate and active flag, and fails closed when the
// service is inactive or the owner does not match the slot.
type CatalogService struct {
	ID         string  `json:"id"`
	ProviderID string  `json:"provider_id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
	Active     bool    `json:"active"`
}

// PriceFor computes the booking price for a duration in minutes. The price
// is fixed at booking creation and never recomputed afterwards.
func (s *CatalogService) PriceFor(durationMinutes int) float64 {
	return s.HourlyRate * float64(durationMinutes) / 60.0
}
