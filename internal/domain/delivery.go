package domain

import (
	"encoding/json"
	"strings"
)

type Country string

const (
	CountryUS Country = "US"
	CountryCA Country = "CA"
	CountryGB Country = "GB"
	CountryDE Country = "DE"
	CountryFR Country = "FR"
	CountryAU Country = "AU"
)

var countries = map[Country]string{
	CountryUS: "United States",
	CountryCA: "Canada",
	CountryGB: "United Kingdom",
	CountryDE: "Germany",
	CountryFR: "France",
	CountryAU: "Australia",
}

func (c Country) Valid() bool {
	_, ok := countries[c]
	return ok
}

func (c Country) DisplayName() string {
	if name, ok := countries[c]; ok {
		return name
	}
	return string(c)
}

// UnmarshalJSON accepts any case and maps unknown codes to the empty country.
func (c *Country) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	code := Country(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		code = ""
	}
	*c = code
	return nil
}

type DeliveryInfo struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Address   string  `json:"address" validate:"required"`
	City      string  `json:"city" validate:"required"`
	ZipCode   string  `json:"zipCode" validate:"required"`
	Country   Country `json:"country"`
	Phone     string  `json:"phone" validate:"required"`
	Email     string  `json:"email" validate:"required,storeemail"`
}

func (d DeliveryInfo) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// ShippingAddress is the single-line address sent with the order.
func (d DeliveryInfo) ShippingAddress() string {
	parts := []string{strings.TrimSpace(d.Address)}
	cityLine := strings.TrimSpace(strings.TrimSpace(d.City) + " " + strings.TrimSpace(d.ZipCode))
	if cityLine != "" {
		parts = append(parts, cityLine)
	}
	if d.Country != "" {
		parts = append(parts, d.Country.DisplayName())
	}
	return strings.Join(parts, ", ")
}
