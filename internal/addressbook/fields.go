package addressbook

import (
	"encoding/json"
	"strings"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
)

// Fields is the user-editable part of an address.
type Fields struct {
	Label         string `json:"label"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	ZipCode       string `json:"zip_code"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"is_default"`

	conflict bool
}

// UnmarshalJSON accepts "state" as an alias of "province". Sending both with
// different values is rejected by Validate instead of picking one.
func (f *Fields) UnmarshalJSON(data []byte) error {
	type plain Fields
	var aux struct {
		plain
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Fields(aux.plain)
	state := strings.TrimSpace(aux.State)
	switch {
	case state == "":
	case strings.TrimSpace(f.Province) == "":
		f.Province = state
	case !strings.EqualFold(strings.TrimSpace(f.Province), state):
		f.conflict = true
	}
	return nil
}

var requiredFields = []struct {
	name    string
	message string
	get     func(Fields) string
}{
	{"label", "Please enter an address label (e.g., Home, Work)", func(f Fields) string { return f.Label }},
	{"full_name", "Please enter your full name", func(f Fields) string { return f.FullName }},
	{"phone_number", "Please enter your phone number", func(f Fields) string { return f.PhoneNumber }},
	{"street_address", "Please enter your street address", func(f Fields) string { return f.StreetAddress }},
	{"city", "Please enter your city", func(f Fields) string { return f.City }},
	{"zip_code", "Please enter your ZIP code", func(f Fields) string { return f.ZipCode }},
}

// Validate trims every field and reports the first blank required one.
func (f Fields) Validate() (Fields, error) {
	if f.conflict {
		return f, apperr.Validation("province", "Province and state disagree; send only one")
	}
	out := Fields{
		Label:         strings.TrimSpace(f.Label),
		FullName:      strings.TrimSpace(f.FullName),
		PhoneNumber:   strings.TrimSpace(f.PhoneNumber),
		StreetAddress: strings.TrimSpace(f.StreetAddress),
		City:          strings.TrimSpace(f.City),
		Province:      strings.TrimSpace(f.Province),
		ZipCode:       strings.TrimSpace(f.ZipCode),
		Country:       strings.TrimSpace(f.Country),
		IsDefault:     f.IsDefault,
	}
	for _, rf := range requiredFields {
		if rf.get(out) == "" {
			return out, apperr.Validation(rf.name, rf.message)
		}
	}
	return out, nil
}

func (f Fields) apply(a *models.Address) {
	a.Label = f.Label
	a.FullName = f.FullName
	a.PhoneNumber = f.PhoneNumber
	a.StreetAddress = f.StreetAddress
	a.City = f.City
	a.Province = f.Province
	a.ZipCode = f.ZipCode
	a.Country = f.Country
	a.IsDefault = f.IsDefault
}
