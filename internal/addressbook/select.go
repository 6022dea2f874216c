package addressbook

import "github.com/alextreichler/storefront/internal/models"

// Select picks the address to preselect at checkout: the first default,
// otherwise the first address. Zero or several defaults are tolerated.
func Select(addrs []models.Address) (models.Address, bool) {
	for _, a := range addrs {
		if a.IsDefault {
			return a, true
		}
	}
	if len(addrs) > 0 {
		return addrs[0], true
	}
	return models.Address{}, false
}

func Find(addrs []models.Address, id string) (models.Address, bool) {
	for _, a := range addrs {
		if a.ID == id {
			return a, true
		}
	}
	return models.Address{}, false
}
