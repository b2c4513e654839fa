// Package charity holds the static descriptor for the single charity this
// instance serves.
package charity

import "givechain/internal/platform/config"

// Descriptor is fixed at construction; changing any field means redeploying.
type Descriptor struct {
	Link           string `json:"link"`
	RegisteredAt   string `json:"registered_at"`
	Name           string `json:"name"`
	Foundation     string `json:"foundation"`
	Source         string `json:"source"`
	SuggestedPrice string `json:"suggested_price"`
	ImageLocator   string `json:"image_locator"`
}

// FromConfig builds the descriptor from startup configuration.
func FromConfig(cfg config.CharityConfig) Descriptor {
	return Descriptor{
		Link:           cfg.Link,
		RegisteredAt:   cfg.RegisteredAt,
		Name:           cfg.Name,
		Foundation:     cfg.Foundation,
		Source:         cfg.Source,
		SuggestedPrice: cfg.SuggestedPrice,
		ImageLocator:   cfg.ImageLocator,
	}
}
