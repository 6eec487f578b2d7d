package config

import (
	"fmt"
	"sort"
)

// Require returns an error naming every empty variable in vars.
func Require(vars map[string]string) error {
	var missing []string
	for name, value := range vars {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required env: %v", missing)
	}
	return nil
}

// ServeRequirements lists the variables the HTTP server cannot start without.
func (c Config) ServeRequirements() map[string]string {
	return map[string]string{
		"DATABASE_URL":          c.DatabaseURL,
		"JWT_SECRET":            string(c.JWTAccessSecret),
		"STRIPE_API_KEY":        c.StripeAPIKey,
		"STRIPE_WEBHOOK_SECRET": c.StripeWebhookSecret,
	}
}
