package billing

import (
	"database/sql"
	"fmt"

	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"
)

// SettingKeyPricing is the settings-store key holding the pricing policy.
const SettingKeyPricing = "pricing_policy"

// PricingPolicy holds the per-currency price points (in minor currency
// units) and the global split-payment toggle.
type PricingPolicy struct {
	Prices     map[string]int64 `json:"prices"`
	AllowSplit bool             `json:"allow_split"`
}

// DefaultPolicy is the hard-coded fallback used when the settings store has
// no pricing row (or is unreachable). Checkout must never hard-fail just
// because the settings store is cold.
func DefaultPolicy() PricingPolicy {
	return PricingPolicy{
		Prices: map[string]int64{
			"EUR": 9000,   // 90.00 EUR in cents
			"XOF": 60000,  // zero-decimal currency
			"GNF": 900000, // zero-decimal currency
		},
		AllowSplit: false,
	}
}

// LoadPolicy reads the pricing policy from the settings store, filling any
// missing currency from the defaults. Every failure path degrades to the
// default policy.
func LoadPolicy(db *sql.DB) PricingPolicy {
	var p PricingPolicy
	if err := database.GetSetting(db, SettingKeyPricing, &p); err != nil {
		if err != sql.ErrNoRows {
			log := logger.Get()
			log.Warn().Err(err).Msg("Failed to load pricing policy, using defaults")
		}
		return DefaultPolicy()
	}

	defaults := DefaultPolicy()
	if p.Prices == nil {
		p.Prices = defaults.Prices
		return p
	}
	for cur, amount := range defaults.Prices {
		if _, ok := p.Prices[cur]; !ok {
			p.Prices[cur] = amount
		}
	}
	return p
}

// SavePolicy persists the pricing policy.
func SavePolicy(db *sql.DB, p PricingPolicy) error {
	return database.UpsertSetting(db, SettingKeyPricing, p)
}

// PriceFor returns the price point for a currency.
func (p PricingPolicy) PriceFor(currency string) (int64, error) {
	amount, ok := p.Prices[currency]
	if !ok {
		return 0, fmt.Errorf("no price configured for currency %q", currency)
	}
	return amount, nil
}

// CanSplit reports whether a user may pay in two installments: the global
// toggle AND the per-user flag must both be set. A missing policy defaults
// the toggle to false, so an unconfigured store never grants the entitlement.
func (p PricingPolicy) CanSplit(userEnabled bool) bool {
	return p.AllowSplit && userEnabled
}
