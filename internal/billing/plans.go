package billing

// Plan describes a subscription tier. Price IDs live in configuration, not
// here, because they differ between Stripe test and live mode.
type Plan struct {
	Key             string   `json:"key"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MonthlyPriceUSD int64    `json:"monthly_price_usd"`
	Features        []string `json:"features"`
}

// Catalog is the closed set of subscription tiers.
var Catalog = []Plan{
	{
		Key:             "starter",
		Name:            "Starter",
		Description:     "Perfect for small cleaning operations",
		MonthlyPriceUSD: 49,
		Features: []string{
			"Up to 5 team members",
			"Up to 20 properties",
			"100 jobs per month",
			"Basic support",
			"Mobile app access",
		},
	},
	{
		Key:             "professional",
		Name:            "Professional",
		Description:     "For growing cleaning businesses",
		MonthlyPriceUSD: 99,
		Features: []string{
			"Up to 15 team members",
			"Up to 100 properties",
			"Unlimited jobs",
			"Priority support",
			"Mobile app access",
			"Client portal",
			"Custom checklists",
		},
	},
	{
		Key:             "enterprise",
		Name:            "Enterprise",
		Description:     "For large-scale operations",
		MonthlyPriceUSD: 199,
		Features: []string{
			"Unlimited team members",
			"Unlimited properties",
			"Unlimited jobs",
			"24/7 priority support",
			"Mobile app access",
			"Client portal",
			"Custom checklists",
			"API access",
			"Custom integrations",
		},
	},
}

// PlanByKey returns the catalog entry for key.
func PlanByKey(key string) (Plan, bool) {
	for _, p := range Catalog {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}
