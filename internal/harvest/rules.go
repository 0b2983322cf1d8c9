package harvest

// stringSet is a membership helper for the rule tables below.
type stringSet map[string]struct{}

func newStringSet(items ...string) stringSet {
	s := make(stringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s stringSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Rules bundles the lookup tables that drive record classification and
// field canonicalization. All table entries are lowercase; lookups
// lowercase the incoming key first. Callers normally start from
// DefaultRules, but the tables are plain data so tests can build
// narrower variants.
type Rules struct {
	// Remap translates known vendor aliases, after unit-suffix
	// stripping, to canonical metric names.
	Remap map[string]string

	// CentsLike lists field names that carry cent amounts without a
	// unit suffix and therefore still divide by 100.
	CentsLike stringSet

	// DateKeys are field names that carry a record's date.
	DateKeys stringSet

	// SkipKeys are identifier and dimension fields that must never be
	// read as metric values even when they look numeric.
	SkipKeys stringSet

	// RangeHints mark a record as a multi-day aggregate when any of
	// them appears among its keys.
	RangeHints stringSet

	// DayContainers veto the range-aggregate classification: their
	// presence means the record still carries per-day breakdowns.
	DayContainers stringSet
}

// DefaultRules returns the tables for the payload shapes seen across
// seller dashboard and ads API captures.
func DefaultRules() *Rules {
	return &Rules{
		Remap: map[string]string{
			"impressions":            "views",
			"ad_impressions":         "views",
			"attributed_impressions": "views",
			"impressioncount":        "views",
			"impression_count":       "views",

			"clicks":            "clicks",
			"click_throughs":    "clicks",
			"attributed_clicks": "clicks",
			"charged_clicks":    "clicks",
			"clickcount":        "clicks",
			"click_count":       "clicks",

			"orders":            "orders",
			"purchases":         "orders",
			"purchasecount":     "orders",
			"ordercount":        "orders",
			"conversions":       "orders",
			"attributed_orders": "orders",

			"revenue":          "revenue",
			"sales":            "revenue",
			"attributed_sales": "revenue",
			"sales_cents":      "revenue",
			"revenue_cents":    "revenue",

			"spend":        "spend",
			"spend_cents":  "spend",
			"cost_cents":   "spend",
			"spend_micros": "spend",
			"cost_micros":  "spend",
			"spenttotal":   "spend",
			"spendtotal":   "spend",
			"spend_total":  "spend",
			"costtotal":    "spend",
		},
		CentsLike:     newStringSet("spenttotal", "spendtotal", "spend_total", "costtotal"),
		DateKeys:      newStringSet("date", "day", "timestamp"),
		SkipKeys:      newStringSet("id", "listing_id", "campaign_id", "ad_group_id", "shop_id", "country", "currency", "__typename"),
		RangeHints:    newStringSet("startdate", "enddate", "start_date", "end_date", "from", "to", "date_range", "range", "period", "total", "totals", "sum"),
		DayContainers: newStringSet("days", "daily", "by_day", "series", "data", "datapoints"),
	}
}
