// Package domain models tariff and trade-policy events reported by a news
// events API and reconciles them into a canonical, aggregation-ready form.
//
// # Data Source
//
// Events come from the NewsCatcher events search endpoint with event type
// "tariffs_v2", either live or from a sample file of the same shape:
//
//	{"events": [ {...}, ... ], "count": 42}
//
// Each event carries top-level metadata (id, extraction_date, event_type,
// articles) and a nested "tariffs_v2" object with the tariff detail. A record
// without that object carries nothing to normalize and is dropped. A present
// but empty object still yields an event with every field at its default.
//
// # Upstream Conventions
//
// Countries:
//
//	imposing_country_code  "US"                    alpha-2, may be missing
//	imposing_country_name  "United States"         free text
//	targeted_country_codes ["CN","EU"] or "CN, EU" parallel to names, may be missing
//	targeted_country_names ["China","European Union"]
//
// Codes drive resolution. A targeted entry takes the reference name for its
// code, else the name at the same position, else the code itself. Without any
// codes, the names list is the whole target set and codes stay empty.
//
// "EU" is not ISO 3166-1. It is a synthetic reference entry (name "European
// Union", alpha-3 "EUR") and a bloc: geo aggregation replaces it with its 27
// member states, each inheriting the full count.
//
// Dates:
//
//	"2024-03-05 14:30:00" -> "2024-03-05"
//	"2024/3"              -> "2024-03"
//	"2024/3/5"            -> "2024-03-05"
//
// Other forms pass through untouched.
//
// List fields (affected_industries, affected_products, hs_product_categories,
// tariff_rates) arrive as JSON lists or as comma-delimited strings. Both
// become lists; absent becomes an empty list, never null.
//
// main_tariff_rate may be a number or a numeric string. Anything else is
// treated as absent, so it neither counts toward nor drags down the average.
//
// # IDs
//
// Upstream IDs are kept. Records without one get a name-based UUID (SHA-1)
// over their JSON encoding, so replays produce the same ID.
package domain
