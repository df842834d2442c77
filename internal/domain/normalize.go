package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TariffDetailKey is the raw record key holding the tariff substructure.
const TariffDetailKey = "tariffs_v2"

// eventIDNamespace seeds name-based IDs for records that arrive without one.
var eventIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://events.newscatcherapi.xyz/tariffs_v2"))

// Normalizer turns raw upstream records into canonical events.
type Normalizer struct {
	ref        *CountryReference
	matchNames bool
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithNameMatching fills in missing country codes by looking the supplied
// names up in the reference (case and diacritic insensitive, with aliases).
func WithNameMatching() NormalizerOption {
	return func(n *Normalizer) { n.matchNames = true }
}

// NewNormalizer creates a Normalizer backed by ref.
func NewNormalizer(ref *CountryReference, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{ref: ref}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a batch of raw records. Records without a tariff
// substructure are dropped; every other record yields exactly one event, in
// input order.
func (n *Normalizer) Normalize(raw []RawEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		if e, ok := n.NormalizeEvent(r); ok {
			events = append(events, e)
		}
	}
	return events
}

// NormalizeEvent converts a single raw record. It reports false when the
// record has no tariff substructure (the key is missing, null, or not an
// object). An empty substructure still produces an event with default fields.
func (n *Normalizer) NormalizeEvent(raw RawEvent) (Event, bool) {
	td, ok := asObject(raw[TariffDetailKey])
	if !ok {
		return Event{}, false
	}

	return Event{
		ID:              EventID(raw),
		EventType:       textField(raw, "event_type"),
		GlobalEventType: textField(raw, "global_event_type"),

		ExtractionDate:     dateField(raw, "extraction_date"),
		AnnouncementDate:   dateField(td, "announcement_date"),
		ImplementationDate: dateField(td, "implementation_date"),
		ExpirationDate:     dateField(td, "expiration_date"),

		ImposingCountry:   n.imposingCountry(td),
		TargetedCountries: n.targetedCountries(td),

		MeasureType:         textField(td, "measure_type"),
		AffectedIndustries:  stringList(td["affected_industries"]),
		AffectedProducts:    stringList(td["affected_products"]),
		HSProductCategories: stringList(td["hs_product_categories"]),
		TariffRates:         stringList(td["tariff_rates"]),
		MainTariffRate:      parseRate(td["main_tariff_rate"]),

		RelevanceScore:  textField(td, "relevance_score"),
		Summary:         textField(td, "summary"),
		PolicyObjective: textField(td, "policy_objective"),
		LegalBasis:      textField(td, "legal_basis"),

		Articles: cleanArticles(raw["articles"]),
	}, true
}

// EventID keeps the upstream ID, or derives a stable one from the record
// content so that reprocessing the same record yields the same ID.
func EventID(raw RawEvent) string {
	if id := textField(raw, "id"); id != "" {
		return id
	}
	return uuid.NewSHA1(eventIDNamespace, []byte(jsonString(map[string]any(raw)))).String()
}

// imposingCountry prefers the reference name for a resolvable code, then the
// supplied name.
func (n *Normalizer) imposingCountry(td map[string]any) Country {
	code := strings.TrimSpace(textField(td, "imposing_country_code"))
	name := textField(td, "imposing_country_name")

	if code == "" {
		code = firstOf(when(n.matchNames, codeByName(n.ref, name)))
	}
	return Country{
		Name: firstOf(nameByCode(n.ref, code), literal(name)),
		Code: code,
	}
}

// targetedCountries reconciles the parallel code and name lists. Codes drive
// the result when present; otherwise the names list is the whole target set.
func (n *Normalizer) targetedCountries(td map[string]any) []Country {
	codes := positionalList(td["targeted_country_codes"])
	names := positionalList(td["targeted_country_names"])

	if len(nonEmpty(codes)) == 0 {
		names = nonEmpty(names)
		out := make([]Country, len(names))
		for i, name := range names {
			out[i] = Country{
				Name: name,
				Code: firstOf(when(n.matchNames, codeByName(n.ref, name))),
			}
		}
		return out
	}

	out := make([]Country, 0, len(codes))
	for i, code := range codes {
		if code == "" {
			continue
		}
		out = append(out, Country{
			Name: firstOf(nameByCode(n.ref, code), atPosition(names, i), literal(code)),
			Code: code,
		})
	}
	return out
}
