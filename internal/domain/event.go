package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawMessage represents an unprocessed message from the source topic. Its
// Value holds one upstream batch envelope.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawEvent is a single upstream event record. Its shape is untrusted: any key
// may be missing, null, a scalar, or a list.
type RawEvent map[string]any

// RawBatch is the upstream response envelope: {"events": [...], "count": n}.
type RawBatch struct {
	Events []RawEvent `json:"events" yaml:"events"`
	Count  *int       `json:"count,omitempty" yaml:"count,omitempty"`
}

// Total returns the envelope count when present, else the number of events.
func (b RawBatch) Total() int {
	if b.Count != nil {
		return *b.Count
	}
	return len(b.Events)
}

// Country is a resolved country identity. Code is empty when unknown.
type Country struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

func (c Country) String() string { return c.Name }

// Article is a news article attached to an event.
type Article struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Link          string   `json:"link" yaml:"link"`
	Media         string   `json:"media" yaml:"media"`
	PublishedDate string   `json:"published_date" yaml:"published_date"`
	NameSource    string   `json:"name_source" yaml:"name_source"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Content       string   `json:"content,omitempty" yaml:"content,omitempty"`
	Authors       []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Language      string   `json:"language,omitempty" yaml:"language,omitempty"`
}

func (a Article) String() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Link
}

// Event is the canonical tariff event. List fields are never nil and dates are
// either YYYY-MM-DD style strings or empty.
type Event struct {
	ID              string `json:"id" yaml:"id"`
	EventType       string `json:"event_type,omitempty" yaml:"event_type,omitempty"`
	GlobalEventType string `json:"global_event_type,omitempty" yaml:"global_event_type,omitempty"`

	ExtractionDate     string `json:"extraction_date,omitempty" yaml:"extraction_date,omitempty"`
	AnnouncementDate   string `json:"announcement_date,omitempty" yaml:"announcement_date,omitempty"`
	ImplementationDate string `json:"implementation_date,omitempty" yaml:"implementation_date,omitempty"`
	ExpirationDate     string `json:"expiration_date,omitempty" yaml:"expiration_date,omitempty"`

	ImposingCountry   Country   `json:"imposing_country" yaml:"imposing_country"`
	TargetedCountries []Country `json:"targeted_countries" yaml:"targeted_countries"`

	MeasureType         string   `json:"measure_type" yaml:"measure_type"`
	AffectedIndustries  []string `json:"affected_industries" yaml:"affected_industries"`
	AffectedProducts    []string `json:"affected_products" yaml:"affected_products"`
	HSProductCategories []string `json:"hs_product_categories" yaml:"hs_product_categories"`
	TariffRates         []string `json:"tariff_rates" yaml:"tariff_rates"`
	MainTariffRate      *float64 `json:"main_tariff_rate,omitempty" yaml:"main_tariff_rate,omitempty"`

	RelevanceScore  string `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
	Summary         string `json:"summary,omitempty" yaml:"summary,omitempty"`
	PolicyObjective string `json:"policy_objective,omitempty" yaml:"policy_objective,omitempty"`
	LegalBasis      string `json:"legal_basis,omitempty" yaml:"legal_basis,omitempty"`

	Articles []Article `json:"articles" yaml:"articles"`
}

// TargetedNames returns the targeted country names in source order.
func (e Event) TargetedNames() []string {
	names := make([]string, len(e.TargetedCountries))
	for i, c := range e.TargetedCountries {
		names[i] = c.Name
	}
	return names
}

// TargetedCodes returns the targeted country codes in source order; entries
// without a code are empty strings.
func (e Event) TargetedCodes() []string {
	codes := make([]string, len(e.TargetedCountries))
	for i, c := range e.TargetedCountries {
		codes[i] = c.Code
	}
	return codes
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeEvent marshals a canonical event into a sink message keyed by the
// event ID.
func SerializeEvent(event Event) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize tariff event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"measure_type":          event.MeasureType,
			"imposing_country_code": event.ImposingCountry.Code,
			"processed_at":          clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
