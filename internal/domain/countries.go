package domain

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

//go:embed data/country_codes_iso_3166.csv
var bundledCountryCodes []byte

// ErrReferenceFallback marks a reference table that could not be loaded. The
// accompanying CountryReference is the embedded fallback and is safe to use.
var ErrReferenceFallback = errors.New("country reference unavailable, using embedded fallback")

// CountryReference maps ISO 3166-1 alpha-2 codes to display names and alpha-3
// codes. It is immutable after construction and safe for concurrent use.
type CountryReference struct {
	names    map[string]string // alpha-2 -> name
	alpha3   map[string]string // alpha-2 -> alpha-3
	byName   map[string]string // folded name -> alpha-2
	fallback bool
}

type countryRecord struct {
	alpha2 string
	alpha3 string
	name   string
}

// syntheticCountries are merged after the base table and win on collision.
var syntheticCountries = []countryRecord{
	{alpha2: "EU", alpha3: "EUR", name: "European Union"},
	{alpha2: "XK", alpha3: "XKX", name: "Kosovo"},
}

// blocMembers lists the member territories of each bloc code (alpha-2).
var blocMembers = map[string][]string{
	"EU": {
		"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IE",
		"IT", "LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK", "SI", "ES", "SE",
	},
}

// countryAliases resolves common non-ISO spellings seen in news payloads.
var countryAliases = map[string]string{
	"United States of America": "US",
	"USA":                      "US",
	"U.S.":                     "US",
	"UK":                       "GB",
	"Great Britain":            "GB",
	"Britain":                  "GB",
	"EU":                       "EU",
	"South Korea":              "KR",
	"North Korea":              "KP",
	"Russia":                   "RU",
	"Vietnam":                  "VN",
	"Taiwan":                   "TW",
	"Turkey":                   "TR",
	"Czech Republic":           "CZ",
	"Iran":                     "IR",
	"Syria":                    "SY",
	"Venezuela":                "VE",
	"Bolivia":                  "BO",
	"Tanzania":                 "TZ",
	"Moldova":                  "MD",
	"Laos":                     "LA",
	"Ivory Coast":              "CI",
}

// fallbackCountries covers the major economies and every EU member so that
// bloc expansion keeps working when the reference file cannot be read.
var fallbackCountries = []countryRecord{
	{"US", "USA", "United States"},
	{"CN", "CHN", "China"},
	{"CA", "CAN", "Canada"},
	{"MX", "MEX", "Mexico"},
	{"GB", "GBR", "United Kingdom"},
	{"JP", "JPN", "Japan"},
	{"KR", "KOR", "Korea, Republic of"},
	{"IN", "IND", "India"},
	{"NG", "NGA", "Nigeria"},
	{"CH", "CHE", "Switzerland"},
	{"BR", "BRA", "Brazil"},
	{"AU", "AUS", "Australia"},
	{"RU", "RUS", "Russian Federation"},
	{"ZA", "ZAF", "South Africa"},
	{"TR", "TUR", "Türkiye"},
	{"SA", "SAU", "Saudi Arabia"},
	{"AR", "ARG", "Argentina"},
	{"ID", "IDN", "Indonesia"},
	{"VN", "VNM", "Viet Nam"},
	{"TW", "TWN", "Taiwan, Province of China"},
	{"SG", "SGP", "Singapore"},
	{"NO", "NOR", "Norway"},
	{"IL", "ISR", "Israel"},
	{"AE", "ARE", "United Arab Emirates"},
	{"TH", "THA", "Thailand"},
	{"MY", "MYS", "Malaysia"},
	{"PH", "PHL", "Philippines"},
	{"NZ", "NZL", "New Zealand"},
	{"AT", "AUT", "Austria"},
	{"BE", "BEL", "Belgium"},
	{"BG", "BGR", "Bulgaria"},
	{"HR", "HRV", "Croatia"},
	{"CY", "CYP", "Cyprus"},
	{"CZ", "CZE", "Czechia"},
	{"DK", "DNK", "Denmark"},
	{"EE", "EST", "Estonia"},
	{"FI", "FIN", "Finland"},
	{"FR", "FRA", "France"},
	{"DE", "DEU", "Germany"},
	{"GR", "GRC", "Greece"},
	{"HU", "HUN", "Hungary"},
	{"IE", "IRL", "Ireland"},
	{"IT", "ITA", "Italy"},
	{"LV", "LVA", "Latvia"},
	{"LT", "LTU", "Lithuania"},
	{"LU", "LUX", "Luxembourg"},
	{"MT", "MLT", "Malta"},
	{"NL", "NLD", "Netherlands"},
	{"PL", "POL", "Poland"},
	{"PT", "PRT", "Portugal"},
	{"RO", "ROU", "Romania"},
	{"SK", "SVK", "Slovakia"},
	{"SI", "SVN", "Slovenia"},
	{"ES", "ESP", "Spain"},
	{"SE", "SWE", "Sweden"},
}

var (
	defaultCountriesOnce sync.Once
	defaultCountries     *CountryReference
	defaultCountriesErr  error
)

// Countries returns the process-wide reference built from the bundled table.
// It is loaded exactly once; a non-nil error wraps ErrReferenceFallback and is
// advisory only.
func Countries() (*CountryReference, error) {
	defaultCountriesOnce.Do(func() {
		defaultCountries, defaultCountriesErr = LoadCountryReferenceFile("")
	})
	return defaultCountries, defaultCountriesErr
}

// LoadCountryReferenceFile loads a reference table from path, or the bundled
// table when path is empty. On any failure it returns the embedded fallback
// together with an error wrapping ErrReferenceFallback. The returned reference
// is never nil.
func LoadCountryReferenceFile(path string) (*CountryReference, error) {
	var (
		ref *CountryReference
		err error
	)
	if path == "" {
		ref, err = LoadCountryReference(bytes.NewReader(bundledCountryCodes))
	} else {
		ref, err = loadCountryReferencePath(path)
	}
	if err != nil {
		return FallbackCountryReference(), fmt.Errorf("%w: %w", ErrReferenceFallback, err)
	}
	return ref, nil
}

func loadCountryReferencePath(path string) (*CountryReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open country reference: %w", err)
	}
	defer f.Close()
	return LoadCountryReference(f)
}

// LoadCountryReference parses a CSV table with a header row. Column names are
// matched loosely: any header containing "alpha-2", "alpha-3" and "name"
// (or the bare "alpha2"/"alpha3"/"country" forms) is accepted.
func LoadCountryReference(r io.Reader) (*CountryReference, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read country reference header: %w", err)
	}
	cols, err := locateCountryColumns(header)
	if err != nil {
		return nil, err
	}

	var records []countryRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read country reference row: %w", err)
		}
		rec, ok := cols.record(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("country reference has no usable rows")
	}
	return newCountryReference(records, false), nil
}

// FallbackCountryReference returns the embedded reference table.
func FallbackCountryReference() *CountryReference {
	return newCountryReference(fallbackCountries, true)
}

type countryColumns struct {
	alpha2, alpha3, name int
}

func locateCountryColumns(header []string) (countryColumns, error) {
	cols := countryColumns{alpha2: -1, alpha3: -1, name: -1}
	for i, h := range header {
		h = strings.ToLower(cleanCell(h))
		switch {
		case strings.Contains(h, "alpha-2") || h == "alpha2" || h == "alpha_2":
			cols.alpha2 = i
		case strings.Contains(h, "alpha-3") || h == "alpha3" || h == "alpha_3":
			cols.alpha3 = i
		case cols.name < 0 && (strings.Contains(h, "name") || h == "country"):
			cols.name = i
		}
	}
	if cols.alpha2 < 0 {
		return cols, errors.New("country reference is missing an alpha-2 column")
	}
	if cols.alpha3 < 0 && cols.name < 0 {
		return cols, errors.New("country reference needs an alpha-3 or name column")
	}
	return cols, nil
}

func (c countryColumns) record(row []string) (countryRecord, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return cleanCell(row[i])
	}
	rec := countryRecord{alpha2: get(c.alpha2), alpha3: get(c.alpha3), name: get(c.name)}
	if len(rec.alpha2) != 2 {
		return countryRecord{}, false
	}
	if rec.alpha3 != "" && len(rec.alpha3) != 3 {
		rec.alpha3 = ""
	}
	return rec, rec.alpha3 != "" || rec.name != ""
}

func cleanCell(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

func newCountryReference(records []countryRecord, fallback bool) *CountryReference {
	ref := &CountryReference{
		names:    make(map[string]string, len(records)+len(syntheticCountries)),
		alpha3:   make(map[string]string, len(records)+len(syntheticCountries)),
		byName:   make(map[string]string, len(records)+len(countryAliases)),
		fallback: fallback,
	}
	add := func(rec countryRecord) {
		if rec.name != "" {
			ref.names[rec.alpha2] = rec.name
		}
		if rec.alpha3 != "" {
			ref.alpha3[rec.alpha2] = rec.alpha3
		}
	}
	for _, rec := range records {
		add(rec)
	}
	for _, rec := range syntheticCountries {
		add(rec)
	}

	for alias, code := range countryAliases {
		ref.byName[foldName(alias)] = code
	}
	// Canonical names take precedence over aliases.
	for code, name := range ref.names {
		ref.byName[foldName(name)] = code
	}
	return ref
}

// ResolveName returns the display name for an alpha-2 code. Lookups are exact
// and case-sensitive.
func (r *CountryReference) ResolveName(code string) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

// ResolveAlpha3 returns the alpha-3 code for an alpha-2 code.
func (r *CountryReference) ResolveAlpha3(code string) (string, bool) {
	a3, ok := r.alpha3[code]
	return a3, ok
}

// ResolveCode finds the alpha-2 code for a country name, ignoring case and
// diacritics and accepting common aliases.
func (r *CountryReference) ResolveCode(name string) (string, bool) {
	key := foldName(name)
	if key == "" {
		return "", false
	}
	code, ok := r.byName[key]
	return code, ok
}

// AllCodes returns every known alpha-2 code, sorted.
func (r *CountryReference) AllCodes() []string {
	seen := make(map[string]struct{}, len(r.names))
	for code := range r.names {
		seen[code] = struct{}{}
	}
	for code := range r.alpha3 {
		seen[code] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len reports the number of distinct alpha-2 codes.
func (r *CountryReference) Len() int {
	return len(r.AllCodes())
}

// Fallback reports whether this reference is the embedded fallback table.
func (r *CountryReference) Fallback() bool {
	return r.fallback
}

// IsBloc reports whether code names a group of territories.
func (r *CountryReference) IsBloc(code string) bool {
	_, ok := blocMembers[code]
	return ok
}

// Members returns the member alpha-2 codes of a bloc, or nil.
func (r *CountryReference) Members(code string) []string {
	members := blocMembers[code]
	if members == nil {
		return nil
	}
	out := make([]string, len(members))
	copy(out, members)
	return out
}
