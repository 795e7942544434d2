package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var locationsYAML []byte

// StateData describes one subdivision (state, province, region) of a country.
type StateData struct {
	Name        string     `yaml:"name" json:"name"`
	Coordinates [2]float64 `yaml:"coordinates" json:"coordinates"`
	Cities      []string   `yaml:"cities" json:"cities"`
	ImageURL    string     `yaml:"image_url,omitempty" json:"image_url,omitempty"`
}

// CountryData is a country with its ISO 3166-1 alpha-2 code and subdivisions.
type CountryData struct {
	Name   string      `yaml:"name" json:"name"`
	ISO    string      `yaml:"iso" json:"iso"`
	States []StateData `yaml:"states" json:"states"`
}

// Catalog is the read-only country/state reference used for filter options,
// demo data and phone-number regions.
type Catalog struct {
	countries []CountryData
	index     map[string]int
}

// DefaultCatalog parses the embedded location data.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(locationsYAML)
}

// ParseCatalog builds a catalog from YAML, keeping the document order.
func ParseCatalog(data []byte) (*Catalog, error) {
	var countries []CountryData
	if err := yaml.Unmarshal(data, &countries); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse locations: %w", err)
	}

	c := &Catalog{
		countries: countries,
		index:     make(map[string]int, len(countries)),
	}
	for i, country := range countries {
		if _, dup := c.index[country.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate country %q", country.Name)
		}
		c.index[country.Name] = i
	}
	return c, nil
}

// Countries returns the country names in catalog order.
func (c *Catalog) Countries() []string {
	names := make([]string, 0, len(c.countries))
	for _, country := range c.countries {
		names = append(names, country.Name)
	}
	return names
}

// States returns the subdivision names of a country. Unknown countries have none.
func (c *Catalog) States(country string) []string {
	i, ok := c.index[country]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(c.countries[i].States))
	for _, s := range c.countries[i].States {
		names = append(names, s.Name)
	}
	return names
}

// Lookup finds a state within a country.
func (c *Catalog) Lookup(country, state string) (StateData, bool) {
	i, ok := c.index[country]
	if !ok {
		return StateData{}, false
	}
	for _, s := range c.countries[i].States {
		if s.Name == state {
			return s, true
		}
	}
	return StateData{}, false
}

// ISO returns the alpha-2 region code of a country, or "" when unknown.
func (c *Catalog) ISO(country string) string {
	if i, ok := c.index[country]; ok {
		return c.countries[i].ISO
	}
	return ""
}

// All returns the full catalog in order.
func (c *Catalog) All() []CountryData {
	return c.countries
}
