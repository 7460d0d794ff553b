// Package catalog holds the list of industry domains a challenge may be
// posted under. The built-in list matches the eight domains the product
// launched with; deployments can override it with a YAML file.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Domain describes one entry in the domain catalog
type Domain struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog serves the domain list and validates challenge domains
type Catalog struct {
	mu      sync.RWMutex
	domains []Domain
	byName  map[string]bool
}

// defaultDomains is the launch set.
var defaultDomains = []Domain{
	{ID: "healthcare", Name: "Healthcare"},
	{ID: "fintech", Name: "Fintech"},
	{ID: "agriculture", Name: "Agriculture"},
	{ID: "education", Name: "Education"},
	{ID: "sustainability", Name: "Sustainability"},
	{ID: "manufacturing", Name: "Manufacturing"},
	{ID: "logistics", Name: "Logistics"},
	{ID: "other", Name: "Other"},
}

// New creates a catalog with the built-in domain set
func New() *Catalog {
	c := &Catalog{}
	c.set(defaultDomains)
	return c
}

// LoadFile replaces the catalog with domains read from a YAML file
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file struct {
		Domains []Domain `yaml:"domains"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if len(file.Domains) == 0 {
		return fmt.Errorf("catalog file %s defines no domains", path)
	}

	c.set(file.Domains)
	return nil
}

func (c *Catalog) set(domains []Domain) {
	byName := make(map[string]bool, len(domains))
	for _, d := range domains {
		byName[d.Name] = true
	}

	c.mu.Lock()
	c.domains = domains
	c.byName = byName
	c.mu.Unlock()
}

// List returns all domains in catalog order
func (c *Catalog) List() []Domain {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Valid reports whether name is a known domain
func (c *Catalog) Valid(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[name]
}
