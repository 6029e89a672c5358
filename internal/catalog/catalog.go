// Package catalog holds the fixed option sets and directory data shown on the pages.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// ErrNotFound is returned by lookups for unknown ids.
var ErrNotFound = errors.New("catalog: not found")

type Site struct {
	Name string `yaml:"name"`
	City string `yaml:"city"`
}

// Category is a place category on the Places view.
type Category struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

// Service is a bookable service on the Booking view.
type Service struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Icon         string `yaml:"icon"`
	Color        string `yaml:"color"`
	Description  string `yaml:"description"`
	Availability string `yaml:"availability"`
}

type Perk struct {
	Icon string `yaml:"icon"`
	Text string `yaml:"text"`
}

// Highlight is a titled card with an icon.
type Highlight struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type GroupSizes struct {
	Default string   `yaml:"default"`
	Options []string `yaml:"options"`
}

type EmergencyNumber struct {
	Category    string `yaml:"category"`
	Number      string `yaml:"number"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

type LocalContact struct {
	Name    string `yaml:"name"`
	Number  string `yaml:"number"`
	Address string `yaml:"address"`
}

type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Icon  string `yaml:"icon"`
}

// ContactChannel is one way to reach the team from the About view.
type ContactChannel struct {
	Type  string `yaml:"type"`
	Title string `yaml:"title"`
	Value string `yaml:"value"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

type About struct {
	Stats          []Stat           `yaml:"stats"`
	Features       []Highlight      `yaml:"features"`
	Contacts       []ContactChannel `yaml:"contacts"`
	GeneralContact ContactChannel   `yaml:"general_contact"`
}

// QuickAction is a Home shortcut card.
type QuickAction struct {
	Key         string `yaml:"key"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// Catalog is the decoded catalog document.
type Catalog struct {
	Site              Site              `yaml:"site"`
	Categories        []Category        `yaml:"categories"`
	Services          []Service         `yaml:"services"`
	ServicePerks      []Perk            `yaml:"service_perks"`
	BookingHighlights []Highlight       `yaml:"booking_highlights"`
	GroupSizes        GroupSizes        `yaml:"group_sizes"`
	PartySizes        []string          `yaml:"party_sizes"`
	EmergencyNumbers  []EmergencyNumber `yaml:"emergency_numbers"`
	LocalContacts     []LocalContact    `yaml:"local_contacts"`
	SafetyTips        []Highlight       `yaml:"safety_tips"`
	About             About             `yaml:"about"`
	QuickActions      []QuickAction     `yaml:"quick_actions"`
}

// Default decodes the embedded catalog. It panics on a malformed document since the
// file ships with the binary.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var problems []string
	if len(c.Categories) == 0 {
		problems = append(problems, "no categories")
	}
	if len(c.Services) == 0 {
		problems = append(problems, "no services")
	}
	if len(c.GroupSizes.Options) == 0 {
		problems = append(problems, "no group sizes")
	} else if !slices.Contains(c.GroupSizes.Options, c.GroupSizes.Default) {
		problems = append(problems, fmt.Sprintf("group size default %q not in options", c.GroupSizes.Default))
	}
	if dup := firstDuplicate(c.CategoryIDs()); dup != "" {
		problems = append(problems, "duplicate category "+dup)
	}
	if dup := firstDuplicate(c.ServiceIDs()); dup != "" {
		problems = append(problems, "duplicate service "+dup)
	}
	if len(problems) > 0 {
		return fmt.Errorf("catalog: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}

// CategoryIDs returns the category ids in display order.
func (c *Catalog) CategoryIDs() []string {
	ids := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		ids = append(ids, cat.ID)
	}
	return ids
}

// ServiceIDs returns the service ids in display order.
func (c *Catalog) ServiceIDs() []string {
	ids := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, error) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return Category{}, fmt.Errorf("%w: category %q", ErrNotFound, id)
}

// Service looks up a service by id.
func (c *Catalog) Service(id string) (Service, error) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, nil
		}
	}
	return Service{}, fmt.Errorf("%w: service %q", ErrNotFound, id)
}

// IsDirectoryNumber reports whether number is an emergency number or a local contact.
func (c *Catalog) IsDirectoryNumber(number string) bool {
	for _, e := range c.EmergencyNumbers {
		if e.Number == number {
			return true
		}
	}
	for _, l := range c.LocalContacts {
		if l.Number == number {
			return true
		}
	}
	return false
}

// ContactChannel looks up an About contact channel by type, including the general one.
func (c *Catalog) ContactChannel(kind string) (ContactChannel, error) {
	for _, ch := range c.About.Contacts {
		if strings.EqualFold(ch.Type, kind) {
			return ch, nil
		}
	}
	if strings.EqualFold(c.About.GeneralContact.Type, kind) {
		return c.About.GeneralContact, nil
	}
	return ContactChannel{}, fmt.Errorf("%w: contact %q", ErrNotFound, kind)
}

// QuickAction looks up a Home quick action by key.
func (c *Catalog) QuickAction(key string) (QuickAction, error) {
	for _, q := range c.QuickActions {
		if q.Key == key {
			return q, nil
		}
	}
	return QuickAction{}, fmt.Errorf("%w: quick action %q", ErrNotFound, key)
}
