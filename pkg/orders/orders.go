// Package orders normalizes and persists coffee orders taken over voice.
// It is a sibling utility to the adventure core: same agent process,
// unrelated contract. Each saved order becomes one uniquely named JSON
// file on disk.
package orders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultBrand is used when COFFEE_BRAND is not set.
const DefaultBrand = "Sunrise Coffee"

// ExtraList accepts either a JSON string ("caramel, cinnamon") or an array
// of strings, since voice transcription produces both shapes.
type ExtraList []string

func (e *ExtraList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = ExtraList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*e = ExtraList(many)
		return nil
	}
	return fmt.Errorf("field 'extras' must be a string or list of strings")
}

// Order is a single drink order as received from the voice agent.
type Order struct {
	DrinkType string    `json:"drinkType"`
	Size      string    `json:"size"`
	Milk      string    `json:"milk"`
	Extras    ExtraList `json:"extras,omitempty"`
	Name      string    `json:"name"`
}

// Normalize trims and validates the order in place. Required string fields
// must be non-empty; extras are split on commas, trimmed, and deduplicated
// case-insensitively while preserving first-seen casing and order. A
// rejected order is reported with a descriptive error and nothing is
// persisted.
func (o *Order) Normalize() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"drinkType", &o.DrinkType},
		{"size", &o.Size},
		{"milk", &o.Milk},
		{"name", &o.Name},
	}
	for _, f := range fields {
		trimmed := strings.TrimSpace(*f.value)
		if trimmed == "" {
			return fmt.Errorf("field '%s' is required and cannot be empty", f.name)
		}
		*f.value = trimmed
	}

	var cleaned ExtraList
	seen := make(map[string]bool)
	for _, item := range o.Extras {
		for _, part := range strings.Split(item, ",") {
			extra := strings.TrimSpace(part)
			if extra == "" {
				continue
			}
			key := strings.ToLower(extra)
			if seen[key] {
				continue
			}
			seen[key] = true
			cleaned = append(cleaned, extra)
		}
	}
	o.Extras = cleaned
	return nil
}

// Summary builds the pickup sentence spoken back to the customer.
func (o *Order) Summary(brand string) string {
	extrasPhrase := "no extras"
	if len(o.Extras) > 0 {
		extrasPhrase = "extras: " + strings.Join(o.Extras, ", ")
	}

	milk := strings.TrimSpace(o.Milk)
	var milkPhrase string
	switch {
	case milk == "":
		milkPhrase = "with house milk"
	case strings.HasSuffix(strings.ToLower(milk), "milk"):
		milkPhrase = "with " + milk
	default:
		milkPhrase = "with " + milk + " milk"
	}

	return fmt.Sprintf("%s order for %s: %s %s %s, %s. Ready for pickup under %s.",
		brand, o.Name, o.Size, o.DrinkType, milkPhrase, extrasPhrase, o.Name)
}

// payload is the on-disk shape of a saved order.
type payload struct {
	Brand   string `json:"brand"`
	Order   *Order `json:"order"`
	Summary string `json:"summary"`
	SavedAt string `json:"savedAt"`
}

// SavedOrder describes where an order landed and what was said about it.
type SavedOrder struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
	Order   *Order `json:"order"`
}

// Store writes orders to a directory, one timestamped JSON file per save.
type Store struct {
	dir   string
	brand string
}

// NewStore creates a store for the given directory and brand. Empty
// arguments fall back to the ORDERS_DIR and COFFEE_BRAND environment
// variables, then to "./orders" and the default brand.
func NewStore(dir, brand string) *Store {
	if dir == "" {
		dir = os.Getenv("ORDERS_DIR")
	}
	if dir == "" {
		dir = "./orders"
	}
	if brand == "" {
		brand = os.Getenv("COFFEE_BRAND")
	}
	if brand == "" {
		brand = DefaultBrand
	}
	return &Store{dir: dir, brand: brand}
}

// Brand returns the brand name used in summaries.
func (s *Store) Brand() string {
	return s.brand
}

// Save normalizes the order and writes it to disk. The filename combines a
// UTC timestamp with a slug of the customer name, so concurrent saves for
// different customers never collide.
func (s *Store) Save(order *Order) (*SavedOrder, error) {
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if err := order.Normalize(); err != nil {
		return nil, err
	}
	summary := order.Summary(s.brand)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create orders directory: %w", err)
	}

	now := time.Now().UTC()
	filename := filepath.Join(s.dir, fmt.Sprintf("%s_order_%s.json", now.Format("20060102T150405Z"), slugify(order.Name)))

	data, err := json.MarshalIndent(payload{
		Brand:   s.brand,
		Order:   order,
		Summary: summary,
		SavedAt: now.Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write order file: %w", err)
	}

	return &SavedOrder{Path: filename, Summary: summary, Order: order}, nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugUnsafe.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	if value == "" {
		return "guest"
	}
	return value
}
