package suggest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"localpro/browse/internal/models"
)

// Terms maps a list kind to its popular search terms.
type Terms map[models.Kind][]string

// DefaultTerms are the static popular searches shown for each screen.
var DefaultTerms = Terms{
	models.KindProduct: {
		"Cleaning supplies", "Power drill", "Paint roller", "Pressure washer",
		"Extension ladder", "Plumbing tape", "Safety gloves", "Vacuum cleaner",
		"Lawn mower", "Electrical wire",
	},
	models.KindService: {
		"House cleaning", "Plumbing repair", "Electrical installation", "Aircon cleaning",
		"Pest control", "Carpentry", "Painting", "Appliance repair", "Gardening", "Moving help",
	},
	models.KindJob: {
		"Cleaner", "Plumber", "Electrician", "Carpenter", "Painter",
		"Driver", "Helper", "Technician", "Gardener", "Welder",
	},
	models.KindRental: {
		"Scaffolding", "Concrete mixer", "Generator", "Pressure washer",
		"Tile cutter", "Van", "Ladder", "Tent",
	},
}

// For returns the terms for kind. Unknown kinds have no terms.
func (t Terms) For(kind models.Kind) []string {
	return t[kind]
}

type termsFile struct {
	Terms map[string][]string `yaml:"terms"`
}

// LoadTerms reads a YAML file of the form
//
//	terms:
//	  product: [Power drill, Paint roller]
//	  service: [House cleaning]
//
// and returns base with the kinds present in the file replaced.
func LoadTerms(path string, base Terms) (Terms, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestion terms %s: %w", path, err)
	}

	var f termsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion terms %s: %w", path, err)
	}

	merged := make(Terms, len(base)+len(f.Terms))
	for k, v := range base {
		merged[k] = v
	}
	for rawKind, terms := range f.Terms {
		kind, ok := models.ParseKind(rawKind)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q in suggestion terms %s", rawKind, path)
		}
		merged[kind] = terms
	}
	return merged, nil
}
