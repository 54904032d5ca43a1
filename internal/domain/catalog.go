package domain

import (
	"errors"
	"fmt"
)

// Crop growth stages used by the reference table.
const (
	StageEstablishment = "Establishment stage"
	StageVegetative    = "Vegetative stage"
	StageShooting      = "Shooting stage"
	StageDevelopment   = "Development and harvesting stage"
)

// StageAdvisories pairs a stage with its ordered advisories.
type StageAdvisories struct {
	Stage      string
	Advisories []string
}

// Catalog maps crop stage names to ordered advisory lists. It is immutable
// once built; Resolve hands out copies.
type Catalog struct {
	stages     []string
	advisories map[string][]string
}

// NewCatalog builds a catalog from entries, preserving their order.
func NewCatalog(entries []StageAdvisories) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("advisory catalog is empty")
	}
	c := &Catalog{advisories: make(map[string][]string, len(entries))}
	for _, e := range entries {
		if e.Stage == "" {
			return nil, errors.New("advisory catalog has an entry without a stage name")
		}
		if _, dup := c.advisories[e.Stage]; dup {
			return nil, fmt.Errorf("advisory catalog lists stage %q twice", e.Stage)
		}
		c.stages = append(c.stages, e.Stage)
		c.advisories[e.Stage] = append([]string(nil), e.Advisories...)
	}
	return c, nil
}

// DefaultCatalog returns the built-in four-stage catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultEntries)
	if err != nil {
		panic(err) // static table
	}
	return c
}

// Resolve returns the advisories for stage. The boolean is false when the
// stage has no entry.
func (c *Catalog) Resolve(stage string) ([]string, bool) {
	adv, ok := c.advisories[stage]
	if !ok {
		return nil, false
	}
	return append([]string(nil), adv...), true
}

// Stages lists the catalog's stages in definition order.
func (c *Catalog) Stages() []string {
	return append([]string(nil), c.stages...)
}

var defaultEntries = []StageAdvisories{
	{
		Stage: StageEstablishment,
		Advisories: []string{
			"Ensure proper spacing and planting depth.",
			"Maintain adequate soil moisture. Avoid waterlogging.",
			"Begin initial weeding to minimize competition for nutrients.",
			"Apply initial doses of fertilizers and organic matter.",
		},
	},
	{
		Stage: StageVegetative,
		Advisories: []string{
			"Apply balanced fertilizers.",
			"Regularly water the crops but avoid overwatering.",
			"Monitor for pests and diseases.",
			"Continue regular weeding.",
		},
	},
	{
		Stage: StageShooting,
		Advisories: []string{
			"Provide physical support to crops if needed.",
			"Be vigilant for signs of pests and diseases.",
			"Apply nutrients that support flowering and fruiting.",
			"Maintain consistent watering.",
		},
	},
	{
		Stage: StageDevelopment,
		Advisories: []string{
			"Regularly check the maturity of crops.",
			"Continue to monitor for pests.",
			"Prepare for harvesting by ensuring storage facilities are clean.",
			"Handle crops carefully during harvesting.",
		},
	},
}
