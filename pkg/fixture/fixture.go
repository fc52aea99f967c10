package fixture

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/contentcompass/compass/pkg/models"
)

//go:embed data/*.json
var dataFS embed.FS

// Source reads bundled demo payloads and sample documents. All data is
// static and read-only; fetches served from here never cost credits.
type Source struct{}

// New returns the bundled fixture source.
func New() *Source {
	return &Source{}
}

// Payload returns the demo payload for kind.
func (s *Source) Payload(kind models.ResourceKind) (models.Payload, error) {
	if !kind.Valid() {
		return models.Payload{}, fmt.Errorf("fixture: unknown resource kind %q", kind)
	}
	raw, err := dataFS.ReadFile(fmt.Sprintf("data/%s.json", kind))
	if err != nil {
		return models.Payload{}, fmt.Errorf("read fixture %s: %w", kind, err)
	}
	var payload models.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.Payload{}, fmt.Errorf("decode fixture %s: %w", kind, err)
	}
	return payload, nil
}

// WeeklyPlan returns the sample weekly plan shown in demo mode before one
// has been generated.
func (s *Source) WeeklyPlan() (*models.WeeklyPlan, error) {
	raw, err := dataFS.ReadFile("data/weekly_plan.json")
	if err != nil {
		return nil, fmt.Errorf("read weekly plan fixture: %w", err)
	}
	var plan models.WeeklyPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("decode weekly plan fixture: %w", err)
	}
	return &plan, nil
}

// BriefTemplate returns the sample content brief shown in demo mode before
// one has been generated.
func (s *Source) BriefTemplate() (*models.Brief, error) {
	raw, err := dataFS.ReadFile("data/brief_template.json")
	if err != nil {
		return nil, fmt.Errorf("read brief fixture: %w", err)
	}
	var brief models.Brief
	if err := json.Unmarshal(raw, &brief); err != nil {
		return nil, fmt.Errorf("decode brief fixture: %w", err)
	}
	return &brief, nil
}
