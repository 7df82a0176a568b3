package homeassistant

import (
	"time"

	"github.com/blaubaer/cw-keyer/pkg/onair"
)

const (
	entityIcon       = "mdi:radio-tower"
	entityDomainPart = "input_boolean."
)

type stateGetResponse struct {
	EntityId    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// is reports whether the entity is in the given state. States like
// "unavailable" never match.
func (this stateGetResponse) is(state onair.State) bool {
	var actual onair.State
	if err := actual.Set(this.State); err != nil {
		return false
	}
	return actual == state
}

type statePostRequest struct {
	State      onair.State    `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// snapshot is the last state known to be stored in Home Assistant.
type snapshot struct {
	timestamp time.Time
	state     onair.State
}

func (this *snapshot) isValidFor(target onair.State, deadZone time.Duration, now time.Time) bool {
	return this != nil &&
		this.state == target &&
		now.Before(this.timestamp.Add(deadZone))
}
