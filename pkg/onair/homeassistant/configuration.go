package homeassistant

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blaubaer/cw-keyer/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		EntityId:         fmt.Sprintf("input_boolean.%s_cw_keyer_on_air", stationId),
		DeadZoneInterval: time.Minute,
		Timeout:          10 * time.Second,
	}
}

var forbiddenEntityIdChars = regexp.MustCompile("[^a-z0-9_]")

func normalizeEntityIdPart(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	return forbiddenEntityIdChars.ReplaceAllString(id, "_")
}

var stationId = func() string {
	if result, err := os.Hostname(); err == nil && result != "" {
		return normalizeEntityIdPart(result)
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("cannot generate station id: %w", err))
	}
	return hex.EncodeToString(buf)
}()

type Configuration struct {
	Server   string `yaml:"server,omitempty"`
	Token    string `yaml:"token,omitempty"`
	EntityId string `yaml:"entityId"`

	DeadZoneInterval time.Duration `yaml:"deadZoneInterval,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("onair.homeassistant.server", "URL of the Home Assistant instance.").
		Envar("CK_ONAIR_HOMEASSISTANT_SERVER").
		StringVar(&this.Server)
	using.Flag("onair.homeassistant.token", "Long-lived access token of the Home Assistant instance.").
		Envar("CK_ONAIR_HOMEASSISTANT_TOKEN").
		StringVar(&this.Token)
	using.Flag("onair.homeassistant.entityId", "Entity which reflects whether you are on air.").
		Envar("CK_ONAIR_HOMEASSISTANT_ENTITY_ID").
		StringVar(&this.EntityId)
	using.Flag("onair.homeassistant.deadZoneInterval", "How long the last known state of the entity is trusted before it is read from Home Assistant again.").
		Envar("CK_ONAIR_HOMEASSISTANT_DEAD_ZONE_INTERVAL").
		DurationVar(&this.DeadZoneInterval)
	using.Flag("onair.homeassistant.timeout", "Timeout of every request to Home Assistant.").
		Envar("CK_ONAIR_HOMEASSISTANT_TIMEOUT").
		DurationVar(&this.Timeout)
}
