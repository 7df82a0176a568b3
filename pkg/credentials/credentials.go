package credentials

import (
	"encoding/json"
)

const appName = "github.com/blaubaer/cw-keyer"

// Credentials of the on-air signals. They are kept in the credential store
// of the operating system where there is one and otherwise in the
// configuration file.
type Credentials struct {
	HueBridge string `json:"hue_bridge,omitempty"`
	HueUser   string `json:"hue_user,omitempty"`

	HomeAssistantServer string `json:"homeAssistant_server,omitempty"`
	HomeAssistantToken  string `json:"homeAssistant_token,omitempty"`
}

func (this Credentials) IsZero() bool {
	return this.IsHueZero() && this.IsHomeAssistantZero()
}

func (this Credentials) IsHueZero() bool {
	return this.HueBridge == "" || this.HueUser == ""
}

func (this Credentials) IsHomeAssistantZero() bool {
	return this.HomeAssistantServer == "" || this.HomeAssistantToken == ""
}

// Merge takes every non empty field of other.
func (this *Credentials) Merge(other Credentials) {
	if other.HueBridge != "" {
		this.HueBridge = other.HueBridge
	}
	if other.HueUser != "" {
		this.HueUser = other.HueUser
	}
	if other.HomeAssistantServer != "" {
		this.HomeAssistantServer = other.HomeAssistantServer
	}
	if other.HomeAssistantToken != "" {
		this.HomeAssistantToken = other.HomeAssistantToken
	}
}

func (this Credentials) MarshalBinary() (data []byte, err error) {
	return json.Marshal(this)
}

func (this *Credentials) UnmarshalBinary(data []byte) error {
	var buf Credentials
	if err := json.Unmarshal(data, &buf); err != nil {
		return err
	}
	*this = buf
	return nil
}
