package sensor

import "time"

// Sensor is a registered field device.
//
// The JSON form is the public projection used by create, get and list:
// all seven attributes, never omitted.
type Sensor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IP       string `json:"ip"`
	Location string `json:"location"`
	Protocol string `json:"protocol"`
	Model    string `json:"model"`
	Enabled  bool   `json:"enabled"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Input carries the caller-supplied attributes for create and update.
// Enabled is optional on create and defaults to false; update ignores it.
type Input struct {
	Name     string `json:"name"`
	IP       string `json:"ip"`
	Location string `json:"location"`
	Protocol string `json:"protocol"`
	Model    string `json:"model"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// apply copies the descriptive attributes of in onto s. It never touches
// ID or Enabled.
func (in Input) apply(s *Sensor) {
	s.Name = in.Name
	s.IP = in.IP
	s.Location = in.Location
	s.Protocol = in.Protocol
	s.Model = in.Model
}
