// Package config turns a board plan (clock tree and pin table) into live
// drivers. Plans are written in YAML or JSON.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"periphkit-go/errcode"

	"gopkg.in/yaml.v3"
)

// BoardPlan is the whole board description.
type BoardPlan struct {
	Board string    `json:"board" yaml:"board"`
	Clock ClockPlan `json:"clock" yaml:"clock"`
	Pins  []PinPlan `json:"pins" yaml:"pins"`
}

// ClockPlan selects the system clock and the peripheral clocks to gate on.
type ClockPlan struct {
	Source  string   `json:"source" yaml:"source"`
	HSEHz   uint32   `json:"hse_hz,omitempty" yaml:"hse_hz,omitempty"`
	PLL     *PLLPlan `json:"pll,omitempty" yaml:"pll,omitempty"`
	Retries int      `json:"retries,omitempty" yaml:"retries,omitempty"`
	Enable  []string `json:"enable,omitempty" yaml:"enable,omitempty"`
}

type PLLPlan struct {
	M       uint32 `json:"m" yaml:"m"`
	N       uint32 `json:"n" yaml:"n"`
	P       uint32 `json:"p" yaml:"p"`
	Q       uint32 `json:"q" yaml:"q"`
	FromHSE bool   `json:"from_hse,omitempty" yaml:"from_hse,omitempty"`
}

// PinPlan configures one pin. Empty strings leave a field unset.
type PinPlan struct {
	Pin        string `json:"pin" yaml:"pin"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Mode       string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Pull       string `json:"pull,omitempty" yaml:"pull,omitempty"`
	OutputType string `json:"output_type,omitempty" yaml:"output_type,omitempty"`
	Speed      string `json:"speed,omitempty" yaml:"speed,omitempty"`
	Initial    *bool  `json:"initial,omitempty" yaml:"initial,omitempty"`
}

// Key is the name a pin is registered under in a Board.
func (p PinPlan) Key() string {
	if p.Label != "" {
		return p.Label
	}
	return strings.ToUpper(p.Pin)
}

// DecodeJSON decodes src ([]byte, string or an already-decoded value) into dst.
func DecodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

func ParseJSON(b []byte) (*BoardPlan, error) {
	var p BoardPlan
	if err := DecodeJSON(b, &p); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "parse_json", err)
	}
	return &p, nil
}

func ParseYAML(b []byte) (*BoardPlan, error) {
	var p BoardPlan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "parse_yaml", err)
	}
	return &p, nil
}

// Load reads a plan file; .json files are JSON, anything else YAML.
func Load(path string) (*BoardPlan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(b)
	}
	return ParseYAML(b)
}

// YAML renders the plan back as YAML.
func (p *BoardPlan) YAML() ([]byte, error) { return yaml.Marshal(p) }
