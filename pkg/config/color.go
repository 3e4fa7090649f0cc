package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a packed 0xRRGGBB value.
// Documents may spell it as a number or as a "0x..", "#.." or decimal string.
type Color uint32

// Hex formats the colour as 0xRRGGBB
func (c Color) Hex() string {
	return fmt.Sprintf("0x%06x", uint32(c))
}

// ParseColor parses the string forms accepted in documents
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)

	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}

	return fromUint(v)
}

func fromUint(v uint64) (Color, error) {
	if v > 0xffffff {
		return 0, fmt.Errorf("colour 0x%x exceeds 24 bits", v)
	}
	return Color(v), nil
}

func fromFloat(f float64) (Color, error) {
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid colour %v", f)
	}
	return fromUint(uint64(f))
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var (
		parsed Color
		err    error
	)
	switch v := raw.(type) {
	case float64:
		parsed, err = fromFloat(v)
	case string:
		parsed, err = ParseColor(v)
	default:
		err = fmt.Errorf("invalid colour %s", string(data))
	}
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	var (
		parsed Color
		err    error
	)
	switch v := raw.(type) {
	case int:
		if v < 0 {
			return fmt.Errorf("invalid colour %d", v)
		}
		parsed, err = fromUint(uint64(v))
	case uint64:
		parsed, err = fromUint(v)
	case float64:
		parsed, err = fromFloat(v)
	case string:
		parsed, err = ParseColor(v)
	default:
		err = fmt.Errorf("invalid colour %v", raw)
	}
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// MarshalYAML writes the colour in hex so saved documents stay readable
func (c Color) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}
