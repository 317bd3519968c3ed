package modifier

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// String formats m the way ParseValue reads it: "+30", "-12.5", "+50%".
func (m Value) String() string {
	s := strconv.FormatFloat(m.v, 'f', -1, 64)
	if m.v >= 0 {
		s = "+" + s
	}
	if m.kind == KindPercent {
		s += "%"
	}
	return s
}

// ParseValue parses "+30", "-12.5" or "50%" into a Value.
// A trailing "%" selects a percentage modifier.
func ParseValue(s string) (Value, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return Value{}, fmt.Errorf("empty modifier")
	}

	kind := KindFlat
	if rest, ok := strings.CutSuffix(str, "%"); ok {
		kind = KindPercent
		str = strings.TrimSpace(rest)
	}

	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return Value{}, fmt.Errorf("parsing modifier %q: %w", s, err)
	}
	return Value{kind: kind, v: v}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Value) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Value) UnmarshalText(text []byte) error {
	v, err := ParseValue(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalYAML writes m as a plain scalar ("+50%").
func (m Value) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts scalars like 30, "+30" or "50%".
func (m *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: modifier must be a scalar", node.Line)
	}
	return m.UnmarshalText([]byte(node.Value))
}
