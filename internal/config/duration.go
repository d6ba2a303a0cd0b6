package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts either a Go duration string ("2s", "1m30s") or an
// integer number of milliseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	return d.parse(strings.TrimSpace(string(data)))
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got %s", node.Tag)
	}
	if node.Tag == "!!str" {
		return d.parse(strconv.Quote(node.Value))
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(raw string) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		parsed, err := time.ParseDuration(unquoted)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", unquoted, err)
		}
		*d = Duration(parsed)
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: want a string like \"2s\" or milliseconds", raw)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}
