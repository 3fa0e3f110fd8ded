package fantasiad

import (
	"encoding/json"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

// Duration accepts Go duration strings ("100ms") or a bare number of milliseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}

	var str string
	err := json.Unmarshal(data, &str)
	if err != nil {
		return err
	}

	return d.parse(str)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	err := value.Decode(&str)
	if err != nil {
		return err
	}

	return d.parse(str)
}

func (d *Duration) parse(str string) error {
	if str == "" {
		return nil
	}

	if ms, err := strconv.ParseInt(str, 10, 64); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}

	var err error
	d.Duration, err = time.ParseDuration(str)
	return err
}
