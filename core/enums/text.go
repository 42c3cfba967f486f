package enums

import (
	"fmt"
	"strings"
)

// Values outside the defined set round-trip through their "Type(n)" form so
// a fail-open run can still be persisted and reloaded.

func parseRaw(prefix, s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, prefix+"(") {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(s, prefix+"(%d)", &n); err != nil {
		return 0, false
	}
	return n, true
}

func (d DatasetType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DatasetType) UnmarshalText(text []byte) error {
	if n, ok := parseRaw("DatasetType", string(text)); ok {
		*d = DatasetType(n)
		return nil
	}
	v, err := ParseDatasetType(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (m MissingData) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MissingData) UnmarshalText(text []byte) error {
	if n, ok := parseRaw("MissingData", string(text)); ok {
		*m = MissingData(n)
		return nil
	}
	v, err := ParseMissingData(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (n Normalization) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *Normalization) UnmarshalText(text []byte) error {
	if raw, ok := parseRaw("Normalization", string(text)); ok {
		*n = Normalization(raw)
		return nil
	}
	v, err := ParseNormalization(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

func (c CategoricalData) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CategoricalData) UnmarshalText(text []byte) error {
	if n, ok := parseRaw("CategoricalData", string(text)); ok {
		*c = CategoricalData(n)
		return nil
	}
	v, err := ParseCategoricalData(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
