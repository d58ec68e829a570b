package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// StringSlice stores a list of strings as a JSON array column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}

	if len(data) == 0 || string(data) == "null" || string(data) == "[]" {
		*s = nil
		return nil
	}

	return json.Unmarshal(data, (*[]string)(s))
}

func (s StringSlice) Join(sep string) string {
	return strings.Join(s, sep)
}
