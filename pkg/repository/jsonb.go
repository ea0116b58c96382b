package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Map is a JSONB object column. A nil Map stores as '{}'.
type Map map[string]any

// Value implements driver.Valuer.
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Map) Scan(src any) error {
	return scanJSON(src, m)
}

// Strings is a JSONB string-array column. A nil Strings stores as '[]'.
type Strings []string

// Value implements driver.Valuer.
func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *Strings) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T as JSON", src)
	}
}
