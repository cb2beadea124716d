package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// CustomLabels holds the tenant's white-label vocabulary overrides.
// Stored as a jsonb column on OrganizationSettings.
type CustomLabels struct {
	ResourceSingular string `json:"resource_singular"`
	ResourcePlural   string `json:"resource_plural"`
	BookingLabel     string `json:"booking_label"`
	UserLabel        string `json:"user_label"`
}

// Value implements driver.Valuer for jsonb storage.
func (l CustomLabels) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb storage.
func (l *CustomLabels) Scan(value interface{}) error {
	if value == nil {
		*l = CustomLabels{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("CustomLabels.Scan: unsupported type")
		}
		bytes = []byte(s)
	}
	if len(bytes) == 0 {
		*l = CustomLabels{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}
