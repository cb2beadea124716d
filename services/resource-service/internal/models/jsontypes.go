package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// TimeRange is a local-time half-open interval [Start, End), each bound
// "HH:MM". It is encoded as a JSON object with "start" and "end" fields;
// a single "HH:MM-HH:MM" string is not accepted.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilitySchedule maps a weekday name (time.Weekday.String(), e.g.
// "Monday") to the list of local-time ranges a resource is open that
// day. A day missing from the map means the resource is closed that
// day. Stored as a jsonb column on Resource.
type AvailabilitySchedule map[string][]TimeRange

// Value implements driver.Valuer for jsonb storage.
func (s AvailabilitySchedule) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(AvailabilitySchedule{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for jsonb storage.
func (s *AvailabilitySchedule) Scan(value interface{}) error {
	if value == nil {
		*s = AvailabilitySchedule{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("AvailabilitySchedule.Scan: unsupported type")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*s = AvailabilitySchedule{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Attributes is an open, tenant-defined bag of resource attributes
// (e.g. {"color": "red", "seats": 4}). Stored as a jsonb column.
type Attributes map[string]interface{}

// Value implements driver.Valuer for jsonb storage.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal(Attributes{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for jsonb storage.
func (a *Attributes) Scan(value interface{}) error {
	if value == nil {
		*a = Attributes{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("Attributes.Scan: unsupported type")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*a = Attributes{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// CategoryMetadata is an open, tenant-defined bag of category metadata.
// Stored as a jsonb column.
type CategoryMetadata map[string]interface{}

// Value implements driver.Valuer for jsonb storage.
func (m CategoryMetadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(CategoryMetadata{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb storage.
func (m *CategoryMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = CategoryMetadata{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("CategoryMetadata.Scan: unsupported type")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*m = CategoryMetadata{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// CustomLabels mirrors tenant-service's white-label vocabulary override,
// embedded on OrganizationSettings as received over the wire.
type CustomLabels struct {
	ResourceSingular string `json:"resource_singular"`
	ResourcePlural   string `json:"resource_plural"`
	BookingLabel     string `json:"booking_label"`
	UserLabel        string `json:"user_label"`
}

// OrganizationSettings mirrors tenant-service's per-tenant scheduling
// policy. resource-service never writes this; it only ever receives it
// from tenant-service's internal settings endpoint.
type OrganizationSettings struct {
	BusinessType       string       `json:"businessType"`
	Timezone           string       `json:"timezone"`
	WorkingHoursStart  string       `json:"workingHoursStart"`
	WorkingHoursEnd    string       `json:"workingHoursEnd"`
	BookingInterval    int          `json:"bookingInterval"`
	AdvanceBookingDays int          `json:"advanceBookingDays"`
	CancellationHours  int          `json:"cancellationHours"`
	CustomLabels       CustomLabels `json:"customLabels"`
}
