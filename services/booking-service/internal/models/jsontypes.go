package models

// TimeRange is a local-time half-open interval [Start, End), each bound
// "HH:MM". It is encoded as a JSON object with "start" and "end" fields;
// a single "HH:MM-HH:MM" string is not accepted.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilitySchedule maps a weekday name (time.Weekday.String(), e.g.
// "Monday") to the list of local-time ranges a resource is open that
// day. Received as-is from resource-service's internal resource lookup;
// booking-service never persists it.
type AvailabilitySchedule map[string][]TimeRange

// CustomLabels mirrors tenant-service's white-label vocabulary override,
// embedded on OrganizationSettings as received over the wire.
type CustomLabels struct {
	ResourceSingular string `json:"resource_singular"`
	ResourcePlural   string `json:"resource_plural"`
	BookingLabel     string `json:"booking_label"`
	UserLabel        string `json:"user_label"`
}

// OrganizationSettings mirrors tenant-service's per-tenant scheduling
// policy. booking-service never writes this; it only ever receives it
// from tenant-service's internal settings endpoint, used by the
// admission engine's policy gates (spec.md §4.4).
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

// ResourceView is the subset of a resource's state the admission engine
// needs from resource-service to evaluate invariants I4a/I4b — whether a
// proposed interval lies within the resource's availability schedule —
// without duplicating resource-service's own storage.
type ResourceView struct {
	ID                   string               `json:"id"`
	TenantID             string               `json:"tenant_id"`
	Status               string               `json:"status"`
	AvailabilitySchedule AvailabilitySchedule `json:"availability_schedule"`
}
