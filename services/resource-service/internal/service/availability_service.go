package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slotwise/resource-service/internal/client"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/pkg/logger"
)

// BookingAvailabilityClient fetches the active bookings of a resource
// over a UTC window. internal/client.BookingClient implements this over HTTP.
type BookingAvailabilityClient interface {
	GetActiveBookings(ctx context.Context, resourceID string, from, to time.Time) ([]client.BookingWindow, error)
}

// AvailabilityService projects a resource's bookable slots for a given
// date, implementing spec.md §4.3's eight-step algorithm. Grounded on the
// teacher's GetAvailableSlots loop, generalized from per-day
// AvailabilityRule rows to the JSON-map AvailabilitySchedule and adding
// tenant-timezone conversion and cache composition.
type AvailabilityService struct {
	resources *ResourceService
	settings  *SettingsService
	bookings  BookingAvailabilityClient
	cache     *repository.AvailabilityCache
	logger    logger.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(
	resources *ResourceService,
	settings *SettingsService,
	bookings BookingAvailabilityClient,
	cache *repository.AvailabilityCache,
	logger logger.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		resources: resources,
		settings:  settings,
		bookings:  bookings,
		cache:     cache,
		logger:    logger,
	}
}

// ProjectedSlot is a single bookable window, reported in UTC.
type ProjectedSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Availability is the response of a projection: the slots plus the
// timezone they were computed in.
type Availability struct {
	Timezone string          `json:"timezone"`
	Slots    []ProjectedSlot `json:"slots"`
}

// GetAvailability projects resourceID's bookable slots for date
// ("YYYY-MM-DD") under tenantID's current scheduling policy.
func (s *AvailabilityService) GetAvailability(ctx context.Context, tenantID, resourceID, date string) (*Availability, error) {
	settings, err := s.settings.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, resourceID, date); ok {
		return toAvailability(cached, settings.Timezone), nil
	}

	resource, err := s.resources.repo.GetByTenantAndID(tenantID, resourceID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant timezone %q: %w", settings.Timezone, err)
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	weekday := day.Weekday().String()
	dayRanges, ok := resource.AvailabilitySchedule[weekday]
	if !ok || len(dayRanges) == 0 {
		return &Availability{Timezone: settings.Timezone, Slots: []ProjectedSlot{}}, nil
	}

	workStart, err := parseHHMMOffset(settings.WorkingHoursStart)
	if err != nil {
		return nil, fmt.Errorf("invalid working_hours_start: %w", err)
	}
	workEnd, err := parseHHMMOffset(settings.WorkingHoursEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid working_hours_end: %w", err)
	}

	interval := time.Duration(settings.BookingInterval) * time.Minute
	if interval <= 0 {
		return nil, fmt.Errorf("invalid booking_interval: %d", settings.BookingInterval)
	}

	var localSlots []ProjectedSlot
	for _, r := range dayRanges {
		rangeStart, err := parseHHMMOffset(r.Start)
		if err != nil {
			s.logger.Warn("skipping malformed availability range", "resourceId", resourceID, "start", r.Start, "error", err)
			continue
		}
		rangeEnd, err := parseHHMMOffset(r.End)
		if err != nil {
			s.logger.Warn("skipping malformed availability range", "resourceId", resourceID, "end", r.End, "error", err)
			continue
		}

		intersectStart := maxDuration(rangeStart, workStart)
		intersectEnd := minDuration(rangeEnd, workEnd)
		if intersectEnd <= intersectStart {
			continue
		}

		periodStart := day.Add(intersectStart)
		periodEnd := day.Add(intersectEnd)

		for cursor := periodStart; ; cursor = cursor.Add(interval) {
			slotEnd := cursor.Add(interval)
			if slotEnd.After(periodEnd) {
				break
			}
			localSlots = append(localSlots, ProjectedSlot{Start: cursor, End: slotEnd})
		}
	}

	dayStartUTC := day.UTC()
	dayEndUTC := day.Add(24 * time.Hour).UTC()
	activeBookings, err := s.bookings.GetActiveBookings(ctx, resourceID, dayStartUTC, dayEndUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings: %w", err)
	}

	var free []ProjectedSlot
	var cacheable []repository.Slot
	for _, slot := range localSlots {
		slotStartUTC := slot.Start.UTC()
		slotEndUTC := slot.End.UTC()

		conflict := false
		for _, b := range activeBookings {
			if slotStartUTC.Before(b.EndTime) && slotEndUTC.After(b.StartTime) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		free = append(free, ProjectedSlot{Start: slotStartUTC, End: slotEndUTC})
		cacheable = append(cacheable, repository.Slot{Start: slotStartUTC, End: slotEndUTC})
	}
	if free == nil {
		free = []ProjectedSlot{}
	}

	s.cache.Set(ctx, resourceID, date, cacheable)
	return &Availability{Timezone: settings.Timezone, Slots: free}, nil
}

func toAvailability(slots []repository.Slot, timezone string) *Availability {
	out := make([]ProjectedSlot, len(slots))
	for i, s := range slots {
		out[i] = ProjectedSlot{Start: s.Start, End: s.End}
	}
	return &Availability{Timezone: timezone, Slots: out}
}

func parseHHMMOffset(hhmm string) (time.Duration, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: expected HH:MM, got %s", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %s", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %s", parts[1])
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

