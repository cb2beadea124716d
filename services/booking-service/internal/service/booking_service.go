package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/pkg/events"
	"github.com/slotwise/booking-service/pkg/logger"
)

// ResourceViewClient fetches a resource's status and availability schedule.
// internal/client.ResourceClient implements this over HTTP.
type ResourceViewClient interface {
	GetResource(ctx context.Context, resourceID string) (*models.ResourceView, error)
}

// BookingService is the admission engine of spec.md §4.4, the hardest
// subsystem of the whole system. Grounded on resource-service's
// AvailabilityService for the shared timezone/working-hours machinery,
// generalized with the conflict-checking transaction and recurrence
// expansion the teacher's scheduling service never had.
type BookingService struct {
	repo      repository.BookingRepository
	settings  *SettingsService
	resources ResourceViewClient
	publisher events.Publisher
	logger    logger.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(
	repo repository.BookingRepository,
	settings *SettingsService,
	resources ResourceViewClient,
	publisher events.Publisher,
	logger logger.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		settings:  settings,
		resources: resources,
		publisher: publisher,
		logger:    logger,
	}
}

// Sentinel errors surfaced by the admission gates. Handlers map each to a
// specific HTTP status.
var (
	ErrInvalidWindow        = errors.New("end_time must be after start_time")
	ErrOutsideAdvanceWindow = errors.New("start_time is outside the tenant's booking window")
	ErrBadInterval          = errors.New("duration is not a positive multiple of the tenant's booking interval")
	ErrOutsideWorkingHours  = errors.New("interval falls outside the resource's availability schedule")
	ErrResourceUnavailable  = errors.New("resource is not available for booking")
	ErrCrossTenant          = errors.New("resource or user does not belong to the requesting tenant")
	ErrTooLateToCancel      = errors.New("cancellation window has passed")
	ErrInvalidTransition    = errors.New("illegal booking status transition")
	ErrInvalidTimestamp     = errors.New("start_time/end_time must be RFC3339 or a naive timestamp valid in the tenant's timezone")
)

// ErrConflict carries the rows that collided with a candidate booking.
type ErrConflict struct {
	Conflicts []models.Booking
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("booking conflicts with %d existing reservation(s)", len(e.Conflicts))
}

// RecurringPatternRequest is the input shape for a recurring booking's pattern.
type RecurringPatternRequest struct {
	Frequency  models.RecurrenceFrequency
	Interval   int
	EndDate    *time.Time
	DaysOfWeek []int
}

// CreateBookingRequest is the input for admitting a new booking (or a
// recurring set of them). StartTime/EndTime are the raw client-supplied
// literals, normalized against the tenant's timezone by parseBookingTime
// before admission runs.
type CreateBookingRequest struct {
	TenantID         string
	ResourceID       string
	UserID           string
	ClientID         string
	StartTime        string
	EndTime          string
	Notes            *string
	RecurringEnabled bool
	RecurringPattern *RecurringPatternRequest
}

// Create runs the admission algorithm of spec.md §4.4 against req, expanding
// a recurrence set first when requested, and returns the persisted booking(s).
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) ([]models.Booking, error) {
	settings, err := s.settings.Resolve(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	resource, err := s.resources.GetResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if resource.TenantID != req.TenantID {
		return nil, ErrCrossTenant
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant timezone %q: %w", settings.Timezone, err)
	}

	start, err := parseBookingTime(req.StartTime, loc)
	if err != nil {
		return nil, err
	}
	end, err := parseBookingTime(req.EndTime, loc)
	if err != nil {
		return nil, err
	}

	occurrences, err := expandOccurrences(start, end, req.RecurringEnabled, req.RecurringPattern)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	groupID := ""
	if len(occurrences) > 1 {
		groupID = uuid.New().String()
	}

	candidates := make([]*models.Booking, len(occurrences))
	for i, occ := range occurrences {
		if err := s.checkGates(occ.start, occ.end, now, settings, resource, loc); err != nil {
			return nil, err
		}

		booking := &models.Booking{
			TenantID:         req.TenantID,
			ResourceID:       req.ResourceID,
			UserID:           req.UserID,
			ClientID:         req.ClientID,
			StartTime:        occ.start,
			EndTime:          occ.end,
			Status:           models.BookingStatusPending,
			Notes:            req.Notes,
			RecurringEnabled: req.RecurringEnabled,
		}
		if groupID != "" {
			booking.RecurrenceGroupID = &groupID
		}
		if req.RecurringPattern != nil {
			booking.RecurringPattern = models.RecurringPattern{
				Frequency: req.RecurringPattern.Frequency,
				Interval:  req.RecurringPattern.Interval,
				EndDate:   req.RecurringPattern.EndDate,
			}
			if len(req.RecurringPattern.DaysOfWeek) > 0 {
				days := make([]int64, len(req.RecurringPattern.DaysOfWeek))
				for j, d := range req.RecurringPattern.DaysOfWeek {
					days[j] = int64(d)
				}
				booking.RecurringPattern.DaysOfWeek = days
			}
		}
		candidates[i] = booking
	}

	conflicts, err := s.repo.CreateWithConflictCheck(candidates, "")
	if err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &ErrConflict{Conflicts: conflicts}
	}

	result := make([]models.Booking, len(candidates))
	for i, b := range candidates {
		result[i] = *b
		s.publishCreated(b)
	}
	return result, nil
}

// occurrence is one candidate [start, end) window in a (possibly
// single-element) recurrence set.
type occurrence struct {
	start time.Time
	end   time.Time
}

// expandOccurrences generates the occurrence set for a (possibly
// non-recurring) booking request, per spec.md §4.4's "Recurrence
// expansion" section. A non-recurring request is a one-element set.
func expandOccurrences(start, end time.Time, recurring bool, pattern *RecurringPatternRequest) ([]occurrence, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	if !recurring || pattern == nil {
		return []occurrence{{start: start, end: end}}, nil
	}
	if !pattern.Frequency.IsValid() {
		return nil, fmt.Errorf("%w: invalid recurrence frequency %q", ErrBadInterval, pattern.Frequency)
	}
	interval := pattern.Interval
	if interval <= 0 {
		interval = 1
	}
	duration := end.Sub(start)

	const maxOccurrences = 365
	var occurrences []occurrence

	switch pattern.Frequency {
	case models.RecurrenceDaily:
		cursor := start
		for len(occurrences) < maxOccurrences {
			if pattern.EndDate != nil && cursor.After(*pattern.EndDate) {
				break
			}
			occurrences = append(occurrences, occurrence{start: cursor, end: cursor.Add(duration)})
			cursor = cursor.AddDate(0, 0, interval)
			if pattern.EndDate == nil && len(occurrences) >= maxOccurrences {
				break
			}
		}

	case models.RecurrenceWeekly:
		days := pattern.DaysOfWeek
		if len(days) == 0 {
			days = []int{int(start.Weekday())}
		}
		weekStart := start.AddDate(0, 0, -int(start.Weekday()))
		week := 0
		for len(occurrences) < maxOccurrences {
			weekBase := weekStart.AddDate(0, 0, week*interval*7)
			if pattern.EndDate != nil && weekBase.After(*pattern.EndDate) {
				break
			}
			for _, d := range days {
				candidateStart := time.Date(weekBase.Year(), weekBase.Month(), weekBase.Day(), start.Hour(), start.Minute(), start.Second(), 0, start.Location())
				candidateStart = candidateStart.AddDate(0, 0, d)
				if candidateStart.Before(start) {
					continue
				}
				if pattern.EndDate != nil && candidateStart.After(*pattern.EndDate) {
					continue
				}
				occurrences = append(occurrences, occurrence{start: candidateStart, end: candidateStart.Add(duration)})
				if len(occurrences) >= maxOccurrences {
					break
				}
			}
			week++
			if pattern.EndDate == nil && week > maxOccurrences {
				break
			}
			if week > maxOccurrences*2 {
				break
			}
		}

	case models.RecurrenceMonthly:
		cursor := start
		for len(occurrences) < maxOccurrences {
			if pattern.EndDate != nil && cursor.After(*pattern.EndDate) {
				break
			}
			occurrences = append(occurrences, occurrence{start: cursor, end: cursor.Add(duration)})
			cursor = cursor.AddDate(0, interval, 0)
			if pattern.EndDate == nil && len(occurrences) >= maxOccurrences {
				break
			}
		}
	}

	if len(occurrences) == 0 {
		return nil, fmt.Errorf("%w: recurrence pattern produced no occurrences", ErrBadInterval)
	}
	return occurrences, nil
}

// checkGates runs the I5/I3/I4a/I4b policy gates of spec.md §4.4 step 3, in
// order, short-circuiting on the first failure.
func (s *BookingService) checkGates(start, end, now time.Time, settings *models.OrganizationSettings, resource *models.ResourceView, loc *time.Location) error {
	// A resource under manutencao/indisponivel never admits new bookings,
	// regardless of its availability_schedule.
	if resource.Status != "" && resource.Status != "disponivel" {
		return ErrResourceUnavailable
	}

	// I5: start_time must lie within the tenant's advance-booking window.
	maxAdvance := now.AddDate(0, 0, settings.AdvanceBookingDays)
	if !start.After(now) || start.After(maxAdvance) {
		return ErrOutsideAdvanceWindow
	}

	// I3: duration is a positive multiple of the tenant's booking interval.
	duration := end.Sub(start)
	interval := time.Duration(settings.BookingInterval) * time.Minute
	if interval <= 0 || duration <= 0 || duration%interval != 0 {
		return ErrBadInterval
	}

	startLocal := start.In(loc)
	endLocal := end.In(loc)

	// I4a: same local day, within working hours, weekday present in the schedule.
	if startLocal.Year() != endLocal.Year() || startLocal.YearDay() != endLocal.YearDay() {
		return ErrOutsideWorkingHours
	}
	workStart, err := parseHHMM(settings.WorkingHoursStart)
	if err != nil {
		return fmt.Errorf("invalid tenant working_hours_start: %w", err)
	}
	workEnd, err := parseHHMM(settings.WorkingHoursEnd)
	if err != nil {
		return fmt.Errorf("invalid tenant working_hours_end: %w", err)
	}
	startOffset := timeOfDay(startLocal)
	endOffset := timeOfDay(endLocal)
	if startOffset < workStart || endOffset > workEnd {
		return ErrOutsideWorkingHours
	}

	weekday := startLocal.Weekday().String()
	ranges, ok := resource.AvailabilitySchedule[weekday]
	if !ok || len(ranges) == 0 {
		return ErrOutsideWorkingHours
	}

	// I4b: the interval must be contained in at least one TimeRange that day.
	for _, r := range ranges {
		rangeStart, err := parseHHMM(r.Start)
		if err != nil {
			continue
		}
		rangeEnd, err := parseHHMM(r.End)
		if err != nil {
			continue
		}
		if startOffset >= rangeStart && endOffset <= rangeEnd {
			return nil
		}
	}
	return ErrOutsideWorkingHours
}

func (s *BookingService) publishCreated(b *models.Booking) {
	err := s.publisher.Publish(events.BookingCreated, b.TenantID, map[string]interface{}{
		"booking_id":  b.ID,
		"tenant_id":   b.TenantID,
		"resource_id": b.ResourceID,
		"user_id":     b.UserID,
		"status":      b.Status,
		"start_time":  b.StartTime,
		"end_time":    b.EndTime,
	})
	if err != nil {
		s.logger.Error("failed to publish booking.created", "bookingId", b.ID, "error", err)
	}
}

// Get returns a tenant's booking by ID.
func (s *BookingService) Get(tenantID, id string) (*models.Booking, error) {
	return s.repo.GetByTenantAndID(tenantID, id)
}

// BookingWindow is a single booked interval, the shape resource-service's
// availability projection consumes from GET /internal/bookings/active.
type BookingWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ActiveWindow returns the pendente/confirmado bookings of resourceID
// overlapping [from, to), for the internal lookup resource-service's
// availability projection depends on.
func (s *BookingService) ActiveWindow(resourceID string, from, to time.Time) ([]BookingWindow, error) {
	bookings, err := s.repo.ActiveWindow(resourceID, from, to)
	if err != nil {
		return nil, err
	}
	windows := make([]BookingWindow, len(bookings))
	for i, b := range bookings {
		windows[i] = BookingWindow{StartTime: b.StartTime, EndTime: b.EndTime}
	}
	return windows, nil
}

// List returns a page of a tenant's bookings, optionally filtered by
// resource or user.
func (s *BookingService) List(tenantID, resourceID, userID string, limit, offset int) ([]*models.Booking, int64, error) {
	return s.repo.List(tenantID, resourceID, userID, limit, offset)
}

// UpdateBookingRequest is the input for a partial booking update. Nil
// fields are left unchanged. StartTime/EndTime are raw literals normalized
// the same way CreateBookingRequest's are.
type UpdateBookingRequest struct {
	ResourceID *string
	StartTime  *string
	EndTime    *string
	Notes      *string
	Status     *models.BookingStatus
}

// Update applies req to the tenant's booking id. Per spec.md §4.4's
// "Update" section, changing start_time/end_time/resource_id re-runs the
// full admission pipeline excluding the row being updated; a notes- or
// status-only change skips it.
func (s *BookingService) Update(ctx context.Context, tenantID, id string, req UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return nil, err
	}

	rerunAdmission := req.ResourceID != nil || req.StartTime != nil || req.EndTime != nil

	if req.Notes != nil {
		booking.Notes = req.Notes
	}
	if req.Status != nil {
		if !booking.Status.CanTransitionTo(*req.Status) {
			return nil, ErrInvalidTransition
		}
		booking.Status = *req.Status
	}

	if !rerunAdmission {
		if err := s.repo.Update(booking); err != nil {
			return nil, err
		}
		return booking, nil
	}

	resourceID := booking.ResourceID
	if req.ResourceID != nil {
		resourceID = *req.ResourceID
	}

	settings, err := s.settings.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.TenantID != tenantID {
		return nil, ErrCrossTenant
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant timezone %q: %w", settings.Timezone, err)
	}

	start := booking.StartTime
	if req.StartTime != nil {
		start, err = parseBookingTime(*req.StartTime, loc)
		if err != nil {
			return nil, err
		}
	}
	end := booking.EndTime
	if req.EndTime != nil {
		end, err = parseBookingTime(*req.EndTime, loc)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := s.checkGates(start, end, now, settings, resource, loc); err != nil {
		return nil, err
	}

	booking.ResourceID = resourceID
	booking.StartTime = start
	booking.EndTime = end

	conflicts, err := s.repo.CreateWithConflictCheck([]*models.Booking{booking}, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &ErrConflict{Conflicts: conflicts}
	}
	if err := s.repo.Update(booking); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(events.BookingUpdated, booking.TenantID, map[string]interface{}{
		"booking_id":  booking.ID,
		"tenant_id":   booking.TenantID,
		"resource_id": booking.ResourceID,
		"start_time":  booking.StartTime,
		"end_time":    booking.EndTime,
	}); err != nil {
		s.logger.Error("failed to publish booking.updated", "bookingId", booking.ID, "error", err)
	}
	return booking, nil
}

// Cancel sets the tenant's booking id to cancelado, guarded by I6.
func (s *BookingService) Cancel(tenantID, id, reason, cancelledBy string) (*models.Booking, error) {
	booking, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Resolve(context.Background(), tenantID)
	if err != nil {
		return nil, err
	}
	minCancelTime := time.Now().UTC().Add(time.Duration(settings.CancellationHours) * time.Hour)
	if minCancelTime.After(booking.StartTime) {
		return nil, ErrTooLateToCancel
	}

	if !booking.Status.CanTransitionTo(models.BookingStatusCancelled) {
		return nil, ErrInvalidTransition
	}
	previousStatus := booking.Status
	booking.Status = models.BookingStatusCancelled
	if err := s.repo.Update(booking); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(events.BookingCancelled, booking.TenantID, map[string]interface{}{
		"booking_id":   booking.ID,
		"resource_id":  booking.ResourceID,
		"reason":       reason,
		"cancelled_by": cancelledBy,
	}); err != nil {
		s.logger.Error("failed to publish booking.cancelled", "bookingId", booking.ID, "error", err)
	}
	if previousStatus != booking.Status {
		if err := s.publisher.Publish(events.BookingStatusChanged, booking.TenantID, map[string]interface{}{
			"booking_id": booking.ID,
			"from":       previousStatus,
			"to":         booking.Status,
		}); err != nil {
			s.logger.Error("failed to publish booking.status_changed", "bookingId", booking.ID, "error", err)
		}
	}
	return booking, nil
}

// Delete hard-deletes a tenant's booking, for the admin-only
// DELETE /bookings/{id} route. No event is published; deletion is an
// administrative override, not a domain transition.
func (s *BookingService) Delete(tenantID, id string) error {
	return s.repo.Delete(tenantID, id)
}

// SweepStalePending auto-cancels pendente bookings whose start_time has
// passed without ever being confirmed, and publishes booking.status_changed
// for each. Run periodically by pkg/scheduler.
func (s *BookingService) SweepStalePending(ctx context.Context) (int, error) {
	stale, err := s.repo.ListStalePending(time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}

	for _, b := range stale {
		b.Status = models.BookingStatusCancelled
		if err := s.repo.Update(&b); err != nil {
			s.logger.Error("failed to auto-cancel stale booking", "bookingId", b.ID, "error", err)
			continue
		}
		if err := s.publisher.Publish(events.BookingStatusChanged, b.TenantID, map[string]interface{}{
			"booking_id": b.ID,
			"from":       models.BookingStatusPending,
			"to":         models.BookingStatusCancelled,
			"reason":     "expired_unconfirmed",
		}); err != nil {
			s.logger.Error("failed to publish booking.status_changed for stale booking", "bookingId", b.ID, "error", err)
		}
	}
	return len(stale), nil
}

// CanCancel reports whether booking could currently be cancelled under I6.
// Nothing in this service calls it: list and get responses return the
// stored bookings as they are, with no can_cancel field.
func CanCancel(b *models.Booking, cancellationHours int) bool {
	if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed {
		return false
	}
	deadline := time.Now().UTC().Add(time.Duration(cancellationHours) * time.Hour)
	return !deadline.After(b.StartTime)
}

func parseHHMM(hhmm string) (time.Duration, error) {
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

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}

// naiveTimestampLayout is the offset-less form of RFC3339 accepted for a
// client-supplied timestamp that carries no timezone offset.
const naiveTimestampLayout = "2006-01-02T15:04:05"

// parseBookingTime implements spec.md §4.4 step 1's "Normalize times" rule:
// an offset-bearing literal converts straight to UTC; a naive literal (no
// offset) is interpreted in loc. Go's time.Date already resolves an
// ambiguous wall-clock time (the DST fall-back overlap) to the earlier of
// the two offsets, so only the spring-forward gap needs explicit handling —
// detected by checking whether the resolved time's wall-clock components,
// read back out in loc, still match what was asked for.
func parseBookingTime(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	naive, err := time.Parse(naiveTimestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}

	resolved := time.Date(naive.Year(), naive.Month(), naive.Day(), naive.Hour(), naive.Minute(), naive.Second(), 0, loc)
	local := resolved.In(loc)
	if local.Hour() != naive.Hour() || local.Minute() != naive.Minute() || local.Day() != naive.Day() {
		return time.Time{}, fmt.Errorf("%w: %q falls in a daylight-saving gap in the tenant's timezone", ErrInvalidTimestamp, raw)
	}
	return resolved.UTC(), nil
}
