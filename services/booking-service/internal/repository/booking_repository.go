package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/slotwise/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBookingNotFound = errors.New("booking not found")

// conflictingStatuses are the statuses a booking must hold to be
// considered when checking for an overlapping reservation on a resource,
// per spec.md invariant I1.
var conflictingStatuses = []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}

// BookingRepository defines data operations for bookings. The per-booking
// reads and writes, List and DeleteByTenant are scoped by tenant_id; the
// resource-window lookup, the conflict check, the resource/user cascade
// cancels and the stale-pending sweep select by resource, user or status
// alone.
type BookingRepository interface {
	GetByTenantAndID(tenantID, id string) (*models.Booking, error)
	Update(booking *models.Booking) error
	List(tenantID, resourceID, userID string, limit, offset int) ([]*models.Booking, int64, error)
	ActiveWindow(resourceID string, from, to time.Time) ([]*models.Booking, error)

	// CreateWithConflictCheck runs the overlap check and the insert of
	// every booking in the batch inside one transaction, so two
	// simultaneous admissions on the same resource cannot both
	// succeed (spec.md §5). excludeID is skipped when re-admitting an
	// update to itself (that row is saved in place rather than inserted);
	// pass "" when creating. Returns every conflicting booking found for
	// any occurrence, existing rows and overlapping siblings in the batch
	// alike, or persists the whole batch atomically when none collide.
	CreateWithConflictCheck(bookings []*models.Booking, excludeID string) ([]models.Booking, error)

	CancelByResource(resourceID string) ([]models.Booking, error)
	CancelByUser(userID string) ([]models.Booking, error)
	DeleteByTenant(tenantID string) (int64, error)

	// Delete hard-deletes a single tenant-scoped booking, for the
	// admin-only DELETE /bookings/{id} route.
	Delete(tenantID, id string) error

	// ListStalePending returns every pendente booking whose start_time is
	// before asOf, for the periodic sweeper in pkg/scheduler.
	ListStalePending(asOf time.Time) ([]models.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetByTenantAndID(tenantID, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(booking *models.Booking) error {
	if err := r.db.Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) List(tenantID, resourceID, userID string, limit, offset int) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.Model(&models.Booking{}).Where("tenant_id = ?", tenantID)
	if resourceID != "" {
		query = query.Where("resource_id = ?", resourceID)
	}
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	listQuery := r.db.Where("tenant_id = ?", tenantID)
	if resourceID != "" {
		listQuery = listQuery.Where("resource_id = ?", resourceID)
	}
	if userID != "" {
		listQuery = listQuery.Where("user_id = ?", userID)
	}
	if err := listQuery.Order("start_time desc").Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, total, nil
}

// ActiveWindow returns the pendente/confirmado bookings of a resource
// overlapping [from, to), for resource-service's availability projection
// endpoint.
func (r *bookingRepository) ActiveWindow(resourceID string, from, to time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.
		Where("resource_id = ?", resourceID).
		Where("status IN (?)", conflictingStatuses).
		Where("start_time < ?", to).
		Where("end_time > ?", from).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings window: %w", err)
	}
	return bookings, nil
}

// CreateWithConflictCheck locks the resource's existing bookings with
// SELECT ... FOR UPDATE before checking for overlaps, so two concurrent
// transactions attempting to book the same window serialize against each
// other rather than both observing "no conflict" and both committing.
func (r *bookingRepository) CreateWithConflictCheck(bookings []*models.Booking, excludeID string) ([]models.Booking, error) {
	if len(bookings) == 0 {
		return nil, nil
	}
	resourceID := bookings[0].ResourceID

	var conflicts []models.Booking
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Booking
		lockQuery := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("resource_id = ?", resourceID).
			Where("status IN (?)", conflictingStatuses)
		if excludeID != "" {
			lockQuery = lockQuery.Where("id <> ?", excludeID)
		}
		if err := lockQuery.Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to lock existing bookings: %w", err)
		}

		for _, candidate := range bookings {
			for _, other := range existing {
				if candidate.StartTime.Before(other.EndTime) && candidate.EndTime.After(other.StartTime) {
					conflicts = append(conflicts, other)
				}
			}
			for _, sibling := range bookings {
				if sibling == candidate {
					continue
				}
				if candidate.StartTime.Before(sibling.EndTime) && candidate.EndTime.After(sibling.StartTime) {
					conflicts = append(conflicts, *sibling)
				}
			}
		}
		if len(conflicts) > 0 {
			return errConflict
		}

		for _, booking := range bookings {
			write := tx.Create
			if excludeID != "" && booking.ID == excludeID {
				write = tx.Save
			}
			if err := write(booking).Error; err != nil {
				return fmt.Errorf("failed to save booking: %w", err)
			}
		}
		return nil
	})

	if errors.Is(err, errConflict) {
		return conflicts, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

var errConflict = errors.New("booking conflict")

// CancelByResource sets status=cancelado on every active booking of a
// resource, for the resource.deleted cascade. Returns the rows that were
// actually transitioned, so the caller can publish one event per row.
func (r *bookingRepository) CancelByResource(resourceID string) ([]models.Booking, error) {
	return r.cancelWhere("resource_id = ? AND status IN (?)", resourceID, conflictingStatuses)
}

// CancelByUser sets status=cancelado on every active booking of a user,
// for the user.deleted cascade.
func (r *bookingRepository) CancelByUser(userID string) ([]models.Booking, error) {
	return r.cancelWhere("user_id = ? AND status IN (?)", userID, conflictingStatuses)
}

func (r *bookingRepository) cancelWhere(clause string, id interface{}, statuses []models.BookingStatus) ([]models.Booking, error) {
	var affected []models.Booking
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(clause, id, statuses).Find(&affected).Error; err != nil {
			return fmt.Errorf("failed to find bookings to cancel: %w", err)
		}
		if len(affected) == 0 {
			return nil
		}
		ids := make([]string, len(affected))
		for i, b := range affected {
			ids[i] = b.ID
		}
		if err := tx.Model(&models.Booking{}).Where("id IN (?)", ids).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel bookings: %w", err)
		}
		return nil
	})
	return affected, err
}

// DeleteByTenant hard-deletes every booking owned by tenantID, for the
// tenant.deleted cascade. No per-row events are published for this path.
func (r *bookingRepository) DeleteByTenant(tenantID string) (int64, error) {
	result := r.db.Unscoped().Where("tenant_id = ?", tenantID).Delete(&models.Booking{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete bookings for tenant: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete hard-deletes a single tenant-scoped booking.
func (r *bookingRepository) Delete(tenantID, id string) error {
	result := r.db.Unscoped().Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Booking{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListStalePending returns every pendente booking whose start_time is
// before asOf.
func (r *bookingRepository) ListStalePending(asOf time.Time) ([]models.Booking, error) {
	var stale []models.Booking
	err := r.db.
		Where("status = ?", models.BookingStatusPending).
		Where("start_time < ?", asOf).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}
	return stale, nil
}
