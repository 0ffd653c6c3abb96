package repositories

import (
	"errors"

	"altn-timeclock/internal/adapters/persistence/models"
	"altn-timeclock/internal/core/domain"

	"gorm.io/gorm"
)

// eventRepository implements EventRepository on MySQL
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Add inserts the event, deduplicating by natural key. The find and the
// insert run in one transaction so two callers racing on the same key
// cannot both allocate a local id.
func (r *eventRepository) Add(event domain.ClockEvent) (int64, error) {
	var localID int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ClockEvent
		err := tx.
			Where("employee_id = ? AND location_id = ? AND action = ? AND timestamp = ?",
				event.EmployeeID, event.LocationID, string(event.Action), event.Timestamp).
			First(&existing).Error
		if err == nil {
			localID = existing.LocalID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxID int64
		if err := tx.Model(&models.ClockEvent{}).
			Select("COALESCE(MAX(local_id), 0)").
			Scan(&maxID).Error; err != nil {
			return err
		}

		row := models.FromDomain(event)
		row.LocalID = maxID + 1
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		localID = row.LocalID
		return nil
	})

	return localID, err
}

// Update replaces the stored event matching event.LocalID; no-op if absent
func (r *eventRepository) Update(event domain.ClockEvent) error {
	return r.db.Model(&models.ClockEvent{}).
		Where("local_id = ?", event.LocalID).
		Updates(map[string]interface{}{
			"server_id":   event.ServerID,
			"employee_id": event.EmployeeID,
			"location_id": event.LocationID,
			"action":      string(event.Action),
			"timestamp":   event.Timestamp,
			"synced":      event.Synced,
		}).Error
}

// MarkSynced sets synced=true for the given local id
func (r *eventRepository) MarkSynced(localID int64) error {
	return r.db.Model(&models.ClockEvent{}).
		Where("local_id = ?", localID).
		Update("synced", true).Error
}

// SetServerID records the upstream-assigned id and sets synced=true
func (r *eventRepository) SetServerID(localID, serverID int64) error {
	return r.db.Model(&models.ClockEvent{}).
		Where("local_id = ?", localID).
		Updates(map[string]interface{}{
			"server_id": serverID,
			"synced":    true,
		}).Error
}

// ExistsByServerID reports whether a row with the server id exists
func (r *eventRepository) ExistsByServerID(serverID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ClockEvent{}).
		Where("server_id = ?", serverID).
		Count(&count).Error
	return count > 0, err
}

// PurgeOlderThan deletes all events with timestamp < cutoffMs
func (r *eventRepository) PurgeOlderThan(cutoffMs int64) error {
	return r.db.Where("timestamp < ?", cutoffMs).Delete(&models.ClockEvent{}).Error
}

// Clear deletes all events
func (r *eventRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&models.ClockEvent{}).Error
}

// ByLocalID returns the event with the given local id
func (r *eventRepository) ByLocalID(localID int64) (*domain.ClockEvent, error) {
	var row models.ClockEvent
	err := r.db.Where("local_id = ?", localID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	event := row.ToDomain()
	return &event, nil
}

// All returns every stored event in ascending timestamp order
func (r *eventRepository) All() ([]domain.ClockEvent, error) {
	var rows []models.ClockEvent
	if err := r.db.Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// ByEmployee returns one employee's events in ascending timestamp order
func (r *eventRepository) ByEmployee(employeeID int64) ([]domain.ClockEvent, error) {
	var rows []models.ClockEvent
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// Unsynced returns events not yet accepted by the upstream server
func (r *eventRepository) Unsynced() ([]domain.ClockEvent, error) {
	var rows []models.ClockEvent
	err := r.db.
		Where("synced = ?", false).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// List returns a page of events, newest first. employeeID 0 means all.
func (r *eventRepository) List(offset, limit int, employeeID int64) ([]domain.ClockEvent, int64, error) {
	query := r.db.Model(&models.ClockEvent{})
	if employeeID != 0 {
		query = query.Where("employee_id = ?", employeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClockEvent
	err := query.
		Order("timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return toDomainSlice(rows), total, nil
}

func toDomainSlice(rows []models.ClockEvent) []domain.ClockEvent {
	events := make([]domain.ClockEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToDomain())
	}
	return events
}
