package repository

import (
	"context"
	"database/sql"
	"time"

	"zaplinks/models"

	"gorm.io/gorm"
)

// ClickEventRepositoryImpl implements ClickEventRepository
type ClickEventRepositoryImpl struct {
	*BaseRepository[models.ClickEvent, models.ClickEventFilter]
}

func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &ClickEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickEvent, models.ClickEventFilter](db)}
}

func (r *ClickEventRepositoryImpl) ListBySmartLink(ctx context.Context, smartLinkID uint, limit, offset int) ([]*models.ClickEvent, error) {
	filter := models.ClickEventFilter{SmartLinkID: &smartLinkID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// CountByDevice aggregates the click log per device type.
func (r *ClickEventRepositoryImpl) CountByDevice(ctx context.Context, smartLinkID uint) (map[models.DeviceType]int64, error) {
	db := r.getDB(ctx)
	type row struct {
		DeviceType models.DeviceType
		Total      int64
	}
	var rows []row
	err := db.Model(&models.ClickEvent{}).
		Select("device_type, COUNT(*) AS total").
		Where("smart_link_id = ?", smartLinkID).
		Group("device_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.DeviceType]int64, len(rows))
	for _, r := range rows {
		out[r.DeviceType] = r.Total
	}
	return out, nil
}

func (r *ClickEventRepositoryImpl) LastClickAt(ctx context.Context, smartLinkID uint) (*time.Time, error) {
	db := r.getDB(ctx)
	var last sql.NullTime
	err := db.Model(&models.ClickEvent{}).
		Where("smart_link_id = ?", smartLinkID).
		Select("MAX(created_at)").
		Scan(&last).Error
	if err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func (r *ClickEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickEventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.SmartLinkID != nil {
		db = db.Where("smart_link_id = ?", *f.SmartLinkID)
	}
	if f.DeviceType != nil {
		db = db.Where("device_type = ?", *f.DeviceType)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ClickEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClickEventRepositoryImpl) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
