package repository

import (
	"context"
	"time"

	"zaplinks/models"
	"zaplinks/utils"

	"gorm.io/gorm"
)

// CustomDomainRepositoryImpl implements CustomDomainRepository
type CustomDomainRepositoryImpl struct {
	*BaseRepository[models.CustomDomain, models.CustomDomainFilter]
}

func NewCustomDomainRepository(db *gorm.DB) CustomDomainRepository {
	return &CustomDomainRepositoryImpl{BaseRepository: NewBaseRepository[models.CustomDomain, models.CustomDomainFilter](db)}
}

func (r *CustomDomainRepositoryImpl) ByHostname(ctx context.Context, hostname string) (*models.CustomDomain, error) {
	filter := models.CustomDomainFilter{Hostname: &hostname}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *CustomDomainRepositoryImpl) MarkVerified(ctx context.Context, domainID uint, verified bool, checkedAt time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.CustomDomain{}).
		Where("id = ?", domainID).
		Updates(map[string]any{
			"is_verified":     verified,
			"last_checked_at": checkedAt,
			"updated_at":      utils.UTCNow(),
		}).Error
}

func (r *CustomDomainRepositoryImpl) Delete(ctx context.Context, domainID uint) error {
	db := r.getDB(ctx)
	return db.Where("id = ?", domainID).Delete(&models.CustomDomain{}).Error
}

func (r *CustomDomainRepositoryImpl) applyFilter(db *gorm.DB, f models.CustomDomainFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Hostname != nil {
		db = db.Where("hostname = ?", *f.Hostname)
	}
	if f.IsVerified != nil {
		db = db.Where("is_verified = ?", *f.IsVerified)
	}
	return db
}

func (r *CustomDomainRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomDomainFilter, orderBy string, limit, offset int) ([]*models.CustomDomain, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CustomDomain{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.CustomDomain
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CustomDomainRepositoryImpl) Count(ctx context.Context, filter models.CustomDomainFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CustomDomain{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CustomDomainRepositoryImpl) Exists(ctx context.Context, filter models.CustomDomainFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
