package repository

import (
	"context"
	"errors"

	"zaplinks/models"
	"zaplinks/utils"

	"gorm.io/gorm"
)

// SmartLinkRepositoryImpl implements SmartLinkRepository
type SmartLinkRepositoryImpl struct {
	*BaseRepository[models.SmartLink, models.SmartLinkFilter]
}

func NewSmartLinkRepository(db *gorm.DB) SmartLinkRepository {
	return &SmartLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.SmartLink, models.SmartLinkFilter](db)}
}

// ActiveBySlug resolves a slug to its smart link, active links only.
func (r *SmartLinkRepositoryImpl) ActiveBySlug(ctx context.Context, slug string) (*models.SmartLink, error) {
	db := r.getDB(ctx)
	var row models.SmartLink
	if err := db.Where("slug = ? AND is_active = ?", slug, true).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *SmartLinkRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.SmartLink, error) {
	filter := models.SmartLinkFilter{UUID: &uuid}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// IncrementClicks bumps the aggregate click counter with a read-then-write.
// There is no row lock or atomic UPDATE here on purpose: concurrent redirects
// may lose an increment, which the product accepts (the click_events log is
// the authoritative record).
func (r *SmartLinkRepositoryImpl) IncrementClicks(ctx context.Context, linkID uint) error {
	db := r.getDB(ctx)
	var row models.SmartLink
	if err := db.Last(&row, linkID).Error; err != nil {
		return err
	}
	return db.Model(&models.SmartLink{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"total_clicks": row.TotalClicks + 1,
			"updated_at":   utils.UTCNow(),
		}).Error
}

func (r *SmartLinkRepositoryImpl) Update(ctx context.Context, link *models.SmartLink) error {
	db := r.getDB(ctx)
	return db.Save(link).Error
}

func (r *SmartLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.SmartLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *SmartLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.SmartLinkFilter, orderBy string, limit, offset int) ([]*models.SmartLink, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SmartLink{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.SmartLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SmartLinkRepositoryImpl) Count(ctx context.Context, filter models.SmartLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SmartLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SmartLinkRepositoryImpl) Exists(ctx context.Context, filter models.SmartLinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
