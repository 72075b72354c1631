package repository

import (
	"context"

	"zaplinks/models"
	"zaplinks/utils"

	"gorm.io/gorm"
)

// CampaignGroupRepositoryImpl implements CampaignGroupRepository
type CampaignGroupRepositoryImpl struct {
	*BaseRepository[models.CampaignGroup, models.CampaignGroupFilter]
}

func NewCampaignGroupRepository(db *gorm.DB) CampaignGroupRepository {
	return &CampaignGroupRepositoryImpl{BaseRepository: NewBaseRepository[models.CampaignGroup, models.CampaignGroupFilter](db)}
}

// ListEligible returns active, rotation-enabled groups for the campaign in
// ascending priority order. Ties resolve by insertion order (id ascending).
func (r *CampaignGroupRepositoryImpl) ListEligible(ctx context.Context, campaignID uint) ([]*models.CampaignGroup, error) {
	db := r.getDB(ctx)
	var rows []*models.CampaignGroup
	err := db.Model(&models.CampaignGroup{}).
		Where("campaign_id = ? AND is_active = ? AND rotation_enabled = ?", campaignID, true, true).
		Order("priority ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignGroupRepositoryImpl) UpdateMemberCount(ctx context.Context, groupID uint, members int) error {
	db := r.getDB(ctx)
	return db.Model(&models.CampaignGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]any{
			"current_members": members,
			"updated_at":      utils.UTCNow(),
		}).Error
}

func (r *CampaignGroupRepositoryImpl) Update(ctx context.Context, group *models.CampaignGroup) error {
	db := r.getDB(ctx)
	return db.Save(group).Error
}

func (r *CampaignGroupRepositoryImpl) applyFilter(db *gorm.DB, f models.CampaignGroupFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.RotationEnabled != nil {
		db = db.Where("rotation_enabled = ?", *f.RotationEnabled)
	}
	if f.Priority != nil {
		db = db.Where("priority = ?", *f.Priority)
	}
	return db
}

func (r *CampaignGroupRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignGroupFilter, orderBy string, limit, offset int) ([]*models.CampaignGroup, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CampaignGroup{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.CampaignGroup
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignGroupRepositoryImpl) Count(ctx context.Context, filter models.CampaignGroupFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CampaignGroup{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampaignGroupRepositoryImpl) Exists(ctx context.Context, filter models.CampaignGroupFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
