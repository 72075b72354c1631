// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"zaplinks/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uint, status models.CampaignStatus) error
	Update(ctx context.Context, campaign *models.Campaign) error
}

// CampaignGroupRepository defines operations for campaign rotation groups
type CampaignGroupRepository interface {
	Repository[models.CampaignGroup, models.CampaignGroupFilter]
	// ListEligible returns the campaign's groups with is_active and
	// rotation_enabled set, ordered by ascending priority (id ascending as
	// the stable tiebreak).
	ListEligible(ctx context.Context, campaignID uint) ([]*models.CampaignGroup, error)
	UpdateMemberCount(ctx context.Context, groupID uint, members int) error
	Update(ctx context.Context, group *models.CampaignGroup) error
}

// SmartLinkRepository defines operations for smart links
type SmartLinkRepository interface {
	Repository[models.SmartLink, models.SmartLinkFilter]
	ActiveBySlug(ctx context.Context, slug string) (*models.SmartLink, error)
	ByUUID(ctx context.Context, uuid string) (*models.SmartLink, error)
	// IncrementClicks is a read-then-write counter bump. It is deliberately
	// not atomic at the store level; concurrent increments can lose updates.
	IncrementClicks(ctx context.Context, linkID uint) error
	Update(ctx context.Context, link *models.SmartLink) error
}

// ClickEventRepository defines operations for click events
type ClickEventRepository interface {
	Repository[models.ClickEvent, models.ClickEventFilter]
	ListBySmartLink(ctx context.Context, smartLinkID uint, limit, offset int) ([]*models.ClickEvent, error)
	CountByDevice(ctx context.Context, smartLinkID uint) (map[models.DeviceType]int64, error)
	LastClickAt(ctx context.Context, smartLinkID uint) (*time.Time, error)
}

// CustomDomainRepository defines operations for custom domains
type CustomDomainRepository interface {
	Repository[models.CustomDomain, models.CustomDomainFilter]
	ByHostname(ctx context.Context, hostname string) (*models.CustomDomain, error)
	MarkVerified(ctx context.Context, domainID uint, verified bool, checkedAt time.Time) error
	// Delete removes the row so the hostname can be registered again.
	Delete(ctx context.Context, domainID uint) error
}
