package businessflow

import (
	"context"
	"strings"

	"zaplinks/app/dto"
	"zaplinks/app/services"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

// DomainFlow manages custom redirect domains
type DomainFlow interface {
	Register(ctx context.Context, userID string, req *dto.CreateDomainRequest) (*dto.CustomDomainDTO, error)
	List(ctx context.Context, userID string) ([]dto.CustomDomainDTO, error)
	Verify(ctx context.Context, userID string, domainID uint) (*dto.CustomDomainDTO, error)
	Remove(ctx context.Context, userID string, domainID uint) error
}

type DomainFlowImpl struct {
	domainRepo repository.CustomDomainRepository
	prober     services.DomainProber
}

// NewDomainFlow creates a new domain flow instance
func NewDomainFlow(domainRepo repository.CustomDomainRepository, prober services.DomainProber) DomainFlow {
	return &DomainFlowImpl{
		domainRepo: domainRepo,
		prober:     prober,
	}
}

func (f *DomainFlowImpl) Register(ctx context.Context, userID string, req *dto.CreateDomainRequest) (*dto.CustomDomainDTO, error) {
	hostname := strings.ToLower(strings.TrimSpace(req.Hostname))
	if hostname == "" {
		return nil, ErrHostnameRequired
	}

	existing, err := f.domainRepo.ByHostname(ctx, hostname)
	if err != nil {
		return nil, NewBusinessError("DOMAIN_LOOKUP_FAILED", "Failed to lookup domain", err)
	}
	if existing != nil {
		return nil, ErrDomainAlreadyExists
	}

	now := utils.UTCNow()
	domain := &models.CustomDomain{
		UserID:     userID,
		Hostname:   hostname,
		IsVerified: utils.ToPtr(false),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.domainRepo.Save(ctx, domain); err != nil {
		return nil, NewBusinessError("DOMAIN_CREATE_FAILED", "Failed to register domain", err)
	}
	result := ToCustomDomainDTO(*domain)
	return &result, nil
}

func (f *DomainFlowImpl) List(ctx context.Context, userID string) ([]dto.CustomDomainDTO, error) {
	domains, err := f.domainRepo.ByFilter(ctx, models.CustomDomainFilter{UserID: &userID}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DOMAIN_LIST_FAILED", "Failed to list domains", err)
	}
	items := make([]dto.CustomDomainDTO, 0, len(domains))
	for _, d := range domains {
		items = append(items, ToCustomDomainDTO(*d))
	}
	return items, nil
}

func (f *DomainFlowImpl) ownedDomain(ctx context.Context, userID string, domainID uint) (*models.CustomDomain, error) {
	domain, err := f.domainRepo.ByID(ctx, domainID)
	if err != nil {
		return nil, NewBusinessError("DOMAIN_LOOKUP_FAILED", "Failed to lookup domain", err)
	}
	if domain == nil || domain.UserID != userID {
		return nil, ErrDomainNotFound
	}
	return domain, nil
}

// Verify probes the domain over HTTPS and persists the outcome. A failed
// probe still updates last_checked_at so the dashboard can show when the
// domain was last tried.
func (f *DomainFlowImpl) Verify(ctx context.Context, userID string, domainID uint) (*dto.CustomDomainDTO, error) {
	domain, err := f.ownedDomain(ctx, userID, domainID)
	if err != nil {
		return nil, err
	}

	checkedAt := utils.UTCNow()
	probeErr := f.prober.Probe(ctx, domain.Hostname)
	verified := probeErr == nil

	if err := f.domainRepo.MarkVerified(ctx, domain.ID, verified, checkedAt); err != nil {
		return nil, NewBusinessError("DOMAIN_VERIFY_FAILED", "Failed to persist verification result", err)
	}

	domain.IsVerified = utils.ToPtr(verified)
	domain.LastCheckedAt = &checkedAt
	if !verified {
		return nil, ErrDomainNotReachable
	}
	result := ToCustomDomainDTO(*domain)
	return &result, nil
}

func (f *DomainFlowImpl) Remove(ctx context.Context, userID string, domainID uint) error {
	domain, err := f.ownedDomain(ctx, userID, domainID)
	if err != nil {
		return err
	}
	if err := f.domainRepo.Delete(ctx, domain.ID); err != nil {
		return NewBusinessError("DOMAIN_REMOVE_FAILED", "Failed to remove domain", err)
	}
	return nil
}
