package businessflow

import (
	"context"

	"github.com/google/uuid"

	"zaplinks/app/dto"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

// CampaignFlow manages campaigns and their rotation groups
type CampaignFlow interface {
	Create(ctx context.Context, userID string, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error)
	List(ctx context.Context, userID string, page, pageSize int) (*dto.ListCampaignsResponse, error)
	Get(ctx context.Context, userID, campaignUUID string) (*dto.CampaignDTO, error)
	Update(ctx context.Context, userID, campaignUUID string, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error)
	Archive(ctx context.Context, userID, campaignUUID string) error

	AddGroup(ctx context.Context, userID, campaignUUID string, req *dto.CreateCampaignGroupRequest) (*dto.CampaignGroupDTO, error)
	ListGroups(ctx context.Context, userID, campaignUUID string) ([]dto.CampaignGroupDTO, error)
	UpdateGroup(ctx context.Context, userID, campaignUUID string, groupID uint, req *dto.UpdateCampaignGroupRequest) (*dto.CampaignGroupDTO, error)
	RemoveGroup(ctx context.Context, userID, campaignUUID string, groupID uint) error
}

type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	groupRepo    repository.CampaignGroupRepository
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(campaignRepo repository.CampaignRepository, groupRepo repository.CampaignGroupRepository) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		groupRepo:    groupRepo,
	}
}

// ownedCampaign loads a campaign by UUID and enforces ownership
func (f *CampaignFlowImpl) ownedCampaign(ctx context.Context, userID, campaignUUID string) (*models.Campaign, error) {
	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.UserID != userID {
		return nil, ErrCampaignAccessDenied
	}
	return campaign, nil
}

func (f *CampaignFlowImpl) Create(ctx context.Context, userID string, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error) {
	if req.Name == "" {
		return nil, ErrCampaignNameRequired
	}

	now := utils.UTCNow()
	campaign := &models.Campaign{
		UUID:        uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.CampaignStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Failed to create campaign", err)
	}

	result := ToCampaignDTO(*campaign)
	return &result, nil
}

func (f *CampaignFlowImpl) List(ctx context.Context, userID string, page, pageSize int) (*dto.ListCampaignsResponse, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, ErrInvalidPageSize
	}

	filter := models.CampaignFilter{UserID: &userID}
	campaigns, err := f.campaignRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	total, err := f.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_COUNT_FAILED", "Failed to count campaigns", err)
	}

	items := make([]dto.CampaignDTO, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, ToCampaignDTO(*c))
	}
	return &dto.ListCampaignsResponse{Items: items, Total: total}, nil
}

func (f *CampaignFlowImpl) Get(ctx context.Context, userID, campaignUUID string) (*dto.CampaignDTO, error) {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return nil, err
	}
	result := ToCampaignDTO(*campaign)
	return &result, nil
}

func (f *CampaignFlowImpl) Update(ctx context.Context, userID, campaignUUID string, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error) {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Description != nil {
		campaign.Description = req.Description
	}
	if req.Status != nil {
		campaign.Status = models.CampaignStatus(*req.Status)
	}
	campaign.UpdatedAt = utils.UTCNow()

	if err := f.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}
	result := ToCampaignDTO(*campaign)
	return &result, nil
}

// Archive is the delete operation for campaigns. Rows are kept so that
// historical click statistics stay attributable.
func (f *CampaignFlowImpl) Archive(ctx context.Context, userID, campaignUUID string) error {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return err
	}
	if err := f.campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusArchived); err != nil {
		return NewBusinessError("CAMPAIGN_ARCHIVE_FAILED", "Failed to archive campaign", err)
	}
	return nil
}

func (f *CampaignFlowImpl) AddGroup(ctx context.Context, userID, campaignUUID string, req *dto.CreateCampaignGroupRequest) (*dto.CampaignGroupDTO, error) {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusArchived {
		return nil, ErrCampaignArchived
	}
	if !IsWhatsAppInviteLink(req.InviteLink) {
		return nil, ErrInviteLinkInvalid
	}

	now := utils.UTCNow()
	group := &models.CampaignGroup{
		CampaignID:      campaign.ID,
		Name:            req.Name,
		Phone:           req.Phone,
		InviteLink:      req.InviteLink,
		MemberLimit:     1024,
		IsActive:        utils.ToPtr(true),
		RotationEnabled: utils.ToPtr(true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.MemberLimit != nil {
		group.MemberLimit = *req.MemberLimit
	}
	if req.Priority != nil {
		group.Priority = *req.Priority
	}
	if req.IsActive != nil {
		group.IsActive = req.IsActive
	}
	if req.RotationEnabled != nil {
		group.RotationEnabled = req.RotationEnabled
	}

	if err := f.groupRepo.Save(ctx, group); err != nil {
		return nil, NewBusinessError("GROUP_CREATE_FAILED", "Failed to create campaign group", err)
	}
	result := ToCampaignGroupDTO(*group)
	return &result, nil
}

func (f *CampaignFlowImpl) ListGroups(ctx context.Context, userID, campaignUUID string) ([]dto.CampaignGroupDTO, error) {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return nil, err
	}

	groups, err := f.groupRepo.ByFilter(ctx, models.CampaignGroupFilter{CampaignID: &campaign.ID}, "priority ASC, id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("GROUP_LIST_FAILED", "Failed to list campaign groups", err)
	}

	items := make([]dto.CampaignGroupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, ToCampaignGroupDTO(*g))
	}
	return items, nil
}

// ownedGroup loads a group and checks it belongs to the given campaign
func (f *CampaignFlowImpl) ownedGroup(ctx context.Context, campaign *models.Campaign, groupID uint) (*models.CampaignGroup, error) {
	group, err := f.groupRepo.ByID(ctx, groupID)
	if err != nil {
		return nil, NewBusinessError("GROUP_LOOKUP_FAILED", "Failed to lookup campaign group", err)
	}
	if group == nil || group.CampaignID != campaign.ID {
		return nil, ErrCampaignGroupNotFound
	}
	return group, nil
}

func (f *CampaignFlowImpl) UpdateGroup(ctx context.Context, userID, campaignUUID string, groupID uint, req *dto.UpdateCampaignGroupRequest) (*dto.CampaignGroupDTO, error) {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return nil, err
	}
	group, err := f.ownedGroup(ctx, campaign, groupID)
	if err != nil {
		return nil, err
	}

	if req.InviteLink != nil {
		if !IsWhatsAppInviteLink(*req.InviteLink) {
			return nil, ErrInviteLinkInvalid
		}
		group.InviteLink = *req.InviteLink
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Phone != nil {
		group.Phone = *req.Phone
	}
	if req.MemberLimit != nil {
		if *req.MemberLimit < 1 {
			return nil, ErrMemberLimitInvalid
		}
		group.MemberLimit = *req.MemberLimit
	}
	if req.Priority != nil {
		group.Priority = *req.Priority
	}
	if req.IsActive != nil {
		group.IsActive = req.IsActive
	}
	if req.RotationEnabled != nil {
		group.RotationEnabled = req.RotationEnabled
	}
	group.UpdatedAt = utils.UTCNow()

	if err := f.groupRepo.Update(ctx, group); err != nil {
		return nil, NewBusinessError("GROUP_UPDATE_FAILED", "Failed to update campaign group", err)
	}
	result := ToCampaignGroupDTO(*group)
	return &result, nil
}

// RemoveGroup deactivates a group instead of deleting it so click events
// keep a resolvable origin.
func (f *CampaignFlowImpl) RemoveGroup(ctx context.Context, userID, campaignUUID string, groupID uint) error {
	campaign, err := f.ownedCampaign(ctx, userID, campaignUUID)
	if err != nil {
		return err
	}
	group, err := f.ownedGroup(ctx, campaign, groupID)
	if err != nil {
		return err
	}

	group.IsActive = utils.ToPtr(false)
	group.RotationEnabled = utils.ToPtr(false)
	group.UpdatedAt = utils.UTCNow()
	if err := f.groupRepo.Update(ctx, group); err != nil {
		return NewBusinessError("GROUP_REMOVE_FAILED", "Failed to remove campaign group", err)
	}
	return nil
}
