package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"zaplinks/app/dto"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// SmartLinkFlow manages smart links, their statistics, and exports
type SmartLinkFlow interface {
	Create(ctx context.Context, userID string, req *dto.CreateSmartLinkRequest) (*dto.SmartLinkDTO, error)
	List(ctx context.Context, userID string, page, pageSize int) (*dto.ListSmartLinksResponse, error)
	Get(ctx context.Context, userID, linkUUID string) (*dto.SmartLinkDTO, error)
	Update(ctx context.Context, userID, linkUUID string, req *dto.UpdateSmartLinkRequest) (*dto.SmartLinkDTO, error)
	Deactivate(ctx context.Context, userID, linkUUID string) error
	Stats(ctx context.Context, userID, linkUUID string) (*dto.SmartLinkStatsResponse, error)
	ExportClicks(ctx context.Context, userID, linkUUID string) ([]byte, string, error)
}

type SmartLinkFlowImpl struct {
	smartLinkRepo repository.SmartLinkRepository
	campaignRepo  repository.CampaignRepository
	clickRepo     repository.ClickEventRepository
}

// NewSmartLinkFlow creates a new smart link flow instance
func NewSmartLinkFlow(
	smartLinkRepo repository.SmartLinkRepository,
	campaignRepo repository.CampaignRepository,
	clickRepo repository.ClickEventRepository,
) SmartLinkFlow {
	return &SmartLinkFlowImpl{
		smartLinkRepo: smartLinkRepo,
		campaignRepo:  campaignRepo,
		clickRepo:     clickRepo,
	}
}

func (f *SmartLinkFlowImpl) ownedLink(ctx context.Context, userID, linkUUID string) (*models.SmartLink, error) {
	link, err := f.smartLinkRepo.ByUUID(ctx, linkUUID)
	if err != nil {
		return nil, NewBusinessError("SMART_LINK_LOOKUP_FAILED", "Failed to lookup smart link", err)
	}
	if link == nil || link.UserID != userID {
		return nil, ErrSmartLinkNotFound
	}
	return link, nil
}

func (f *SmartLinkFlowImpl) Create(ctx context.Context, userID string, req *dto.CreateSmartLinkRequest) (*dto.SmartLinkDTO, error) {
	if req.Slug == "" {
		return nil, ErrSlugRequired
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, ErrSlugInvalid
	}

	campaign, err := f.campaignRepo.ByUUID(ctx, req.CampaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.UserID != userID {
		return nil, ErrCampaignAccessDenied
	}

	taken, err := f.smartLinkRepo.Exists(ctx, models.SmartLinkFilter{Slug: &req.Slug})
	if err != nil {
		return nil, NewBusinessError("SLUG_CHECK_FAILED", "Failed to check slug availability", err)
	}
	if taken {
		return nil, ErrSlugAlreadyExists
	}

	now := utils.UTCNow()
	link := &models.SmartLink{
		UUID:         uuid.New(),
		Slug:         req.Slug,
		CampaignID:   campaign.ID,
		UserID:       userID,
		IsActive:     utils.ToPtr(true),
		TrackClicks:  utils.ToPtr(true),
		DetectDevice: utils.ToPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.TrackClicks != nil {
		link.TrackClicks = req.TrackClicks
	}
	if req.DetectDevice != nil {
		link.DetectDevice = req.DetectDevice
	}
	if req.RedirectDelay != nil {
		link.RedirectDelay = *req.RedirectDelay
	}

	if err := f.smartLinkRepo.Save(ctx, link); err != nil {
		return nil, NewBusinessError("SMART_LINK_CREATE_FAILED", "Failed to create smart link", err)
	}
	result := ToSmartLinkDTO(*link)
	return &result, nil
}

func (f *SmartLinkFlowImpl) List(ctx context.Context, userID string, page, pageSize int) (*dto.ListSmartLinksResponse, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, ErrInvalidPageSize
	}

	filter := models.SmartLinkFilter{UserID: &userID}
	links, err := f.smartLinkRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("SMART_LINK_LIST_FAILED", "Failed to list smart links", err)
	}
	total, err := f.smartLinkRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SMART_LINK_COUNT_FAILED", "Failed to count smart links", err)
	}

	items := make([]dto.SmartLinkDTO, 0, len(links))
	for _, l := range links {
		items = append(items, ToSmartLinkDTO(*l))
	}
	return &dto.ListSmartLinksResponse{Items: items, Total: total}, nil
}

func (f *SmartLinkFlowImpl) Get(ctx context.Context, userID, linkUUID string) (*dto.SmartLinkDTO, error) {
	link, err := f.ownedLink(ctx, userID, linkUUID)
	if err != nil {
		return nil, err
	}
	result := ToSmartLinkDTO(*link)
	return &result, nil
}

func (f *SmartLinkFlowImpl) Update(ctx context.Context, userID, linkUUID string, req *dto.UpdateSmartLinkRequest) (*dto.SmartLinkDTO, error) {
	link, err := f.ownedLink(ctx, userID, linkUUID)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		link.IsActive = req.IsActive
	}
	if req.TrackClicks != nil {
		link.TrackClicks = req.TrackClicks
	}
	if req.DetectDevice != nil {
		link.DetectDevice = req.DetectDevice
	}
	if req.RedirectDelay != nil {
		link.RedirectDelay = *req.RedirectDelay
	}
	link.UpdatedAt = utils.UTCNow()

	if err := f.smartLinkRepo.Update(ctx, link); err != nil {
		return nil, NewBusinessError("SMART_LINK_UPDATE_FAILED", "Failed to update smart link", err)
	}
	result := ToSmartLinkDTO(*link)
	return &result, nil
}

// Deactivate is the delete operation for smart links. The slug stays
// reserved and the click history stays queryable.
func (f *SmartLinkFlowImpl) Deactivate(ctx context.Context, userID, linkUUID string) error {
	link, err := f.ownedLink(ctx, userID, linkUUID)
	if err != nil {
		return err
	}
	link.IsActive = utils.ToPtr(false)
	link.UpdatedAt = utils.UTCNow()
	if err := f.smartLinkRepo.Update(ctx, link); err != nil {
		return NewBusinessError("SMART_LINK_DEACTIVATE_FAILED", "Failed to deactivate smart link", err)
	}
	return nil
}

func (f *SmartLinkFlowImpl) Stats(ctx context.Context, userID, linkUUID string) (*dto.SmartLinkStatsResponse, error) {
	link, err := f.ownedLink(ctx, userID, linkUUID)
	if err != nil {
		return nil, err
	}

	byDevice, err := f.clickRepo.CountByDevice(ctx, link.ID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to aggregate clicks by device", err)
	}
	lastClick, err := f.clickRepo.LastClickAt(ctx, link.ID)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to load last click time", err)
	}
	recent, err := f.clickRepo.ListBySmartLink(ctx, link.ID, 20, 0)
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to load recent clicks", err)
	}

	stats := &dto.SmartLinkStatsResponse{
		TotalClicks:    link.TotalClicks,
		ClicksByDevice: make(map[string]int64, len(byDevice)),
		RecentClicks:   make([]dto.ClickEventDTO, 0, len(recent)),
	}
	for device, count := range byDevice {
		stats.ClicksByDevice[string(device)] = count
	}
	if lastClick != nil {
		formatted := lastClick.Format(time.RFC3339)
		stats.LastClickAt = &formatted
	}
	for _, event := range recent {
		stats.RecentClicks = append(stats.RecentClicks, ToClickEventDTO(*event))
	}
	return stats, nil
}

// ExportClicks renders the full click history of a smart link as an xlsx
// workbook. Returns the file bytes and a suggested filename.
func (f *SmartLinkFlowImpl) ExportClicks(ctx context.Context, userID, linkUUID string) ([]byte, string, error) {
	link, err := f.ownedLink(ctx, userID, linkUUID)
	if err != nil {
		return nil, "", err
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := "Clicks"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to prepare export sheet", err)
	}

	headers := []string{"Clicked At", "Device", "Group Phone", "User Agent", "Referrer"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to write export header", err)
		}
	}

	const batchSize = 1000
	row := 2
	for offset := 0; ; offset += batchSize {
		events, err := f.clickRepo.ListBySmartLink(ctx, link.ID, batchSize, offset)
		if err != nil {
			return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to load click events", err)
		}
		for _, event := range events {
			values := []any{
				event.CreatedAt.Format(time.RFC3339),
				string(event.DeviceType),
				event.GroupPhone,
				deref(event.UserAgent),
				deref(event.Referrer),
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := file.SetCellValue(sheet, cell, value); err != nil {
					return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to write export row", err)
				}
			}
			row++
		}
		if len(events) < batchSize {
			break
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", NewBusinessError("EXPORT_FAILED", "Failed to serialize export", err)
	}

	filename := fmt.Sprintf("clicks-%s-%s.xlsx", link.Slug, utils.UTCNow().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
