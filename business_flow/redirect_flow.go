package businessflow

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"zaplinks/app/dto"
	"zaplinks/app/services"
	"zaplinks/config"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

// RedirectFlow resolves a smart link slug into a concrete WhatsApp group
// and records the click. Public flow, no authentication required.
type RedirectFlow interface {
	Resolve(ctx context.Context, slug string, metadata *ClientMetadata) (*dto.ResolveResponse, error)
}

type RedirectFlowImpl struct {
	smartLinkRepo repository.SmartLinkRepository
	groupRepo     repository.CampaignGroupRepository
	clickRepo     repository.ClickEventRepository
	zapiClient    services.ZAPIClient
	redisClient   redis.UniversalClient
	cfg           *config.RedirectConfig
}

// NewRedirectFlow creates a new redirect flow instance.
// redisClient may be nil; member counts are then probed on every miss.
func NewRedirectFlow(
	smartLinkRepo repository.SmartLinkRepository,
	groupRepo repository.CampaignGroupRepository,
	clickRepo repository.ClickEventRepository,
	zapiClient services.ZAPIClient,
	redisClient redis.UniversalClient,
	cfg *config.RedirectConfig,
) RedirectFlow {
	return &RedirectFlowImpl{
		smartLinkRepo: smartLinkRepo,
		groupRepo:     groupRepo,
		clickRepo:     clickRepo,
		zapiClient:    zapiClient,
		redisClient:   redisClient,
		cfg:           cfg,
	}
}

func (f *RedirectFlowImpl) Resolve(ctx context.Context, slug string, metadata *ClientMetadata) (*dto.ResolveResponse, error) {
	if slug == "" {
		return nil, ErrSlugRequired
	}

	link, err := f.smartLinkRepo.ActiveBySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("SMART_LINK_LOOKUP_FAILED", "Failed to lookup smart link", err)
	}
	if link == nil {
		resolveTotal.WithLabelValues("not_found", "unknown").Inc()
		return nil, ErrSmartLinkNotFound
	}

	groups, err := f.groupRepo.ListEligible(ctx, link.CampaignID)
	if err != nil {
		return nil, NewBusinessError("GROUP_LOOKUP_FAILED", "Failed to load campaign groups", err)
	}
	if len(groups) == 0 {
		resolveTotal.WithLabelValues("no_groups", "unknown").Inc()
		return nil, ErrNoEligibleGroups
	}

	// Rotation only ever hands out WhatsApp group invites; anything else
	// configured on the campaign is skipped.
	candidates := make([]*models.CampaignGroup, 0, len(groups))
	for i := range groups {
		if IsWhatsAppInviteLink(groups[i].InviteLink) {
			candidates = append(candidates, groups[i])
		}
	}
	if len(candidates) == 0 {
		resolveTotal.WithLabelValues("no_groups", "unknown").Inc()
		return nil, ErrNoConfiguredGroups
	}

	selected := f.selectGroup(ctx, candidates)

	deviceType := models.DeviceTypeUnknown
	if utils.IsTrue(link.DetectDevice) && metadata != nil {
		deviceType = DetectDevice(metadata.UserAgent)
	}
	redirectURL := BuildRedirectURL(selected.InviteLink, deviceType)

	if utils.IsTrue(link.TrackClicks) {
		f.recordClick(ctx, link, selected, deviceType, metadata)
	}

	resolveTotal.WithLabelValues("resolved", string(deviceType)).Inc()

	return &dto.ResolveResponse{
		Success:     true,
		InviteLink:  selected.InviteLink,
		RedirectURL: redirectURL,
		DeviceType:  string(deviceType),
		GroupName:   selected.Name,
		Delay:       link.RedirectDelay,
	}, nil
}

// selectGroup walks the candidates in priority order and picks the first
// one below its member limit. When every group is full the last one is
// used anyway; a visitor always gets a destination.
func (f *RedirectFlowImpl) selectGroup(ctx context.Context, candidates []*models.CampaignGroup) *models.CampaignGroup {
	for _, group := range candidates {
		count := f.liveMemberCount(ctx, group)
		if count < group.MemberLimit {
			return group
		}
	}
	fallbackSelections.Inc()
	return candidates[len(candidates)-1]
}

// liveMemberCount returns the freshest member count available for a group.
// Order of preference: cache entry, live gateway probe, stored count.
// A failed probe never overwrites the stored count.
func (f *RedirectFlowImpl) liveMemberCount(ctx context.Context, group *models.CampaignGroup) int {
	// Keyed by group ID; phone numbers carry no uniqueness constraint.
	cacheKey := fmt.Sprintf("members:%d", group.ID)

	if f.redisClient != nil {
		if cached, err := f.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			if count, convErr := strconv.Atoi(cached); convErr == nil {
				memberCacheHits.Inc()
				return count
			}
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	count, err := f.zapiClient.GroupInvitationMetadata(probeCtx, group.InviteLink)
	if err != nil || count <= 0 {
		memberProbeTotal.WithLabelValues("miss").Inc()
		return group.CurrentMembers
	}
	memberProbeTotal.WithLabelValues("hit").Inc()

	// Refresh is best-effort; the redirect does not depend on it.
	if err := f.groupRepo.UpdateMemberCount(ctx, group.ID, count); err != nil {
		log.Printf("failed to persist member count for group %d: %v", group.ID, err)
	}
	if f.redisClient != nil {
		if err := f.redisClient.Set(ctx, cacheKey, strconv.Itoa(count), f.cfg.MemberCacheTTL).Err(); err != nil {
			log.Printf("failed to cache member count for group %d: %v", group.ID, err)
		}
	}
	return count
}

// recordClick stores a click event and bumps the denormalized counter.
// The counter increment is read-then-write; concurrent clicks may lose
// updates, which is acceptable for dashboard statistics.
func (f *RedirectFlowImpl) recordClick(ctx context.Context, link *models.SmartLink, group *models.CampaignGroup, deviceType models.DeviceType, metadata *ClientMetadata) {
	event := &models.ClickEvent{
		SmartLinkID: link.ID,
		GroupPhone:  group.Phone,
		DeviceType:  deviceType,
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.UserAgent != "" {
			event.UserAgent = utils.ToPtr(utils.Truncate(metadata.UserAgent, utils.ClickMetadataMaxLen))
		}
		if metadata.Referrer != "" {
			event.Referrer = utils.ToPtr(utils.Truncate(metadata.Referrer, utils.ClickMetadataMaxLen))
		}
	}

	if err := f.clickRepo.Save(ctx, event); err != nil {
		log.Printf("failed to record click for smart link %d: %v", link.ID, err)
		return
	}
	if err := f.smartLinkRepo.IncrementClicks(ctx, link.ID); err != nil {
		log.Printf("failed to increment click counter for smart link %d: %v", link.ID, err)
	}
}
