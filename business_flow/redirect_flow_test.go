package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaplinks/app/dto"
	"zaplinks/app/services"
	"zaplinks/config"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

// mockSmartLinkRepo satisfies repository.SmartLinkRepository for the
// methods the resolver touches; the embedded interface panics on anything
// else, which is exactly what a test wants.
type mockSmartLinkRepo struct {
	repository.SmartLinkRepository
	links      map[string]*models.SmartLink
	mu         sync.Mutex
	increments []uint
}

func (m *mockSmartLinkRepo) ActiveBySlug(ctx context.Context, slug string) (*models.SmartLink, error) {
	link, ok := m.links[slug]
	if !ok || !utils.IsTrue(link.IsActive) {
		return nil, nil
	}
	return link, nil
}

func (m *mockSmartLinkRepo) IncrementClicks(ctx context.Context, linkID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments = append(m.increments, linkID)
	return nil
}

type mockGroupRepo struct {
	repository.CampaignGroupRepository
	groups       []*models.CampaignGroup
	mu           sync.Mutex
	countUpdates map[uint]int
	updateErr    error
}

func (m *mockGroupRepo) ListEligible(ctx context.Context, campaignID uint) ([]*models.CampaignGroup, error) {
	var eligible []*models.CampaignGroup
	for _, g := range m.groups {
		if g.CampaignID == campaignID && utils.IsTrue(g.IsActive) && utils.IsTrue(g.RotationEnabled) {
			eligible = append(eligible, g)
		}
	}
	return eligible, nil
}

func (m *mockGroupRepo) UpdateMemberCount(ctx context.Context, groupID uint, members int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countUpdates == nil {
		m.countUpdates = make(map[uint]int)
	}
	m.countUpdates[groupID] = members
	return nil
}

type mockClickRepo struct {
	repository.ClickEventRepository
	mu    sync.Mutex
	saved []*models.ClickEvent
}

func (m *mockClickRepo) Save(ctx context.Context, event *models.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, event)
	return nil
}

func testRedirectConfig() *config.RedirectConfig {
	return &config.RedirectConfig{
		ProbeTimeout:   5 * time.Second,
		MemberCacheTTL: time.Minute,
		MetadataMaxLen: utils.ClickMetadataMaxLen,
	}
}

func newGroup(id, campaignID uint, priority, current, limit int, code string) *models.CampaignGroup {
	return &models.CampaignGroup{
		ID:              id,
		CampaignID:      campaignID,
		Name:            "Group " + code,
		Phone:           "5511999990000",
		InviteLink:      "https://chat.whatsapp.com/" + code,
		CurrentMembers:  current,
		MemberLimit:     limit,
		Priority:        priority,
		IsActive:        utils.ToPtr(true),
		RotationEnabled: utils.ToPtr(true),
	}
}

func newSmartLink(slug string, campaignID uint) *models.SmartLink {
	return &models.SmartLink{
		ID:           1,
		UUID:         uuid.New(),
		Slug:         slug,
		CampaignID:   campaignID,
		UserID:       "user-1",
		IsActive:     utils.ToPtr(true),
		TrackClicks:  utils.ToPtr(true),
		DetectDevice: utils.ToPtr(true),
	}
}

func TestRedirectFlow_Resolve(t *testing.T) {
	const iosUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	const androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36"
	const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	t.Run("UnknownSlugReturnsNotFoundWithoutWrites", func(t *testing.T) {
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{}}
		groupRepo := &mockGroupRepo{}
		clickRepo := &mockClickRepo{}
		zapi := services.NewMockZAPIClient()

		flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, zapi, nil, testRedirectConfig())

		_, err := flow.Resolve(context.Background(), "missing", NewClientMetadata("127.0.0.1", desktopUA))
		require.Error(t, err)
		assert.True(t, IsSmartLinkNotFound(err))
		assert.Empty(t, clickRepo.saved)
		assert.Empty(t, linkRepo.increments)
		assert.Empty(t, zapi.ProbeCalls)
	})

	t.Run("EmptySlugIsRejected", func(t *testing.T) {
		flow := NewRedirectFlow(&mockSmartLinkRepo{}, &mockGroupRepo{}, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		_, err := flow.Resolve(context.Background(), "", nil)
		assert.True(t, IsSlugRequired(err))
	})

	t.Run("NoEligibleGroupsReturnsError", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		inactive := newGroup(1, 10, 0, 0, 1024, "AAAAAAAAAAAAAAAAAAAAAA")
		inactive.IsActive = utils.ToPtr(false)
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{inactive}}

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		_, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		assert.True(t, IsNoEligibleGroups(err))
	})

	t.Run("NonWhatsAppLinksAreSkipped", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		telegram := newGroup(1, 10, 0, 0, 1024, "x")
		telegram.InviteLink = "https://t.me/somegroup"
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{telegram}}

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		_, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		// Eligible groups exist but none carries a WhatsApp invite
		assert.True(t, IsNoConfiguredGroups(err))
		assert.False(t, IsNoEligibleGroups(err))
	})

	t.Run("PicksFirstGroupUnderLimitByPriority", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		g2 := newGroup(2, 10, 1, 100, 1024, "CODETWO000000000000002")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1, g2}}
		clickRepo := &mockClickRepo{}

		zapi := services.NewMockZAPIClient()
		zapi.MemberCounts[g1.InviteLink] = 500
		zapi.MemberCounts[g2.InviteLink] = 200

		flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, zapi, nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, g1.InviteLink, result.InviteLink)
		assert.Equal(t, g1.Name, result.GroupName)
		assert.Equal(t, "desktop", result.DeviceType)
		// Only the selected group is probed
		assert.Equal(t, []string{g1.InviteLink}, zapi.ProbeCalls)
		// Live count is persisted
		assert.Equal(t, 500, groupRepo.countUpdates[g1.ID])
	})

	t.Run("AllGroupsFullFallsBackToLastGroup", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 1024, 1024, "CODEONE000000000000001")
		g2 := newGroup(2, 10, 1, 1024, 1024, "CODETWO000000000000002")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1, g2}}
		clickRepo := &mockClickRepo{}

		zapi := services.NewMockZAPIClient()
		zapi.MemberCounts[g1.InviteLink] = 1500
		zapi.MemberCounts[g2.InviteLink] = 1200

		flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, zapi, nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		require.NoError(t, err)
		// A visitor always gets a destination even at capacity
		assert.Equal(t, g2.InviteLink, result.InviteLink)
		require.Len(t, clickRepo.saved, 1)
		assert.Equal(t, g2.Phone, clickRepo.saved[0].GroupPhone)
	})

	t.Run("ProbeFailureFallsBackToStoredCountWithoutWrite", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 200, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}

		zapi := services.NewMockZAPIClient()
		zapi.ProbeErr = errors.New("gateway timeout")

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, zapi, nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		require.NoError(t, err)
		assert.Equal(t, g1.InviteLink, result.InviteLink)
		// Stored count stays untouched after a failed probe
		assert.Empty(t, groupRepo.countUpdates)
	})

	t.Run("ZeroProbeCountIsTreatedAsMiss", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 1024, 1024, "CODEONE000000000000001")
		g2 := newGroup(2, 10, 1, 100, 1024, "CODETWO000000000000002")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1, g2}}

		// Mock reports 0 for g1 (unknown invite) and a real count for g2
		zapi := services.NewMockZAPIClient()
		zapi.MemberCounts[g2.InviteLink] = 300

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, zapi, nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		require.NoError(t, err)
		// g1 stored count is at limit, so the zero probe must not unlock it
		assert.Equal(t, g2.InviteLink, result.InviteLink)
		assert.NotContains(t, groupRepo.countUpdates, g1.ID)
		assert.Equal(t, 300, groupRepo.countUpdates[g2.ID])
	})

	t.Run("TrackClicksDisabledRecordsNothing", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		link.TrackClicks = utils.ToPtr(false)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}
		clickRepo := &mockClickRepo{}

		flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, services.NewMockZAPIClient(), nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Empty(t, clickRepo.saved)
		assert.Empty(t, linkRepo.increments)
	})

	t.Run("ClickRecordingTruncatesLongMetadata", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}
		clickRepo := &mockClickRepo{}

		flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, services.NewMockZAPIClient(), nil, testRedirectConfig())

		longUA := make([]byte, 800)
		for i := range longUA {
			longUA[i] = 'a'
		}
		metadata := NewClientMetadata("127.0.0.1", string(longUA))
		metadata.SetReferrer("https://instagram.com/some/very/long/path")

		_, err := flow.Resolve(context.Background(), "promo", metadata)
		require.NoError(t, err)
		require.Len(t, clickRepo.saved, 1)
		event := clickRepo.saved[0]
		require.NotNil(t, event.UserAgent)
		assert.Len(t, *event.UserAgent, utils.ClickMetadataMaxLen)
		assert.Equal(t, []uint{link.ID}, linkRepo.increments)
	})

	t.Run("DeviceDetectionDisabledYieldsUnknown", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		link.DetectDevice = utils.ToPtr(false)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", iosUA))
		require.NoError(t, err)
		assert.Equal(t, "unknown", result.DeviceType)
		assert.Equal(t, g1.InviteLink, result.RedirectURL)
	})

	t.Run("IOSGetsDeepLink", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		link.RedirectDelay = 1500
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", iosUA))
		require.NoError(t, err)
		assert.Equal(t, "ios", result.DeviceType)
		assert.Equal(t, "whatsapp://chat?code=CODEONE000000000000001", result.RedirectURL)
		assert.Equal(t, 1500, result.Delay)
	})

	t.Run("AndroidGetsIntentURLWithFallback", func(t *testing.T) {
		link := newSmartLink("promo", 10)
		linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

		g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}

		flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, services.NewMockZAPIClient(), nil, testRedirectConfig())

		result, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", androidUA))
		require.NoError(t, err)
		assert.Equal(t, "android", result.DeviceType)
		assert.Contains(t, result.RedirectURL, "intent://chat?code=CODEONE000000000000001")
		assert.Contains(t, result.RedirectURL, "package=com.whatsapp")
		assert.Contains(t, result.RedirectURL, "S.browser_fallback_url=")
	})
}

// gatedZAPIClient holds every probe at a barrier until all expected
// callers have arrived, so overlapping resolutions read the same
// pre-write member count.
type gatedZAPIClient struct {
	services.ZAPIClient
	barrier *sync.WaitGroup
	count   int
}

func (c *gatedZAPIClient) GroupInvitationMetadata(ctx context.Context, inviteLink string) (int, error) {
	c.barrier.Done()
	c.barrier.Wait()
	return c.count, nil
}

// Selection is read-then-act without locking; two overlapping
// resolutions can both claim the last free slot of a group.
func TestRedirectFlow_ConcurrentResolvesShareLastSlot(t *testing.T) {
	const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	link := newSmartLink("promo", 10)
	linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

	// One slot left: probe reports 1023 against a limit of 1024
	g1 := newGroup(1, 10, 0, 1023, 1024, "CODEONE000000000000001")
	groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1}}
	clickRepo := &mockClickRepo{}

	var barrier sync.WaitGroup
	barrier.Add(2)
	zapi := &gatedZAPIClient{barrier: &barrier, count: 1023}

	flow := NewRedirectFlow(linkRepo, groupRepo, clickRepo, zapi, nil, testRedirectConfig())

	results := make(chan *resolveResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
			results <- &resolveResult{res: res, err: err}
		}()
	}

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		assert.Equal(t, g1.InviteLink, r.res.InviteLink)
	}
	assert.Len(t, clickRepo.saved, 2)
}

type resolveResult struct {
	res *dto.ResolveResponse
	err error
}

func TestRedirectFlow_MemberCacheIsKeyedByGroupID(t *testing.T) {
	const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	link := newSmartLink("promo", 10)
	linkRepo := &mockSmartLinkRepo{links: map[string]*models.SmartLink{"promo": link}}

	// Two groups sharing a phone number must not share cache entries
	g1 := newGroup(1, 10, 0, 100, 1024, "CODEONE000000000000001")
	g2 := newGroup(2, 10, 1, 100, 1024, "CODETWO000000000000002")
	g2.Phone = g1.Phone
	groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{g1, g2}}

	zapi := services.NewMockZAPIClient()
	zapi.MemberCounts[g1.InviteLink] = 500

	flow := NewRedirectFlow(linkRepo, groupRepo, &mockClickRepo{}, zapi, redisClient, testRedirectConfig())

	_, err := flow.Resolve(context.Background(), "promo", NewClientMetadata("127.0.0.1", desktopUA))
	require.NoError(t, err)

	cached, err := mr.Get("members:1")
	require.NoError(t, err)
	assert.Equal(t, "500", cached)
	assert.False(t, mr.Exists("members:"+g1.Phone))
	assert.False(t, mr.Exists("members:2"))
}
