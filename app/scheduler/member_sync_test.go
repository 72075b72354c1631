package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaplinks/app/services"
	"zaplinks/config"
	"zaplinks/models"
	"zaplinks/repository"
	"zaplinks/utils"
)

type mockGroupRepo struct {
	repository.CampaignGroupRepository
	groups       []*models.CampaignGroup
	lastFilter   models.CampaignGroupFilter
	countUpdates map[uint]int
}

func (m *mockGroupRepo) ByFilter(ctx context.Context, filter models.CampaignGroupFilter, orderBy string, limit, offset int) ([]*models.CampaignGroup, error) {
	m.lastFilter = filter
	var out []*models.CampaignGroup
	for _, g := range m.groups {
		if filter.IsActive != nil && utils.IsTrue(g.IsActive) != *filter.IsActive {
			continue
		}
		if filter.RotationEnabled != nil && utils.IsTrue(g.RotationEnabled) != *filter.RotationEnabled {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *mockGroupRepo) UpdateMemberCount(ctx context.Context, groupID uint, members int) error {
	if m.countUpdates == nil {
		m.countUpdates = make(map[uint]int)
	}
	m.countUpdates[groupID] = members
	return nil
}

func newSyncGroup(id uint, inviteLink string) *models.CampaignGroup {
	return &models.CampaignGroup{
		ID:              id,
		CampaignID:      1,
		Name:            "Group",
		Phone:           "5511999990000",
		InviteLink:      inviteLink,
		MemberLimit:     1024,
		IsActive:        utils.ToPtr(true),
		RotationEnabled: utils.ToPtr(true),
	}
}

func newTestScheduler(groupRepo repository.CampaignGroupRepository, zapi services.ZAPIClient) *MemberSyncScheduler {
	redirectCfg := config.RedirectConfig{ProbeTimeout: time.Second, MemberCacheTTL: time.Minute}
	return NewMemberSyncScheduler(groupRepo, zapi, nil, redirectCfg, config.LoggingConfig{}, time.Minute)
}

func TestMemberSync_RunOnce(t *testing.T) {
	t.Run("ProbesOnlyRotationGroupsWithWhatsAppLinks", func(t *testing.T) {
		rotating := newSyncGroup(1, "https://chat.whatsapp.com/CODEONE000000000000001")
		paused := newSyncGroup(2, "https://chat.whatsapp.com/CODETWO000000000000002")
		paused.RotationEnabled = utils.ToPtr(false)
		telegram := newSyncGroup(3, "https://t.me/somegroup")

		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{rotating, paused, telegram}}
		zapi := services.NewMockZAPIClient()
		zapi.MemberCounts[rotating.InviteLink] = 700

		s := newTestScheduler(groupRepo, zapi)
		s.runOnce(context.Background())

		require.NotNil(t, groupRepo.lastFilter.RotationEnabled)
		assert.True(t, *groupRepo.lastFilter.RotationEnabled)
		assert.Equal(t, []string{rotating.InviteLink}, zapi.ProbeCalls)
		assert.Equal(t, map[uint]int{rotating.ID: 700}, groupRepo.countUpdates)
	})

	t.Run("ZeroProbeCountIsNotPersisted", func(t *testing.T) {
		group := newSyncGroup(1, "https://chat.whatsapp.com/CODEONE000000000000001")
		groupRepo := &mockGroupRepo{groups: []*models.CampaignGroup{group}}
		zapi := services.NewMockZAPIClient()

		s := newTestScheduler(groupRepo, zapi)
		s.runOnce(context.Background())

		assert.Equal(t, []string{group.InviteLink}, zapi.ProbeCalls)
		assert.Empty(t, groupRepo.countUpdates)
	})
}
