// Package tests contains integration tests backed by a real PostgreSQL database
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaplinks/models"
	"zaplinks/repository"
	testingutil "zaplinks/testing"
	"zaplinks/utils"
)

// withTestDB skips the test when no PostgreSQL server is reachable so the
// unit suite stays runnable on machines without one.
func withTestDB(t *testing.T, testFunc func(*testingutil.TestDB)) {
	t.Helper()
	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("skipping: test database unavailable: %v", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			t.Logf("warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()
	testFunc(testDB)
}

func TestSmartLinkRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewSmartLinkRepository(testDB.DB)
		ctx := context.Background()

		campaign, err := fixtures.CreateTestCampaign("user-1")
		require.NoError(t, err)

		t.Run("ActiveBySlugReturnsOnlyActiveLinks", func(t *testing.T) {
			link, err := fixtures.CreateTestSmartLink(campaign.ID, "user-1")
			require.NoError(t, err)

			found, err := repo.ActiveBySlug(ctx, link.Slug)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.ID, found.ID)

			link.IsActive = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, link))

			found, err = repo.ActiveBySlug(ctx, link.Slug)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("IncrementClicksBumpsCounter", func(t *testing.T) {
			link, err := fixtures.CreateTestSmartLink(campaign.ID, "user-1")
			require.NoError(t, err)

			require.NoError(t, repo.IncrementClicks(ctx, link.ID))
			require.NoError(t, repo.IncrementClicks(ctx, link.ID))

			reloaded, err := repo.ByID(ctx, link.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, int64(2), reloaded.TotalClicks)
		})

		t.Run("ByUUIDFindsLink", func(t *testing.T) {
			link, err := fixtures.CreateTestSmartLink(campaign.ID, "user-1")
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, link.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.Slug, found.Slug)
		})
	})
}

func TestCampaignGroupRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewCampaignGroupRepository(testDB.DB)
		ctx := context.Background()

		campaign, err := fixtures.CreateTestCampaign("user-1")
		require.NoError(t, err)

		t.Run("ListEligibleOrdersByPriority", func(t *testing.T) {
			low, err := fixtures.CreateTestGroup(campaign.ID, 5, 0, 1024)
			require.NoError(t, err)
			high, err := fixtures.CreateTestGroup(campaign.ID, 0, 0, 1024)
			require.NoError(t, err)

			disabled, err := fixtures.CreateTestGroup(campaign.ID, 1, 0, 1024)
			require.NoError(t, err)
			disabled.RotationEnabled = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, disabled))

			eligible, err := repo.ListEligible(ctx, campaign.ID)
			require.NoError(t, err)
			require.Len(t, eligible, 2)
			assert.Equal(t, high.ID, eligible[0].ID)
			assert.Equal(t, low.ID, eligible[1].ID)
		})

		t.Run("UpdateMemberCountPersists", func(t *testing.T) {
			group, err := fixtures.CreateTestGroup(campaign.ID, 0, 10, 1024)
			require.NoError(t, err)

			require.NoError(t, repo.UpdateMemberCount(ctx, group.ID, 873))

			reloaded, err := repo.ByID(ctx, group.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, 873, reloaded.CurrentMembers)
		})
	})
}

func TestClickEventRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewClickEventRepository(testDB.DB)
		ctx := context.Background()

		campaign, err := fixtures.CreateTestCampaign("user-1")
		require.NoError(t, err)
		link, err := fixtures.CreateTestSmartLink(campaign.ID, "user-1")
		require.NoError(t, err)

		events := []*models.ClickEvent{
			{SmartLinkID: link.ID, GroupPhone: "551100", DeviceType: models.DeviceTypeIOS, CreatedAt: utils.UTCNow().Add(-2 * time.Hour)},
			{SmartLinkID: link.ID, GroupPhone: "551100", DeviceType: models.DeviceTypeIOS, CreatedAt: utils.UTCNow().Add(-time.Hour)},
			{SmartLinkID: link.ID, GroupPhone: "551101", DeviceType: models.DeviceTypeAndroid, CreatedAt: utils.UTCNow()},
		}
		require.NoError(t, repo.SaveBatch(ctx, events))

		t.Run("CountByDeviceAggregates", func(t *testing.T) {
			counts, err := repo.CountByDevice(ctx, link.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), counts[models.DeviceTypeIOS])
			assert.Equal(t, int64(1), counts[models.DeviceTypeAndroid])
		})

		t.Run("LastClickAtReturnsNewest", func(t *testing.T) {
			last, err := repo.LastClickAt(ctx, link.ID)
			require.NoError(t, err)
			require.NotNil(t, last)
			assert.WithinDuration(t, utils.UTCNow(), *last, time.Minute)
		})

		t.Run("LastClickAtNilWithoutClicks", func(t *testing.T) {
			other, err := fixtures.CreateTestSmartLink(campaign.ID, "user-1")
			require.NoError(t, err)

			last, err := repo.LastClickAt(ctx, other.ID)
			require.NoError(t, err)
			assert.Nil(t, last)
		})

		t.Run("ListBySmartLinkNewestFirst", func(t *testing.T) {
			rows, err := repo.ListBySmartLink(ctx, link.ID, 10, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, models.DeviceTypeAndroid, rows[0].DeviceType)
		})
	})
}

func TestCustomDomainRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewCustomDomainRepository(testDB.DB)
		ctx := context.Background()

		domain := &models.CustomDomain{
			UserID:     "user-1",
			Hostname:   "links.example.com",
			IsVerified: utils.ToPtr(false),
			CreatedAt:  utils.UTCNow(),
			UpdatedAt:  utils.UTCNow(),
		}
		require.NoError(t, repo.Save(ctx, domain))

		t.Run("ByHostnameFindsDomain", func(t *testing.T) {
			found, err := repo.ByHostname(ctx, "links.example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, domain.ID, found.ID)
		})

		t.Run("MarkVerifiedPersistsOutcome", func(t *testing.T) {
			checkedAt := utils.UTCNow()
			require.NoError(t, repo.MarkVerified(ctx, domain.ID, true, checkedAt))

			reloaded, err := repo.ByID(ctx, domain.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.True(t, utils.IsTrue(reloaded.IsVerified))
			require.NotNil(t, reloaded.LastCheckedAt)
		})

		t.Run("DeleteFreesHostname", func(t *testing.T) {
			require.NoError(t, repo.Delete(ctx, domain.ID))

			found, err := repo.ByHostname(ctx, "links.example.com")
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	})
}

func TestCampaignRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewCampaignRepository(testDB.DB)
		ctx := context.Background()

		campaign, err := fixtures.CreateTestCampaign("user-1")
		require.NoError(t, err)

		t.Run("ByUUIDFindsCampaign", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, campaign.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, campaign.Name, found.Name)
		})

		t.Run("UpdateStatusArchives", func(t *testing.T) {
			require.NoError(t, repo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusArchived))

			reloaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Equal(t, models.CampaignStatusArchived, reloaded.Status)
		})

		t.Run("CountFiltersByUser", func(t *testing.T) {
			otherUser := "user-2"
			count, err := repo.Count(ctx, models.CampaignFilter{UserID: &otherUser})
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	})
}
