// Package testing provides test utilities and database setup for testing the smart link service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"zaplinks/models"
	"zaplinks/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCampaign creates an active campaign owned by the given user
func (tf *TestFixtures) CreateTestCampaign(userID string) (*models.Campaign, error) {
	campaign := &models.Campaign{
		UUID:      uuid.New(),
		UserID:    userID,
		Name:      fmt.Sprintf("Test Campaign %d", rand.Intn(100000)),
		Status:    models.CampaignStatusActive,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestGroup creates a rotation group under the campaign
func (tf *TestFixtures) CreateTestGroup(campaignID uint, priority, currentMembers, memberLimit int) (*models.CampaignGroup, error) {
	code := randomInviteCode()
	group := &models.CampaignGroup{
		CampaignID:      campaignID,
		Name:            fmt.Sprintf("Group %s", code[:6]),
		Phone:           fmt.Sprintf("55119%08d", rand.Intn(100000000)),
		InviteLink:      "https://chat.whatsapp.com/" + code,
		CurrentMembers:  currentMembers,
		MemberLimit:     memberLimit,
		Priority:        priority,
		IsActive:        utils.ToPtr(true),
		RotationEnabled: utils.ToPtr(true),
		CreatedAt:       utils.UTCNow(),
		UpdatedAt:       utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create test group: %w", err)
	}
	return group, nil
}

// CreateTestSmartLink creates an active smart link for the campaign
func (tf *TestFixtures) CreateTestSmartLink(campaignID uint, userID string) (*models.SmartLink, error) {
	link := &models.SmartLink{
		UUID:         uuid.New(),
		Slug:         fmt.Sprintf("test-%d", rand.Intn(1000000)),
		CampaignID:   campaignID,
		UserID:       userID,
		IsActive:     utils.ToPtr(true),
		TrackClicks:  utils.ToPtr(true),
		DetectDevice: utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test smart link: %w", err)
	}
	return link, nil
}

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomInviteCode() string {
	b := make([]byte, 22)
	for i := range b {
		b[i] = inviteCodeAlphabet[rand.Intn(len(inviteCodeAlphabet))]
	}
	return string(b)
}
