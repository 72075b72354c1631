// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"zaplinks/app/services"
	businessflow "zaplinks/business_flow"
	"zaplinks/config"
	"zaplinks/models"
	"zaplinks/repository"
)

// MemberSyncScheduler periodically refreshes the stored member count of
// every active rotation group so that redirect-time probes mostly hit a
// warm cache. Redirects stay correct without it; counts just go stale.
type MemberSyncScheduler struct {
	groupRepo   repository.CampaignGroupRepository
	zapiClient  services.ZAPIClient
	redisClient redis.UniversalClient
	logger      *log.Logger
	interval    time.Duration

	redirectCfg config.RedirectConfig
}

func NewMemberSyncScheduler(
	groupRepo repository.CampaignGroupRepository,
	zapiClient services.ZAPIClient,
	redisClient redis.UniversalClient,
	redirectCfg config.RedirectConfig,
	logCfg config.LoggingConfig,
	interval time.Duration,
) *MemberSyncScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	s := &MemberSyncScheduler{
		groupRepo:   groupRepo,
		zapiClient:  zapiClient,
		redisClient: redisClient,
		interval:    interval,
		redirectCfg: redirectCfg,
	}
	s.initLogger(logCfg)
	return s
}

// initLogger writes to stdout and a rotated file so sync history survives
// container restarts.
func (s *MemberSyncScheduler) initLogger(cfg config.LoggingConfig) {
	if cfg.SchedulerLogPath == "" {
		s.logger = log.New(os.Stdout, "member-sync ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.SchedulerLogPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	mw := io.MultiWriter(os.Stdout, rotated)
	s.logger = log.New(mw, "member-sync ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *MemberSyncScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *MemberSyncScheduler) runOnce(ctx context.Context) {
	enabled := true
	filter := models.CampaignGroupFilter{IsActive: &enabled, RotationEnabled: &enabled}
	groups, err := s.groupRepo.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		s.logger.Printf("member-sync: list groups failed: %v", err)
		return
	}
	if len(groups) == 0 {
		return
	}

	refreshed := 0
	for _, group := range groups {
		select {
		case <-ctx.Done():
			return
		default:
		}
		// Rotation never hands out non-WhatsApp links, so probing them
		// would only burn gateway quota.
		if !businessflow.IsWhatsAppInviteLink(group.InviteLink) {
			continue
		}
		if s.refreshGroup(ctx, group) {
			refreshed++
		}
	}
	s.logger.Printf("member-sync: refreshed %d/%d groups", refreshed, len(groups))
}

// refreshGroup probes one group and persists the count. Probe misses are
// skipped; the stored count is never downgraded to zero.
func (s *MemberSyncScheduler) refreshGroup(ctx context.Context, group *models.CampaignGroup) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.redirectCfg.ProbeTimeout)
	defer cancel()

	count, err := s.zapiClient.GroupInvitationMetadata(probeCtx, group.InviteLink)
	if err != nil {
		s.logger.Printf("member-sync: probe failed for group id=%d: %v", group.ID, err)
		return false
	}
	if count <= 0 {
		return false
	}

	if err := s.groupRepo.UpdateMemberCount(ctx, group.ID, count); err != nil {
		s.logger.Printf("member-sync: persist failed for group id=%d: %v", group.ID, err)
		return false
	}
	if s.redisClient != nil {
		key := "members:" + strconv.FormatUint(uint64(group.ID), 10)
		if err := s.redisClient.Set(ctx, key, strconv.Itoa(count), s.redirectCfg.MemberCacheTTL).Err(); err != nil {
			s.logger.Printf("member-sync: cache write failed for group id=%d: %v", group.ID, err)
		}
	}
	return true
}
