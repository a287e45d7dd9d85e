package service

import (
	"context"
	"time"

	"habithero/internal/config"
	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/pkg/logger"
)

// PresenceReaper — фоновая зачистка зависших online-статусов. Живёт весь
// срок процесса; Tick вынесен отдельно, чтобы тесты гоняли проходы вручную
// без ожидания таймера
type PresenceReaper struct {
	presence PresenceService
	userRepo repository.UserRepository
	cfg      config.PresenceConfig
	log      logger.Logger

	stop chan struct{}
	done chan struct{}
}

func NewPresenceReaper(
	presence PresenceService,
	userRepo repository.UserRepository,
	cfg config.PresenceConfig,
	log logger.Logger,
) *PresenceReaper {
	return &PresenceReaper{
		presence: presence,
		userRepo: userRepo,
		cfg:      cfg,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *PresenceReaper) Start() {
	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.cfg.ReaperInterval)
		defer ticker.Stop()

		r.log.Info("Presence reaper started", "interval", r.cfg.ReaperInterval, "threshold", r.cfg.IdleThreshold)

		for {
			select {
			case <-ticker.C:
				r.Tick(context.Background())
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *PresenceReaper) Stop() {
	close(r.stop)
	<-r.done
}

// Tick — один проход: все, кто online, но молчит дольше порога, уходят в
// offline с причиной idle. Ошибка по одному пользователю не прерывает проход
func (r *PresenceReaper) Tick(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.cfg.IdleThreshold)

	idle, err := r.userRepo.ListIdleOnline(ctx, cutoff)
	if err != nil {
		r.log.Error("Reaper scan failed", "error", err)
		return
	}

	for _, user := range idle {
		if err := r.presence.MarkOffline(ctx, user.ID, domain.PresenceReasonIdle); err != nil {
			r.log.Error("Failed to demote idle user", "user_id", user.ID, "error", err)
			continue
		}
		r.log.Info("Marked idle user offline", "user_id", user.ID, "last_seen_at", user.LastSeenAt)
	}
}
