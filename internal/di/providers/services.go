package providers

import (
	"github.com/samber/do/v2"

	"github.com/Fachastorm/high-coherence/internal/config"
	"github.com/Fachastorm/high-coherence/internal/logger"
	"github.com/Fachastorm/high-coherence/internal/notify"
	"github.com/Fachastorm/high-coherence/internal/ratelimit"
	"github.com/Fachastorm/high-coherence/internal/service"
)

// ProvideNotifier provides the invite delivery channel. Without a Resend API
// key, invites are logged instead of emailed (development mode).
func ProvideNotifier(i do.Injector) (notify.InviteNotifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Resend.APIKey == "" {
		log.Warn("No Resend API key configured, invite emails will be logged instead of sent")
		return notify.NewLogNotifier(log.Logger), nil
	}

	return notify.NewResendNotifier(
		cfg.Resend.APIKey,
		cfg.Resend.FromAddress,
		cfg.Server.PublicURL,
		cfg.Resend.Timeout,
		log.Logger,
	), nil
}

// ProvideReviewService provides the review workflow service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storage := do.MustInvoke[*StorageHandle](i)
	notifier := do.MustInvoke[notify.InviteNotifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(
		storage.Tokens,
		storage.Responses,
		notifier,
		log.Logger,
		cfg.Resend.Timeout,
	), nil
}

// ProvideRateLimiter provides the per-IP limiter for public token routes.
func ProvideRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst), nil
}
