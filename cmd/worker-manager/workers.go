// cmd/worker-manager/workers.go
package main

import (
	"time"

	"printmatch-workers/internal/common/camunda"
	"printmatch-workers/internal/common/config"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/matching"
	"printmatch-workers/internal/repository"
	"printmatch-workers/pkg/registry"

	cms "printmatch-workers/internal/workers/matching/calculate-match-score"
	epr "printmatch-workers/internal/workers/matching/extract-project-requirements"
	fpm "printmatch-workers/internal/workers/matching/find-producer-matches"
	smn "printmatch-workers/internal/workers/notification/send-match-notification"
	rd "printmatch-workers/internal/workers/recommendation/recommend-designers"
	rp "printmatch-workers/internal/workers/recommendation/recommend-producers"
	rsp "printmatch-workers/internal/workers/recommendation/rising-producers"
	tpt "printmatch-workers/internal/workers/recommendation/trending-product-types"
)

// dependencies are the shared clients every handler draws from. SES and SNS
// stay nil when no notification channel is enabled.
type dependencies struct {
	store     *repository.Store
	directory *repository.ProducerDirectory
	cache     *repository.Cache
	ses       smn.SESService
	sns       smn.SNSService
}

type registration struct {
	taskType string
	handler  camunda.JobHandler
}

func buildWorkers(cfg *config.Config, deps dependencies, log logger.Logger) []registration {
	engine := matching.NewEngine()
	m := cfg.Matching
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	return []registration{
		{epr.TaskType, epr.NewHandler(&epr.Config{
			DefaultPreferredDistance: m.DefaultPreferredDistance,
			Timeout:                  timeout(epr.TaskType),
		}, log)},
		{cms.TaskType, cms.NewHandler(&cms.Config{
			CacheTTL: config.Seconds(m.ProfileCacheTTL),
			Timeout:  timeout(cms.TaskType),
		}, engine, deps.store, deps.cache, log)},
		{fpm.TaskType, fpm.NewHandler(&fpm.Config{
			CandidateSearchSize:      m.CandidateSearchSize,
			DefaultPreferredDistance: m.DefaultPreferredDistance,
			DefaultMinimumScore:      m.DefaultMinimumScore,
			ProfileCacheTTL:          config.Seconds(m.ProfileCacheTTL),
			CandidateCacheTTL:        config.Seconds(m.CandidateCacheTTL),
			MaxConcurrentLoads:       8,
			Timeout:                  timeout(fpm.TaskType),
		}, engine, deps.directory, deps.store, deps.cache, log)},
		{rp.TaskType, rp.NewHandler(&rp.Config{
			SearchRadiusKm:      2 * m.DefaultPreferredDistance,
			CandidateSearchSize: m.CandidateSearchSize,
			DefaultLimit:        m.DefaultLimit,
			ProfileCacheTTL:     config.Seconds(m.ProfileCacheTTL),
			Timeout:             timeout(rp.TaskType),
		}, engine, deps.directory, deps.store, deps.cache, log)},
		{rd.TaskType, rd.NewHandler(&rd.Config{
			CandidateLimit:  m.CandidateSearchSize,
			DefaultLimit:    m.DefaultLimit,
			ProfileCacheTTL: config.Seconds(m.ProfileCacheTTL),
			Timeout:         timeout(rd.TaskType),
		}, engine, deps.store, deps.cache, log)},
		{tpt.TaskType, tpt.NewHandler(&tpt.Config{
			DefaultWindowDays: m.TrendingWindowDays,
			DefaultLimit:      m.DefaultLimit,
			ReportCacheTTL:    config.Seconds(m.ReportCacheTTL),
			Timeout:           timeout(tpt.TaskType),
		}, deps.store, deps.cache, log)},
		{rsp.TaskType, rsp.NewHandler(&rsp.Config{
			DefaultWindowDays: m.TrendingWindowDays,
			DefaultLimit:      m.DefaultLimit,
			CandidateLimit:    m.CandidateSearchSize,
			ReportCacheTTL:    config.Seconds(m.ReportCacheTTL),
			Timeout:           timeout(rsp.TaskType),
		}, deps.store, deps.cache, log)},
		{smn.TaskType, smn.NewHandler(&smn.Config{
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			FromEmail:    cfg.Notifications.Email.FromEmail,
			SMSSenderID:  cfg.Notifications.SMS.SenderID,
			AWSRegion:    cfg.Notifications.AWS.Region,
			TopMatches:   cfg.Notifications.TopMatches,
			Timeout:      timeout(smn.TaskType),
		}, deps.store, deps.ses, deps.sns, log)},
	}
}

// jobTimeout is how long Zeebe locks a job: the registry timeout when it is
// longer than the handler's own deadline.
func jobTimeout(reg *registry.ActivityRegistry, taskType string, handlerTimeout time.Duration) time.Duration {
	if reg == nil {
		return handlerTimeout
	}
	activity, ok := reg.FindByTaskType(taskType)
	if !ok {
		return handlerTimeout
	}
	if d := activity.TimeoutDuration(handlerTimeout); d > handlerTimeout {
		return d
	}
	return handlerTimeout
}
