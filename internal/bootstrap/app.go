package bootstrap

import (
	"context"
	"log"

	"github.com/civictrack/civictrack-go/config"
	"github.com/civictrack/civictrack-go/internal/apiclient"
	authservice "github.com/civictrack/civictrack-go/internal/auth/service"
	"github.com/civictrack/civictrack-go/internal/dashboard"
	dashhttp "github.com/civictrack/civictrack-go/internal/dashboard/http"
	"github.com/civictrack/civictrack-go/internal/feedback"
	"github.com/civictrack/civictrack-go/internal/projects/normalize"
	"github.com/civictrack/civictrack-go/internal/projects/remote"
	"github.com/civictrack/civictrack-go/internal/projects/repository"
	"github.com/civictrack/civictrack-go/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Services are the backend-facing components shared by the server and the CLI.
type Services struct {
	Client     *apiclient.Client
	Projects   *remote.ProjectAPI
	Repository *repository.Repository
	Feedback   *feedback.Service
	Auth       *authservice.AuthService
}

func NewServices(cfg *config.Config, repoOpts ...repository.Option) *Services {
	opts := []apiclient.Option{apiclient.WithTimeout(cfg.API.Timeout)}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, apiclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst))
	}
	client := apiclient.New(cfg.API.BaseURL, opts...)

	projects := remote.NewProjectAPI(client, normalize.New())
	repo := repository.New(projects, repository.NewCache(), repoOpts...)

	return &Services{
		Client:     client,
		Projects:   projects,
		Repository: repo,
		Feedback:   feedback.NewService(client, repo),
		Auth:       authservice.NewAuthService(client),
	}
}

// App is the assembled dashboard server.
type App struct {
	*Services
	Dashboard *dashboard.Coordinator
	Router    *gin.Engine
	Scheduler *scheduler.RefreshScheduler
	Redis     *redis.Client
}

// NewApp wires the server. Redis publishing and the refresh schedule are only
// set up when configured. A redis that cannot be reached disables publishing.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// Concurrent HTTP refetches and cron runs share one refresh.
	svc := NewServices(cfg, repository.WithSingleFlight())

	var dashOpts []dashboard.Option
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		client, err := OpenRedis(ctx, RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Printf("Warning: redis unavailable, snapshot publishing disabled: %v", err)
		} else {
			rdb = client
			dashOpts = append(dashOpts, dashboard.WithPublisher(dashboard.NewRedisPublisher(rdb, "")))
		}
	}
	dash := dashboard.New(svc.Repository, dashOpts...)

	var sched *scheduler.RefreshScheduler
	if cfg.Scheduler.Cron != "" {
		s, err := scheduler.NewRefreshScheduler(cfg.Scheduler.Cron, dash)
		if err != nil {
			if rdb != nil {
				_ = rdb.Close()
			}
			return nil, err
		}
		sched = s
	}

	handler := dashhttp.New(dash, svc.Repository, svc.Projects, svc.Feedback)
	router := BuildRouter(RouterDeps{
		ServiceName: "civictrack-api",
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Redis:       rdb,
		Upstream:    svc.Client,
		Dashboard:   handler,
	})

	return &App{
		Services:  svc,
		Dashboard: dash,
		Router:    router,
		Scheduler: sched,
		Redis:     rdb,
	}, nil
}

// Close stops the scheduler and releases the redis connection.
func (a *App) Close() {
	if a.Scheduler != nil {
		<-a.Scheduler.Stop().Done()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
