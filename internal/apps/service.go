package apps

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/store"
)

var (
	ErrDuplicateName = errors.New("an app with that name already exists")
	ErrInvalidConfig = errors.New("invalid app config")
)

// Defaults for newly added apps.
const (
	DefaultBypassAfterSeconds = 10
	CustomIcon                = "apps-outline"
)

// Service adds, edits and removes tracked apps.
type Service struct {
	store    store.Store
	clock    clock.Clock
	log      *zap.Logger
	validate *validator.Validate
}

// NewService returns a Service writing to st.
func NewService(st store.Store, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    st,
		clock:    clk,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CategoryFor returns the question bank suggested for a catalog category.
func CategoryFor(c model.AppCategory) model.Category {
	switch c {
	case model.AppCategorySocial, model.AppCategoryNews:
		return model.CategoryMindfulness
	case model.AppCategoryEntertainment, model.AppCategoryGaming:
		return model.CategoryProductivity
	default:
		return model.CategoryDefault
	}
}

// NewConfig returns an unsaved config for a custom app with the standard
// countdown settings.
func NewConfig(name, link string, defaultDelay int) model.AppConfig {
	if defaultDelay <= 0 {
		defaultDelay = model.DefaultDelaySeconds
	}
	return model.AppConfig{
		Name:               name,
		Icon:               CustomIcon,
		DeepLink:           link,
		Enabled:            true,
		DelaySeconds:       defaultDelay,
		AllowBypass:        true,
		BypassAfterSeconds: DefaultBypassAfterSeconds,
		QuestionCategory:   model.CategoryDefault,
	}
}

// FromPopular returns an unsaved config for a catalog entry.
func FromPopular(p model.PopularApp, defaultDelay int) model.AppConfig {
	cfg := NewConfig(p.Name, p.DeepLink, defaultDelay)
	cfg.Icon = p.Icon
	cfg.QuestionCategory = CategoryFor(p.Category)
	return cfg
}

// List returns the tracked apps in creation order.
func (s *Service) List(ctx context.Context) ([]model.AppConfig, error) {
	return s.store.LoadAppConfigs(ctx)
}

// Get returns the app with id, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.AppConfig, error) {
	cfg, err := s.store.GetAppConfig(ctx, id)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("get app config: %w", err)
	}
	if cfg == nil {
		return model.AppConfig{}, fmt.Errorf("app %s: %w", id, store.ErrNotFound)
	}
	return *cfg, nil
}

// Add validates cfg, assigns it an ID and saves it. Names must be unique in
// their URL-friendly form so every shortcut resolves to exactly one app.
func (s *Service) Add(ctx context.Context, cfg model.AppConfig) (model.AppConfig, error) {
	if err := s.check(&cfg); err != nil {
		return model.AppConfig{}, err
	}
	existing, err := s.store.LoadAppConfigs(ctx)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load app configs: %w", err)
	}
	if err := uniqueName(existing, cfg, ""); err != nil {
		return model.AppConfig{}, err
	}

	now := s.clock.Now()
	cfg.ID = uuid.NewString()
	cfg.LaunchCount = 0
	cfg.LastLaunched = nil
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	if err := s.store.SaveAppConfig(ctx, cfg); err != nil {
		return model.AppConfig{}, fmt.Errorf("save app config: %w", err)
	}
	s.log.Info("app added", zap.String("app_id", cfg.ID), zap.String("name", cfg.Name))
	return cfg, nil
}

// Update saves edited settings for an existing app.
func (s *Service) Update(ctx context.Context, cfg model.AppConfig) (model.AppConfig, error) {
	current, err := s.Get(ctx, cfg.ID)
	if err != nil {
		return model.AppConfig{}, err
	}
	if err := s.check(&cfg); err != nil {
		return model.AppConfig{}, err
	}
	existing, err := s.store.LoadAppConfigs(ctx)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load app configs: %w", err)
	}
	if err := uniqueName(existing, cfg, cfg.ID); err != nil {
		return model.AppConfig{}, err
	}

	cfg.CreatedAt = current.CreatedAt
	cfg.UpdatedAt = s.clock.Now()
	if err := s.store.SaveAppConfig(ctx, cfg); err != nil {
		return model.AppConfig{}, fmt.Errorf("save app config: %w", err)
	}
	return cfg, nil
}

// Delete removes the app with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAppConfig(ctx, id); err != nil {
		return fmt.Errorf("delete app %s: %w", id, err)
	}
	s.log.Info("app removed", zap.String("app_id", id))
	return nil
}

// RecordLaunch stamps the app as launched now and bumps its launch count.
func (s *Service) RecordLaunch(ctx context.Context, id string) (model.AppConfig, error) {
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return model.AppConfig{}, err
	}
	now := s.clock.Now()
	cfg.LastLaunched = &now
	cfg.LaunchCount++
	cfg.UpdatedAt = now
	if err := s.store.SaveAppConfig(ctx, cfg); err != nil {
		return model.AppConfig{}, fmt.Errorf("save app config: %w", err)
	}
	return cfg, nil
}

// check validates cfg and clamps a bypass threshold longer than the countdown.
func (s *Service) check(cfg *model.AppConfig) error {
	if err := s.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.DelaySeconds == 0 {
		cfg.DelaySeconds = model.DefaultDelaySeconds
	}
	if cfg.BypassAfterSeconds > cfg.DelaySeconds {
		s.log.Warn("bypass threshold exceeds countdown, clamping",
			zap.String("name", cfg.Name),
			zap.Int("bypass_after_seconds", cfg.BypassAfterSeconds),
			zap.Int("delay_seconds", cfg.DelaySeconds))
		cfg.BypassAfterSeconds = cfg.DelaySeconds
	}
	return nil
}

func uniqueName(existing []model.AppConfig, cfg model.AppConfig, selfID string) error {
	friendly := deeplink.FriendlyName(cfg.Name)
	for _, e := range existing {
		if e.ID == selfID {
			continue
		}
		if deeplink.FriendlyName(e.Name) == friendly {
			return fmt.Errorf("%w: %q", ErrDuplicateName, cfg.Name)
		}
	}
	return nil
}
