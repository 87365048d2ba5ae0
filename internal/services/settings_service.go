package services

import (
	"context"
	"fmt"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SettingsServiceImpl implements SettingsService
var _ SettingsService = (*SettingsServiceImpl)(nil)

// SettingsServiceImpl manages the shop's loyalty configuration. The ladder is
// validated here, at configuration time; the allocator trusts stored ladders.
type SettingsServiceImpl struct {
	settingsRepo repositories.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo repositories.SettingsRepository) *SettingsServiceImpl {
	return &SettingsServiceImpl{settingsRepo: settingsRepo}
}

// GetRules returns the configured earn rules and redemption ladder.
func (s *SettingsServiceImpl) GetRules(ctx context.Context) (*models.EarnRules, []models.LadderStep, error) {
	return s.settingsRepo.GetRules(ctx)
}

// SaveRules validates and persists the configuration. Validation messages are
// returned to the caller; only store failures are errors.
func (s *SettingsServiceImpl) SaveRules(ctx context.Context, earn *models.EarnRules, ladder []models.LadderStep) ([]string, error) {
	if earn == nil {
		earn = &models.EarnRules{}
	}
	if validationErrs := models.ValidateLadder(ladder); len(validationErrs) > 0 {
		return validationErrs, nil
	}
	if err := s.settingsRepo.SaveRules(ctx, earn, ladder); err != nil {
		return nil, fmt.Errorf("save loyalty rules: %w", err)
	}
	slog.Info("loyalty rules updated", "ladderSteps", len(ladder))
	return nil, nil
}
