package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
)

// Fallbacks used by the public page when a setting is missing or unusable.
const (
	DefaultSiteTitle       = "Pootie Tang Dictionary"
	DefaultSiteDescription = "Translate between Pootie Tang and English"
)

// DefaultLoadingPhrases is shown when loadingPhrases is unset, empty or not
// a JSON array of strings.
var DefaultLoadingPhrases = []string{
	"Sa da tay!",
	"Wa da tah!",
	"Sine your pitty on the runny kine!",
	"Sepatown!",
	"Cole me down on the panny sty!",
	"Tippy tow!",
	"Capatchow!",
	"Wadatah!",
}

// SettingService reads and writes site settings.
type SettingService struct {
	repo   repository.SettingRepository
	logger *slog.Logger
}

func NewSettingService(repo repository.SettingRepository, logger *slog.Logger) *SettingService {
	return &SettingService{repo: repo, logger: logger}
}

func (s *SettingService) List(ctx context.Context) ([]model.Setting, error) {
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return settings, nil
}

// Get returns apperror.ErrNotFound for unknown keys.
func (s *SettingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	return s.repo.GetSetting(ctx, key)
}

// Set upserts key. Known keys are checked: loadingPhrases must be a JSON
// array of strings and gifUrl must be an absolute URL. Other keys are stored
// as given.
func (s *SettingService) Set(ctx context.Context, key string, value *string) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperror.ValidationFailed("key", "key is a required field")
	}

	if value != nil {
		if err := checkSettingValue(key, *value); err != nil {
			return nil, err
		}
	}

	setting, err := s.repo.SetSetting(ctx, key, value)
	if err != nil {
		s.logger.Error("failed to save setting",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving setting %q: %w", key, err)
	}

	s.logger.Info("setting updated", slog.String("key", key))
	return setting, nil
}

// SiteInfo resolves the display settings with fallbacks applied. A broken
// loadingPhrases value is logged and replaced by the defaults.
func (s *SettingService) SiteInfo(ctx context.Context) (*model.SiteInfo, error) {
	settings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(settings))
	for _, st := range settings {
		if st.Value != nil {
			values[st.Key] = *st.Value
		}
	}

	info := &model.SiteInfo{
		Title:          DefaultSiteTitle,
		Description:    DefaultSiteDescription,
		GifURL:         strings.TrimSpace(values[model.SettingGifURL]),
		LoadingPhrases: DefaultLoadingPhrases,
	}
	if v := strings.TrimSpace(values[model.SettingSiteTitle]); v != "" {
		info.Title = v
	}
	if v := strings.TrimSpace(values[model.SettingSiteDescription]); v != "" {
		info.Description = v
	}
	if raw, ok := values[model.SettingLoadingPhrases]; ok {
		phrases, err := ParseLoadingPhrases(raw)
		if err != nil {
			s.logger.Warn("ignoring invalid loadingPhrases setting", slog.String("error", err.Error()))
		} else if len(phrases) > 0 {
			info.LoadingPhrases = phrases
		}
	}

	return info, nil
}

// ParseLoadingPhrases decodes a JSON array of strings, dropping blank items.
func ParseLoadingPhrases(raw string) ([]string, error) {
	var phrases []string
	if err := json.Unmarshal([]byte(raw), &phrases); err != nil {
		return nil, fmt.Errorf("loadingPhrases must be a JSON array of strings: %w", err)
	}
	// JSON null decodes without error into a nil slice.
	if phrases == nil {
		return nil, errors.New("loadingPhrases must be a JSON array of strings, got null")
	}

	out := phrases[:0]
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func checkSettingValue(key, value string) error {
	switch key {
	case model.SettingLoadingPhrases:
		if _, err := ParseLoadingPhrases(value); err != nil {
			return apperror.ValidationFailed(key, "loadingPhrases must be a JSON array of strings")
		}
	case model.SettingGifURL:
		v := strings.TrimSpace(value)
		if v == "" {
			return nil
		}
		if !isAbsoluteURL(v) {
			return apperror.ValidationFailed(key, "gifUrl must be a valid URL")
		}
	}
	return nil
}

func isAbsoluteURL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && u.Host != ""
}
