// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, normalises, enforces rules
//	Repository      → reads/writes the database
//
// Services accept plain Go values and return apperror values, never HTTP
// status codes, so the same rules apply to the API, the CLI and the page view.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
	"github.com/sakif/phrasebook/internal/search"
)

// DictionaryService handles business logic for glossary entries.
type DictionaryService struct {
	repo   repository.EntryRepository
	logger *slog.Logger
}

func NewDictionaryService(repo repository.EntryRepository, logger *slog.Logger) *DictionaryService {
	return &DictionaryService{
		repo:   repo,
		logger: logger,
	}
}

// List returns every entry in store order.
func (s *DictionaryService) List(ctx context.Context) ([]model.Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// Search loads all entries and applies the two-tier filter from package search.
func (s *DictionaryService) Search(ctx context.Context, query string) ([]model.Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(entries, query), nil
}

// GetByID returns apperror.ErrNotFound when the entry does not exist.
func (s *DictionaryService) GetByID(ctx context.Context, id int64) (*model.Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new entry. Phrase and translation are trimmed
// and required; blank optional fields are stored as NULL.
func (s *DictionaryService) Create(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	phrase := strings.TrimSpace(in.Phrase)
	if phrase == "" {
		return nil, apperror.ValidationFailed("phrase", "phrase is required")
	}
	translation := strings.TrimSpace(in.Translation)
	if translation == "" {
		return nil, apperror.ValidationFailed("translation", "translation is required")
	}

	entry := &model.Entry{
		Phrase:        phrase,
		Translation:   translation,
		UsageContext:  optional(in.UsageContext),
		Pronunciation: optional(in.Pronunciation),
		AudioURL:      optional(in.AudioURL),
	}
	if err := checkAudioURL(entry.AudioURL); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create entry",
			slog.String("phrase", phrase),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	s.logger.Info("entry created",
		slog.Int64("id", entry.ID),
		slog.String("phrase", entry.Phrase),
	)

	return entry, nil
}

// Update applies a partial update: fetch, merge the non-nil fields of patch,
// save. Required fields cannot be blanked; optional fields set to blank are
// cleared. Concurrent updates of one entry are last-write-wins.
func (s *DictionaryService) Update(ctx context.Context, id int64, patch model.EntryPatch) (*model.Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Phrase != nil {
		phrase := strings.TrimSpace(*patch.Phrase)
		if phrase == "" {
			return nil, apperror.ValidationFailed("phrase", "phrase must not be blank")
		}
		entry.Phrase = phrase
	}
	if patch.Translation != nil {
		translation := strings.TrimSpace(*patch.Translation)
		if translation == "" {
			return nil, apperror.ValidationFailed("translation", "translation must not be blank")
		}
		entry.Translation = translation
	}
	if patch.UsageContext != nil {
		entry.UsageContext = optional(*patch.UsageContext)
	}
	if patch.Pronunciation != nil {
		entry.Pronunciation = optional(*patch.Pronunciation)
	}
	if patch.AudioURL != nil {
		audio := optional(*patch.AudioURL)
		if err := checkAudioURL(audio); err != nil {
			return nil, err
		}
		entry.AudioURL = audio
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		if !isNotFound(err) {
			s.logger.Error("failed to update entry",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("updating entry: %w", err)
	}

	s.logger.Info("entry updated", slog.Int64("id", entry.ID))

	return entry, nil
}

// Delete removes an entry; apperror.ErrNotFound if it does not exist.
func (s *DictionaryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("entry deleted", slog.Int64("id", id))
	return nil
}

func (s *DictionaryService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// checkAudioURL accepts nil (cleared) or an absolute URL.
func checkAudioURL(v *string) error {
	if v == nil || isAbsoluteURL(*v) {
		return nil
	}
	return apperror.ValidationFailed("audioUrl", "audioUrl must be a valid URL")
}

// optional trims s and maps blank to nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
