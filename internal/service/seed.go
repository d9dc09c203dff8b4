package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/phrasebook/internal/model"
)

// starterEntries are inserted into an empty dictionary on first run.
var starterEntries = []model.EntryInput{
	{Phrase: "Sa da tay", Translation: "That's right / I understand",
		UsageContext: "Generally positive interpretation, an affirmative response"},
	{Phrase: "Wa da tah", Translation: "That's for sure! / I agree",
		UsageContext: "Confirmation statement, used to express agreement"},
	{Phrase: "Cole me on the panny sty", Translation: "Call me on the phone",
		UsageContext: "Said during an interview with Bob Costas"},
	{Phrase: "Sine your pitty on the runny kine", Translation: "Sign your name on the dotted line",
		UsageContext: "Used when asking someone to sign a document"},
	{Phrase: "Capatown", Translation: "Calm down now",
		UsageContext: "Used in a friendly manner to tell someone to relax"},
	{Phrase: "Ranacan", Translation: "To party",
		UsageContext: "Used when talking about socializing or celebrating"},
	{Phrase: "Bata shane, my dillie?", Translation: "What time is the party?",
		UsageContext: "Said to 'Biggie Shorty' regarding a party"},
	{Phrase: "Tipi tais", Translation: "Kids / children",
		UsageContext: "Generally accepted as referring to young people"},
	{Phrase: "Cama cama leepa chai", Translation: "No, I refuse",
		UsageContext: "Refusal on moral grounds"},
	{Phrase: "You ain't come one, but many tine tanies!", Translation: "You came to fight me with many friends!",
		UsageContext: "Said to Dirty Dee when he came to challenge Pootie Tang"},
	{Phrase: "Dirty Dee, you're a baddy daddy lamatai tabby chai!", Translation: "Dirty Dee, you're a terrible person!",
		UsageContext: "A threat or insult directed at the character Dirty Dee"},
}

// SeedResult reports what Seeder.Run created.
type SeedResult struct {
	AdminCreated   bool
	EntriesCreated int
}

// Seeder fills an empty database with an admin account and starter entries.
// Running it again is a no-op.
type Seeder struct {
	auth       *AuthService
	dictionary *DictionaryService
	logger     *slog.Logger
}

func NewSeeder(authSvc *AuthService, dictionary *DictionaryService, logger *slog.Logger) *Seeder {
	return &Seeder{
		auth:       authSvc,
		dictionary: dictionary,
		logger:     logger,
	}
}

func (s *Seeder) Run(ctx context.Context, adminUsername, adminPassword string) (*SeedResult, error) {
	var res SeedResult

	created, err := s.auth.EnsureAdmin(ctx, adminUsername, adminPassword)
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	res.AdminCreated = created

	n, err := s.dictionary.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		for _, in := range starterEntries {
			if _, err := s.dictionary.Create(ctx, in); err != nil {
				return nil, fmt.Errorf("seeding entry %q: %w", in.Phrase, err)
			}
			res.EntriesCreated++
		}
	}

	s.logger.Info("database seeding complete",
		slog.Bool("adminCreated", res.AdminCreated),
		slog.Int("entriesCreated", res.EntriesCreated),
	)
	return &res, nil
}
