package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
)

func newTestDictionaryService() (*DictionaryService, *fakeEntryRepo) {
	repo := newFakeEntryRepo()
	return NewDictionaryService(repo, discardLogger()), repo
}

func TestCreate_NormalisesInput(t *testing.T) {
	svc, _ := newTestDictionaryService()

	got, err := svc.Create(context.Background(), model.EntryInput{
		Phrase:        "  Sa da tay ",
		Translation:   "That's right\n",
		UsageContext:  "   ",
		Pronunciation: " sah-dah-tay ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got.ID == 0 {
		t.Error("ID should be assigned")
	}
	if got.Phrase != "Sa da tay" || got.Translation != "That's right" {
		t.Errorf("got %q / %q, want trimmed values", got.Phrase, got.Translation)
	}
	if got.UsageContext != nil {
		t.Errorf("UsageContext = %q, want nil for blank input", *got.UsageContext)
	}
	if got.Pronunciation == nil || *got.Pronunciation != "sah-dah-tay" {
		t.Errorf("Pronunciation = %v, want trimmed value", got.Pronunciation)
	}
	if got.AudioURL != nil {
		t.Error("AudioURL should be nil when omitted")
	}
}

func TestCreate_RequiredFields(t *testing.T) {
	svc, repo := newTestDictionaryService()

	tests := []struct {
		name  string
		in    model.EntryInput
		field string
	}{
		{"missing phrase", model.EntryInput{Translation: "x"}, "phrase"},
		{"blank phrase", model.EntryInput{Phrase: "  ", Translation: "x"}, "phrase"},
		{"missing translation", model.EntryInput{Phrase: "x"}, "translation"},
		{"relative audio url", model.EntryInput{Phrase: "x", Translation: "y", AudioURL: "clip.mp3"}, "audioUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want validation error", err)
			}
			if appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}

	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Errorf("invalid input was stored: Count() = %d", n)
	}
}

func TestUpdate_Partial(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, model.EntryInput{
		Phrase: "Capatown", Translation: "Calm down now", UsageContext: "Friendly",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Update(ctx, created.ID, model.EntryPatch{Translation: strPtr(" Relax ")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got.Phrase != "Capatown" {
		t.Errorf("Phrase = %q, should be unchanged", got.Phrase)
	}
	if got.Translation != "Relax" {
		t.Errorf("Translation = %q, want %q", got.Translation, "Relax")
	}
	if got.UsageContext == nil || *got.UsageContext != "Friendly" {
		t.Errorf("UsageContext = %v, should be unchanged", got.UsageContext)
	}
}

func TestUpdate_BlankOptionalClears(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, model.EntryInput{
		Phrase: "Ranacan", Translation: "To party", UsageContext: "Socializing",
	})

	got, err := svc.Update(ctx, created.ID, model.EntryPatch{UsageContext: strPtr("")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.UsageContext != nil {
		t.Errorf("UsageContext = %q, want nil", *got.UsageContext)
	}

	stored, _ := svc.GetByID(ctx, created.ID)
	if stored.UsageContext != nil {
		t.Error("cleared UsageContext was not persisted")
	}
}

func TestUpdate_AudioURL(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, model.EntryInput{
		Phrase: "Sa da tay", Translation: "That's right", AudioURL: "https://example.com/sadatay.mp3",
	})

	if _, err := svc.Update(ctx, created.ID, model.EntryPatch{AudioURL: strPtr("not a url")}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update(bad audio url) error = %v, want ErrValidation", err)
	}
	stored, _ := svc.GetByID(ctx, created.ID)
	if stored.AudioURL == nil || *stored.AudioURL != "https://example.com/sadatay.mp3" {
		t.Errorf("rejected update changed AudioURL: %v", stored.AudioURL)
	}

	for _, blank := range []string{"", "  "} {
		got, err := svc.Update(ctx, created.ID, model.EntryPatch{AudioURL: strPtr(blank)})
		if err != nil {
			t.Fatalf("Update(%q) error = %v", blank, err)
		}
		if got.AudioURL != nil {
			t.Errorf("Update(%q): AudioURL = %q, want nil", blank, *got.AudioURL)
		}
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, model.EntryInput{Phrase: "Tipi tais", Translation: "Kids"})

	if _, err := svc.Update(ctx, 999, model.EntryPatch{Phrase: strPtr("x")}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, created.ID, model.EntryPatch{Phrase: strPtr("  ")}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update(blank phrase) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Update(ctx, created.ID, model.EntryPatch{Translation: strPtr("")}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update(blank translation) error = %v, want ErrValidation", err)
	}

	stored, _ := svc.GetByID(ctx, created.ID)
	if stored.Phrase != "Tipi tais" || stored.Translation != "Kids" {
		t.Errorf("rejected update changed the entry: %+v", stored)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, model.EntryInput{Phrase: "Sa da tay", Translation: "Yes"})

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSearch_DelegatesToFilter(t *testing.T) {
	svc, _ := newTestDictionaryService()
	ctx := context.Background()
	for _, in := range []model.EntryInput{
		{Phrase: "Sa da tay", Translation: "That's right"},
		{Phrase: "Wa da tah", Translation: "I agree"},
		{Phrase: "Ranacan", Translation: "To party"},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := svc.Search(ctx, "  ")
	if err != nil || len(all) != 3 {
		t.Fatalf("Search(blank) = %d entries, %v; want 3", len(all), err)
	}

	got, err := svc.Search(ctx, "DA")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].Phrase != "Sa da tay" || got[1].Phrase != "Wa da tah" {
		t.Errorf("Search(DA) = %+v, want the two 'da' entries in order", got)
	}
}

func TestSearch_RepositoryError(t *testing.T) {
	svc, repo := newTestDictionaryService()
	repo.listErr = errors.New("database is on fire")

	if _, err := svc.Search(context.Background(), "x"); err == nil {
		t.Fatal("Search() should propagate repository errors")
	}
}
