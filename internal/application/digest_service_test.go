package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type windowRehearsalsStub struct {
	list []Rehearsal
	err  error
}

func (w *windowRehearsalsStub) GetRehearsal(ctx context.Context, id string) (Rehearsal, error) {
	for _, rehearsal := range w.list {
		if rehearsal.ID == id {
			return rehearsal, nil
		}
	}
	return Rehearsal{}, ErrNotFound
}

func (w *windowRehearsalsStub) ListRehearsals(ctx context.Context, filter RehearsalFilter) ([]Rehearsal, error) {
	if w.err != nil {
		return nil, w.err
	}
	var out []Rehearsal
	for _, rehearsal := range w.list {
		if filter.From != nil && rehearsal.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rehearsal.Date.After(*filter.To) {
			continue
		}
		out = append(out, rehearsal)
	}
	return out, nil
}

type digestMailerStub struct {
	recipients []string
	entries    []DigestEntry
	calls      int
	err        error
}

func (m *digestMailerStub) SendDigest(ctx context.Context, recipients []string, entries []DigestEntry) error {
	m.calls++
	m.recipients = recipients
	m.entries = entries
	return m.err
}

func digestDay(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestDigestService_Run_WindowBoundaries(t *testing.T) {
	t.Parallel()

	rehearsals := &windowRehearsalsStub{list: []Rehearsal{
		{ID: "r-today", Date: digestDay("2025-01-01")},
		{ID: "r-edge", Date: digestDay("2025-02-05")},
		{ID: "r-out", Date: digestDay("2025-02-06")},
	}}
	users := &userDirectoryStub{users: []User{{ID: "user-1", Username: "anna", Email: "anna@example.com"}}}
	mailer := &digestMailerStub{}
	svc := NewDigestService(rehearsals, &responseRepoStub{}, users, mailer, fixedClock("2025-01-01T08:00:00Z"), nil)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if mailer.calls != 1 {
		t.Fatalf("expected 1 send, got %d", mailer.calls)
	}
	if len(mailer.entries) != 2 {
		t.Fatalf("expected today and today+35d included, got %d entries", len(mailer.entries))
	}
	for _, entry := range mailer.entries {
		if entry.Date.Format("2006-01-02") == "2025-02-06" {
			t.Fatal("today+36d must be excluded")
		}
	}
}

func TestDigestService_Run_EmptyWindowSendsNothing(t *testing.T) {
	t.Parallel()

	rehearsals := &windowRehearsalsStub{list: []Rehearsal{
		{ID: "r-past", Date: digestDay("2024-12-31")},
	}}
	users := &userDirectoryStub{users: []User{{ID: "user-1", Email: "anna@example.com"}}}
	mailer := &digestMailerStub{}
	svc := NewDigestService(rehearsals, &responseRepoStub{}, users, mailer, fixedClock("2025-01-01T08:00:00Z"), nil)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if mailer.calls != 0 {
		t.Fatal("no send may be attempted for an empty window")
	}
}

func TestDigestService_Compose_CollectsDecliners(t *testing.T) {
	t.Parallel()

	firstName := "Anna"
	comment := "bortrest"
	rehearsals := &windowRehearsalsStub{list: []Rehearsal{
		{ID: "r-1", Date: digestDay("2025-01-03")},
	}}
	responses := &responseRepoStub{list: []Response{
		{ID: "resp-1", UserID: "user-1", RehearsalID: "r-1", Attending: false, Comment: &comment},
		{ID: "resp-2", UserID: "user-2", RehearsalID: "r-1", Attending: false},
		{ID: "resp-3", UserID: "user-3", RehearsalID: "r-1", Attending: true},
	}}
	users := &userDirectoryStub{users: []User{
		{ID: "user-1", Username: "anna", FirstName: &firstName, Email: "anna@example.com"},
		{ID: "user-2", Username: "bert"},
		{ID: "user-3", Username: "cleo"},
	}}
	svc := NewDigestService(rehearsals, responses, users, &digestMailerStub{}, fixedClock("2025-01-01T08:00:00Z"), nil)

	entries, err := svc.Compose(context.Background())
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	decliners := entries[0].Decliners
	if len(decliners) != 2 {
		t.Fatalf("expected 2 decliners, got %d", len(decliners))
	}
	if decliners[0].Name != "Anna" || decliners[0].Comment != comment {
		t.Fatalf("expected first-name display with comment, got %+v", decliners[0])
	}
	if decliners[1].Name != "bert" || decliners[1].Comment != "" {
		t.Fatalf("expected username fallback with empty comment, got %+v", decliners[1])
	}
}

func TestDigestService_Run_SkipsUsersWithoutEmail(t *testing.T) {
	t.Parallel()

	rehearsals := &windowRehearsalsStub{list: []Rehearsal{
		{ID: "r-1", Date: digestDay("2025-01-03")},
	}}
	users := &userDirectoryStub{users: []User{
		{ID: "user-1", Username: "anna", Email: "anna@example.com"},
		{ID: "user-2", Username: "bert"},
	}}
	mailer := &digestMailerStub{}
	svc := NewDigestService(rehearsals, &responseRepoStub{}, users, mailer, fixedClock("2025-01-01T08:00:00Z"), nil)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(mailer.recipients) != 1 || mailer.recipients[0] != "anna@example.com" {
		t.Fatalf("expected only addressed users, got %v", mailer.recipients)
	}
}

func TestDigestService_Trigger_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewDigestService(&windowRehearsalsStub{}, &responseRepoStub{}, &userDirectoryStub{}, &digestMailerStub{}, fixedClock("2025-01-01T08:00:00Z"), nil)

	if err := svc.Trigger(context.Background(), Principal{UserID: "user-1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
