package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type rehearsalRepoStub struct {
	rehearsal   Rehearsal
	list        []Rehearsal
	err         error
	occupied    map[string]bool
	allOccupied bool

	seeds         []RehearsalSeed
	updated       []Rehearsal
	deletedID     string
	deletedSeries string

	rolloverDeleteIDs []string
	rolloverSeed      *RehearsalSeed
}

func (r *rehearsalRepoStub) CreateRehearsals(ctx context.Context, seeds []RehearsalSeed) ([]Rehearsal, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.seeds = append(r.seeds, seeds...)
	created := make([]Rehearsal, 0, len(seeds))
	for _, seed := range seeds {
		created = append(created, seed.Rehearsal)
	}
	return created, nil
}

func (r *rehearsalRepoStub) GetRehearsal(ctx context.Context, id string) (Rehearsal, error) {
	if r.err != nil {
		return Rehearsal{}, r.err
	}
	if r.rehearsal.ID == id && id != "" {
		return r.rehearsal, nil
	}
	for _, rehearsal := range r.list {
		if rehearsal.ID == id {
			return rehearsal, nil
		}
	}
	return Rehearsal{}, ErrNotFound
}

func (r *rehearsalRepoStub) ListRehearsals(ctx context.Context, filter RehearsalFilter) ([]Rehearsal, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []Rehearsal
	for _, rehearsal := range r.list {
		if filter.RecurringID != nil {
			if rehearsal.RecurringID == nil || *rehearsal.RecurringID != *filter.RecurringID {
				continue
			}
		}
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

func (r *rehearsalRepoStub) ExistsOnDate(ctx context.Context, date time.Time, bandID *string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.allOccupied {
		return true, nil
	}
	return r.occupied[date.Format("2006-01-02")], nil
}

func (r *rehearsalRepoStub) UpdateRehearsals(ctx context.Context, rehearsals []Rehearsal) error {
	if r.err != nil {
		return r.err
	}
	r.updated = append(r.updated, rehearsals...)
	return nil
}

func (r *rehearsalRepoStub) DeleteRehearsal(ctx context.Context, id string) error {
	r.deletedID = id
	return r.err
}

func (r *rehearsalRepoStub) DeleteRehearsalSeries(ctx context.Context, recurringID string) error {
	r.deletedSeries = recurringID
	return r.err
}

func (r *rehearsalRepoStub) ApplyRollover(ctx context.Context, deleteIDs []string, seed *RehearsalSeed) error {
	if r.err != nil {
		return r.err
	}
	r.rolloverDeleteIDs = deleteIDs
	r.rolloverSeed = seed
	return nil
}

type userDirectoryStub struct {
	users []User
	err   error
}

func (u *userDirectoryStub) GetUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	for _, user := range u.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (u *userDirectoryStub) ListUsers(ctx context.Context) ([]User, error) {
	if u.err != nil {
		return nil, u.err
	}
	out := make([]User, len(u.users))
	copy(out, u.users)
	return out, nil
}

type membershipStub struct {
	memberships map[string]BandMembership
	err         error
}

func membershipKey(userID, bandID string) string {
	return userID + "|" + bandID
}

func (m *membershipStub) GetMembership(ctx context.Context, userID, bandID string) (BandMembership, error) {
	if m.err != nil {
		return BandMembership{}, m.err
	}
	membership, ok := m.memberships[membershipKey(userID, bandID)]
	if !ok {
		return BandMembership{}, ErrNotFound
	}
	return membership, nil
}

type auditStub struct {
	entries []LogEntry
	err     error
}

func (a *auditStub) AppendLogEntry(ctx context.Context, entry LogEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func sequenceIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(value string) func() time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return parsed }
}

func admin() Principal {
	return Principal{UserID: "admin-1", IsAdmin: true}
}

func threeUsers() []User {
	return []User{{ID: "user-1", Username: "anna"}, {ID: "user-2", Username: "bert"}, {ID: "user-3", Username: "cleo"}}
}

func newRehearsalService(repo *rehearsalRepoStub, users *userDirectoryStub, memberships *membershipStub, audit *auditStub) *RehearsalService {
	return NewRehearsalService(repo, users, memberships, audit, sequenceIDs("id"), fixedClock("2025-01-01T12:00:00Z"), nil)
}

func TestRehearsalService_CreateRehearsal_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newRehearsalService(&rehearsalRepoStub{}, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	_, err := svc.CreateRehearsal(context.Background(), CreateRehearsalParams{
		Principal: Principal{UserID: "user-1"},
		Input:     RehearsalInput{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRehearsalService_CreateRehearsal_SeedsResponseForEveryUser(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{}
	svc := newRehearsalService(repo, &userDirectoryStub{users: threeUsers()}, &membershipStub{}, &auditStub{})

	result, err := svc.CreateRehearsal(context.Background(), CreateRehearsalParams{
		Principal: admin(),
		Input:     RehearsalInput{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("CreateRehearsal returned error: %v", err)
	}

	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created rehearsal, got %d", len(result.Created))
	}
	if result.RecurringID != nil {
		t.Fatalf("expected no recurrence identifier for a single rehearsal, got %q", *result.RecurringID)
	}

	created := result.Created[0]
	if created.StartTime == nil || *created.StartTime != "19:00" {
		t.Fatalf("expected default start time 19:00, got %v", created.StartTime)
	}
	if created.EndTime == nil || *created.EndTime != "20:00" {
		t.Fatalf("expected default end time 20:00, got %v", created.EndTime)
	}

	if len(repo.seeds) != 1 {
		t.Fatalf("expected 1 seed, got %d", len(repo.seeds))
	}
	responses := repo.seeds[0].Responses
	if len(responses) != 3 {
		t.Fatalf("expected one response per user, got %d", len(responses))
	}
	for _, response := range responses {
		if !response.Attending {
			t.Fatalf("expected default attending=true, got %+v", response)
		}
		if response.RehearsalID != created.ID {
			t.Fatalf("response bound to %q, expected %q", response.RehearsalID, created.ID)
		}
	}
}

func TestRehearsalService_CreateRehearsal_RejectsOccupiedDate(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{occupied: map[string]bool{"2025-01-06": true}}
	svc := newRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	_, err := svc.CreateRehearsal(context.Background(), CreateRehearsalParams{
		Principal: admin(),
		Input:     RehearsalInput{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(repo.seeds) != 0 {
		t.Fatalf("expected no seeds on conflict, got %d", len(repo.seeds))
	}
}

func TestRehearsalService_CreateRecurring_SharesIdentifierAndSkipsOccupied(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{occupied: map[string]bool{"2025-01-20": true}}
	svc := newRehearsalService(repo, &userDirectoryStub{users: threeUsers()}, &membershipStub{}, &auditStub{})

	monday := "monday"
	result, err := svc.CreateRehearsal(context.Background(), CreateRehearsalParams{
		Principal: admin(),
		Input: RehearsalInput{
			Date:           time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			IsRecurring:    true,
			RecurrenceType: "weekly",
			DurationMonths: 1,
			DayOfWeek:      &monday,
		},
	})
	if err != nil {
		t.Fatalf("CreateRehearsal returned error: %v", err)
	}

	if result.RecurringID == nil {
		t.Fatal("expected a recurrence identifier")
	}
	want := []string{"2025-01-06", "2025-01-13", "2025-01-27"}
	if len(result.Created) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(result.Created))
	}
	for i, expected := range want {
		got := result.Created[i]
		if got.Date.Format("2006-01-02") != expected {
			t.Fatalf("occurrence %d: expected %s, got %s", i, expected, got.Date.Format("2006-01-02"))
		}
		if got.RecurringID == nil || *got.RecurringID != *result.RecurringID {
			t.Fatalf("occurrence %d does not share the recurrence identifier", i)
		}
	}

	for _, seed := range repo.seeds {
		if len(seed.Responses) != 3 {
			t.Fatalf("expected fan-out of 3 responses per occurrence, got %d", len(seed.Responses))
		}
	}
}

func TestRehearsalService_CreateRecurring_AllOccupiedStillMintsIdentifier(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{allOccupied: true}
	svc := newRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	result, err := svc.CreateRehearsal(context.Background(), CreateRehearsalParams{
		Principal: admin(),
		Input: RehearsalInput{
			Date:           time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			IsRecurring:    true,
			RecurrenceType: "weekly",
			DurationMonths: 1,
		},
	})
	if err != nil {
		t.Fatalf("CreateRehearsal returned error: %v", err)
	}
	if len(result.Created) != 0 {
		t.Fatalf("expected empty created list, got %d", len(result.Created))
	}
	if result.RecurringID == nil {
		t.Fatal("expected a recurrence identifier even with every date occupied")
	}
}

func TestRehearsalService_UpdateRehearsal_GroupShiftPreservesSpacing(t *testing.T) {
	t.Parallel()

	recurringID := "series-1"
	series := []Rehearsal{
		{ID: "r-1", Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), RecurringID: &recurringID},
		{ID: "r-2", Date: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), RecurringID: &recurringID},
		{ID: "r-3", Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), RecurringID: &recurringID},
	}
	repo := &rehearsalRepoStub{list: series}
	svc := newRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	// Anchor moves 2025-01-06 -> 2025-01-09, a +3 day shift.
	newDate := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateRehearsal(context.Background(), UpdateRehearsalParams{
		Principal:   admin(),
		RehearsalID: "r-1",
		Input:       RehearsalUpdateInput{Date: &newDate, UpdateAllRecurring: true},
	})
	if err != nil {
		t.Fatalf("UpdateRehearsal returned error: %v", err)
	}

	want := map[string]string{"r-1": "2025-01-09", "r-2": "2025-01-16", "r-3": "2025-01-23"}
	if len(updated) != len(want) {
		t.Fatalf("expected %d updated rows, got %d", len(want), len(updated))
	}
	for _, rehearsal := range updated {
		if got := rehearsal.Date.Format("2006-01-02"); got != want[rehearsal.ID] {
			t.Fatalf("rehearsal %s: expected %s, got %s", rehearsal.ID, want[rehearsal.ID], got)
		}
	}
}

func TestRehearsalService_UpdateRehearsal_SingleRowWhenFlagAbsent(t *testing.T) {
	t.Parallel()

	recurringID := "series-1"
	repo := &rehearsalRepoStub{
		rehearsal: Rehearsal{ID: "r-1", Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), RecurringID: &recurringID},
	}
	svc := newRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	title := "Extra rehearsal"
	updated, err := svc.UpdateRehearsal(context.Background(), UpdateRehearsalParams{
		Principal:   admin(),
		RehearsalID: "r-1",
		Input:       RehearsalUpdateInput{Title: &title},
	})
	if err != nil {
		t.Fatalf("UpdateRehearsal returned error: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("expected exactly one updated row, got %d", len(updated))
	}
	if updated[0].Title == nil || *updated[0].Title != title {
		t.Fatalf("expected title applied, got %v", updated[0].Title)
	}
	if got := updated[0].Date.Format("2006-01-02"); got != "2025-01-06" {
		t.Fatalf("expected untouched date, got %s", got)
	}
}

func TestRehearsalService_DeleteRehearsal_SeriesFlag(t *testing.T) {
	t.Parallel()

	recurringID := "series-1"
	repo := &rehearsalRepoStub{rehearsal: Rehearsal{ID: "r-1", RecurringID: &recurringID}}
	svc := newRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{})

	if err := svc.DeleteRehearsal(context.Background(), DeleteRehearsalParams{Principal: admin(), RehearsalID: "r-1", DeleteAllRecurring: true}); err != nil {
		t.Fatalf("DeleteRehearsal returned error: %v", err)
	}
	if repo.deletedSeries != recurringID {
		t.Fatalf("expected series delete for %q, got %q", recurringID, repo.deletedSeries)
	}
	if repo.deletedID != "" {
		t.Fatalf("expected no single delete, got %q", repo.deletedID)
	}
}

func TestRehearsalService_BulkCreate_SkipsInvalidAndOccupiedDates(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{occupied: map[string]bool{"2025-02-03": true}}
	svc := newRehearsalService(repo, &userDirectoryStub{users: threeUsers()}, &membershipStub{}, &auditStub{})

	result, err := svc.BulkCreateRehearsals(context.Background(), BulkCreateRehearsalsParams{
		Principal: admin(),
		Input:     BulkRehearsalInput{Dates: []string{"2025-02-01", "not-a-date", "2025-02-03", "2025-02-01"}},
	})
	if err != nil {
		t.Fatalf("BulkCreateRehearsals returned error: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created rehearsal, got %d", len(result.Created))
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("expected 3 skipped dates, got %v", result.Skipped)
	}
	if result.Created[0].RecurringID != nil {
		t.Fatal("bulk created rehearsals must be standalone")
	}
}

func TestRehearsalService_ListRehearsals_AppliesBandVisibility(t *testing.T) {
	t.Parallel()

	bandA, bandB := "band-a", "band-b"
	repo := &rehearsalRepoStub{list: []Rehearsal{
		{ID: "r-1"},
		{ID: "r-2", BandID: &bandA},
		{ID: "r-3", BandID: &bandB},
	}}
	memberships := &membershipStub{memberships: map[string]BandMembership{
		membershipKey("user-1", bandA): {UserID: "user-1", BandID: bandA, Role: RoleMember},
	}}
	svc := newRehearsalService(repo, &userDirectoryStub{}, memberships, &auditStub{})

	visible, err := svc.ListRehearsals(context.Background(), ListRehearsalsParams{Principal: Principal{UserID: "user-1"}})
	if err != nil {
		t.Fatalf("ListRehearsals returned error: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible rehearsals, got %d", len(visible))
	}
	for _, rehearsal := range visible {
		if rehearsal.ID == "r-3" {
			t.Fatal("rehearsal of a foreign band must not be visible")
		}
	}
}

func TestRehearsalService_Rollover_PurgesPastAndAppendsOne(t *testing.T) {
	t.Parallel()

	start, end, title := "19:00", "21:00", "Rep"
	repo := &rehearsalRepoStub{list: []Rehearsal{
		{ID: "past-1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "future-1", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartTime: &start, EndTime: &end, Title: &title},
	}}
	svc := NewRehearsalService(repo, &userDirectoryStub{users: threeUsers()}, &membershipStub{}, &auditStub{}, sequenceIDs("id"), fixedClock("2024-01-15T08:00:00Z"), nil)

	result, err := svc.Rollover(context.Background(), Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Rollover returned error: %v", err)
	}

	if result.Deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", result.Deleted)
	}
	if len(repo.rolloverDeleteIDs) != 1 || repo.rolloverDeleteIDs[0] != "past-1" {
		t.Fatalf("expected past-1 deleted, got %v", repo.rolloverDeleteIDs)
	}
	if repo.rolloverSeed == nil {
		t.Fatal("expected an appended rehearsal")
	}

	appended := repo.rolloverSeed.Rehearsal
	if got := appended.Date.Format("2006-01-02"); got != "2024-02-08" {
		t.Fatalf("expected appended date 2024-02-08, got %s", got)
	}
	if appended.StartTime == nil || *appended.StartTime != start || appended.EndTime == nil || *appended.EndTime != end {
		t.Fatalf("expected copied time window, got %v-%v", appended.StartTime, appended.EndTime)
	}
	if appended.Title == nil || *appended.Title != title {
		t.Fatalf("expected copied title, got %v", appended.Title)
	}
	if appended.RecurringID != nil {
		t.Fatal("appended rehearsal must be standalone")
	}
	if len(repo.rolloverSeed.Responses) != 3 {
		t.Fatalf("expected fan-out for 3 users, got %d", len(repo.rolloverSeed.Responses))
	}
}

func TestRehearsalService_Rollover_NoRemainingAppendsNothing(t *testing.T) {
	t.Parallel()

	repo := &rehearsalRepoStub{list: []Rehearsal{
		{ID: "past-1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewRehearsalService(repo, &userDirectoryStub{}, &membershipStub{}, &auditStub{}, sequenceIDs("id"), fixedClock("2024-01-15T08:00:00Z"), nil)

	result, err := svc.Rollover(context.Background(), Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Rollover returned error: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", result.Deleted)
	}
	if result.Created != nil || repo.rolloverSeed != nil {
		t.Fatal("expected no appended rehearsal when none remain")
	}
}
