package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/band-rehearsal/internal/recurrence"
)

const dayLayout = "2006-01-02"

// Default rehearsal window applied when the request omits times.
const (
	defaultStartTime = "19:00"
	defaultEndTime   = "20:00"
)

const defaultDurationMonths = 3

// RehearsalService orchestrates validation, authorization, recurrence
// expansion, and persistence for rehearsals.
type RehearsalService struct {
	rehearsals  RehearsalRepository
	users       UserDirectory
	memberships MembershipDirectory
	logs        LogRecorder
	engine      *recurrence.Engine
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRehearsalService wires dependencies for the rehearsal service.
func NewRehearsalService(rehearsals RehearsalRepository, users UserDirectory, memberships MembershipDirectory, logs LogRecorder, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RehearsalService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RehearsalService{
		rehearsals:  rehearsals,
		users:       users,
		memberships: memberships,
		logs:        logs,
		engine:      recurrence.NewEngine(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RehearsalService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RehearsalService", operation, attrs...)
}

// CreateRehearsal creates one standalone rehearsal or expands a recurring
// request into a series sharing one recurrence identifier. Every created
// occurrence is seeded with a default-attending response for each current
// user, in one storage transaction.
func (s *RehearsalService) CreateRehearsal(ctx context.Context, params CreateRehearsalParams) (CreateRehearsalResult, error) {
	if s == nil {
		return CreateRehearsalResult{}, fmt.Errorf("RehearsalService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return CreateRehearsalResult{}, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return CreateRehearsalResult{}, fmt.Errorf("rehearsal repository not configured")
	}

	input := normalizeRehearsalInput(params.Input)
	if vErr := validateRehearsalInput(input); vErr.HasErrors() {
		return CreateRehearsalResult{}, vErr
	}

	users, err := s.listUsersForFanOut(ctx)
	if err != nil {
		return CreateRehearsalResult{}, err
	}

	logger := s.loggerWith(ctx, "CreateRehearsal", "date", input.Date.Format(dayLayout), "recurring", input.IsRecurring)

	var result CreateRehearsalResult
	if input.IsRecurring {
		result, err = s.createSeries(ctx, input, users)
	} else {
		result, err = s.createSingle(ctx, input, users)
	}
	if err != nil {
		return CreateRehearsalResult{}, err
	}

	entityID := ""
	if result.RecurringID != nil {
		entityID = *result.RecurringID
	} else if len(result.Created) > 0 {
		entityID = result.Created[0].ID
	}
	summary := summarizeRehearsalInput(input)
	recordAudit(ctx, logger, s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     params.Principal.UserID,
		Action:     "create",
		EntityType: "rehearsal",
		EntityID:   entityID,
		NewValue:   &summary,
		Timestamp:  s.now(),
	})

	logger.InfoContext(ctx, "rehearsals created", "count", len(result.Created))
	return result, nil
}

func (s *RehearsalService) createSingle(ctx context.Context, input RehearsalInput, users []User) (CreateRehearsalResult, error) {
	occupied, err := s.rehearsals.ExistsOnDate(ctx, input.Date, input.BandID)
	if err != nil {
		return CreateRehearsalResult{}, mapRepoError(err)
	}
	if occupied {
		return CreateRehearsalResult{}, fmt.Errorf("rehearsal already scheduled on %s: %w", input.Date.Format(dayLayout), ErrConflict)
	}

	seed := s.buildSeed(input.Date, input, nil, users)
	created, err := s.rehearsals.CreateRehearsals(ctx, []RehearsalSeed{seed})
	if err != nil {
		return CreateRehearsalResult{}, mapRepoError(err)
	}
	return CreateRehearsalResult{Created: created}, nil
}

func (s *RehearsalService) createSeries(ctx context.Context, input RehearsalInput, users []User) (CreateRehearsalResult, error) {
	frequency, err := recurrence.ParseFrequency(input.RecurrenceType)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("recurrence_type", "recurrence_type must be weekly or biweekly")
		return CreateRehearsalResult{}, vErr
	}

	rule := recurrence.Rule{
		Start:          input.Date,
		Frequency:      frequency,
		DurationMonths: input.DurationMonths,
	}
	if input.DayOfWeek != nil {
		weekday, err := recurrence.ParseWeekday(*input.DayOfWeek)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("day_of_week", "day_of_week is not a weekday name")
			return CreateRehearsalResult{}, vErr
		}
		rule.Weekday = &weekday
	}

	days, err := s.engine.Expand(rule)
	if err != nil {
		return CreateRehearsalResult{}, err
	}

	// One identifier is minted per walk even when every date is occupied.
	recurringID := s.idGenerator()

	var seeds []RehearsalSeed
	for _, day := range days {
		occupied, err := s.rehearsals.ExistsOnDate(ctx, day, input.BandID)
		if err != nil {
			return CreateRehearsalResult{}, mapRepoError(err)
		}
		if occupied {
			continue
		}
		seeds = append(seeds, s.buildSeed(day, input, &recurringID, users))
	}

	var created []Rehearsal
	if len(seeds) > 0 {
		created, err = s.rehearsals.CreateRehearsals(ctx, seeds)
		if err != nil {
			return CreateRehearsalResult{}, mapRepoError(err)
		}
	}
	return CreateRehearsalResult{Created: created, RecurringID: &recurringID}, nil
}

// BulkCreateRehearsals creates standalone rehearsals for an explicit date
// list. Dates that do not parse or are already occupied are reported back as
// skipped rather than failing the call.
func (s *RehearsalService) BulkCreateRehearsals(ctx context.Context, params BulkCreateRehearsalsParams) (BulkCreateRehearsalsResult, error) {
	if s == nil {
		return BulkCreateRehearsalsResult{}, fmt.Errorf("RehearsalService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return BulkCreateRehearsalsResult{}, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return BulkCreateRehearsalsResult{}, fmt.Errorf("rehearsal repository not configured")
	}

	input := params.Input
	shared := normalizeRehearsalInput(RehearsalInput{
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Title:     input.Title,
		BandID:    input.BandID,
	})
	vErr := &ValidationError{}
	if len(input.Dates) == 0 {
		vErr.add("dates", "at least one date is required")
	}
	vErr.merge(validateTimes(shared.StartTime, shared.EndTime))
	if vErr.HasErrors() {
		return BulkCreateRehearsalsResult{}, vErr
	}

	users, err := s.listUsersForFanOut(ctx)
	if err != nil {
		return BulkCreateRehearsalsResult{}, err
	}

	var (
		seeds   []RehearsalSeed
		skipped []string
		seen    = make(map[string]bool, len(input.Dates))
	)
	for _, raw := range input.Dates {
		day, err := time.Parse(dayLayout, raw)
		if err != nil {
			skipped = append(skipped, raw)
			continue
		}
		key := day.Format(dayLayout)
		if seen[key] {
			skipped = append(skipped, raw)
			continue
		}
		seen[key] = true

		occupied, err := s.rehearsals.ExistsOnDate(ctx, day, shared.BandID)
		if err != nil {
			return BulkCreateRehearsalsResult{}, mapRepoError(err)
		}
		if occupied {
			skipped = append(skipped, raw)
			continue
		}
		seeds = append(seeds, s.buildSeed(day, shared, nil, users))
	}

	var created []Rehearsal
	if len(seeds) > 0 {
		created, err = s.rehearsals.CreateRehearsals(ctx, seeds)
		if err != nil {
			return BulkCreateRehearsalsResult{}, mapRepoError(err)
		}
	}

	summary := fmt.Sprintf("Created: %d, Skipped: %d", len(created), len(skipped))
	recordAudit(ctx, s.loggerWith(ctx, "BulkCreateRehearsals"), s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     params.Principal.UserID,
		Action:     "bulk_create",
		EntityType: "rehearsal",
		NewValue:   &summary,
		Timestamp:  s.now(),
	})

	return BulkCreateRehearsalsResult{Created: created, Skipped: skipped}, nil
}

// UpdateRehearsal applies a partial update to one occurrence or, when
// requested and the occurrence belongs to a series, to every occurrence
// sharing its recurrence identifier. A group date change is a relative shift:
// each member keeps its own spacing.
func (s *RehearsalService) UpdateRehearsal(ctx context.Context, params UpdateRehearsalParams) ([]Rehearsal, error) {
	if s == nil {
		return nil, fmt.Errorf("RehearsalService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return nil, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return nil, fmt.Errorf("rehearsal repository not configured")
	}

	if vErr := validateTimes(params.Input.StartTime, params.Input.EndTime); vErr.HasErrors() {
		return nil, vErr
	}

	existing, err := s.rehearsals.GetRehearsal(ctx, params.RehearsalID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	targets := []Rehearsal{existing}
	if params.Input.UpdateAllRecurring && existing.RecurringID != nil {
		targets, err = s.rehearsals.ListRehearsals(ctx, RehearsalFilter{RecurringID: existing.RecurringID})
		if err != nil {
			return nil, mapRepoError(err)
		}
	}

	shiftDays := 0
	if params.Input.Date != nil {
		newDate := startOfDay(*params.Input.Date)
		shiftDays = int(newDate.Sub(existing.Date).Hours() / 24)
	}

	oldSummary := summarizeRehearsal(existing)
	now := s.now()
	for i := range targets {
		if params.Input.Date != nil {
			targets[i].Date = targets[i].Date.AddDate(0, 0, shiftDays)
		}
		if params.Input.StartTime != nil {
			targets[i].StartTime = params.Input.StartTime
		}
		if params.Input.EndTime != nil {
			targets[i].EndTime = params.Input.EndTime
		}
		if params.Input.Title != nil {
			targets[i].Title = params.Input.Title
		}
		targets[i].UpdatedAt = now
	}

	if err := s.rehearsals.UpdateRehearsals(ctx, targets); err != nil {
		return nil, mapRepoError(err)
	}

	newSummary := summarizeRehearsal(targets[0])
	recordAudit(ctx, s.loggerWith(ctx, "UpdateRehearsal"), s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     params.Principal.UserID,
		Action:     "update",
		EntityType: "rehearsal",
		EntityID:   existing.ID,
		OldValue:   &oldSummary,
		NewValue:   &newSummary,
		Timestamp:  now,
	})

	return targets, nil
}

// DeleteRehearsal removes one occurrence or, via the series flag, every
// occurrence sharing its recurrence identifier. Responses are removed by the
// store's cascade rule.
func (s *RehearsalService) DeleteRehearsal(ctx context.Context, params DeleteRehearsalParams) error {
	if s == nil {
		return fmt.Errorf("RehearsalService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return ErrUnauthorized
	}
	if s.rehearsals == nil {
		return fmt.Errorf("rehearsal repository not configured")
	}

	existing, err := s.rehearsals.GetRehearsal(ctx, params.RehearsalID)
	if err != nil {
		return mapRepoError(err)
	}

	if params.DeleteAllRecurring && existing.RecurringID != nil {
		err = s.rehearsals.DeleteRehearsalSeries(ctx, *existing.RecurringID)
	} else {
		err = s.rehearsals.DeleteRehearsal(ctx, existing.ID)
	}
	if err != nil {
		return mapRepoError(err)
	}

	oldSummary := summarizeRehearsal(existing)
	recordAudit(ctx, s.loggerWith(ctx, "DeleteRehearsal"), s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     params.Principal.UserID,
		Action:     "delete",
		EntityType: "rehearsal",
		EntityID:   existing.ID,
		OldValue:   &oldSummary,
		Timestamp:  s.now(),
	})
	return nil
}

// GetRehearsal returns one occurrence, restricted to members of the owning
// band for band-scoped rows.
func (s *RehearsalService) GetRehearsal(ctx context.Context, principal Principal, rehearsalID string) (Rehearsal, error) {
	if s == nil {
		return Rehearsal{}, fmt.Errorf("RehearsalService is nil")
	}
	if !principal.isAuthenticated() {
		return Rehearsal{}, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return Rehearsal{}, fmt.Errorf("rehearsal repository not configured")
	}

	rehearsal, err := s.rehearsals.GetRehearsal(ctx, rehearsalID)
	if err != nil {
		return Rehearsal{}, mapRepoError(err)
	}

	visible, err := s.canView(ctx, principal, rehearsal.BandID, nil)
	if err != nil {
		return Rehearsal{}, err
	}
	if !visible {
		return Rehearsal{}, ErrUnauthorized
	}
	return rehearsal, nil
}

// ListRehearsals returns the occurrences visible to the principal, filtered
// by the optional window and band.
func (s *RehearsalService) ListRehearsals(ctx context.Context, params ListRehearsalsParams) ([]Rehearsal, error) {
	if s == nil {
		return nil, fmt.Errorf("RehearsalService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return nil, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return nil, nil
	}

	rehearsals, err := s.rehearsals.ListRehearsals(ctx, RehearsalFilter{
		From:   params.From,
		To:     params.To,
		BandID: params.BandID,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	visibility := make(map[string]bool)
	visible := make([]Rehearsal, 0, len(rehearsals))
	for _, rehearsal := range rehearsals {
		ok, err := s.canView(ctx, params.Principal, rehearsal.BandID, visibility)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, rehearsal)
		}
	}
	return visible, nil
}

// Rollover purges every occurrence dated strictly before today and, when at
// least one occurrence remains, appends exactly one standalone occurrence
// seven days after the latest remaining date, copying its time window and
// title. Purge and append are applied atomically.
func (s *RehearsalService) Rollover(ctx context.Context, principal Principal) (RolloverResult, error) {
	if s == nil {
		return RolloverResult{}, fmt.Errorf("RehearsalService is nil")
	}
	if !principal.isAuthenticated() {
		return RolloverResult{}, ErrUnauthorized
	}
	if s.rehearsals == nil {
		return RolloverResult{}, fmt.Errorf("rehearsal repository not configured")
	}

	rehearsals, err := s.rehearsals.ListRehearsals(ctx, RehearsalFilter{})
	if err != nil {
		return RolloverResult{}, mapRepoError(err)
	}

	today := startOfDay(s.now())
	var (
		deleteIDs []string
		latest    *Rehearsal
	)
	for i := range rehearsals {
		if rehearsals[i].Date.Before(today) {
			deleteIDs = append(deleteIDs, rehearsals[i].ID)
			continue
		}
		if latest == nil || rehearsals[i].Date.After(latest.Date) {
			latest = &rehearsals[i]
		}
	}

	var seed *RehearsalSeed
	if latest != nil {
		users, err := s.listUsersForFanOut(ctx)
		if err != nil {
			return RolloverResult{}, err
		}
		next := s.buildSeed(latest.Date.AddDate(0, 0, 7), RehearsalInput{
			StartTime: latest.StartTime,
			EndTime:   latest.EndTime,
			Title:     latest.Title,
			BandID:    latest.BandID,
		}, nil, users)
		seed = &next
	}

	if len(deleteIDs) == 0 && seed == nil {
		return RolloverResult{}, nil
	}

	if err := s.rehearsals.ApplyRollover(ctx, deleteIDs, seed); err != nil {
		return RolloverResult{}, mapRepoError(err)
	}

	result := RolloverResult{Deleted: len(deleteIDs)}
	summary := fmt.Sprintf("Deleted: %d", len(deleteIDs))
	if seed != nil {
		result.Created = &seed.Rehearsal
		summary = fmt.Sprintf("%s, Added: %s", summary, seed.Rehearsal.Date.Format(dayLayout))
	}
	recordAudit(ctx, s.loggerWith(ctx, "Rollover"), s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     principal.UserID,
		Action:     "manage",
		EntityType: "rehearsal",
		NewValue:   &summary,
		Timestamp:  s.now(),
	})

	s.loggerWith(ctx, "Rollover").InfoContext(ctx, "rollover applied", "deleted", result.Deleted, "appended", result.Created != nil)
	return result, nil
}

func (s *RehearsalService) buildSeed(date time.Time, input RehearsalInput, recurringID *string, users []User) RehearsalSeed {
	now := s.now()
	rehearsal := Rehearsal{
		ID:          s.idGenerator(),
		Date:        startOfDay(date),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Title:       input.Title,
		RecurringID: recurringID,
		BandID:      input.BandID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	responses := make([]Response, 0, len(users))
	for _, user := range users {
		responses = append(responses, Response{
			ID:          s.idGenerator(),
			UserID:      user.ID,
			RehearsalID: rehearsal.ID,
			Attending:   true,
			UpdatedAt:   now,
		})
	}
	return RehearsalSeed{Rehearsal: rehearsal, Responses: responses}
}

func (s *RehearsalService) listUsersForFanOut(ctx context.Context) ([]User, error) {
	if s.users == nil {
		return nil, nil
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return users, nil
}

// canView applies the band visibility rule. The cache avoids repeated
// membership lookups across one listing.
func (s *RehearsalService) canView(ctx context.Context, principal Principal, bandID *string, cache map[string]bool) (bool, error) {
	if bandID == nil || principal.isGlobalAdmin() {
		return true, nil
	}
	if cache != nil {
		if visible, ok := cache[*bandID]; ok {
			return visible, nil
		}
	}

	visible := false
	if s.memberships != nil {
		_, err := s.memberships.GetMembership(ctx, principal.UserID, *bandID)
		switch {
		case err == nil:
			visible = true
		case isNotFoundError(err):
		default:
			return false, mapRepoError(err)
		}
	}
	if cache != nil {
		cache[*bandID] = visible
	}
	return visible, nil
}

func normalizeRehearsalInput(input RehearsalInput) RehearsalInput {
	out := input
	if out.StartTime == nil {
		start := defaultStartTime
		out.StartTime = &start
	}
	if out.EndTime == nil {
		end := defaultEndTime
		out.EndTime = &end
	}
	if out.IsRecurring && out.DurationMonths == 0 {
		out.DurationMonths = defaultDurationMonths
	}
	if !out.Date.IsZero() {
		out.Date = startOfDay(out.Date)
	}
	return out
}

func validateRehearsalInput(input RehearsalInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	vErr.merge(validateTimes(input.StartTime, input.EndTime))

	if input.IsRecurring {
		if _, err := recurrence.ParseFrequency(input.RecurrenceType); err != nil {
			vErr.add("recurrence_type", "recurrence_type must be weekly or biweekly")
		}
		if input.DurationMonths < 1 {
			vErr.add("duration_months", "duration_months must be at least 1")
		}
		if input.DayOfWeek != nil {
			if _, err := recurrence.ParseWeekday(*input.DayOfWeek); err != nil {
				vErr.add("day_of_week", "day_of_week is not a weekday name")
			}
		}
	}

	return vErr
}

func validateTimes(start, end *string) *ValidationError {
	vErr := &ValidationError{}
	if start != nil {
		if _, err := time.Parse("15:04", *start); err != nil {
			vErr.add("start_time", "start_time must be HH:MM")
		}
	}
	if end != nil {
		if _, err := time.Parse("15:04", *end); err != nil {
			vErr.add("end_time", "end_time must be HH:MM")
		}
	}
	return vErr
}

func summarizeRehearsalInput(input RehearsalInput) string {
	title := ""
	if input.Title != nil {
		title = *input.Title
	}
	return fmt.Sprintf("Date: %s, Time: %s-%s, Title: %s",
		input.Date.Format(dayLayout), derefOr(input.StartTime, ""), derefOr(input.EndTime, ""), title)
}

func summarizeRehearsal(rehearsal Rehearsal) string {
	return fmt.Sprintf("Date: %s, Time: %s-%s, Title: %s",
		rehearsal.Date.Format(dayLayout), derefOr(rehearsal.StartTime, ""), derefOr(rehearsal.EndTime, ""), derefOr(rehearsal.Title, ""))
}

func derefOr(value *string, fallback string) string {
	if value != nil {
		return *value
	}
	return fallback
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
