package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// digestWindowDays spans the five week report window, end inclusive.
const digestWindowDays = 35

// DigestService composes the weekly attendance report and hands it to the
// mail collaborator.
type DigestService struct {
	rehearsals RehearsalDirectory
	responses  ResponseRepository
	users      UserDirectory
	mailer     DigestMailer
	now        func() time.Time
	logger     *slog.Logger
}

// NewDigestService wires dependencies for the digest service.
func NewDigestService(rehearsals RehearsalDirectory, responses ResponseRepository, users UserDirectory, mailer DigestMailer, now func() time.Time, logger *slog.Logger) *DigestService {
	if now == nil {
		now = time.Now
	}
	return &DigestService{
		rehearsals: rehearsals,
		responses:  responses,
		users:      users,
		mailer:     mailer,
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *DigestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DigestService", operation, attrs...)
}

// Trigger runs the digest on demand for administrators.
func (s *DigestService) Trigger(ctx context.Context, principal Principal) error {
	if s == nil {
		return fmt.Errorf("DigestService is nil")
	}
	if !principal.isGlobalAdmin() {
		return ErrUnauthorized
	}
	return s.Run(ctx)
}

// Run composes the five week report and sends it to every user with an email
// address. An empty window produces no email and no send attempt.
func (s *DigestService) Run(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("DigestService is nil")
	}
	if s.rehearsals == nil || s.responses == nil || s.users == nil {
		return fmt.Errorf("digest dependencies not configured")
	}

	logger := s.loggerWith(ctx, "Run")

	entries, err := s.Compose(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.InfoContext(ctx, "digest window empty, nothing sent")
		return nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return mapRepoError(err)
	}
	var recipients []string
	for _, user := range users {
		if user.Email != "" {
			recipients = append(recipients, user.Email)
		}
	}
	if len(recipients) == 0 {
		logger.InfoContext(ctx, "no recipients with email, nothing sent")
		return nil
	}

	if s.mailer == nil {
		return fmt.Errorf("digest mailer not configured")
	}
	if err := s.mailer.SendDigest(ctx, recipients, entries); err != nil {
		return err
	}

	logger.InfoContext(ctx, "digest sent", "rehearsals", len(entries), "recipients", len(recipients))
	return nil
}

// Compose builds the report rows for today through today+35 days, date
// ascending, with each rehearsal's decliners.
func (s *DigestService) Compose(ctx context.Context) ([]DigestEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("DigestService is nil")
	}

	from := startOfDay(s.now())
	to := from.AddDate(0, 0, digestWindowDays)
	rehearsals, err := s.rehearsals.ListRehearsals(ctx, RehearsalFilter{From: &from, To: &to})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(rehearsals) == 0 {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	usersByID := make(map[string]User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	entries := make([]DigestEntry, 0, len(rehearsals))
	for _, rehearsal := range rehearsals {
		responses, err := s.responses.ListResponses(ctx, &rehearsal.ID)
		if err != nil {
			return nil, mapRepoError(err)
		}

		var decliners []DigestDecliner
		for _, response := range responses {
			if response.Attending {
				continue
			}
			user, ok := usersByID[response.UserID]
			if !ok {
				continue
			}
			decliners = append(decliners, DigestDecliner{
				Name:    user.DisplayName(),
				Comment: derefOr(response.Comment, ""),
			})
		}

		entries = append(entries, DigestEntry{
			Date:      rehearsal.Date,
			StartTime: rehearsal.StartTime,
			EndTime:   rehearsal.EndTime,
			Title:     rehearsal.Title,
			Decliners: decliners,
		})
	}
	return entries, nil
}
