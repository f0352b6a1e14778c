package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/example/band-rehearsal/internal/application"
	"github.com/example/band-rehearsal/internal/config"
	httptransport "github.com/example/band-rehearsal/internal/http"
	"github.com/example/band-rehearsal/internal/logging"
	"github.com/example/band-rehearsal/internal/mail"
	"github.com/example/band-rehearsal/internal/persistence"
	"github.com/example/band-rehearsal/internal/persistence/sqlite"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		AppURL:   cfg.AppURL,
	}, logger)

	userRepo := newUserRepositoryAdapter(storage)
	credentialStore := newCredentialStoreAdapter(storage)
	rehearsalRepo := newRehearsalRepositoryAdapter(storage)
	responseRepo := newResponseRepositoryAdapter(storage)
	bandRepo := newBandRepositoryAdapter(storage)
	invitationRepo := newInvitationRepositoryAdapter(storage)
	logRecorder := newLogRecorderAdapter(storage)

	userService := application.NewUserService(userRepo, idGenerator, now, logger)
	authService := application.NewAuthService(credentialStore, []byte(cfg.JWTSecret), nil, now, time.Duration(cfg.TokenTTLHours)*time.Hour, logger)
	rehearsalService := application.NewRehearsalService(rehearsalRepo, userRepo, bandRepo, logRecorder, idGenerator, now, logger)
	responseService := application.NewResponseService(responseRepo, userRepo, rehearsalRepo, bandRepo, logRecorder, idGenerator, now, logger)
	bandService := application.NewBandService(bandRepo, userRepo, idGenerator, now, logger)
	invitationService := application.NewInvitationService(invitationRepo, mailer, idGenerator, now, logger)
	digestService := application.NewDigestService(rehearsalRepo, responseRepo, userRepo, mailer, now, logger)

	if cfg.SeedAdminPassword != "" {
		if err := userService.EnsureSeedAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.Error("failed to ensure seed administrator", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("seed administrator disabled, BANDAPP_SEED_ADMIN_PASSWORD is unset")
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rehearsals:   httptransport.NewRehearsalHandler(rehearsalService, logger),
		Responses:    httptransport.NewResponseHandler(responseService, logger),
		Bands:        httptransport.NewBandHandler(bandService, logger),
		Invitations:  httptransport.NewInvitationHandler(invitationService, logger),
		Digest:       httptransport.NewDigestHandler(digestService, logger),
		Authenticate: httptransport.RequireToken(authService, logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := corsMiddleware.Handler(router)

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if cfg.MailEnabled() {
		if _, err := scheduler.AddFunc(cfg.DigestCron, func() {
			if err := digestService.Run(context.Background()); err != nil {
				logger.Error("scheduled digest delivery failed", "error", err)
			}
		}); err != nil {
			logger.Error("failed to schedule digest delivery", "error", err, "schedule", cfg.DigestCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("digest delivery scheduled", "schedule", cfg.DigestCron)
	} else {
		logger.Warn("email delivery disabled, BANDAPP_SMTP_HOST is unset")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("rehearsal API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash *string) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	hash := current.PasswordHash
	if passwordHash != nil {
		hash = *passwordHash
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, hash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type rehearsalRepositoryAdapter struct {
	repo persistence.RehearsalRepository
}

func newRehearsalRepositoryAdapter(repo persistence.RehearsalRepository) *rehearsalRepositoryAdapter {
	return &rehearsalRepositoryAdapter{repo: repo}
}

func (a *rehearsalRepositoryAdapter) CreateRehearsals(ctx context.Context, seeds []application.RehearsalSeed) ([]application.Rehearsal, error) {
	if err := a.repo.CreateRehearsals(ctx, toPersistenceSeeds(seeds)); err != nil {
		return nil, err
	}
	created := make([]application.Rehearsal, 0, len(seeds))
	for _, seed := range seeds {
		created = append(created, seed.Rehearsal)
	}
	return created, nil
}

func (a *rehearsalRepositoryAdapter) GetRehearsal(ctx context.Context, id string) (application.Rehearsal, error) {
	stored, err := a.repo.GetRehearsal(ctx, id)
	if err != nil {
		return application.Rehearsal{}, err
	}
	return toApplicationRehearsal(stored), nil
}

func (a *rehearsalRepositoryAdapter) ListRehearsals(ctx context.Context, filter application.RehearsalFilter) ([]application.Rehearsal, error) {
	models, err := a.repo.ListRehearsals(ctx, persistence.RehearsalFilter{
		FromDate:    filter.From,
		ToDate:      filter.To,
		BandID:      filter.BandID,
		RecurringID: filter.RecurringID,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rehearsals := make([]application.Rehearsal, 0, len(models))
	for _, model := range models {
		rehearsals = append(rehearsals, toApplicationRehearsal(model))
	}
	return rehearsals, nil
}

func (a *rehearsalRepositoryAdapter) ExistsOnDate(ctx context.Context, date time.Time, bandID *string) (bool, error) {
	return a.repo.ExistsOnDate(ctx, date, bandID)
}

func (a *rehearsalRepositoryAdapter) UpdateRehearsals(ctx context.Context, rehearsals []application.Rehearsal) error {
	models := make([]persistence.Rehearsal, 0, len(rehearsals))
	for _, rehearsal := range rehearsals {
		models = append(models, toPersistenceRehearsal(rehearsal))
	}
	return a.repo.UpdateRehearsals(ctx, models)
}

func (a *rehearsalRepositoryAdapter) DeleteRehearsal(ctx context.Context, id string) error {
	return a.repo.DeleteRehearsal(ctx, id)
}

func (a *rehearsalRepositoryAdapter) DeleteRehearsalSeries(ctx context.Context, recurringID string) error {
	return a.repo.DeleteRehearsalSeries(ctx, recurringID)
}

func (a *rehearsalRepositoryAdapter) ApplyRollover(ctx context.Context, deleteIDs []string, seed *application.RehearsalSeed) error {
	var persistenceSeed *persistence.RehearsalSeed
	if seed != nil {
		converted := toPersistenceSeed(*seed)
		persistenceSeed = &converted
	}
	return a.repo.ApplyRollover(ctx, deleteIDs, persistenceSeed)
}

type responseRepositoryAdapter struct {
	repo persistence.ResponseRepository
}

func newResponseRepositoryAdapter(repo persistence.ResponseRepository) *responseRepositoryAdapter {
	return &responseRepositoryAdapter{repo: repo}
}

func (a *responseRepositoryAdapter) CreateResponse(ctx context.Context, response application.Response) (application.Response, error) {
	if err := a.repo.CreateResponse(ctx, toPersistenceResponse(response)); err != nil {
		return application.Response{}, err
	}
	stored, err := a.repo.GetResponse(ctx, response.ID)
	if err != nil {
		return application.Response{}, err
	}
	return toApplicationResponse(stored), nil
}

func (a *responseRepositoryAdapter) GetResponse(ctx context.Context, id string) (application.Response, error) {
	stored, err := a.repo.GetResponse(ctx, id)
	if err != nil {
		return application.Response{}, err
	}
	return toApplicationResponse(stored), nil
}

func (a *responseRepositoryAdapter) GetResponseForPair(ctx context.Context, userID, rehearsalID string) (application.Response, error) {
	stored, err := a.repo.GetResponseForPair(ctx, userID, rehearsalID)
	if err != nil {
		return application.Response{}, err
	}
	return toApplicationResponse(stored), nil
}

func (a *responseRepositoryAdapter) ListResponses(ctx context.Context, rehearsalID *string) ([]application.Response, error) {
	models, err := a.repo.ListResponses(ctx, persistence.ResponseFilter{RehearsalID: rehearsalID})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	responses := make([]application.Response, 0, len(models))
	for _, model := range models {
		responses = append(responses, toApplicationResponse(model))
	}
	return responses, nil
}

func (a *responseRepositoryAdapter) UpdateResponse(ctx context.Context, response application.Response) (application.Response, error) {
	if err := a.repo.UpdateResponse(ctx, toPersistenceResponse(response)); err != nil {
		return application.Response{}, err
	}
	stored, err := a.repo.GetResponse(ctx, response.ID)
	if err != nil {
		return application.Response{}, err
	}
	return toApplicationResponse(stored), nil
}

type bandRepositoryAdapter struct {
	repo persistence.BandRepository
}

func newBandRepositoryAdapter(repo persistence.BandRepository) *bandRepositoryAdapter {
	return &bandRepositoryAdapter{repo: repo}
}

func (a *bandRepositoryAdapter) CreateBand(ctx context.Context, band application.Band, creatorMembership application.BandMembership) (application.Band, error) {
	if err := a.repo.CreateBand(ctx, toPersistenceBand(band), toPersistenceMembership(creatorMembership)); err != nil {
		return application.Band{}, err
	}
	stored, err := a.repo.GetBand(ctx, band.ID)
	if err != nil {
		return application.Band{}, err
	}
	return toApplicationBand(stored), nil
}

func (a *bandRepositoryAdapter) GetBand(ctx context.Context, id string) (application.Band, error) {
	stored, err := a.repo.GetBand(ctx, id)
	if err != nil {
		return application.Band{}, err
	}
	return toApplicationBand(stored), nil
}

func (a *bandRepositoryAdapter) ListBands(ctx context.Context) ([]application.Band, error) {
	models, err := a.repo.ListBands(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationBands(models), nil
}

func (a *bandRepositoryAdapter) ListBandsForUser(ctx context.Context, userID string) ([]application.Band, error) {
	models, err := a.repo.ListBandsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationBands(models), nil
}

func (a *bandRepositoryAdapter) CreateMembership(ctx context.Context, membership application.BandMembership) (application.BandMembership, error) {
	if err := a.repo.CreateMembership(ctx, toPersistenceMembership(membership)); err != nil {
		return application.BandMembership{}, err
	}
	stored, err := a.repo.GetMembership(ctx, membership.UserID, membership.BandID)
	if err != nil {
		return application.BandMembership{}, err
	}
	return toApplicationMembership(stored), nil
}

func (a *bandRepositoryAdapter) GetMembership(ctx context.Context, userID, bandID string) (application.BandMembership, error) {
	stored, err := a.repo.GetMembership(ctx, userID, bandID)
	if err != nil {
		return application.BandMembership{}, err
	}
	return toApplicationMembership(stored), nil
}

func (a *bandRepositoryAdapter) ListMemberships(ctx context.Context, bandID string) ([]application.BandMembership, error) {
	models, err := a.repo.ListMemberships(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	memberships := make([]application.BandMembership, 0, len(models))
	for _, model := range models {
		memberships = append(memberships, toApplicationMembership(model))
	}
	return memberships, nil
}

type invitationRepositoryAdapter struct {
	repo  persistence.InvitationRepository
	users persistence.UserRepository
}

func newInvitationRepositoryAdapter(storage *sqlite.Store) *invitationRepositoryAdapter {
	return &invitationRepositoryAdapter{repo: storage, users: storage}
}

func (a *invitationRepositoryAdapter) CreateInvitation(ctx context.Context, invitation application.Invitation) (application.Invitation, error) {
	if err := a.repo.CreateInvitation(ctx, toPersistenceInvitation(invitation)); err != nil {
		return application.Invitation{}, err
	}
	stored, err := a.repo.GetInvitationByToken(ctx, invitation.Token)
	if err != nil {
		return application.Invitation{}, err
	}
	return toApplicationInvitation(stored), nil
}

func (a *invitationRepositoryAdapter) GetInvitationByToken(ctx context.Context, token string) (application.Invitation, error) {
	stored, err := a.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return application.Invitation{}, err
	}
	return toApplicationInvitation(stored), nil
}

func (a *invitationRepositoryAdapter) ListInvitations(ctx context.Context) ([]application.Invitation, error) {
	models, err := a.repo.ListInvitations(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	invitations := make([]application.Invitation, 0, len(models))
	for _, model := range models {
		invitations = append(invitations, toApplicationInvitation(model))
	}
	return invitations, nil
}

func (a *invitationRepositoryAdapter) DeleteInvitation(ctx context.Context, id string) error {
	return a.repo.DeleteInvitation(ctx, id)
}

func (a *invitationRepositoryAdapter) HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error) {
	return a.repo.HasPendingInvitation(ctx, email, now)
}

func (a *invitationRepositoryAdapter) AcceptInvitation(ctx context.Context, invitationID string, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.AcceptInvitation(ctx, invitationID, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.users.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type logRecorderAdapter struct {
	repo persistence.LogRepository
}

func newLogRecorderAdapter(repo persistence.LogRepository) *logRecorderAdapter {
	return &logRecorderAdapter{repo: repo}
}

func (a *logRecorderAdapter) AppendLogEntry(ctx context.Context, entry application.LogEntry) error {
	return a.repo.AppendLogEntry(ctx, persistence.LogEntry{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		Timestamp:  entry.Timestamp,
	})
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsAdmin:      user.IsAdmin,
		IsSuperAdmin: user.IsSuperAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: passwordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsAdmin:      user.IsAdmin,
		IsSuperAdmin: user.IsSuperAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationRehearsal(rehearsal persistence.Rehearsal) application.Rehearsal {
	return application.Rehearsal{
		ID:          rehearsal.ID,
		Date:        rehearsal.Date,
		StartTime:   rehearsal.StartTime,
		EndTime:     rehearsal.EndTime,
		Title:       rehearsal.Title,
		RecurringID: rehearsal.RecurringID,
		BandID:      rehearsal.BandID,
		CreatedAt:   rehearsal.CreatedAt,
		UpdatedAt:   rehearsal.UpdatedAt,
	}
}

func toPersistenceRehearsal(rehearsal application.Rehearsal) persistence.Rehearsal {
	return persistence.Rehearsal{
		ID:          rehearsal.ID,
		Date:        rehearsal.Date,
		StartTime:   rehearsal.StartTime,
		EndTime:     rehearsal.EndTime,
		Title:       rehearsal.Title,
		RecurringID: rehearsal.RecurringID,
		BandID:      rehearsal.BandID,
		CreatedAt:   rehearsal.CreatedAt,
		UpdatedAt:   rehearsal.UpdatedAt,
	}
}

func toPersistenceSeed(seed application.RehearsalSeed) persistence.RehearsalSeed {
	responses := make([]persistence.Response, 0, len(seed.Responses))
	for _, response := range seed.Responses {
		responses = append(responses, toPersistenceResponse(response))
	}
	return persistence.RehearsalSeed{
		Rehearsal: toPersistenceRehearsal(seed.Rehearsal),
		Responses: responses,
	}
}

func toPersistenceSeeds(seeds []application.RehearsalSeed) []persistence.RehearsalSeed {
	out := make([]persistence.RehearsalSeed, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, toPersistenceSeed(seed))
	}
	return out
}

func toApplicationResponse(response persistence.Response) application.Response {
	return application.Response{
		ID:          response.ID,
		UserID:      response.UserID,
		RehearsalID: response.RehearsalID,
		Attending:   response.Attending,
		Comment:     response.Comment,
		UpdatedAt:   response.UpdatedAt,
	}
}

func toPersistenceResponse(response application.Response) persistence.Response {
	return persistence.Response{
		ID:          response.ID,
		UserID:      response.UserID,
		RehearsalID: response.RehearsalID,
		Attending:   response.Attending,
		Comment:     response.Comment,
		UpdatedAt:   response.UpdatedAt,
	}
}

func toApplicationBand(band persistence.Band) application.Band {
	return application.Band{
		ID:          band.ID,
		Name:        band.Name,
		Description: band.Description,
		CreatedBy:   band.CreatedBy,
		CreatedAt:   band.CreatedAt,
		UpdatedAt:   band.UpdatedAt,
	}
}

func toApplicationBands(bands []persistence.Band) []application.Band {
	if len(bands) == 0 {
		return nil
	}
	out := make([]application.Band, 0, len(bands))
	for _, band := range bands {
		out = append(out, toApplicationBand(band))
	}
	return out
}

func toPersistenceBand(band application.Band) persistence.Band {
	return persistence.Band{
		ID:          band.ID,
		Name:        band.Name,
		Description: band.Description,
		CreatedBy:   band.CreatedBy,
		CreatedAt:   band.CreatedAt,
		UpdatedAt:   band.UpdatedAt,
	}
}

func toApplicationMembership(membership persistence.BandMembership) application.BandMembership {
	return application.BandMembership{
		ID:        membership.ID,
		UserID:    membership.UserID,
		BandID:    membership.BandID,
		Role:      membership.Role,
		CreatedAt: membership.CreatedAt,
	}
}

func toPersistenceMembership(membership application.BandMembership) persistence.BandMembership {
	return persistence.BandMembership{
		ID:        membership.ID,
		UserID:    membership.UserID,
		BandID:    membership.BandID,
		Role:      membership.Role,
		CreatedAt: membership.CreatedAt,
	}
}

func toApplicationInvitation(invitation persistence.Invitation) application.Invitation {
	return application.Invitation{
		ID:         invitation.ID,
		Email:      invitation.Email,
		Token:      invitation.Token,
		CreatedBy:  invitation.CreatedBy,
		CreatedAt:  invitation.CreatedAt,
		ExpiresAt:  invitation.ExpiresAt,
		IsAccepted: invitation.IsAccepted,
	}
}

func toPersistenceInvitation(invitation application.Invitation) persistence.Invitation {
	return persistence.Invitation{
		ID:         invitation.ID,
		Email:      invitation.Email,
		Token:      invitation.Token,
		CreatedBy:  invitation.CreatedBy,
		CreatedAt:  invitation.CreatedAt,
		ExpiresAt:  invitation.ExpiresAt,
		IsAccepted: invitation.IsAccepted,
	}
}
