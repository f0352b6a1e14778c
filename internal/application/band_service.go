package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// BandService manages tenant bands and their memberships.
type BandService struct {
	bands       BandRepository
	users       UserDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBandService wires dependencies for the band service.
func NewBandService(bands BandRepository, users UserDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BandService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BandService{
		bands:       bands,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BandService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BandService", operation, attrs...)
}

// CreateBand creates a band and enrolls the creator as its admin in one
// transaction. Any authenticated user may create a band.
func (s *BandService) CreateBand(ctx context.Context, params CreateBandParams) (Band, error) {
	if s == nil {
		return Band{}, fmt.Errorf("BandService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return Band{}, ErrUnauthorized
	}
	if s.bands == nil {
		return Band{}, fmt.Errorf("band repository not configured")
	}

	name := strings.TrimSpace(params.Input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Band{}, vErr
	}

	now := s.now()
	band := Band{
		ID:          s.idGenerator(),
		Name:        name,
		Description: params.Input.Description,
		CreatedBy:   params.Principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	membership := BandMembership{
		ID:        s.idGenerator(),
		UserID:    params.Principal.UserID,
		BandID:    band.ID,
		Role:      RoleAdmin,
		CreatedAt: now,
	}

	persisted, err := s.bands.CreateBand(ctx, band, membership)
	if err != nil {
		return Band{}, mapRepoError(err)
	}

	s.loggerWith(ctx, "CreateBand").InfoContext(ctx, "band created", "band_id", persisted.ID)
	return persisted, nil
}

// GetBand returns one band for its members or a super-admin.
func (s *BandService) GetBand(ctx context.Context, principal Principal, bandID string) (Band, error) {
	if s == nil {
		return Band{}, fmt.Errorf("BandService is nil")
	}
	if !principal.isAuthenticated() {
		return Band{}, ErrUnauthorized
	}
	if s.bands == nil {
		return Band{}, fmt.Errorf("band repository not configured")
	}

	band, err := s.bands.GetBand(ctx, bandID)
	if err != nil {
		return Band{}, mapRepoError(err)
	}

	if !principal.IsSuperAdmin {
		if _, err := s.bands.GetMembership(ctx, principal.UserID, bandID); err != nil {
			if isNotFoundError(err) {
				return Band{}, ErrUnauthorized
			}
			return Band{}, mapRepoError(err)
		}
	}
	return band, nil
}

// ListBands returns the caller's bands; a super-admin sees every band.
func (s *BandService) ListBands(ctx context.Context, principal Principal) ([]Band, error) {
	if s == nil {
		return nil, fmt.Errorf("BandService is nil")
	}
	if !principal.isAuthenticated() {
		return nil, ErrUnauthorized
	}
	if s.bands == nil {
		return nil, nil
	}

	var (
		bands []Band
		err   error
	)
	if principal.IsSuperAdmin {
		bands, err = s.bands.ListBands(ctx)
	} else {
		bands, err = s.bands.ListBandsForUser(ctx, principal.UserID)
	}
	if err != nil {
		return nil, mapRepoError(err)
	}
	return bands, nil
}

// AddMember enrolls a user in a band. Allowed for band admins and
// super-admins; a duplicate membership is a conflict.
func (s *BandService) AddMember(ctx context.Context, params AddBandMemberParams) (BandMembership, error) {
	if s == nil {
		return BandMembership{}, fmt.Errorf("BandService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return BandMembership{}, ErrUnauthorized
	}
	if s.bands == nil {
		return BandMembership{}, fmt.Errorf("band repository not configured")
	}

	input := params.Input
	vErr := &ValidationError{}
	if input.UserID == "" {
		vErr.add("user_id", "user_id is required")
	}
	role := input.Role
	if role == "" {
		role = RoleMember
	}
	if role != RoleMember && role != RoleAdmin {
		vErr.add("role", "role must be member or admin")
	}
	if vErr.HasErrors() {
		return BandMembership{}, vErr
	}

	if _, err := s.bands.GetBand(ctx, params.BandID); err != nil {
		return BandMembership{}, mapRepoError(err)
	}

	if !params.Principal.IsSuperAdmin {
		membership, err := s.bands.GetMembership(ctx, params.Principal.UserID, params.BandID)
		if err != nil {
			if isNotFoundError(err) {
				return BandMembership{}, ErrUnauthorized
			}
			return BandMembership{}, mapRepoError(err)
		}
		if membership.Role != RoleAdmin {
			return BandMembership{}, ErrUnauthorized
		}
	}

	if s.users != nil {
		if _, err := s.users.GetUser(ctx, input.UserID); err != nil {
			return BandMembership{}, mapRepoError(err)
		}
	}

	membership := BandMembership{
		ID:        s.idGenerator(),
		UserID:    input.UserID,
		BandID:    params.BandID,
		Role:      role,
		CreatedAt: s.now(),
	}
	persisted, err := s.bands.CreateMembership(ctx, membership)
	if err != nil {
		return BandMembership{}, mapRepoError(err)
	}
	return persisted, nil
}

// ListMembers returns a band's memberships for its members or a super-admin.
func (s *BandService) ListMembers(ctx context.Context, principal Principal, bandID string) ([]BandMembership, error) {
	if s == nil {
		return nil, fmt.Errorf("BandService is nil")
	}
	if !principal.isAuthenticated() {
		return nil, ErrUnauthorized
	}
	if s.bands == nil {
		return nil, nil
	}

	if !principal.IsSuperAdmin {
		if _, err := s.bands.GetMembership(ctx, principal.UserID, bandID); err != nil {
			if isNotFoundError(err) {
				return nil, ErrUnauthorized
			}
			return nil, mapRepoError(err)
		}
	}

	memberships, err := s.bands.ListMemberships(ctx, bandID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return memberships, nil
}
