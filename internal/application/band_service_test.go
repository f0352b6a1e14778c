package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/band-rehearsal/internal/persistence"
)

type bandRepoStub struct {
	bands       map[string]Band
	memberships map[string]BandMembership
	err         error

	createdBand       *Band
	createdMembership *BandMembership
}

func (b *bandRepoStub) CreateBand(ctx context.Context, band Band, creatorMembership BandMembership) (Band, error) {
	if b.err != nil {
		return Band{}, b.err
	}
	b.createdBand = &band
	b.createdMembership = &creatorMembership
	return band, nil
}

func (b *bandRepoStub) GetBand(ctx context.Context, id string) (Band, error) {
	if b.err != nil {
		return Band{}, b.err
	}
	band, ok := b.bands[id]
	if !ok {
		return Band{}, ErrNotFound
	}
	return band, nil
}

func (b *bandRepoStub) ListBands(ctx context.Context) ([]Band, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]Band, 0, len(b.bands))
	for _, band := range b.bands {
		out = append(out, band)
	}
	return out, nil
}

func (b *bandRepoStub) ListBandsForUser(ctx context.Context, userID string) ([]Band, error) {
	if b.err != nil {
		return nil, b.err
	}
	var out []Band
	for _, membership := range b.memberships {
		if membership.UserID != userID {
			continue
		}
		if band, ok := b.bands[membership.BandID]; ok {
			out = append(out, band)
		}
	}
	return out, nil
}

func (b *bandRepoStub) CreateMembership(ctx context.Context, membership BandMembership) (BandMembership, error) {
	if b.err != nil {
		return BandMembership{}, b.err
	}
	key := membershipKey(membership.UserID, membership.BandID)
	if _, ok := b.memberships[key]; ok {
		return BandMembership{}, persistence.ErrDuplicate
	}
	if b.memberships == nil {
		b.memberships = make(map[string]BandMembership)
	}
	b.memberships[key] = membership
	return membership, nil
}

func (b *bandRepoStub) GetMembership(ctx context.Context, userID, bandID string) (BandMembership, error) {
	if b.err != nil {
		return BandMembership{}, b.err
	}
	membership, ok := b.memberships[membershipKey(userID, bandID)]
	if !ok {
		return BandMembership{}, ErrNotFound
	}
	return membership, nil
}

func (b *bandRepoStub) ListMemberships(ctx context.Context, bandID string) ([]BandMembership, error) {
	if b.err != nil {
		return nil, b.err
	}
	var out []BandMembership
	for _, membership := range b.memberships {
		if membership.BandID == bandID {
			out = append(out, membership)
		}
	}
	return out, nil
}

func newBandService(repo *bandRepoStub, users *userDirectoryStub) *BandService {
	return NewBandService(repo, users, sequenceIDs("band"), fixedClock("2025-01-01T12:00:00Z"), nil)
}

func TestBandService_CreateBand_EnrollsCreatorAsAdmin(t *testing.T) {
	t.Parallel()

	repo := &bandRepoStub{}
	svc := newBandService(repo, &userDirectoryStub{})

	band, err := svc.CreateBand(context.Background(), CreateBandParams{
		Principal: Principal{UserID: "user-1"},
		Input:     BandInput{Name: "Kvartetten"},
	})
	if err != nil {
		t.Fatalf("CreateBand returned error: %v", err)
	}
	if band.CreatedBy != "user-1" {
		t.Fatalf("expected creator user-1, got %q", band.CreatedBy)
	}
	if repo.createdMembership == nil {
		t.Fatal("expected a creator membership")
	}
	if repo.createdMembership.Role != RoleAdmin {
		t.Fatalf("expected creator enrolled as admin, got %q", repo.createdMembership.Role)
	}
	if repo.createdMembership.BandID != band.ID || repo.createdMembership.UserID != "user-1" {
		t.Fatalf("membership not bound to the new band: %+v", repo.createdMembership)
	}
}

func TestBandService_CreateBand_RequiresName(t *testing.T) {
	t.Parallel()

	svc := newBandService(&bandRepoStub{}, &userDirectoryStub{})
	_, err := svc.CreateBand(context.Background(), CreateBandParams{
		Principal: Principal{UserID: "user-1"},
		Input:     BandInput{Name: "   "},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBandService_AddMember_RequiresBandAdmin(t *testing.T) {
	t.Parallel()

	repo := &bandRepoStub{
		bands: map[string]Band{"band-a": {ID: "band-a"}},
		memberships: map[string]BandMembership{
			membershipKey("user-1", "band-a"): {UserID: "user-1", BandID: "band-a", Role: RoleMember},
		},
	}
	svc := newBandService(repo, &userDirectoryStub{users: []User{{ID: "user-2"}}})

	_, err := svc.AddMember(context.Background(), AddBandMemberParams{
		Principal: Principal{UserID: "user-1"},
		BandID:    "band-a",
		Input:     MembershipInput{UserID: "user-2"},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a plain member, got %v", err)
	}
}

func TestBandService_AddMember_DuplicateIsConflict(t *testing.T) {
	t.Parallel()

	repo := &bandRepoStub{
		bands: map[string]Band{"band-a": {ID: "band-a"}},
		memberships: map[string]BandMembership{
			membershipKey("user-1", "band-a"): {UserID: "user-1", BandID: "band-a", Role: RoleAdmin},
			membershipKey("user-2", "band-a"): {UserID: "user-2", BandID: "band-a", Role: RoleMember},
		},
	}
	svc := newBandService(repo, &userDirectoryStub{users: []User{{ID: "user-2"}}})

	_, err := svc.AddMember(context.Background(), AddBandMemberParams{
		Principal: Principal{UserID: "user-1"},
		BandID:    "band-a",
		Input:     MembershipInput{UserID: "user-2"},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate membership, got %v", err)
	}
}

func TestBandService_AddMember_SuperAdminMayEnroll(t *testing.T) {
	t.Parallel()

	repo := &bandRepoStub{bands: map[string]Band{"band-a": {ID: "band-a"}}}
	svc := newBandService(repo, &userDirectoryStub{users: []User{{ID: "user-2"}}})

	membership, err := svc.AddMember(context.Background(), AddBandMemberParams{
		Principal: Principal{UserID: "root-1", IsSuperAdmin: true},
		BandID:    "band-a",
		Input:     MembershipInput{UserID: "user-2", Role: RoleAdmin},
	})
	if err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}
	if membership.Role != RoleAdmin {
		t.Fatalf("expected requested role, got %q", membership.Role)
	}
}

func TestBandService_ListBands_ScopesToMemberships(t *testing.T) {
	t.Parallel()

	repo := &bandRepoStub{
		bands: map[string]Band{
			"band-a": {ID: "band-a", Name: "A"},
			"band-b": {ID: "band-b", Name: "B"},
		},
		memberships: map[string]BandMembership{
			membershipKey("user-1", "band-a"): {UserID: "user-1", BandID: "band-a", Role: RoleMember},
		},
	}
	svc := newBandService(repo, &userDirectoryStub{})

	bands, err := svc.ListBands(context.Background(), Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListBands returned error: %v", err)
	}
	if len(bands) != 1 || bands[0].ID != "band-a" {
		t.Fatalf("expected only band-a, got %v", bands)
	}

	all, err := svc.ListBands(context.Background(), Principal{UserID: "root-1", IsSuperAdmin: true})
	if err != nil {
		t.Fatalf("ListBands returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected super-admin to see every band, got %d", len(all))
	}
}
