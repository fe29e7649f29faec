package advisors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	profileAlias   string
	profileErr     error
	byUserAlias    string
	byUserErr      error
	byEmailAlias   string
	byEmailErr     error
	byEmailQueried string
}

func (f *fakeRepo) ProfileAlias(_ context.Context, _ uuid.UUID) (string, error) {
	return f.profileAlias, f.profileErr
}

func (f *fakeRepo) MappingAliasByUser(_ context.Context, _ uuid.UUID) (string, error) {
	return f.byUserAlias, f.byUserErr
}

func (f *fakeRepo) MappingAliasByEmail(_ context.Context, email string) (string, error) {
	f.byEmailQueried = email
	return f.byEmailAlias, f.byEmailErr
}

func TestResolveProfileAliasWins(t *testing.T) {
	repo := &fakeRepo{profileAlias: "JordiV", byUserAlias: "OtherAlias"}
	r, err := NewResolver(repo)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	res, err := r.Resolve(context.Background(), uuid.New(), "jordi@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Alias != "JordiV" || res.Source != SourceProfile {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestResolveFallsBackToUserMapping(t *testing.T) {
	repo := &fakeRepo{profileErr: gorm.ErrRecordNotFound, byUserAlias: "SalesDeskA"}
	r, _ := NewResolver(repo)

	res, err := r.Resolve(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Alias != "SalesDeskA" || res.Source != SourceMappingByUser {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestResolveFallsBackToEmailMapping(t *testing.T) {
	repo := &fakeRepo{
		profileAlias: "  ",
		byUserErr:    gorm.ErrRecordNotFound,
		byEmailAlias: "SalesDeskB",
	}
	r, _ := NewResolver(repo)

	res, err := r.Resolve(context.Background(), uuid.New(), " jordi@example.com ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Alias != "SalesDeskB" || res.Source != SourceMappingByEmail {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if repo.byEmailQueried != "jordi@example.com" {
		t.Fatalf("email should be trimmed before lookup, got %q", repo.byEmailQueried)
	}
}

func TestResolveUnmapped(t *testing.T) {
	repo := &fakeRepo{
		profileErr: gorm.ErrRecordNotFound,
		byUserErr:  gorm.ErrRecordNotFound,
		byEmailErr: gorm.ErrRecordNotFound,
	}
	r, _ := NewResolver(repo)

	_, err := r.Resolve(context.Background(), uuid.New(), "nobody@example.com")
	if !errors.Is(err, ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
}

func TestResolveSurfacesRepoErrors(t *testing.T) {
	repo := &fakeRepo{profileErr: errors.New("db down")}
	r, _ := NewResolver(repo)

	if _, err := r.Resolve(context.Background(), uuid.New(), ""); err == nil {
		t.Fatalf("expected dependency error")
	}
}
