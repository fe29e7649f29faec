// Package advisors resolves a user identity to the free-text advisor alias
// written on incentive rows. The alias column is not a foreign key, so every
// consumer goes through this resolver instead of matching strings ad hoc.
package advisors

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
)

// ErrUnmapped marks a user with no alias anywhere. Callers decide whether
// that is fatal (list scoping) or not (admins see everything).
var ErrUnmapped = errors.New("user has no advisor alias")

// Source names where the winning alias came from.
type Source string

const (
	SourceProfile        Source = "profile_alias"
	SourceMappingByUser  Source = "mapping_by_user"
	SourceMappingByEmail Source = "mapping_by_email"
)

// Resolution is the outcome of an alias lookup.
type Resolution struct {
	Alias  string `json:"alias"`
	Source Source `json:"source"`
}

// Repository is the persistence surface the resolver needs.
type Repository interface {
	ProfileAlias(ctx context.Context, userID uuid.UUID) (string, error)
	MappingAliasByUser(ctx context.Context, userID uuid.UUID) (string, error)
	MappingAliasByEmail(ctx context.Context, email string) (string, error)
}

// Resolver resolves user identities to advisor aliases.
type Resolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, email string) (*Resolution, error)
}

type resolver struct {
	repo Repository
}

// NewResolver wires the alias resolver.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "advisors repository required")
	}
	return &resolver{repo: repo}, nil
}

// Resolve checks, in order, the profile alias, the active mapping by user id
// and the active mapping by email. First hit wins.
func (r *resolver) Resolve(ctx context.Context, userID uuid.UUID, email string) (*Resolution, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	alias, err := r.repo.ProfileAlias(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile alias")
	}
	if alias = strings.TrimSpace(alias); alias != "" {
		return &Resolution{Alias: alias, Source: SourceProfile}, nil
	}

	alias, err = r.repo.MappingAliasByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advisor mapping")
	}
	if alias = strings.TrimSpace(alias); alias != "" {
		return &Resolution{Alias: alias, Source: SourceMappingByUser}, nil
	}

	if email = strings.TrimSpace(email); email != "" {
		alias, err = r.repo.MappingAliasByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advisor mapping by email")
		}
		if alias = strings.TrimSpace(alias); alias != "" {
			return &Resolution{Alias: alias, Source: SourceMappingByEmail}, nil
		}
	}

	return nil, ErrUnmapped
}
