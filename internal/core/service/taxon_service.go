package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const (
	maxSlugLength      = 50
	maxTaxonNameLength = 256
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// TaxonService manages categories or genres, depending on its kind.
type TaxonService struct {
	kind   domain.TaxonKind
	repo   ports.TaxonRepository
	titles ports.TitleRepository
	logger zerolog.Logger
}

func NewTaxonService(kind domain.TaxonKind, repo ports.TaxonRepository, titles ports.TitleRepository, logger zerolog.Logger) *TaxonService {
	return &TaxonService{
		kind:   kind,
		repo:   repo,
		titles: titles,
		logger: logger.With().Str("kind", string(kind)).Logger(),
	}
}

func (s *TaxonService) Kind() domain.TaxonKind { return s.kind }

func (s *TaxonService) List(ctx context.Context, params ports.ListParams) (*ports.TaxonList, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return &ports.TaxonList{Items: items, PageInfo: ports.NewPageInfo(total, params)}, nil
}

func (s *TaxonService) Create(ctx context.Context, name, slug string) (*domain.Taxon, error) {
	name = strings.TrimSpace(name)

	verr := &domain.ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "this field is required")
	case len([]rune(name)) > maxTaxonNameLength:
		verr.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxTaxonNameLength))
	}
	if msg := validateSlug(slug); msg != "" {
		verr.Add("slug", msg)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	t := &domain.Taxon{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	s.logger.Info().Str("slug", slug).Msg("taxon created")
	return t, nil
}

// Delete removes the taxon and detaches it from every title.
func (s *TaxonService) Delete(ctx context.Context, slug string) error {
	if _, err := s.repo.FindBySlug(ctx, slug); err != nil {
		return err
	}

	var err error
	switch s.kind {
	case domain.KindCategory:
		err = s.titles.ClearCategory(ctx, slug)
	case domain.KindGenre:
		err = s.titles.RemoveGenre(ctx, slug)
	}
	if err != nil {
		return fmt.Errorf("detach %s from titles: %w", s.kind, err)
	}

	if err := s.repo.Delete(ctx, slug); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	s.logger.Info().Str("slug", slug).Msg("taxon deleted")
	return nil
}

func validateSlug(slug string) string {
	switch {
	case slug == "":
		return "this field is required"
	case len(slug) > maxSlugLength:
		return fmt.Sprintf("ensure this field has no more than %d characters", maxSlugLength)
	case !slugPattern.MatchString(slug):
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	}
	return ""
}
