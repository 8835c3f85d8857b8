package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const maxTitleNameLength = 256

type TitleService struct {
	titles     ports.TitleRepository
	categories ports.TaxonRepository
	genres     ports.TaxonRepository
	reviews    ports.ReviewRepository
	comments   ports.CommentRepository
	ids        ports.IDGenerator
	logger     zerolog.Logger
	now        func() time.Time
}

func NewTitleService(
	titles ports.TitleRepository,
	categories ports.TaxonRepository,
	genres ports.TaxonRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ids ports.IDGenerator,
	logger zerolog.Logger,
) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		reviews:    reviews,
		comments:   comments,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *TitleService) List(ctx context.Context, filter domain.TitleFilter, params ports.ListParams) (*ports.TitleList, error) {
	params = params.Normalize()
	items, total, err := s.titles.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	details, err := s.describe(ctx, items)
	if err != nil {
		return nil, err
	}
	return &ports.TitleList{Items: details, PageInfo: ports.NewPageInfo(total, params)}, nil
}

func (s *TitleService) Get(ctx context.Context, id string) (*ports.TitleDetail, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.describeOne(ctx, t)
}

func (s *TitleService) Create(ctx context.Context, in ports.TitleInput) (*ports.TitleDetail, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.GenreSlugs = dedupe(in.GenreSlugs)

	verr := &domain.ValidationError{}
	s.validateName(verr, in.Name)
	s.validateYear(verr, in.Year)
	if err := s.validateRefs(ctx, verr, &in.CategorySlug, &in.GenreSlugs); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	t := &domain.Title{
		ID:           s.ids.NewID(),
		Name:         in.Name,
		Year:         in.Year,
		Description:  in.Description,
		CategorySlug: in.CategorySlug,
		GenreSlugs:   in.GenreSlugs,
		CreatedAt:    s.now().UTC(),
	}
	if t.GenreSlugs == nil {
		t.GenreSlugs = []string{}
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}

	s.logger.Info().Str("title_id", t.ID).Str("name", t.Name).Msg("title created")
	return s.describeOne(ctx, t)
}

func (s *TitleService) Update(ctx context.Context, id string, patch domain.TitlePatch) (*ports.TitleDetail, error) {
	if _, err := s.titles.FindByID(ctx, id); err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
		s.validateName(verr, trimmed)
	}
	if patch.Year != nil {
		s.validateYear(verr, *patch.Year)
	}
	if patch.GenreSlugs != nil {
		genres := dedupe(*patch.GenreSlugs)
		if genres == nil {
			genres = []string{}
		}
		patch.GenreSlugs = &genres
	}
	if err := s.validateRefs(ctx, verr, patch.CategorySlug, patch.GenreSlugs); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.titles.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	return s.describeOne(ctx, updated)
}

// Delete removes the title with its reviews and their comments.
func (s *TitleService) Delete(ctx context.Context, id string) error {
	if _, err := s.titles.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByTitle(ctx, id); err != nil {
		return fmt.Errorf("delete title comments: %w", err)
	}
	if err := s.reviews.DeleteByTitle(ctx, id); err != nil {
		return fmt.Errorf("delete title reviews: %w", err)
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	s.logger.Info().Str("title_id", id).Msg("title deleted")
	return nil
}

func (s *TitleService) validateName(verr *domain.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("name", "this field is required")
	case len([]rune(name)) > maxTitleNameLength:
		verr.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxTitleNameLength))
	}
}

func (s *TitleService) validateYear(verr *domain.ValidationError, year int) {
	current := s.now().Year()
	switch {
	case year <= 0:
		verr.Add("year", "this field is required")
	case year > current:
		verr.Add("year", fmt.Sprintf("year cannot be later than %d", current))
	}
}

// validateRefs records a validation message for every slug that names no
// existing taxon. Nil pointers are skipped; an empty category clears it.
func (s *TitleService) validateRefs(ctx context.Context, verr *domain.ValidationError, category *string, genres *[]string) error {
	if category != nil && *category != "" {
		_, err := s.categories.FindBySlug(ctx, *category)
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			verr.Add("category", fmt.Sprintf("object with slug %q does not exist", *category))
		case err != nil:
			return fmt.Errorf("resolve category: %w", err)
		}
	}

	if genres != nil && len(*genres) > 0 {
		found, err := s.genres.FindBySlugs(ctx, *genres)
		if err != nil {
			return fmt.Errorf("resolve genres: %w", err)
		}
		known := make(map[string]struct{}, len(found))
		for _, g := range found {
			known[g.Slug] = struct{}{}
		}
		for _, slug := range *genres {
			if _, ok := known[slug]; !ok {
				verr.Add("genre", fmt.Sprintf("object with slug %q does not exist", slug))
			}
		}
	}
	return nil
}

func (s *TitleService) describeOne(ctx context.Context, t *domain.Title) (*ports.TitleDetail, error) {
	details, err := s.describe(ctx, []*domain.Title{t})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// describe resolves references and ratings for a batch of titles with one
// lookup per collection.
func (s *TitleService) describe(ctx context.Context, titles []*domain.Title) ([]*ports.TitleDetail, error) {
	if len(titles) == 0 {
		return []*ports.TitleDetail{}, nil
	}

	var catSlugs, genreSlugs, ids []string
	for _, t := range titles {
		ids = append(ids, t.ID)
		if t.CategorySlug != "" {
			catSlugs = append(catSlugs, t.CategorySlug)
		}
		genreSlugs = append(genreSlugs, t.GenreSlugs...)
	}

	categories, err := s.lookup(ctx, s.categories, dedupe(catSlugs))
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	genres, err := s.lookup(ctx, s.genres, dedupe(genreSlugs))
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	averages, err := s.reviews.AverageScores(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("compute ratings: %w", err)
	}

	out := make([]*ports.TitleDetail, 0, len(titles))
	for _, t := range titles {
		d := &ports.TitleDetail{Title: t, Category: categories[t.CategorySlug], Genres: []*domain.Taxon{}}
		for _, slug := range t.GenreSlugs {
			if g, ok := genres[slug]; ok {
				d.Genres = append(d.Genres, g)
			}
		}
		if avg, ok := averages[t.ID]; ok {
			d.Rating = roundRating(avg)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *TitleService) lookup(ctx context.Context, repo ports.TaxonRepository, slugs []string) (map[string]*domain.Taxon, error) {
	out := make(map[string]*domain.Taxon, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}
	found, err := repo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	for _, t := range found {
		out[t.Slug] = t
	}
	return out, nil
}

func roundRating(avg float64) *int {
	r := int(math.Round(avg))
	return &r
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
