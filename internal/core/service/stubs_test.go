package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type stubTaxonRepo struct {
	mu       sync.Mutex
	items    map[string]*domain.Taxon
	notFound error
}

func newStubTaxonRepo(notFound error) *stubTaxonRepo {
	return &stubTaxonRepo{items: make(map[string]*domain.Taxon), notFound: notFound}
}

func (r *stubTaxonRepo) Create(_ context.Context, t *domain.Taxon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.Slug]; ok {
		return domain.ErrSlugExists
	}
	clone := *t
	r.items[t.Slug] = &clone
	return nil
}

func (r *stubTaxonRepo) FindBySlug(_ context.Context, slug string) (*domain.Taxon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.items[slug]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, r.notFound
}

func (r *stubTaxonRepo) FindBySlugs(_ context.Context, slugs []string) ([]*domain.Taxon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Taxon
	for _, s := range slugs {
		if t, ok := r.items[s]; ok {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubTaxonRepo) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[slug]; !ok {
		return r.notFound
	}
	delete(r.items, slug)
	return nil
}

func (r *stubTaxonRepo) List(_ context.Context, _ ports.ListParams) ([]*domain.Taxon, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Taxon, 0, len(r.items))
	for _, t := range r.items {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, int64(len(out)), nil
}

type stubTitleRepo struct {
	mu     sync.Mutex
	titles map[string]*domain.Title
}

func newStubTitleRepo() *stubTitleRepo {
	return &stubTitleRepo{titles: make(map[string]*domain.Title)}
}

func cloneTitle(t *domain.Title) *domain.Title {
	clone := *t
	clone.GenreSlugs = append([]string{}, t.GenreSlugs...)
	return &clone
}

func (r *stubTitleRepo) Create(_ context.Context, t *domain.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles[t.ID] = cloneTitle(t)
	return nil
}

func (r *stubTitleRepo) FindByID(_ context.Context, id string) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.titles[id]; ok {
		return cloneTitle(t), nil
	}
	return nil, domain.ErrTitleNotFound
}

func (r *stubTitleRepo) Update(_ context.Context, id string, p domain.TitlePatch) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Year != nil {
		t.Year = *p.Year
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategorySlug != nil {
		t.CategorySlug = *p.CategorySlug
	}
	if p.GenreSlugs != nil {
		t.GenreSlugs = append([]string{}, (*p.GenreSlugs)...)
	}
	return cloneTitle(t), nil
}

func (r *stubTitleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return domain.ErrTitleNotFound
	}
	delete(r.titles, id)
	return nil
}

func (r *stubTitleRepo) List(_ context.Context, f domain.TitleFilter, _ ports.ListParams) ([]*domain.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Title
	for _, t := range r.titles {
		if f.CategorySlug != "" && t.CategorySlug != f.CategorySlug {
			continue
		}
		if f.Year != 0 && t.Year != f.Year {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.GenreSlug != "" && !contains(t.GenreSlugs, f.GenreSlug) {
			continue
		}
		out = append(out, cloneTitle(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubTitleRepo) ClearCategory(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.titles {
		if t.CategorySlug == slug {
			t.CategorySlug = ""
		}
	}
	return nil
}

func (r *stubTitleRepo) RemoveGenre(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.titles {
		kept := t.GenreSlugs[:0]
		for _, g := range t.GenreSlugs {
			if g != slug {
				kept = append(kept, g)
			}
		}
		t.GenreSlugs = kept
	}
	return nil
}

type stubReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*domain.Review
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[string]*domain.Review)}
}

func (r *stubReviewRepo) Create(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == rv.TitleID && existing.AuthorID == rv.AuthorID {
			return domain.ErrDuplicateReview
		}
	}
	clone := *rv
	r.reviews[rv.ID] = &clone
	return nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, titleID, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv, ok := r.reviews[id]; ok && rv.TitleID == titleID {
		clone := *rv
		return &clone, nil
	}
	return nil, domain.ErrReviewNotFound
}

func (r *stubReviewRepo) Update(_ context.Context, id string, text *string, score *int) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	if text != nil {
		rv.Text = *text
	}
	if score != nil {
		rv.Score = *score
	}
	clone := *rv
	return &clone, nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) List(_ context.Context, titleID string, _ ports.ListParams) ([]*domain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.TitleID == titleID {
			clone := *rv
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubReviewRepo) AverageScores(_ context.Context, titleIDs []string) (map[string]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rv := range r.reviews {
		if contains(titleIDs, rv.TitleID) {
			sums[rv.TitleID] += rv.Score
			counts[rv.TitleID]++
		}
	}
	out := make(map[string]float64, len(sums))
	for id, sum := range sums {
		out[id] = float64(sum) / float64(counts[id])
	}
	return out, nil
}

func (r *stubReviewRepo) DeleteByTitle(_ context.Context, titleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rv := range r.reviews {
		if rv.TitleID == titleID {
			delete(r.reviews, id)
		}
	}
	return nil
}

func (r *stubReviewRepo) DeleteByAuthor(_ context.Context, authorID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, rv := range r.reviews {
		if rv.AuthorID == authorID {
			ids = append(ids, id)
			delete(r.reviews, id)
		}
	}
	return ids, nil
}

type stubCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*domain.Comment
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.comments[c.ID] = &clone
	return nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, reviewID, id string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok && c.ReviewID == reviewID {
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrCommentNotFound
}

func (r *stubCommentRepo) Update(_ context.Context, id, text string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Text = text
	clone := *c
	return &clone, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) List(_ context.Context, reviewID string, _ ports.ListParams) ([]*domain.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCommentRepo) deleteWhere(match func(*domain.Comment) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if match(c) {
			delete(r.comments, id)
		}
	}
}

func (r *stubCommentRepo) DeleteByTitle(_ context.Context, titleID string) error {
	r.deleteWhere(func(c *domain.Comment) bool { return c.TitleID == titleID })
	return nil
}

func (r *stubCommentRepo) DeleteByReviews(_ context.Context, reviewIDs []string) error {
	r.deleteWhere(func(c *domain.Comment) bool { return contains(reviewIDs, c.ReviewID) })
	return nil
}

func (r *stubCommentRepo) DeleteByAuthor(_ context.Context, authorID string) error {
	r.deleteWhere(func(c *domain.Comment) bool { return c.AuthorID == authorID })
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
