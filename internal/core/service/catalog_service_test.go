package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type catalogFixture struct {
	categories *TaxonService
	genres     *TaxonService
	titles     *TitleService

	categoryRepo *stubTaxonRepo
	genreRepo    *stubTaxonRepo
	titleRepo    *stubTitleRepo
	reviewRepo   *stubReviewRepo
	commentRepo  *stubCommentRepo
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categoryRepo: newStubTaxonRepo(domain.ErrCategoryNotFound),
		genreRepo:    newStubTaxonRepo(domain.ErrGenreNotFound),
		titleRepo:    newStubTitleRepo(),
		reviewRepo:   newStubReviewRepo(),
		commentRepo:  newStubCommentRepo(),
	}
	log := zerolog.Nop()
	f.categories = NewTaxonService(domain.KindCategory, f.categoryRepo, f.titleRepo, log)
	f.genres = NewTaxonService(domain.KindGenre, f.genreRepo, f.titleRepo, log)
	f.titles = NewTitleService(f.titleRepo, f.categoryRepo, f.genreRepo, f.reviewRepo, f.commentRepo, &seqIDs{}, log)
	f.titles.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func (f *catalogFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.categories.Create(ctx, "Film", "film")
	require.NoError(t, err)
	_, err = f.genres.Create(ctx, "Drama", "drama")
	require.NoError(t, err)
	_, err = f.genres.Create(ctx, "Comedy", "comedy")
	require.NoError(t, err)
}

func TestTaxonService_CreateValidation(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	tests := []struct {
		name, title, slug, field string
	}{
		{"empty name", "", "ok", "name"},
		{"empty slug", "Ok", "", "slug"},
		{"bad slug", "Ok", "no spaces", "slug"},
		{"long slug", "Ok", "a123456789a123456789a123456789a123456789a1234567890", "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.categories.Create(ctx, tt.title, tt.slug)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestTaxonService_DuplicateSlug(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)

	_, err := f.categories.Create(context.Background(), "Movies", "film")
	assert.ErrorIs(t, err, domain.ErrSlugExists)
}

func TestTaxonService_DeleteDetachesFromTitles(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)
	ctx := context.Background()

	title, err := f.titles.Create(ctx, ports.TitleInput{
		Name: "Heat", Year: 1995, CategorySlug: "film", GenreSlugs: []string{"drama", "comedy"},
	})
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, "film"))
	require.NoError(t, f.genres.Delete(ctx, "drama"))

	got, err := f.titles.Get(ctx, title.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategorySlug)
	assert.Nil(t, got.Category)
	assert.Equal(t, []string{"comedy"}, got.GenreSlugs)

	assert.ErrorIs(t, f.genres.Delete(ctx, "drama"), domain.ErrGenreNotFound)
}

func TestTitleService_CreateResolvesReferences(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)

	d, err := f.titles.Create(context.Background(), ports.TitleInput{
		Name: " Heat ", Year: 1995, CategorySlug: "film", GenreSlugs: []string{"drama", "drama"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Heat", d.Name)
	require.NotNil(t, d.Category)
	assert.Equal(t, "Film", d.Category.Name)
	require.Len(t, d.Genres, 1)
	assert.Equal(t, "drama", d.Genres[0].Slug)
	assert.Nil(t, d.Rating)
}

func TestTitleService_CreateValidation(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)

	_, err := f.titles.Create(context.Background(), ports.TitleInput{
		Name: "", Year: 2030, CategorySlug: "nope", GenreSlugs: []string{"drama", "horror"},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Equal(t, []string{"year cannot be later than 2024"}, verr.Fields["year"])
	assert.Equal(t, []string{`object with slug "nope" does not exist`}, verr.Fields["category"])
	assert.Equal(t, []string{`object with slug "horror" does not exist`}, verr.Fields["genre"])
}

func TestTitleService_RatingIsRoundedMean(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	d, err := f.titles.Create(ctx, ports.TitleInput{Name: "Heat", Year: 1995})
	require.NoError(t, err)

	require.NoError(t, f.reviewRepo.Create(ctx, &domain.Review{ID: "r1", TitleID: d.ID, AuthorID: "a", Score: 7}))
	require.NoError(t, f.reviewRepo.Create(ctx, &domain.Review{ID: "r2", TitleID: d.ID, AuthorID: "b", Score: 8}))

	got, err := f.titles.Get(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 8, *got.Rating)
}

func TestTitleService_ListFiltersAndPages(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)
	ctx := context.Background()

	_, err := f.titles.Create(ctx, ports.TitleInput{Name: "Heat", Year: 1995, GenreSlugs: []string{"drama"}})
	require.NoError(t, err)
	_, err = f.titles.Create(ctx, ports.TitleInput{Name: "Airplane!", Year: 1980, GenreSlugs: []string{"comedy"}})
	require.NoError(t, err)

	list, err := f.titles.List(ctx, domain.TitleFilter{GenreSlug: "comedy"}, ports.ListParams{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Airplane!", list.Items[0].Name)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, ports.DefaultPageLimit, list.Limit)
}

func TestTitleService_UpdateClearsCategory(t *testing.T) {
	f := newCatalogFixture()
	f.seed(t)
	ctx := context.Background()

	d, err := f.titles.Create(ctx, ports.TitleInput{Name: "Heat", Year: 1995, CategorySlug: "film"})
	require.NoError(t, err)

	empty := ""
	got, err := f.titles.Update(ctx, d.ID, domain.TitlePatch{CategorySlug: &empty})
	require.NoError(t, err)
	assert.Nil(t, got.Category)
}

func TestTitleService_DeleteCascades(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	d, err := f.titles.Create(ctx, ports.TitleInput{Name: "Heat", Year: 1995})
	require.NoError(t, err)
	require.NoError(t, f.reviewRepo.Create(ctx, &domain.Review{ID: "r1", TitleID: d.ID, AuthorID: "a", Score: 7}))
	require.NoError(t, f.commentRepo.Create(ctx, &domain.Comment{ID: "c1", TitleID: d.ID, ReviewID: "r1", AuthorID: "b"}))

	require.NoError(t, f.titles.Delete(ctx, d.ID))
	assert.Empty(t, f.reviewRepo.reviews)
	assert.Empty(t, f.commentRepo.comments)

	_, err = f.titles.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)
}
