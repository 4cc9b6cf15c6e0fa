package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperpharmacy/internal/prescription"
)

func book(id, title string) prescription.BookRecommendation {
	return prescription.BookRecommendation{ID: id, Title: title}
}

func TestService_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	ctx := context.Background()

	rec := prescription.Record{ID: "r1", VisitorID: "v1"}
	repo.EXPECT().Append(ctx, rec).Return(nil)
	require.NoError(t, svc.Record(ctx, rec))

	err := svc.Record(ctx, prescription.Record{ID: "r2"})
	assert.ErrorIs(t, err, ErrMissingVisitor)
}

func TestService_ListClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	ctx := context.Background()

	repo.EXPECT().List(ctx, "v1", DefaultLimit).Return([]Entry{}, nil)
	repo.EXPECT().List(ctx, "v1", MaxLimit).Return([]Entry{}, nil)
	repo.EXPECT().List(ctx, "v1", 5).Return([]Entry{}, nil)

	_, err := svc.List(ctx, "v1", 0)
	require.NoError(t, err)
	_, err = svc.List(ctx, "v1", 1000)
	require.NoError(t, err)
	_, err = svc.List(ctx, "v1", 5)
	require.NoError(t, err)

	_, err = svc.List(ctx, "", 5)
	assert.ErrorIs(t, err, ErrMissingVisitor)
}

func TestService_BooksDedupesNewestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	ctx := context.Background()

	now := time.Now()
	entries := []Entry{
		{ID: "new", CreatedAt: now, Books: []prescription.BookRecommendation{book("a", "A"), book("b", "B"), book("c", "C")}},
		{ID: "old", CreatedAt: now.Add(-time.Hour), Books: []prescription.BookRecommendation{book("b", "B"), book("d", "D"), book("a", "A")}},
	}
	repo.EXPECT().List(ctx, "v1", MaxLimit).Return(entries, nil).Times(2)

	books, err := svc.Books(ctx, "v1", 0)
	require.NoError(t, err)
	require.Len(t, books, 4)
	assert.Equal(t, "a", books[0].ID)
	assert.Equal(t, "b", books[1].ID)
	assert.Equal(t, "c", books[2].ID)
	assert.Equal(t, "d", books[3].ID)

	books, err = svc.Books(ctx, "v1", 2)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestService_BooksRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	ctx := context.Background()

	repo.EXPECT().List(ctx, "v1", MaxLimit).Return(nil, errors.New("db down"))
	_, err := svc.Books(ctx, "v1", 10)
	assert.Error(t, err)
}

func TestService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo)
	ctx := context.Background()

	repo.EXPECT().Clear(ctx, "v1").Return(int64(3), nil)
	n, err := svc.Clear(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.Clear(ctx, "")
	assert.ErrorIs(t, err, ErrMissingVisitor)
}
