package prescription

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperpharmacy/internal/cover"
)

func threeBooks() []AIBook {
	return []AIBook{aiBook("A", "a"), aiBook("B", "b"), aiBook("C", "c")}
}

func TestService_Prescribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockSource(ctrl)
	history := NewMockHistoryRecorder(ctrl)
	svc := NewService(source, NewEnricher(nil, nil), nil, history)

	st := Reduce(InitialState(),
		SetField{Field: FieldMood, Value: "calm"},
		LocationResolved{Location: Location{Latitude: 37.5, Longitude: 127}},
	)

	source.EXPECT().Recommend(gomock.Any(), Request{
		Input:         Input{Mood: "calm"},
		Region:        DefaultRegion,
		Location:      st.Location,
		ExcludeTitles: []string{"old"},
	}).Return(threeBooks(), nil)

	var recorded Record
	history.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec Record) error {
		recorded = rec
		return nil
	})

	got, err := svc.Prescribe(context.Background(), "visitor-1", st, []string{"old"})

	require.NoError(t, err)
	assert.Equal(t, StepResult, got.Step)
	assert.True(t, got.PopupOpen)
	assert.False(t, got.Loading)
	require.Len(t, got.Recommendations, 3)
	assert.Equal(t, FallbackISBN+"-a", got.Recommendations[0].ID)
	assert.Nil(t, got.Recommendations[0].Cover)

	assert.Equal(t, "visitor-1", recorded.VisitorID)
	assert.Equal(t, NearbyRegionLabel, recorded.Region)
	assert.Len(t, recorded.Books, 3)
	assert.NotEmpty(t, recorded.ID)
}

func TestService_Prescribe_MoodRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockSource(ctrl)
	svc := NewService(source, nil, nil, nil)

	st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "   "})
	got, err := svc.Prescribe(context.Background(), "", st, nil)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, st, got, "state is untouched")
}

func TestService_Prescribe_SourceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockSource(ctrl)
	svc := NewService(source, nil, nil, nil)
	st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "heavy"})

	t.Run("error", func(t *testing.T) {
		source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return(nil, errors.New("quota"))

		got, err := svc.Prescribe(context.Background(), "v", st, nil)

		assert.ErrorIs(t, err, ErrRecommendationFailed)
		assert.Equal(t, StepInput, got.Step)
		assert.False(t, got.Loading)
		assert.Equal(t, MsgRecommendationFailed, got.Error)
		assert.Equal(t, "heavy", got.Input.Mood)
	})

	t.Run("too few books", func(t *testing.T) {
		source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return([]AIBook{aiBook("A", "a")}, nil)

		got, err := svc.Prescribe(context.Background(), "v", st, nil)

		assert.ErrorIs(t, err, ErrRecommendationFailed)
		assert.Equal(t, MsgRecommendationFailed, got.Error)
	})
}

func TestService_Prescribe_TruncatesAndResolvesCovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockSource(ctrl)
	covers := NewMockCoverResolver(ctrl)
	history := NewMockHistoryRecorder(ctrl)
	svc := NewService(source, nil, covers, history)

	books := append(threeBooks(), aiBook("D", "d"))
	source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return(books, nil)
	covers.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(func(_ context.Context, id cover.Identity) cover.State {
		if id.Title == "B" {
			return cover.State{Identity: id, URL: "https://img.example/b.jpg"}
		}
		return cover.State{Identity: id, Fallback: true}
	})
	history.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "sparkly"})
	got, err := svc.Prescribe(context.Background(), "v", st, nil)

	require.NoError(t, err, "history failures are not fatal")
	require.Len(t, got.Recommendations, 3)

	b := got.Recommendations[1]
	require.NotNil(t, b.Cover)
	assert.Equal(t, "https://img.example/b.jpg", b.Cover.URL)
	assert.False(t, b.Cover.Fallback)
	assert.Equal(t, cover.PlaceholderURL("B", "b", cover.SizeLarge), b.Cover.Placeholder)
	assert.True(t, got.Recommendations[0].Cover.Fallback)
}

func TestService_Prescribe_NoVisitorSkipsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := NewMockSource(ctrl)
	history := NewMockHistoryRecorder(ctrl)
	svc := NewService(source, nil, nil, history)

	source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return(threeBooks(), nil)

	st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "calm"})
	_, err := svc.Prescribe(context.Background(), "", st, nil)
	require.NoError(t, err)
}
