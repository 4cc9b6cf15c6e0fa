package aladin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query, queryType string) ([]Book, error) {
	args := m.Called(ctx, query, queryType)
	books, _ := args.Get(0).([]Book)
	return books, args.Error(1)
}

func TestHTTPHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		setup      func(m *mockSearcher)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "preflight",
			method:     http.MethodOptions,
			target:     "/api/aladin",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing query",
			method:     http.MethodGet,
			target:     "/api/aladin",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"검색어를 입력하세요"}`,
		},
		{
			name:   "upstream failure",
			method: http.MethodGet,
			target: "/api/aladin?query=x",
			setup: func(m *mockSearcher) {
				m.On("Search", mock.Anything, "x", "").Return(nil, errors.New("down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"검색 실패"}`,
		},
		{
			name:   "success",
			method: http.MethodGet,
			target: "/api/aladin?query=%EC%95%84%EB%AA%AC%EB%93%9C&queryType=Keyword",
			setup: func(m *mockSearcher) {
				m.On("Search", mock.Anything, "아몬드", "Keyword").Return([]Book{{Title: "아몬드", ISBN: "9788936434120"}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "whitespace query",
			method:     http.MethodGet,
			target:     "/api/aladin?query=%20%20%09",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"검색어를 입력하세요"}`,
		},
		{
			name:       "wrong method",
			method:     http.MethodPost,
			target:     "/api/aladin?query=x",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockSearcher{}
			if tt.setup != nil {
				tt.setup(m)
			}
			w := httptest.NewRecorder()

			NewHTTPHandler(m).ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			m.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_SuccessBody(t *testing.T) {
	m := &mockSearcher{}
	m.On("Search", mock.Anything, "q", "").Return([]Book{{Title: "T", Author: "A", ISBN: "1"}}, nil)
	w := httptest.NewRecorder()

	NewHTTPHandler(m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/aladin?query=q", nil))

	var body struct {
		Books []Book `json:"books"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, []Book{{Title: "T", Author: "A", ISBN: "1"}}, body.Books)
}
