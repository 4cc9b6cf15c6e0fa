package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/goccy/go-json"

	"paperpharmacy/internal/httpx"
	"paperpharmacy/internal/platform/crypto"
	"paperpharmacy/internal/prescription"
)

// TestVisitorID is a fixed visitor for tests.
const TestVisitorID = "test-visitor-id-123"

// TestBook is a sample enriched recommendation.
var TestBook = prescription.BookRecommendation{
	ID:            "9788936434120-손원평",
	Title:         "아몬드",
	Author:        "손원평",
	Publisher:     "창비",
	ISBN:          "9788936434120",
	CoverImageURL: "https://image.aladin.co.kr/product/a.jpg",
	Description:   "감정을 느끼지 못하는 소년의 성장 이야기",
	AIReason:      "고요한 밤에 어울리는 잔잔한 이야기",
	Vibe:          []string{"잔잔한", "따뜻한"},
	Libraries: []prescription.LibraryInfo{
		{Name: "정독도서관", Available: true, Distance: "1.2km"},
	},
	PurchaseLinks: prescription.PurchaseLinks{
		Yes24:  "https://www.yes24.com/Product/Search?query=%EC%95%84%EB%AA%AC%EB%93%9C",
		Kyobo:  "https://search.kyobobook.co.kr/search?keyword=%EC%95%84%EB%AA%AC%EB%93%9C",
		Aladin: "https://www.aladin.co.kr/p/1",
	},
}

// TestRecord returns a history record for visitorID holding TestBook.
func TestRecord(id, visitorID string, createdAt time.Time) prescription.Record {
	return prescription.Record{
		ID:        id,
		VisitorID: visitorID,
		Input:     prescription.Input{Mood: "calm", Genre: "에세이"},
		Region:    prescription.DefaultRegion,
		Books:     []prescription.BookRecommendation{TestBook},
		CreatedAt: createdAt,
	}
}

// GenerateVisitorToken signs a visitor token for testing.
func GenerateVisitorToken(secret, visitorID string) string {
	token, _ := crypto.GenerateToken(secret, visitorID, time.Hour)
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewRequestWithVisitor creates a request whose context already carries
// the visitor, as VisitorMiddleware would leave it.
func NewRequestWithVisitor(method, path string, body interface{}, visitorID string) *http.Request {
	r := NewRequest(method, path, body)
	return r.WithContext(httpx.ContextWithVisitor(r.Context(), visitorID))
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}

// AssertResponseBody checks if the response body contains expected field
func AssertResponseBody(t interface {
	Errorf(format string, args ...any)
}, body map[string]interface{}, key string, expectedValue interface{}) {
	value, ok := body[key]
	if !ok {
		t.Errorf("response body missing key %q", key)
		return
	}
	if value != expectedValue {
		t.Errorf("got %v for key %q, want %v", value, key, expectedValue)
	}
}
