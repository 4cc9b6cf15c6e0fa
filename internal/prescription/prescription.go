// Package prescription turns a reader's mood into three book
// recommendations and keeps the request/response flow as an explicit,
// serializable state machine.
package prescription

import (
	"errors"
	"time"
)

const (
	// Count is the number of books in one prescription.
	Count = 3
	// FallbackISBN stands in when no bookseller knows the book.
	FallbackISBN = "9788000000000"
	// DefaultRegion is the library region used until the reader picks one.
	DefaultRegion = "서울"
	// NearbyRegionLabel scopes the library section when a location is used.
	NearbyRegionLabel = "내 주변"

	MsgMoodRequired         = "기분은 꼭 선택해주세요! 🙏"
	MsgRecommendationFailed = "AI 추천 실패. 다시 시도해주세요."
	MsgLocationUnavailable  = "위치 정보를 가져올 수 없습니다. 브라우저 권한을 확인해주세요."
	MsgLocationNotSupported = "이 브라우저에서는 위치 정보 기능을 지원하지 않습니다."
	msgUnknownFailure       = "알 수 없는 오류가 발생했습니다."
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrRecommendationFailed = errors.New(MsgRecommendationFailed)
)

// Input is what the reader fills in. Only the mood is required.
type Input struct {
	Mood      string `json:"mood" validate:"required"`
	Situation string `json:"situation" validate:"max=500"`
	Genre     string `json:"genre" validate:"max=100"`
	Purpose   string `json:"purpose" validate:"max=500"`
}

// Location is a reader's coordinates.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// LibraryInfo is one library holding a book. Distance only means
// something when the book is available; Waitlist only when it is not.
type LibraryInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Distance  string `json:"distance,omitempty"`
	Waitlist  *int   `json:"waitlist,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Normalize drops whichever of Distance and Waitlist does not apply.
func (l LibraryInfo) Normalize() LibraryInfo {
	if l.Available {
		l.Waitlist = nil
	} else {
		l.Distance = ""
	}
	return l
}

type PurchaseLinks struct {
	Yes24  string `json:"yes24"`
	Kyobo  string `json:"kyobo"`
	Aladin string `json:"aladin"`
}

// Cover is the pre-resolved cover for a book, when resolution runs
// before the response is sent.
type Cover struct {
	URL         string `json:"url,omitempty"`
	Fallback    bool   `json:"fallback"`
	Placeholder string `json:"placeholder"`
}

type BookRecommendation struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Publisher     string        `json:"publisher"`
	ISBN          string        `json:"isbn"`
	CoverImageURL string        `json:"cover_image_url"`
	Description   string        `json:"description"`
	AIReason      string        `json:"ai_reason"`
	Vibe          []string      `json:"vibe"`
	Libraries     []LibraryInfo `json:"libraries"`
	PurchaseLinks PurchaseLinks `json:"purchase_links"`
	Cover         *Cover        `json:"cover,omitempty"`
}

// BookID is the stable display key: ISBN (or title when there is none)
// joined with the author.
func BookID(isbn, title, author string) string {
	key := isbn
	if key == "" {
		key = title
	}
	return key + "-" + author
}

// AIBook is a recommendation as the generative source returns it,
// before bookseller enrichment.
type AIBook struct {
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	Publisher   string        `json:"publisher"`
	ISBN        string        `json:"isbn,omitempty"`
	Description string        `json:"description"`
	AIReason    string        `json:"aiReason"`
	Vibe        []string      `json:"vibe"`
	Libraries   []LibraryInfo `json:"libraries"`
}

// Request is everything a Source needs for one prescription.
type Request struct {
	Input         Input
	Region        string
	Location      *Location
	ExcludeTitles []string
}

// Record is one prescription kept in a visitor's history.
type Record struct {
	ID        string               `json:"id"`
	VisitorID string               `json:"-"`
	Input     Input                `json:"input"`
	Region    string               `json:"region"`
	Books     []BookRecommendation `json:"books"`
	CreatedAt time.Time            `json:"created_at"`
}
