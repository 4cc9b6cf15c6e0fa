package cover

import (
	"fmt"
	"net/url"
)

// Vendor cover templates keyed by ISBN, in priority order. Yes24 has no
// stable ISBN-based URL and is not listed.
const (
	kyoboCoverURL       = "https://contents.kyobobook.co.kr/sih/fit-in/400x0/pdt/%s.jpg"
	aladinCoverURL      = "https://cover.aladin.co.kr/getbook.aspx?isbn=%s"
	openLibraryCoverURL = "https://covers.openlibrary.org/b/isbn/%s-L.jpg?default=false"
)

// Identity is what a card is keyed on. A change to any field restarts
// resolution.
type Identity struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// Candidates returns the prioritized candidate URLs for a book: the
// supplied cover first, then vendor URLs derived from the ISBN.
func Candidates(isbn, coverURL string) []string {
	candidates := make([]string, 0, 4)
	if coverURL != "" {
		candidates = append(candidates, coverURL)
	}
	if isbn == "" {
		return candidates
	}
	escaped := url.PathEscape(isbn)
	for _, tmpl := range []string{kyoboCoverURL, aladinCoverURL, openLibraryCoverURL} {
		candidates = append(candidates, fmt.Sprintf(tmpl, escaped))
	}
	return candidates
}

// Candidates returns the candidate list for the identity.
func (id Identity) Candidates() []string {
	return Candidates(id.ISBN, id.CoverURL)
}
