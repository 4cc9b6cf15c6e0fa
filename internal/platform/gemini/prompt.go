package gemini

import (
	"strconv"
	"strings"

	"google.golang.org/genai"

	"paperpharmacy/internal/prescription"
)

const unspecified = "미지정"

// BuildPrompt renders the curator prompt for req.
func BuildPrompt(req prescription.Request) string {
	in := req.Input

	genre := "장르 제한 없음"
	if in.Genre != "" {
		genre = "선호 장르: " + in.Genre
	}

	place := "지역: " + req.Region
	if req.Location != nil {
		place = "위치: 위도 " + formatCoord(req.Location.Latitude) + ", 경도 " + formatCoord(req.Location.Longitude)
	}

	var b strings.Builder
	b.WriteString("감정 기반 책 큐레이터로서 다음 정보를 바탕으로 정확히 3권의 책을 추천하세요.\n\n")
	b.WriteString("기분: " + in.Mood + "\n")
	b.WriteString("상황: " + orDefault(in.Situation) + "\n")
	b.WriteString(genre + "\n")
	b.WriteString("목적: " + orDefault(in.Purpose) + "\n")
	b.WriteString(place + "\n\n")
	b.WriteString("중요: 반드시 실제로 존재하는 한국어 도서만 추천하세요.\n")
	b.WriteString("도서관 정보는 " + req.Region + " 지역의 실제 공공도서관 3곳을 포함하되, URL은 생성하지 마세요.")

	if len(req.ExcludeTitles) > 0 {
		b.WriteString("\n\n제외할 책: " + strings.Join(req.ExcludeTitles, ", "))
	}
	return b.String()
}

func orDefault(s string) string {
	if s == "" {
		return unspecified
	}
	return s
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ResponseSchema constrains the model to an array of books.
func ResponseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       str,
				"author":      str,
				"publisher":   str,
				"isbn":        str,
				"description": str,
				"aiReason":    str,
				"vibe": {
					Type:  genai.TypeArray,
					Items: str,
				},
				"libraries": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":      str,
							"available": {Type: genai.TypeBoolean},
							"distance":  str,
							"waitlist":  {Type: genai.TypeInteger},
						},
						Required: []string{"name", "available"},
					},
				},
			},
			Required: []string{"title", "author", "publisher", "description", "aiReason", "vibe", "libraries"},
		},
	}
}
