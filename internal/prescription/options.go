package prescription

// Option is one selectable choice on the form.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Description string `json:"description,omitempty"`
}

var MoodOptions = []Option{
	{Emoji: "😭", Label: "마음이 무거워요", Value: "heavy", Description: "슬픔이 가득해요"},
	{Emoji: "✨", Label: "반짝반짝 행복", Value: "sparkly", Description: "기분 최고조!"},
	{Emoji: "😰", Label: "불안불안", Value: "anxious", Description: "마음이 복잡해요"},
	{Emoji: "🌙", Label: "고요한 밤", Value: "calm", Description: "평온이 필요해요"},
	{Emoji: "🔥", Label: "열받아요", Value: "angry", Description: "화가 나네요"},
	{Emoji: "🤔", Label: "생각 많은 중", Value: "thoughtful", Description: "고민이 있어요"},
}

// GenreOptions use the display name as the value; it goes into the
// prompt verbatim.
var GenreOptions = []Option{
	{Emoji: "😭", Label: "눈물 콧물 멈춰! (로맨스/감동)", Value: "눈물 콧물 멈춰! (로맨스/감동)"},
	{Emoji: "🚀", Label: "자, 드가자! (판타지/SF)", Value: "자, 드가자! (판타지/SF)"},
	{Emoji: "🧠", Label: "내가 그걸 모를까...? (실용서/지식)", Value: "내가 그걸 모를까...? (실용서/지식)"},
	{Emoji: "🏡", Label: "갓생은 바라지도 않아 (일상 에세이)", Value: "갓생은 바라지도 않아 (일상 에세이)"},
	{Emoji: "🧭", Label: "하룰라라 여행 (여행/자기계발)", Value: "하룰라라 여행 (여행/자기계발)"},
	{Emoji: "⏳", Label: "범인 이즈 마이 베이비 (미스터리)", Value: "범인 이즈 마이 베이비 (미스터리)"},
	{Emoji: "🎨", Label: "분할 브이로그 (예술/취미)", Value: "분할 브이로그 (예술/취미)"},
	{Emoji: "🍳", Label: "맛잘알? ㄴㄴ 역잘알! (역사)", Value: "맛잘알? ㄴㄴ 역잘알! (역사)"},
	{Emoji: "⚡", Label: "하면 해 ㅋㅋ (베스트셀러)", Value: "하면 해 ㅋㅋ (베스트셀러)"},
}
