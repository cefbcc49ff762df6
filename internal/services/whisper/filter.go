package whisper

import "strings"

// bannedPhrases are boilerplate lines whisper hallucinates on silence
// and instrumental passages, mostly channel sign-offs it absorbed from
// video training data. Matching is a case-sensitive substring check:
// the phrases are exact strings the engine emits, and case-folding
// Japanese text would be meaningless anyway.
var bannedPhrases = []string{
	"ご視聴ありがとうございました",
	"ご視聴ありがとうございます",
	"チャンネル登録",
	"最後までご視聴",
	"字幕視聴ありがとうございました",
	"おやすみなさい",
	"Thanks for watching",
	"Thank you for watching",
	"Please subscribe",
	"Subtitles by",
	"字幕 by",
	"提供",
}

func isHallucination(text string) bool {
	for _, phrase := range bannedPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
