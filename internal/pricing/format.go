package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// スペイン語ロケールは桁区切りが "."
var copPrinter = message.NewPrinter(language.Spanish)

// Format は金額を "$ 10.400" の形式にする（表示用）。
func Format(amount int64) string {
	if amount < 0 {
		return "-" + copPrinter.Sprintf("$ %d", -amount)
	}
	return copPrinter.Sprintf("$ %d", amount)
}

// FormatNumber は桁区切りだけ付ける（読み上げ用）
func FormatNumber(n int64) string {
	return copPrinter.Sprintf("%d", n)
}
