// Package pricing は商品の価格計算を行う。
// 通貨（COP）に小数はないので金額はすべて int64 で扱う。
package pricing

import (
	"heat/internal/domain/model"
)

// オプション1行分（価格差分 × 数量）
type Line struct {
	PriceModifier int64
	Quantity      int64
}

// ComputeTotal は base + Σ(modifier × quantity) を返す。
// 数量が0以下の行は0として扱う。
func ComputeTotal(base int64, lines []Line) int64 {
	total := base
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		total += l.PriceModifier * l.Quantity
	}
	return total
}

// LinesFromOptions はカート明細のオプションを Line に変換する
func LinesFromOptions(opts []model.CartItemOption) []Line {
	lines := make([]Line, 0, len(opts))
	for _, o := range opts {
		lines = append(lines, Line{PriceModifier: o.PriceModifier, Quantity: o.Quantity})
	}
	return lines
}

// ItemTotal は明細1個あたりの価格（基本価格＋オプション）
func ItemTotal(item model.CartItem) int64 {
	return ComputeTotal(item.BasePrice, LinesFromOptions(item.SelectedOptions))
}

// LineTotal は明細の合計（1個あたり × 数量）
func LineTotal(item model.CartItem) int64 {
	return ItemTotal(item) * item.Quantity
}
