package delivery

import (
	"math/rand"
	"sync"
)

// TablePicker は初期状態で選ぶテーブルを決める
type TablePicker interface {
	Pick(tables []int) int
}

// RandomPicker はシード付きの乱数で選ぶ（同じシードなら同じ順序）
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(tables []int) int {
	if len(tables) == 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return tables[p.rng.Intn(len(tables))]
}

// FixedPicker は常に同じテーブルを返す。候補に無ければ先頭。
type FixedPicker int

func (p FixedPicker) Pick(tables []int) int {
	for _, t := range tables {
		if t == int(p) {
			return t
		}
	}
	if len(tables) == 0 {
		return 0
	}
	return tables[0]
}
