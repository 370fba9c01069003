package cart

import (
	"context"
	"encoding/json"
	"sync"

	"heat/internal/domain/model"
)

// 保存キーの名前空間
const StorageKey = "heat-cart"

// Store はカート明細の保存先。明細（items）だけを保存する。
type Store interface {
	Load(ctx context.Context, owner string) ([]model.CartItem, error)
	Save(ctx context.Context, owner string, items []model.CartItem) error
	Delete(ctx context.Context, owner string) error
}

// Key は owner ごとの保存キー
func Key(owner string) string {
	return StorageKey + ":" + owner
}

type persisted struct {
	Items []model.CartItem `json:"items"`
}

// Encode は保存用のJSON（{"items":[...]}）を作る
func Encode(items []model.CartItem) ([]byte, error) {
	if items == nil {
		items = []model.CartItem{}
	}
	return json.Marshal(persisted{Items: items})
}

// Decode は保存済みJSONから明細を取り出す
func Decode(data []byte) ([]model.CartItem, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Items == nil {
		return []model.CartItem{}, nil
	}
	return p.Items, nil
}

// MemoryStore はプロセス内の Store（Redis が無い開発環境・テスト用）
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, owner string) ([]model.CartItem, error) {
	s.mu.Lock()
	raw, ok := s.data[Key(owner)]
	s.mu.Unlock()
	if !ok {
		return []model.CartItem{}, nil
	}
	return Decode(raw)
}

func (s *MemoryStore) Save(ctx context.Context, owner string, items []model.CartItem) error {
	raw, err := Encode(items)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[Key(owner)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, owner string) error {
	s.mu.Lock()
	delete(s.data, Key(owner))
	s.mu.Unlock()
	return nil
}
