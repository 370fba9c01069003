package usecase

import (
	"errors"
	"sync"
)

// 同じキーの操作がすでに実行中
var ErrBusy = errors.New("operation already in progress")

// OpStatus はキー（ユーザーIDなど）ごとの「実行中」と「直前のエラー」を持つ。
//
//	if err := s.Begin(key); err != nil { ... }
//	defer func() { s.End(key, err) }()
type OpStatus struct {
	mu      sync.Mutex
	loading map[string]bool
	lastErr map[string]string
}

func NewOpStatus() *OpStatus {
	return &OpStatus{
		loading: map[string]bool{},
		lastErr: map[string]string{},
	}
}

// Begin はエラーを消して実行中にする。実行中なら ErrBusy。
func (s *OpStatus) Begin(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading[key] {
		return ErrBusy
	}
	s.loading[key] = true
	delete(s.lastErr, key)
	return nil
}

// End は実行中を解除し、失敗ならエラー文言を残す
func (s *OpStatus) End(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, key)
	if err == nil {
		return
	}
	if he, ok := AsHTTPError(err); ok {
		s.lastErr[key] = he.Message
		return
	}
	s.lastErr[key] = err.Error()
}

func (s *OpStatus) IsLoading(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[key]
}

// LastError は直前の失敗の文言（無ければ空）
func (s *OpStatus) LastError(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr[key]
}
