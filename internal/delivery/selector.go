// Package delivery は受け取り方法（店内・持ち帰り・配達）の選択と、
// 注文メモ・配達料の計算を行う。
//
// 店内のテーブルは複数選択（トグル式、最後の1卓は外せない）。
package delivery

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"heat/internal/domain/model"
)

const (
	// 配達料（COP）
	DefaultFee int64 = 2000
	// テーブル番号は 1..DefaultTableCount
	DefaultTableCount = 6
)

var (
	ErrInvalidMode     = errors.New("invalid delivery mode")
	ErrNoTable         = errors.New("at least one table is required")
	ErrTableOutOfRange = errors.New("table out of range")
	ErrAddressRequired = errors.New("delivery address is required")
)

type Options struct {
	Fee        int64
	TableCount int
	Picker     TablePicker
}

func (o Options) withDefaults() Options {
	if o.Fee <= 0 {
		o.Fee = DefaultFee
	}
	if o.TableCount <= 0 {
		o.TableCount = DefaultTableCount
	}
	if o.Picker == nil {
		o.Picker = FixedPicker(1)
	}
	return o
}

// Selector は1回の注文に対する受け取り設定。状態遷移は持たない。
type Selector struct {
	opts Options

	mode          model.DeliveryMode
	tables        map[int]struct{}
	pickupTime    string
	pickupNotes   string
	address       string
	deliveryNotes string
}

func NewSelector(opts Options) *Selector {
	s := &Selector{opts: opts.withDefaults()}
	s.Reset()
	return s
}

// FromConfig は送信された設定から Selector を組み立てる。
// テーブル番号が範囲外ならエラー。
func FromConfig(cfg model.DeliveryConfig, opts Options) (*Selector, error) {
	s := NewSelector(opts)
	if err := s.SetMode(cfg.Mode); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case model.DeliveryModeLocal:
		s.tables = map[int]struct{}{}
		for _, t := range cfg.Tables {
			if !s.inRange(t) {
				return nil, fmt.Errorf("%w: %d", ErrTableOutOfRange, t)
			}
			s.tables[t] = struct{}{}
		}
	case model.DeliveryModePickup:
		s.pickupTime = cfg.PickupTime
		s.pickupNotes = cfg.PickupNotes
	case model.DeliveryModeDelivery:
		s.address = cfg.Address
		s.deliveryNotes = cfg.DeliveryNotes
	}
	return s, nil
}

// AvailableTables は選べるテーブル番号
func (s *Selector) AvailableTables() []int {
	out := make([]int, 0, s.opts.TableCount)
	for i := 1; i <= s.opts.TableCount; i++ {
		out = append(out, i)
	}
	return out
}

func (s *Selector) Mode() model.DeliveryMode {
	return s.mode
}

func (s *Selector) SetMode(mode model.DeliveryMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	s.mode = mode
	return nil
}

// ToggleTable は選択中なら外し、未選択なら追加する。
// 最後の1卓は外さない。
func (s *Selector) ToggleTable(table int) error {
	if !s.inRange(table) {
		return fmt.Errorf("%w: %d", ErrTableOutOfRange, table)
	}
	if _, ok := s.tables[table]; ok {
		if len(s.tables) > 1 {
			delete(s.tables, table)
		}
		return nil
	}
	s.tables[table] = struct{}{}
	return nil
}

// SelectedTables は昇順のテーブル番号
func (s *Selector) SelectedTables() []int {
	out := make([]int, 0, len(s.tables))
	for t := range s.tables {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

func (s *Selector) SetPickupTime(v string)    { s.pickupTime = v }
func (s *Selector) SetPickupNotes(v string)   { s.pickupNotes = v }
func (s *Selector) SetAddress(v string)       { s.address = v }
func (s *Selector) SetDeliveryNotes(v string) { s.deliveryNotes = v }

func (s *Selector) Address() string {
	return s.address
}

// LoadFromProfile はプロフィールの住所があれば配達先に入れる
func (s *Selector) LoadFromProfile(address *string) {
	if address != nil && *address != "" {
		s.address = *address
	}
}

// Reset は初期状態（店内・テーブル1卓・メモ空）に戻す
func (s *Selector) Reset() {
	s.mode = model.DeliveryModeLocal
	s.tables = map[int]struct{}{}
	if t := s.opts.Picker.Pick(s.AvailableTables()); t > 0 {
		s.tables[t] = struct{}{}
	}
	s.pickupTime = ""
	s.pickupNotes = ""
	s.address = ""
	s.deliveryNotes = ""
}

// Fee は配達モードのときだけ配達料を返す
func (s *Selector) Fee() int64 {
	if s.mode == model.DeliveryModeDelivery {
		return s.opts.Fee
	}
	return 0
}

func (s *Selector) IsValid() bool {
	return s.Validate() == nil
}

// Validate はモードごとの入力チェック
func (s *Selector) Validate() error {
	switch s.mode {
	case model.DeliveryModeLocal:
		if len(s.tables) == 0 {
			return ErrNoTable
		}
		return nil
	case model.DeliveryModePickup:
		return nil
	case model.DeliveryModeDelivery:
		if strings.TrimSpace(s.address) == "" {
			return ErrAddressRequired
		}
		return nil
	default:
		return ErrInvalidMode
	}
}

// Config は現在のモードに関係するフィールドだけを埋めた設定
func (s *Selector) Config() model.DeliveryConfig {
	cfg := model.DeliveryConfig{Mode: s.mode}
	switch s.mode {
	case model.DeliveryModeLocal:
		cfg.Tables = s.SelectedTables()
	case model.DeliveryModePickup:
		cfg.PickupTime = s.pickupTime
		cfg.PickupNotes = s.pickupNotes
	case model.DeliveryModeDelivery:
		cfg.Address = s.address
		cfg.DeliveryNotes = s.deliveryNotes
	}
	return cfg
}

// BuildNotes は注文に付けるメモ（改行区切り）を作る
func (s *Selector) BuildNotes() string {
	parts := []string{}

	switch s.mode {
	case model.DeliveryModeLocal:
		tables := s.SelectedTables()
		if len(tables) > 0 {
			nums := make([]string, 0, len(tables))
			for _, t := range tables {
				nums = append(nums, strconv.Itoa(t))
			}
			label := "Mesa"
			if len(tables) > 1 {
				label = "Mesas"
			}
			parts = append(parts, "🍽️ "+label+" "+strings.Join(nums, ", "))
		}
	case model.DeliveryModePickup:
		parts = append(parts, "📦 Para recoger")
		if s.pickupTime != "" {
			parts = append(parts, "⏰ Hora: "+s.pickupTime)
		}
		if s.pickupNotes != "" {
			parts = append(parts, s.pickupNotes)
		}
	case model.DeliveryModeDelivery:
		parts = append(parts, "🚴 Domicilio")
		if s.address != "" {
			parts = append(parts, "📍 "+s.address)
		}
		if s.deliveryNotes != "" {
			parts = append(parts, s.deliveryNotes)
		}
	}

	return strings.Join(parts, "\n")
}

func (s *Selector) inRange(table int) bool {
	return table >= 1 && table <= s.opts.TableCount
}
