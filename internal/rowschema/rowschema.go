// Package rowschema は永続化層から返ってきた行を型付きのエンティティに変換する境界。
// 形が合わない行はエラーにする（ロールだけは customer に寄せる）。
package rowschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"heat/internal/domain/model"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRow = errors.New("invalid row")

const statusOneOf = "oneof=pending cooking ready delivered paid cancelled"

var validate = validator.New()

// SelectedOptions は order_items.selected_options（jsonb）を読む。
// 空・null は空スライス。
func SelectedOptions(raw json.RawMessage) ([]model.SelectedOption, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.SelectedOption{}, nil
	}

	var opts []model.SelectedOption
	if err := json.Unmarshal(trimmed, &opts); err != nil {
		return nil, fmt.Errorf("%w: selected_options: %v", ErrInvalidRow, err)
	}
	for i := range opts {
		if err := validate.Struct(opts[i]); err != nil {
			return nil, fmt.Errorf("%w: selected_options[%d]: %v", ErrInvalidRow, i, err)
		}
	}
	return opts, nil
}

// EncodeSelectedOptions は保存用の JSON を作る（nil でも "[]"）
func EncodeSelectedOptions(opts []model.SelectedOption) (json.RawMessage, error) {
	if opts == nil {
		opts = []model.SelectedOption{}
	}
	for i := range opts {
		if err := validate.Struct(opts[i]); err != nil {
			return nil, fmt.Errorf("%w: selected_options[%d]: %v", ErrInvalidRow, i, err)
		}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func Status(s string) (model.OrderStatus, error) {
	if err := validate.Var(s, "required,"+statusOneOf); err != nil {
		return "", fmt.Errorf("%w: status %q", ErrInvalidRow, s)
	}
	return model.OrderStatus(s), nil
}

// Role は未知・空のロールを customer として扱う
func Role(s string) model.Role {
	if err := validate.Var(s, "required,oneof=customer admin dev"); err != nil {
		return model.RoleCustomer
	}
	return model.Role(s)
}

// Order は注文行の最低限の形をチェックする
func Order(o model.Order) error {
	if o.ID == "" {
		return fmt.Errorf("%w: order id is empty", ErrInvalidRow)
	}
	if _, err := Status(string(o.Status)); err != nil {
		return err
	}
	if o.Total < 0 {
		return fmt.Errorf("%w: negative total", ErrInvalidRow)
	}
	return nil
}

type orderChangeRow struct {
	ID        string     `json:"id" validate:"required"`
	UserID    *string    `json:"user_id"`
	PlateCode string     `json:"plate_code"`
	Status    string     `json:"status" validate:"required"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// OrderChange は LISTEN/NOTIFY のペイロード（orders 行の JSON）を読む
func OrderChange(payload []byte) (model.OrderChange, error) {
	var row orderChangeRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return model.OrderChange{}, fmt.Errorf("%w: order change: %v", ErrInvalidRow, err)
	}
	if err := validate.Struct(row); err != nil {
		return model.OrderChange{}, fmt.Errorf("%w: order change: %v", ErrInvalidRow, err)
	}
	status, err := Status(row.Status)
	if err != nil {
		return model.OrderChange{}, err
	}

	ch := model.OrderChange{
		OrderID:   row.ID,
		PlateCode: row.PlateCode,
		Status:    status,
	}
	if row.UserID != nil {
		ch.UserID = *row.UserID
	}
	if row.UpdatedAt != nil {
		ch.UpdatedAt = *row.UpdatedAt
	}
	return ch, nil
}
