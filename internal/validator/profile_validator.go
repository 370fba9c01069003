package validator

import (
	"context"
	"errors"
	"regexp"

	"heat/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// 電話番号（+57 300 123 4567 など）
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,19}$`)

type profileValidator struct {
	v *playground.Validate
}

// Usecaseは interface を依存注入
func NewProfileValidator() usecase.ProfileValidator {
	v := playground.New()
	_ = v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &profileValidator{v: v}
}

// プロフィール更新の入力を検証
func (pv *profileValidator) ValidateUpdate(ctx context.Context, in usecase.UpdateProfileInput) error {
	if err := pv.v.StructCtx(ctx, in); err != nil {
		return ErrInvalidInput
	}
	return nil
}
