package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"heat/internal/domain/model"
	repo "heat/internal/repository"
	"heat/internal/rowschema"

	"github.com/rs/zerolog"
)

// 入力検証（validator パッケージが実装）
type ProfileValidator interface {
	ValidateUpdate(ctx context.Context, in UpdateProfileInput) error
}

type ProfileUsecase struct {
	profiles  repo.ProfileRepository
	validator ProfileValidator
	status    *OpStatus
	log       zerolog.Logger
}

func NewProfileUsecase(profiles repo.ProfileRepository, validator ProfileValidator, log zerolog.Logger) *ProfileUsecase {
	return &ProfileUsecase{
		profiles:  profiles,
		validator: validator,
		status:    NewOpStatus(),
		log:       log,
	}
}

type ProfileOutput struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	AvatarURL    *string    `json:"avatar_url"`
	Address      *string    `json:"address"`
	Emoji        *string    `json:"emoji"`
	Role         model.Role `json:"role"`
	DisplayName  string     `json:"display_name"`
	DisplayEmoji string     `json:"display_emoji"`
	HasPhone     bool       `json:"has_phone"`
	HasAddress   bool       `json:"has_address"`
}

// nil の項目は NULL にする
type UpdateProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,phone"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

func toProfileOutput(s model.Session, p model.Profile) ProfileOutput {
	out := ProfileOutput{
		ID:        s.UserID,
		Email:     s.Email,
		AvatarURL: p.AvatarURL,
		Address:   nonEmpty(p.Address),
		Emoji:     nonEmpty(p.Emoji),
		Role:      rowschema.Role(string(p.Role)),
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}

	out.DisplayName = out.Name
	if out.DisplayName == "" {
		out.DisplayName = "Usuario"
	}
	out.DisplayEmoji = "🔥"
	if out.Emoji != nil {
		out.DisplayEmoji = *out.Emoji
	}
	out.HasPhone = out.Phone != ""
	out.HasAddress = out.Address != nil
	return out
}

// Get はプロフィールを返す。行が無ければ空のプロフィール（エラーにしない）。
func (u *ProfileUsecase) Get(ctx context.Context, s model.Session) (ProfileOutput, error) {
	if !s.IsAuthenticated() {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	}

	p, err := u.profiles.FindByID(ctx, s.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return toProfileOutput(s, model.Profile{ID: s.UserID}), nil
	}
	if err != nil {
		u.log.Error().Err(err).Str("user_id", s.UserID).Msg("profile fetch failed")
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar perfil")
	}
	return toProfileOutput(s, p), nil
}

// Update は更新して、行が無ければ作る
func (u *ProfileUsecase) Update(ctx context.Context, s model.Session, in UpdateProfileInput) (out ProfileOutput, err error) {
	if !s.IsAuthenticated() {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "No hay sesión activa")
	}

	in = UpdateProfileInput{
		Name:    trimmed(in.Name),
		Phone:   trimmed(in.Phone),
		Address: trimmed(in.Address),
	}
	if err := u.validator.ValidateUpdate(ctx, in); err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusBadRequest, "Datos de perfil inválidos")
	}

	if err := u.status.Begin(s.UserID); err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusConflict, "Actualización en curso")
	}
	defer func() { u.status.End(s.UserID, err) }()

	upd := repo.ProfileUpdate{Name: in.Name, Phone: in.Phone, Address: in.Address}
	n, err := u.profiles.Update(ctx, s.UserID, upd)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", s.UserID).Msg("profile update failed")
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al actualizar perfil")
	}
	if n == 0 {
		if err := u.profiles.Create(ctx, model.Profile{
			ID:      s.UserID,
			Name:    in.Name,
			Phone:   in.Phone,
			Address: in.Address,
			Role:    model.RoleCustomer,
		}); err != nil {
			u.log.Error().Err(err).Str("user_id", s.UserID).Msg("profile insert failed")
			return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "Error al actualizar perfil")
		}
	}

	return u.Get(ctx, s)
}

// Role は認証ミドルウェアが使う。行が無い・未知のロールは customer。
func (u *ProfileUsecase) Role(ctx context.Context, userID string) (model.Role, error) {
	p, err := u.profiles.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.RoleCustomer, nil
	}
	if err != nil {
		return "", err
	}
	return rowschema.Role(string(p.Role)), nil
}

// Address は配達先の初期値に使う（無ければ nil）
func (u *ProfileUsecase) Address(ctx context.Context, userID string) (*string, error) {
	p, err := u.profiles.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nonEmpty(p.Address), nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
