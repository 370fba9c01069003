package usecase

import (
	"context"
	"errors"
	"net/http"

	"heat/internal/cart"
	"heat/internal/domain/model"
	"heat/internal/menu"
	repo "heat/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /products（販売中のみ）
func (u *ProductUsecase) ListAvailable(ctx context.Context, category string) ([]model.Product, error) {
	c := model.Category(category)
	if c != "" && !menu.ValidCategory(c) {
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "Categoría inválida")
	}

	items, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Category:      c,
		OnlyAvailable: true,
	})
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar productos")
	}
	return items, nil
}

// カテゴリ別のメニュー（具材・おすすめ構成）
type MenuOutput struct {
	Category  menu.CategoryInfo  `json:"category"`
	BasePrice int64              `json:"base_price"`
	Groups    []menu.OptionGroup `json:"groups"`
	Presets   []menu.Preset      `json:"presets"`
}

func (u *ProductUsecase) Menu(category string) (MenuOutput, error) {
	c := model.Category(category)
	for _, info := range menu.Categories() {
		if info.ID != c {
			continue
		}
		price, _ := menu.BasePrice(c)
		return MenuOutput{
			Category:  info,
			BasePrice: price,
			Groups:    menu.GroupedOptions(c),
			Presets:   menu.Presets(c),
		}, nil
	}
	return MenuOutput{}, NewHTTPError(http.StatusNotFound, "Categoría no encontrada")
}

// 具材の指定（Quantity 0 は外す）
type OptionSelection struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type ConfigureInput struct {
	ProductID string
	// 空なら初期構成
	Options []OptionSelection
	// おすすめ構成の名前（Options より先に当てる）
	Preset string
}

// Configure は商品と具材指定からカート候補を作る。価格はサーバー側の定義を使う。
func (u *ProductUsecase) Configure(ctx context.Context, in ConfigureInput) (cart.Candidate, error) {
	if in.ProductID == "" {
		return cart.Candidate{}, NewHTTPError(http.StatusBadRequest, "Producto inválido")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return cart.Candidate{}, NewHTTPError(http.StatusNotFound, "Producto no encontrado")
	}
	if err != nil {
		return cart.Candidate{}, NewHTTPError(http.StatusInternalServerError, "Error al cargar producto")
	}
	if !p.IsAvailable {
		return cart.Candidate{}, NewHTTPError(http.StatusBadRequest, "Producto no disponible")
	}

	cfg := menu.NewConfigurator(p)

	if in.Preset != "" {
		found := false
		for _, pr := range menu.Presets(menu.CategoryOf(p)) {
			if pr.Name == in.Preset {
				cfg.ApplyPreset(pr)
				found = true
				break
			}
		}
		if !found {
			return cart.Candidate{}, NewHTTPError(http.StatusBadRequest, "Combinación inválida")
		}
	}

	if len(in.Options) > 0 {
		if in.Preset == "" {
			cfg.ApplyPreset(menu.Preset{})
		}
		for _, o := range in.Options {
			if o.Quantity < 0 {
				return cart.Candidate{}, NewHTTPError(http.StatusBadRequest, "Cantidad inválida")
			}
			if err := cfg.SetQuantity(o.ID, o.Quantity); err != nil {
				return cart.Candidate{}, NewHTTPError(http.StatusBadRequest, "Opción inválida: "+o.ID)
			}
		}
	}

	return cfg.Candidate(), nil
}
