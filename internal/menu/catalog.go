// Package menu は静的なメニュー定義（カテゴリ・基本価格・具材・おすすめ構成）と
// 商品ごとの具材選択（Configurator）を持つ。
package menu

import (
	"strings"

	"heat/internal/domain/model"
)

const (
	GroupProtein = "proteina"
	GroupExtra   = "extra"
)

var groupNames = map[string]string{
	GroupProtein: "Proteína",
	GroupExtra:   "Extras",
}

// GroupName は具材グループの表示名
func GroupName(group string) string {
	if n, ok := groupNames[group]; ok {
		return n
	}
	return group
}

type CategoryInfo struct {
	ID    model.Category `json:"id"`
	Name  string         `json:"name"`
	Emoji string         `json:"emoji"`
}

// おすすめ構成（具材ID → 数量）
type Preset struct {
	Name    string           `json:"name"`
	Config  map[string]int64 `json:"config"`
	Popular bool             `json:"popular,omitempty"`
}

var categories = []CategoryInfo{
	{ID: model.CategoryArepas, Name: "Arepas", Emoji: "🫓"},
	{ID: model.CategoryChorizos, Name: "Chorizos", Emoji: "🥓"},
	{ID: model.CategoryPinchos, Name: "Pinchos", Emoji: "🍢"},
	{ID: model.CategoryHamburguesas, Name: "Hamburguesas", Emoji: "🍔"},
	{ID: model.CategoryPerros, Name: "Perros", Emoji: "🌭"},
}

var basePrices = map[model.Category]int64{
	model.CategoryArepas:       3000,
	model.CategoryPerros:       5000,
	model.CategoryHamburguesas: 8000,
	model.CategoryChorizos:     6000,
	model.CategoryPinchos:      7000,
}

func protein(id, name string, price, def, maxQty int64) model.ProductOption {
	return model.ProductOption{ID: id, Name: name, Group: GroupProtein, PriceModifier: price, DefaultQty: def, MaxQty: maxQty}
}

func extra(id, name string, price, def, maxQty int64) model.ProductOption {
	return model.ProductOption{ID: id, Name: name, Group: GroupExtra, PriceModifier: price, DefaultQty: def, MaxQty: maxQty}
}

var ingredients = map[model.Category][]model.ProductOption{
	model.CategoryArepas: {
		protein("queso", "Queso", 500, 1, 3),
		protein("jamon", "Jamón", 800, 1, 3),
		protein("carne", "Carne", 1500, 0, 2),
		protein("pollo", "Pollo", 1200, 0, 2),
		protein("torta-c", "Torta Carne", 1000, 0, 3),
		protein("chorizo-p", "Chorizo Paisa", 1200, 0, 2),
		protein("chorizo-r", "Chorizo Res", 1200, 0, 2),
		protein("pincho-p", "Pincho Pollo", 1200, 0, 2),
		extra("mantequilla", "Mantequilla", 100, 1, 2),
		extra("sal", "Sal", 500, 1, 3),
		extra("huevo", "Huevo Codorníz", 500, 0, 3),
		extra("tocineta", "Tocineta", 1200, 0, 2),
		extra("cebolla", "Cebolla", 300, 0, 2),
		extra("tomate", "Tomate", 1000, 0, 2),
		extra("papitas", "Papa Ripiada", 1000, 0, 2),
		extra("salsas", "Salsas", 1000, 0, 2),
	},
	model.CategoryChorizos: {
		protein("cerdo-pi", "Paisa", 500, 1, 20),
		protein("res-pi", "Res", 500, 1, 20),
		extra("crudo", "Crudo", 0, 0, 2),
	},
	model.CategoryPinchos: {
		protein("pollo-pi", "Pollo", 0, 1, 3),
		extra("papas-pi", "Papas", 800, 0, 2),
	},
	model.CategoryHamburguesas: {
		protein("torta-c", "Torta Carne", 1000, 1, 3),
		protein("huevo-h", "Huevo", 700, 2, 4),
		protein("tocineta-h", "Tocineta", 1200, 1, 2),
		extra("tomate", "Tomate", 1000, 1, 2),
		extra("queso-h", "Queso", 500, 1, 3),
		extra("jamon-p", "Jamón", 600, 2, 4),
		extra("papitas-h", "Papitas", 800, 1, 2),
	},
	model.CategoryPerros: {
		protein("chorizo-p", "Chorizo Paisa", 3000, 1, 2),
		protein("huevo", "Huevo Codirníz", 700, 2, 3),
		protein("chorizo-r", "Chorizo Res", 0, 0, 2),
		protein("salchicha", "Salchicha", 0, 0, 2),
		protein("queso-p", "Queso", 500, 2, 4),
		protein("jamon-p", "Jamón", 600, 2, 4),
		extra("cebolla", "Cebolla", 500, 1, 2),
		extra("tomate", "Tomate", 1000, 0, 2),
		extra("papitas-h", "Papitas", 800, 1, 2),
		extra("salsas", "Salsas", 200, 2, 4),
		extra("tocineta-h", "Tocineta", 1200, 1, 2),
	},
}

// 具材IDがカテゴリに無いものは適用時に無視される
var presets = map[model.Category][]Preset{
	model.CategoryArepas: {
		{Name: "Arepa Doble Queso", Config: map[string]int64{"queso": 2}, Popular: true},
		{Name: "Arepa Jamón y Queso", Config: map[string]int64{"queso": 1, "jamon": 1}},
		{Name: "Arepa con Carne", Config: map[string]int64{"carne": 1, "queso": 1}},
		{Name: "Arepa Triple Queso", Config: map[string]int64{"queso": 3}, Popular: true},
		{Name: "Arepa Mixta", Config: map[string]int64{"queso": 1, "jamon": 1, "huevo": 1}},
	},
	model.CategoryPerros: {
		{Name: "Perro Sencillo", Config: map[string]int64{"salchicha": 1, "cebolla": 1, "salsas": 1}},
		{Name: "Perro con Todo", Config: map[string]int64{"salchicha": 1, "queso-p": 1, "papitas": 1, "cebolla": 1, "salsas": 2}, Popular: true},
		{Name: "Perro Doble", Config: map[string]int64{"salchicha": 2, "queso-p": 1}},
	},
	model.CategoryHamburguesas: {
		{Name: "Hamburguesa Simple", Config: map[string]int64{"carne-h": 1, "queso-h": 1, "lechuga": 1, "tomate": 1}},
		{Name: "Hamburguesa Doble Carne", Config: map[string]int64{"carne-h": 2, "queso-h": 2}, Popular: true},
		{Name: "Hamburguesa con Huevo", Config: map[string]int64{"carne-h": 1, "queso-h": 1, "huevo-h": 1}},
		{Name: "Hamburguesa Completa", Config: map[string]int64{"carne-h": 1, "queso-h": 1, "tocineta-h": 1, "lechuga": 1, "tomate": 1}, Popular: true},
	},
	model.CategoryChorizos: {
		{Name: "Chorizo Sencillo", Config: map[string]int64{"chorizo": 1, "arepa-ch": 1}},
		{Name: "Chorizo con Queso", Config: map[string]int64{"chorizo": 1, "queso-ch": 1, "arepa-ch": 1}, Popular: true},
	},
	model.CategoryPinchos: {
		{Name: "Pincho de Pollo", Config: map[string]int64{"pollo-pi": 2, "arepa-pi": 1}},
	},
}

func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// BasePrice はカテゴリの基本価格（COP）
func BasePrice(c model.Category) (int64, bool) {
	p, ok := basePrices[c]
	return p, ok
}

// Options はカテゴリの具材一覧（定義順）。コピーを返す。
func Options(c model.Category) []model.ProductOption {
	src := ingredients[c]
	out := make([]model.ProductOption, len(src))
	copy(out, src)
	return out
}

func Presets(c model.Category) []Preset {
	src := presets[c]
	out := make([]Preset, len(src))
	copy(out, src)
	return out
}

// OptionGroup は表示用にまとめた具材グループ
type OptionGroup struct {
	Key     string                `json:"key"`
	Name    string                `json:"name"`
	Options []model.ProductOption `json:"options"`
}

// GroupedOptions は具材をグループごとにまとめる（初出順）
func GroupedOptions(c model.Category) []OptionGroup {
	var groups []OptionGroup
	idx := map[string]int{}
	for _, o := range ingredients[c] {
		i, ok := idx[o.Group]
		if !ok {
			i = len(groups)
			idx[o.Group] = i
			groups = append(groups, OptionGroup{Key: o.Group, Name: GroupName(o.Group)})
		}
		groups[i].Options = append(groups[i].Options, o)
	}
	return groups
}

// CategoryOf は商品のカテゴリ。未設定なら商品名から推定する。
func CategoryOf(p model.Product) model.Category {
	if p.Category != "" {
		return p.Category
	}
	name := strings.ToLower(p.Name)
	switch {
	case strings.Contains(name, "arepa"):
		return model.CategoryArepas
	case strings.Contains(name, "perro"):
		return model.CategoryPerros
	default:
		return model.CategoryHamburguesas
	}
}

func ValidCategory(c model.Category) bool {
	_, ok := basePrices[c]
	return ok
}
