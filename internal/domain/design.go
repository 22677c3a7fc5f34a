package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Material string

const (
	MaterialCanvas  Material = "canvas"
	MaterialLeather Material = "leather"
	MaterialSuede   Material = "suede"
	MaterialKnit    Material = "knit"
)

var materialSurcharge = map[Material]decimal.Decimal{
	MaterialCanvas:  decimal.Zero,
	MaterialKnit:    decimal.NewFromInt(10),
	MaterialLeather: decimal.NewFromInt(25),
	MaterialSuede:   decimal.NewFromInt(30),
}

func (m Material) Valid() bool {
	_, ok := materialSurcharge[m]
	return ok
}

func (m Material) Surcharge() decimal.Decimal {
	return materialSurcharge[m]
}

var monogramFee = decimal.NewFromInt(15)

// baseModelPrices is the customizer catalogue.
var baseModelPrices = map[string]decimal.Decimal{
	"air-runner":    decimal.NewFromInt(120),
	"court-classic": decimal.NewFromInt(95),
	"trail-blazer":  decimal.NewFromInt(140),
	"street-low":    decimal.NewFromInt(85),
}

func BaseModelPrice(model string) (decimal.Decimal, bool) {
	p, ok := baseModelPrices[model]
	return p, ok
}

type DesignColors struct {
	Upper  string `json:"upper"`
	Sole   string `json:"sole"`
	Laces  string `json:"laces"`
	Swoosh string `json:"swoosh"`
}

// Design is one immutable snapshot of a customized shoe.
type Design struct {
	BaseModel string       `json:"baseModel"`
	Colors    DesignColors `json:"colors"`
	Material  Material     `json:"material"`
	Size      string       `json:"size"`
	Monogram  string       `json:"monogram,omitempty"`
}

// DesignChange is a partial update; nil fields keep their current value.
type DesignChange struct {
	Upper    *string   `json:"upper,omitempty"`
	Sole     *string   `json:"sole,omitempty"`
	Laces    *string   `json:"laces,omitempty"`
	Swoosh   *string   `json:"swoosh,omitempty"`
	Material *Material `json:"material,omitempty"`
	Size     *string   `json:"size,omitempty"`
	Monogram *string   `json:"monogram,omitempty"`
}

func (c DesignChange) Empty() bool {
	return c == DesignChange{}
}

// Price is the base model price plus material and monogram surcharges.
func (d Design) Price() (decimal.Decimal, error) {
	base, ok := BaseModelPrice(d.BaseModel)
	if !ok {
		return decimal.Zero, ErrUnknownModel
	}
	if !d.Material.Valid() {
		return decimal.Zero, ErrUnknownMaterial
	}
	price := base.Add(d.Material.Surcharge())
	if strings.TrimSpace(d.Monogram) != "" {
		price = price.Add(monogramFee)
	}
	return price, nil
}

// Apply returns a copy of d with the change applied.
func (d Design) Apply(c DesignChange) Design {
	if c.Upper != nil {
		d.Colors.Upper = *c.Upper
	}
	if c.Sole != nil {
		d.Colors.Sole = *c.Sole
	}
	if c.Laces != nil {
		d.Colors.Laces = *c.Laces
	}
	if c.Swoosh != nil {
		d.Colors.Swoosh = *c.Swoosh
	}
	if c.Material != nil {
		d.Material = *c.Material
	}
	if c.Size != nil {
		d.Size = *c.Size
	}
	if c.Monogram != nil {
		d.Monogram = *c.Monogram
	}
	return d
}

// SavedDesign is a design persisted by its owner.
type SavedDesign struct {
	ID        string          `json:"id"`
	Owner     string          `json:"-"`
	Name      string          `json:"name"`
	Design    Design          `json:"design"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
