package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrUnknownStep        = errors.New("unknown wizard step")
	ErrProjectStepMissing = errors.New("project step must be submitted first")
)

var errPercentageSum = validation.NewError("validation_percentage_sum", "percentages must sum to 100")

// Step is one validated wizard step. Price returns the step's full
// contribution to the ledger.
type Step interface {
	Key() StepKey
	Validate() error
	Price(book *RateBook, ctx ProjectContext) []LineItem
}

type formDecoder interface {
	decode(form FormData)
}

// ProjectContext carries the project step answers that area-dependent steps
// price against.
type ProjectContext struct {
	ProjectType      string  `json:"projectType"`
	ConstructionType string  `json:"constructionType,omitempty"`
	Surface          float64 `json:"surface"`
	Floors           float64 `json:"floors,omitempty"`
	HasArchitect     bool    `json:"hasArchitect"`
}

// Ready reports whether the project step has been answered.
func (c ProjectContext) Ready() bool {
	return c.Surface > 0 && c.ProjectType != ""
}

// Steps that price against the project surface.
var projectDependent = map[StepKey]bool{
	StepStructure:  true,
	StepRoofing:    true,
	StepInsulation: true,
	StepFacade:     true,
	StepFlooring:   true,
	StepPainting:   true,
	StepTechnical:  true,
}

// NeedsProject reports whether step k cannot be priced without the project step.
func NeedsProject(k StepKey) bool {
	return projectDependent[k]
}

func newStep(k StepKey) (Step, error) {
	switch k {
	case StepProject:
		return &ProjectStep{}, nil
	case StepStructure:
		return &StructureStep{}, nil
	case StepRoofing:
		return &RoofingStep{}, nil
	case StepInsulation:
		return &InsulationStep{}, nil
	case StepFacade:
		return &FacadeStep{}, nil
	case StepFlooring:
		return &FlooringStep{}, nil
	case StepPainting:
		return &PaintingStep{}, nil
	case StepTechnical:
		return &TechnicalStep{}, nil
	case StepKitchen:
		return &KitchenStep{}, nil
	case StepBathroom:
		return &BathroomStep{}, nil
	case StepWindows:
		return &WindowsStep{}, nil
	case StepExterior:
		return &ExteriorStep{}, nil
	case StepEco:
		return &EcoStep{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStep, k)
}

// DecodeStep builds the typed step named key from loose form input and
// validates it. Unknown keys return ErrUnknownStep; invalid answers return
// validation.Errors.
func DecodeStep(key string, form FormData) (Step, error) {
	s, err := newStep(StepKey(NormalizeKey(key)))
	if err != nil {
		return nil, err
	}
	s.(formDecoder).decode(form)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// UnmarshalStep restores a step from its stored JSON payload.
func UnmarshalStep(key StepKey, payload []byte) (Step, error) {
	s, err := newStep(key)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, s); err != nil {
			return nil, fmt.Errorf("decode %s step: %w", key, err)
		}
	}
	return s, nil
}

// PriceStep prices s, enforcing that area-dependent steps have a project
// context.
func PriceStep(s Step, book *RateBook, ctx ProjectContext) ([]LineItem, error) {
	if NeedsProject(s.Key()) && !ctx.Ready() {
		return nil, fmt.Errorf("%s: %w", s.Key(), ErrProjectStepMissing)
	}
	return s.Price(book, ctx), nil
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// percentageSum fails unless parts add up to 100 within 0.01.
func percentageSum(parts ...float64) validation.Rule {
	return validation.By(func(any) error {
		var total float64
		for _, p := range parts {
			total += p
		}
		if math.Abs(total-100) > 0.01 {
			return errPercentageSum
		}
		return nil
	})
}

// percentageRules bounds a percentage field to [0, 100].
func percentageRules(extra ...validation.Rule) []validation.Rule {
	return append([]validation.Rule{validation.Min(0.0), validation.Max(100.0)}, extra...)
}

func baseCategory(projectType string) (Category, bool) {
	switch NormalizeKey(projectType) {
	case ProjectConstruction:
		return CategoryBaseConstruction, true
	case ProjectRenovation:
		return CategoryBaseRenovation, true
	case ProjectExtension:
		return CategoryBaseExtension, true
	}
	return "", false
}

// splitLines prices each non-zero share of area.
func splitLines(book *RateBook, step StepKey, area float64, shares []splitShare) []LineItem {
	var items []LineItem
	for _, sh := range shares {
		if s := share(sh.percentage); s > 0 {
			items = append(items, PriceLine(book, step, sh.category, sh.typ, area*s))
		}
	}
	return items
}

type splitShare struct {
	category   Category
	typ        string
	percentage float64
}

// ── project ────────────────────────────────────────────────────────────

type ProjectStep struct {
	ProjectType      string  `json:"projectType"`
	ConstructionType string  `json:"constructionType,omitempty"`
	Surface          float64 `json:"surface"`
	Floors           float64 `json:"floors,omitempty"`
	HasArchitect     bool    `json:"hasArchitect"`
}

func (s *ProjectStep) Key() StepKey { return StepProject }

func (s *ProjectStep) decode(f FormData) {
	s.ProjectType = NormalizeKey(f.String("projectType"))
	s.ConstructionType = NormalizeKey(f.String("constructionType"))
	s.Surface = f.Number("surface")
	s.Floors = f.Number("floors", 1)
	s.HasArchitect = f.Bool("hasArchitect")
}

func (s *ProjectStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ProjectType, validation.Required,
			validation.In(ProjectConstruction, ProjectRenovation, ProjectExtension)),
		validation.Field(&s.Surface, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&s.Floors, validation.Min(0.0), validation.Max(10.0)),
	)
}

// Context returns the pricing context the later steps use.
func (s *ProjectStep) Context() ProjectContext {
	return ProjectContext{
		ProjectType:      NormalizeKey(s.ProjectType),
		ConstructionType: NormalizeKey(s.ConstructionType),
		Surface:          nonNegative(s.Surface),
		Floors:           s.Floors,
		HasArchitect:     s.HasArchitect,
	}
}

func (s *ProjectStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	c, ok := baseCategory(s.ProjectType)
	if !ok {
		return nil
	}
	typ := s.ConstructionType
	if typ == "" || !book.Has(c, typ) {
		item := PriceLine(book, StepProject, c, "default", s.Surface)
		item.Label = c.Info().Label
		return []LineItem{item}
	}
	return []LineItem{PriceLine(book, StepProject, c, typ, s.Surface)}
}

// ── structure ──────────────────────────────────────────────────────────

type StructureStep struct {
	FoundationType string `json:"foundationType,omitempty"`
	WallType       string `json:"wallType,omitempty"`
	HasBasement    bool   `json:"hasBasement"`
}

func (s *StructureStep) Key() StepKey { return StepStructure }

func (s *StructureStep) decode(f FormData) {
	s.FoundationType = NormalizeKey(f.String("foundationType"))
	s.WallType = NormalizeKey(f.String("wallType"))
	s.HasBasement = f.Bool("hasBasement")
}

func (s *StructureStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FoundationType, validation.In(stringsToAny(sortedKeys(structuralRule.options["foundationType"]))...)),
		validation.Field(&s.WallType, validation.In(stringsToAny(sortedKeys(structuralRule.options["wallType"]))...)),
	)
}

// Price prices the structural lot as a share of the base cost.
func (s *StructureStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	base := book.BaseCost(ctx.ProjectType, ctx.ConstructionType, ctx.Surface)
	form := FormData{
		"surface":        ctx.Surface,
		"floors":         ctx.Floors,
		"hasBasement":    s.HasBasement,
		"foundationType": s.FoundationType,
		"wallType":       s.WallType,
	}
	amount := CalculateStructuralCosts(form, base)
	return []LineItem{LumpSumLine(StepStructure, CategoryStructural, CategoryStructural.Info().Label, amount)}
}

// ── roofing ────────────────────────────────────────────────────────────

type RoofingStep struct {
	RoofingType string  `json:"roofingType"`
	RoofArea    float64 `json:"roofArea,omitempty"`
}

func (s *RoofingStep) Key() StepKey { return StepRoofing }

func (s *RoofingStep) decode(f FormData) {
	s.RoofingType = NormalizeKey(f.String("roofingType"))
	s.RoofArea = f.Number("roofArea")
}

func (s *RoofingStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.RoofingType, validation.Required),
		validation.Field(&s.RoofArea, validation.Min(0.0)),
	)
}

// Price uses the roof area when given, the project surface otherwise.
func (s *RoofingStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	area := s.RoofArea
	if area <= 0 {
		area = ctx.Surface
	}
	return []LineItem{PriceLine(book, StepRoofing, CategoryRoofing, s.RoofingType, area)}
}

// ── insulation ─────────────────────────────────────────────────────────

type InsulationStep struct {
	InsulationType string  `json:"insulationType"`
	Area           float64 `json:"area,omitempty"`
	ThicknessMM    float64 `json:"thickness,omitempty"`
}

func (s *InsulationStep) Key() StepKey { return StepInsulation }

func (s *InsulationStep) decode(f FormData) {
	s.InsulationType = NormalizeKey(f.String("insulationType"))
	s.Area = f.Number("insulationArea")
	s.ThicknessMM = f.Number("thickness")
}

func (s *InsulationStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.InsulationType, validation.Required),
		validation.Field(&s.Area, validation.Min(0.0)),
		validation.Field(&s.ThicknessMM, validation.Min(0.0), validation.Max(500.0)),
	)
}

func (s *InsulationStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	area := s.Area
	if area <= 0 {
		area = ctx.Surface
	}
	item := PriceLine(book, StepInsulation, CategoryInsulation, s.InsulationType, area)
	f := thicknessFactor(s.ThicknessMM, ReferenceInsulationThicknessMM)
	item.UnitRate *= f
	item.Amount *= f
	return []LineItem{item}
}

// ── facade ─────────────────────────────────────────────────────────────

type FacadeStep struct {
	RenderPercentage   float64 `json:"renderPercentage"`
	CladdingType       string  `json:"claddingType,omitempty"`
	CladdingPercentage float64 `json:"claddingPercentage"`
	StonePercentage    float64 `json:"stonePercentage"`
	ExternalInsulation bool    `json:"externalInsulation"`
	ThicknessMM        float64 `json:"thickness,omitempty"`
}

func (s *FacadeStep) Key() StepKey { return StepFacade }

func (s *FacadeStep) decode(f FormData) {
	s.RenderPercentage = f.Number("renderPercentage")
	s.CladdingType = NormalizeKey(f.String("claddingType"))
	s.CladdingPercentage = f.Number("claddingPercentage")
	s.StonePercentage = f.Number("stonePercentage")
	s.ExternalInsulation = f.Bool("externalInsulation")
	s.ThicknessMM = f.Number("thickness")
}

func (s *FacadeStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.RenderPercentage, percentageRules(percentageSum(s.RenderPercentage, s.CladdingPercentage, s.StonePercentage))...),
		validation.Field(&s.CladdingPercentage, percentageRules()...),
		validation.Field(&s.StonePercentage, percentageRules()...),
		validation.Field(&s.ThicknessMM, validation.Min(0.0), validation.Max(500.0)),
	)
}

func (s *FacadeStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	area := FacadeWallArea(ctx.Surface, ctx.ProjectType)
	cladding := s.CladdingType
	if cladding == "" {
		cladding = "bardage-bois"
	}
	items := splitLines(book, StepFacade, area, []splitShare{
		{CategoryFacade, "enduit", s.RenderPercentage},
		{CategoryFacade, cladding, s.CladdingPercentage},
		{CategoryFacade, "pierre", s.StonePercentage},
	})
	if s.ExternalInsulation {
		item := PriceLine(book, StepFacade, CategoryFacade, "ite", area)
		f := thicknessFactor(s.ThicknessMM, ReferenceFacadeThicknessMM)
		item.UnitRate *= f
		item.Amount *= f
		items = append(items, item)
	}
	return items
}

// ── flooring ───────────────────────────────────────────────────────────

type FlooringStep struct {
	TileType            string  `json:"tileType,omitempty"`
	TilePercentage      float64 `json:"tilePercentage"`
	ParquetType         string  `json:"parquetType,omitempty"`
	ParquetPercentage   float64 `json:"parquetPercentage"`
	SoftFloorType       string  `json:"softFloorType,omitempty"`
	SoftFloorPercentage float64 `json:"softFloorPercentage"`
}

func (s *FlooringStep) Key() StepKey { return StepFlooring }

func (s *FlooringStep) decode(f FormData) {
	s.TileType = NormalizeKey(f.String("tileType"))
	s.TilePercentage = f.Number("tilePercentage")
	s.ParquetType = NormalizeKey(f.String("parquetType"))
	s.ParquetPercentage = f.Number("parquetPercentage")
	s.SoftFloorType = NormalizeKey(f.String("softFloorType"))
	s.SoftFloorPercentage = f.Number("softFloorPercentage")
}

func (s *FlooringStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.TilePercentage, percentageRules(percentageSum(s.TilePercentage, s.ParquetPercentage, s.SoftFloorPercentage))...),
		validation.Field(&s.ParquetPercentage, percentageRules()...),
		validation.Field(&s.SoftFloorPercentage, percentageRules()...),
		validation.Field(&s.TileType, validation.When(s.TilePercentage > 0, validation.Required)),
		validation.Field(&s.ParquetType, validation.When(s.ParquetPercentage > 0, validation.Required)),
		validation.Field(&s.SoftFloorType, validation.When(s.SoftFloorPercentage > 0, validation.Required)),
	)
}

// Split returns the step as a FlooringSplit.
func (s *FlooringStep) Split() FlooringSplit {
	return FlooringSplit{
		TileType:            s.TileType,
		TilePercentage:      s.TilePercentage,
		ParquetType:         s.ParquetType,
		ParquetPercentage:   s.ParquetPercentage,
		SoftFloorType:       s.SoftFloorType,
		SoftFloorPercentage: s.SoftFloorPercentage,
	}
}

func (s *FlooringStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	return splitLines(book, StepFlooring, ctx.Surface, []splitShare{
		{CategoryFloorTile, s.TileType, s.TilePercentage},
		{CategoryParquet, s.ParquetType, s.ParquetPercentage},
		{CategorySoftFloor, s.SoftFloorType, s.SoftFloorPercentage},
	})
}

// ── painting ───────────────────────────────────────────────────────────

type PaintingStep struct {
	BasicPaintType       string  `json:"basicPaintType,omitempty"`
	BasicPercentage      float64 `json:"basicPercentage"`
	DecorativePercentage float64 `json:"decorativePercentage"`
	WallpaperPercentage  float64 `json:"wallpaperPercentage"`
}

func (s *PaintingStep) Key() StepKey { return StepPainting }

func (s *PaintingStep) decode(f FormData) {
	s.BasicPaintType = NormalizeKey(f.String("basicPaintType", "standard"))
	s.BasicPercentage = f.Number("basicPercentage")
	s.DecorativePercentage = f.Number("decorativePercentage")
	s.WallpaperPercentage = f.Number("wallpaperPercentage")
}

func (s *PaintingStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.BasicPercentage, percentageRules(percentageSum(s.BasicPercentage, s.DecorativePercentage, s.WallpaperPercentage))...),
		validation.Field(&s.DecorativePercentage, percentageRules()...),
		validation.Field(&s.WallpaperPercentage, percentageRules()...),
	)
}

func (s *PaintingStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	basic := s.BasicPaintType
	if basic == "" {
		basic = "standard"
	}
	return splitLines(book, StepPainting, WallArea(ctx.Surface), []splitShare{
		{CategoryPaint, basic, s.BasicPercentage},
		{CategoryPaint, "decorative", s.DecorativePercentage},
		{CategoryPaint, "wallpaper", s.WallpaperPercentage},
	})
}

// ── technical ──────────────────────────────────────────────────────────

type TechnicalStep struct {
	HeatingType         string  `json:"heatingType,omitempty"`
	ElectricalType      string  `json:"electricalType,omitempty"`
	PlumbingType        string  `json:"plumbingType,omitempty"`
	HasAirConditioning  bool    `json:"hasAirConditioning"`
	AirConditioningType string  `json:"airConditioningType,omitempty"`
	VentilationType     string  `json:"ventilationType,omitempty"`
	VentilationUnits    float64 `json:"ventilationUnits,omitempty"`
}

func (s *TechnicalStep) Key() StepKey { return StepTechnical }

func (s *TechnicalStep) decode(f FormData) {
	s.HeatingType = NormalizeKey(f.String("heatingType"))
	s.ElectricalType = NormalizeKey(f.String("electricalType"))
	s.PlumbingType = NormalizeKey(f.String("plumbingType"))
	s.HasAirConditioning = f.Bool("hasAirConditioning")
	s.AirConditioningType = NormalizeKey(f.String("airConditioningType"))
	s.VentilationType = NormalizeKey(f.String("ventilationType"))
	s.VentilationUnits = f.Number("ventilationUnits", 1)
}

func (s *TechnicalStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.AirConditioningType, validation.When(s.HasAirConditioning, validation.Required)),
		validation.Field(&s.VentilationUnits, validation.Min(0.0)),
	)
}

func (s *TechnicalStep) Price(book *RateBook, ctx ProjectContext) []LineItem {
	var items []LineItem
	add := func(c Category, typ string, q float64) {
		if typ != "" {
			items = append(items, PriceLine(book, StepTechnical, c, typ, q))
		}
	}
	add(CategoryHeating, s.HeatingType, ctx.Surface)
	add(CategoryElectrical, s.ElectricalType, ctx.Surface)
	add(CategoryPlumbing, s.PlumbingType, ctx.Surface)
	if s.HasAirConditioning {
		add(CategoryAirConditioning, s.AirConditioningType, ctx.Surface)
	}
	add(CategoryVentilation, s.VentilationType, s.VentilationUnits)
	return items
}

// ── kitchen ────────────────────────────────────────────────────────────

type KitchenStep struct {
	KitchenType string  `json:"kitchenType"`
	Count       float64 `json:"kitchenCount"`
}

func (s *KitchenStep) Key() StepKey { return StepKitchen }

func (s *KitchenStep) decode(f FormData) {
	s.KitchenType = NormalizeKey(f.String("kitchenType"))
	s.Count = f.Number("kitchenCount", 1)
}

func (s *KitchenStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.KitchenType, validation.Required),
		validation.Field(&s.Count, validation.Min(0.0), validation.Max(10.0)),
	)
}

func (s *KitchenStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	return []LineItem{PriceLine(book, StepKitchen, CategoryKitchen, s.KitchenType, s.Count)}
}

// ── bathroom ───────────────────────────────────────────────────────────

type BathroomStep struct {
	BathroomType string  `json:"bathroomType"`
	Count        float64 `json:"bathrooms"`
}

func (s *BathroomStep) Key() StepKey { return StepBathroom }

func (s *BathroomStep) decode(f FormData) {
	s.BathroomType = NormalizeKey(f.String("bathroomType"))
	s.Count = f.Number("bathrooms", 1)
}

func (s *BathroomStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.BathroomType, validation.Required),
		validation.Field(&s.Count, validation.Min(0.0), validation.Max(20.0)),
	)
}

// Price uses the flat per-bathroom rate.
func (s *BathroomStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	return []LineItem{PriceLine(book, StepBathroom, CategoryBathroomUnit, s.BathroomType, s.Count)}
}

// ── windows and doors ──────────────────────────────────────────────────

type WindowsStep struct {
	WindowType  string  `json:"windowType,omitempty"`
	WindowCount float64 `json:"windowCount"`
	DoorType    string  `json:"doorType,omitempty"`
	DoorCount   float64 `json:"doorCount"`
}

func (s *WindowsStep) Key() StepKey { return StepWindows }

func (s *WindowsStep) decode(f FormData) {
	s.WindowType = NormalizeKey(f.String("windowType"))
	s.WindowCount = f.Number("windowCount", DefaultWindowCount)
	s.DoorType = NormalizeKey(f.String("doorType"))
	s.DoorCount = f.Number("doorCount")
}

func (s *WindowsStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.WindowType, validation.When(s.WindowCount > 0, validation.Required)),
		validation.Field(&s.WindowCount, validation.Min(0.0)),
		validation.Field(&s.DoorType, validation.When(s.DoorCount > 0, validation.Required)),
		validation.Field(&s.DoorCount, validation.Min(0.0)),
	)
}

func (s *WindowsStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	var items []LineItem
	if s.WindowCount > 0 {
		items = append(items, PriceLine(book, StepWindows, CategoryWindow, s.WindowType, s.WindowCount))
	}
	if s.DoorCount > 0 {
		items = append(items, PriceLine(book, StepWindows, CategoryDoor, s.DoorType, s.DoorCount))
	}
	return items
}

// ── exterior ───────────────────────────────────────────────────────────

type ExteriorStep struct {
	PoolType        string   `json:"poolType,omitempty"`
	Annexes         []string `json:"annexes,omitempty"`
	TerraceType     string   `json:"terraceType,omitempty"`
	TerraceArea     float64  `json:"terraceArea,omitempty"`
	FenceType       string   `json:"fenceType,omitempty"`
	FenceLength     float64  `json:"fenceLength,omitempty"`
	LandscapingType string   `json:"landscapingType,omitempty"`
	LandscapingArea float64  `json:"landscapingArea,omitempty"`
	DrivewayType    string   `json:"drivewayType,omitempty"`
	DrivewayArea    float64  `json:"drivewayArea,omitempty"`
}

func (s *ExteriorStep) Key() StepKey { return StepExterior }

func (s *ExteriorStep) decode(f FormData) {
	if f.Bool("hasPool", f.String("poolType") != "") {
		s.PoolType = NormalizeKey(f.String("poolType"))
	}
	for _, a := range f.Strings("annexes") {
		s.Annexes = append(s.Annexes, NormalizeKey(a))
	}
	// Checkbox fields of the legacy form.
	if f.Bool("hasJacuzzi") {
		s.Annexes = append(s.Annexes, "jacuzzi")
	}
	if f.Bool("hasCarport") {
		s.Annexes = append(s.Annexes, "carport")
	}
	s.TerraceType = NormalizeKey(f.String("terraceType"))
	s.TerraceArea = f.Number("terraceArea")
	s.FenceType = NormalizeKey(f.String("fenceType"))
	s.FenceLength = f.Number("fenceLength")
	s.LandscapingType = NormalizeKey(f.String("landscapingType"))
	s.LandscapingArea = f.Number("landscapingArea")
	s.DrivewayType = NormalizeKey(f.String("drivewayType"))
	s.DrivewayArea = f.Number("drivewayArea")
}

func (s *ExteriorStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.TerraceType, validation.When(s.TerraceArea > 0, validation.Required)),
		validation.Field(&s.TerraceArea, validation.Min(0.0)),
		validation.Field(&s.FenceType, validation.When(s.FenceLength > 0, validation.Required)),
		validation.Field(&s.FenceLength, validation.Min(0.0)),
		validation.Field(&s.LandscapingType, validation.When(s.LandscapingArea > 0, validation.Required)),
		validation.Field(&s.LandscapingArea, validation.Min(0.0)),
		validation.Field(&s.DrivewayType, validation.When(s.DrivewayArea > 0, validation.Required)),
		validation.Field(&s.DrivewayArea, validation.Min(0.0)),
	)
}

func (s *ExteriorStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	var items []LineItem
	if s.PoolType != "" {
		items = append(items, PriceLine(book, StepExterior, CategoryPool, s.PoolType, 1))
	}
	seen := make(map[string]bool)
	for _, a := range s.Annexes {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		items = append(items, PriceLine(book, StepExterior, CategoryAnnex, a, 1))
	}
	for _, m := range []struct {
		category Category
		typ      string
		quantity float64
	}{
		{CategoryTerrace, s.TerraceType, s.TerraceArea},
		{CategoryFence, s.FenceType, s.FenceLength},
		{CategoryLandscaping, s.LandscapingType, s.LandscapingArea},
		{CategoryDriveway, s.DrivewayType, s.DrivewayArea},
	} {
		if m.quantity > 0 {
			items = append(items, PriceLine(book, StepExterior, m.category, m.typ, m.quantity))
		}
	}
	return items
}

// ── eco ────────────────────────────────────────────────────────────────

type EcoStep struct {
	EcoLevel            string   `json:"ecoLevel"`
	IncludeEcoSolutions bool     `json:"includeEcoSolutions"`
	Options             []string `json:"ecoOptions,omitempty"`
}

func (s *EcoStep) Key() StepKey { return StepEco }

func (s *EcoStep) decode(f FormData) {
	s.EcoLevel = NormalizeKey(f.String("ecoLevel", EcoNone))
	s.IncludeEcoSolutions = f.Bool("includeEcoSolutions", len(f.Strings("ecoOptions")) > 0)
	for _, o := range f.Strings("ecoOptions") {
		s.Options = append(s.Options, NormalizeKey(o))
	}
}

func (s *EcoStep) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.EcoLevel, validation.In(stringsToAny(EcoLevels)...)),
	)
}

// Price lists the selected eco options. The eco level surcharge applies to
// the whole ledger and is not a line item.
func (s *EcoStep) Price(book *RateBook, _ ProjectContext) []LineItem {
	if !s.IncludeEcoSolutions {
		return nil
	}
	var items []LineItem
	seen := make(map[string]bool)
	for _, o := range s.Options {
		key := NormalizeKey(o)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, PriceLine(book, StepEco, CategoryEcoOption, key, 1))
	}
	return items
}
