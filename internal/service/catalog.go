package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/intent"
)

// CatalogStore is the read-only query surface of the product catalog.
// Single-row lookups return domain.ErrNotFound when nothing matches.
type CatalogStore interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryByID(ctx context.Context, id int64) (domain.Category, error)
	CategoryByName(ctx context.Context, name string) (domain.Category, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	ProductsByName(ctx context.Context, fragment string) ([]domain.Product, error)
	ProductNames(ctx context.Context) ([]string, error)
	MostSoldByCategory(ctx context.Context, categoryID int64) (domain.ProductSales, error)
	CheapestByCategory(ctx context.Context, categoryID int64) (domain.Product, error)
	MostOrdered(ctx context.Context) (domain.Product, error)
}

// CatalogService renders catalog lookups as replies. Missing data is a
// reply; only store failures are returned as errors.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

type pick struct {
	categoryID int64
	format     string
	missing    string
}

var mostSoldPicks = map[intent.Intent]pick{
	intent.IntentMostSoldDrink:     {config.CategoryDrinks, "La bebida más vendida es %s con %d ventas a un precio de $%s.", "No se encontró información sobre la bebida más vendida."},
	intent.IntentMostSoldSport:     {config.CategorySportDrinks, "La bebida deportiva más vendida es %s con %d ventas a un precio de $%s.", "No se encontró información sobre la bebida deportiva más vendida."},
	intent.IntentMostSoldBreakfast: {config.CategoryBreakfasts, "El desayuno más vendido es %s con %d ventas a un precio de $%s.", "No se encontró información sobre el desayuno más vendido."},
	intent.IntentMostSoldStarter:   {config.CategoryStarters, "La entrada más vendida es %s con %d ventas a un precio de $%s.", "No se encontró información sobre la entrada más vendida."},
	intent.IntentMostSoldSecond:    {config.CategorySeconds, "El segundo más vendido es %s con %d ventas a un precio de $%s.", "No se encontró información sobre el segundo más vendido."},
	intent.IntentMostSoldSnack:     {config.CategorySnacks, "El snack más vendido es %s con %d ventas a un precio de $%s.", "No se encontró información sobre los snacks más vendidos."},
}

var cheapestPicks = map[intent.Intent]pick{
	intent.IntentCheapestDrink:     {config.CategoryDrinks, "Te recomendamos la bebida más económica, es %s a un precio de $%s.", "No se encontró información sobre la bebida más económica."},
	intent.IntentCheapestSport:     {config.CategorySportDrinks, "Te recomendamos la bebida deportiva más económica, es %s a un precio de $%s.", "No se encontró información sobre la bebida deportiva más económica."},
	intent.IntentCheapestBreakfast: {config.CategoryBreakfasts, "Te recomendamos el desayuno más económico, es %s a un precio de $%s.", "No se encontró información sobre el desayuno más económico."},
	intent.IntentCheapestStarter:   {config.CategoryStarters, "Te recomendamos la entrada más económica, es %s a un precio de $%s.", "No se encontró información sobre la entrada más económica."},
	intent.IntentCheapestSecond:    {config.CategorySeconds, "Entre los más comprados y como recomendación tenemos, %s a un precio de $%s.", "No se encontró información sobre el segundo más económico."},
	intent.IntentCheapestSnack:     {config.CategorySnacks, "Te recomendamos el snack más económico, es %s a un precio de $%s.", "No se encontró información sobre el snack más económico."},
}

// Bindings wires the catalog replies to the intent router.
func (s *CatalogService) Bindings(greeting domain.Reply) intent.Bindings {
	actions := map[intent.Intent]intent.ActionFunc{
		intent.IntentShowMenu:      s.Categories,
		intent.IntentMostOrdered:   s.MostOrdered,
		intent.IntentRecommendMain: s.RecommendMain,
	}
	for in := range mostSoldPicks {
		actions[in] = func(ctx context.Context) (domain.Reply, error) { return s.MostSold(ctx, in) }
	}
	for in := range cheapestPicks {
		actions[in] = func(ctx context.Context) (domain.Reply, error) { return s.Cheapest(ctx, in) }
	}

	return intent.Bindings{
		Greeting: greeting,
		Actions:  actions,
		Lunch:    s.Lunch,
		Category: s.CategoryProducts,
		Product:  s.Product,
		Order:    s.Order,
		Stock:    s.Stock,
		Price:    s.Price,
	}
}

func backToQuestions(text string) domain.Reply {
	return domain.Reply{Text: text, Buttons: [][]domain.Button{{{Text: buttonReturnOthers, Data: CallbackReturnOthers}}}}
}

func backToCategories(text string, rows [][]domain.Button) domain.Reply {
	rows = append(rows, []domain.Button{{Text: buttonReturnCats, Data: CallbackReturnCategories}})
	return domain.Reply{Text: text, Buttons: rows}
}

func productButton(p domain.Product, showStock bool) []domain.Button {
	label := fmt.Sprintf("%s - $%s", p.Name, p.Price.StringFixed(2))
	if showStock && p.Stock != nil {
		label += fmt.Sprintf(" - Cantidad: %d", *p.Stock)
	}
	return []domain.Button{{Text: label, Data: CallbackProductPrefix + strconv.FormatInt(p.ID, 10)}}
}

func (s *CatalogService) Categories(ctx context.Context) (domain.Reply, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return domain.TextReply(textNoCategories), nil
	}

	rows := make([][]domain.Button, 0, len(categories)+1)
	for _, c := range categories {
		rows = append(rows, []domain.Button{{Text: c.Name, Data: CallbackCategoryPrefix + strconv.FormatInt(c.ID, 10)}})
	}
	rows = append(rows, []domain.Button{{Text: buttonReturnStart, Data: CallbackReturnStart}})
	return domain.Reply{Text: textSelectCategory, Buttons: rows}, nil
}

// CategoryProductsByID lists the products behind a category button. Stock is
// hidden for prepared-dish categories.
func (s *CatalogService) CategoryProductsByID(ctx context.Context, categoryID int64) (domain.Reply, error) {
	products, err := s.store.ProductsByCategory(ctx, categoryID)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	if len(products) == 0 {
		return domain.TextReply(textNoProductsInCategory), nil
	}

	showStock := true
	category, err := s.store.CategoryByID(ctx, categoryID)
	switch {
	case err == nil:
		showStock = !slices.Contains(config.UnstockedCategories, category.Name)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Reply{}, fmt.Errorf("get category %d: %w", categoryID, err)
	}

	rows := make([][]domain.Button, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, productButton(p, showStock))
	}
	return backToCategories(textSelectProduct, rows), nil
}

// CategoryProducts lists a category requested by name in free text.
func (s *CatalogService) CategoryProducts(ctx context.Context, name string) (domain.Reply, error) {
	products, err := s.productsOfNamedCategory(ctx, name)
	if err != nil {
		return domain.Reply{}, err
	}
	if len(products) == 0 {
		return backToCategories(textNoProductsInCategory, nil), nil
	}

	rows := make([][]domain.Button, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, productButton(p, true))
	}
	return backToCategories(fmt.Sprintf(textCategoryProductsFmt, len(products), name), rows), nil
}

func (s *CatalogService) productsOfNamedCategory(ctx context.Context, name string) ([]domain.Product, error) {
	category, err := s.store.CategoryByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Debug("category not found", "name", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}

	products, err := s.store.ProductsByCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("list products of category %q: %w", name, err)
	}
	return products, nil
}

// Lunch lists soups (starters) and second courses together.
func (s *CatalogService) Lunch(ctx context.Context) (domain.Reply, error) {
	starters, err := s.productsOfNamedCategory(ctx, config.CategoryNameStarters)
	if err != nil {
		return domain.Reply{}, err
	}
	seconds, err := s.productsOfNamedCategory(ctx, config.CategoryNameSeconds)
	if err != nil {
		return domain.Reply{}, err
	}
	if len(starters) == 0 && len(seconds) == 0 {
		return backToCategories(textNoLunch, nil), nil
	}

	var rows [][]domain.Button
	if len(starters) > 0 {
		rows = append(rows, []domain.Button{{Text: buttonSoups, Data: CallbackSeparatorPrefix + "sopas"}})
		for _, p := range starters {
			rows = append(rows, productButton(p, true))
		}
	}
	if len(seconds) > 0 {
		rows = append(rows, []domain.Button{{Text: buttonSeconds, Data: CallbackSeparatorPrefix + "segundos"}})
		for _, p := range seconds {
			rows = append(rows, productButton(p, true))
		}
	}
	return backToCategories(textLunchHeader, rows), nil
}

func (s *CatalogService) MostOrdered(ctx context.Context) (domain.Reply, error) {
	p, err := s.store.MostOrdered(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return backToQuestions(textNoMostOrdered), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("get most ordered product: %w", err)
	}
	return backToQuestions(fmt.Sprintf(textMostOrderedFmt, p.Name, p.Price.StringFixed(2))), nil
}

func (s *CatalogService) MostSold(ctx context.Context, in intent.Intent) (domain.Reply, error) {
	pk, ok := mostSoldPicks[in]
	if !ok {
		return domain.Reply{}, fmt.Errorf("most sold: unknown intent %s", in)
	}

	sales, err := s.store.MostSoldByCategory(ctx, pk.categoryID)
	if errors.Is(err, domain.ErrNotFound) {
		return backToQuestions(pk.missing), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("get most sold of category %d: %w", pk.categoryID, err)
	}
	text := fmt.Sprintf(pk.format, sales.Product.Name, sales.TotalQuantity, sales.Product.Price.StringFixed(2))
	return backToQuestions(text), nil
}

func (s *CatalogService) Cheapest(ctx context.Context, in intent.Intent) (domain.Reply, error) {
	pk, ok := cheapestPicks[in]
	if !ok {
		return domain.Reply{}, fmt.Errorf("cheapest: unknown intent %s", in)
	}

	p, err := s.store.CheapestByCategory(ctx, pk.categoryID)
	if errors.Is(err, domain.ErrNotFound) {
		return backToQuestions(pk.missing), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("get cheapest of category %d: %w", pk.categoryID, err)
	}
	return backToQuestions(fmt.Sprintf(pk.format, p.Name, p.Price.StringFixed(2))), nil
}

// RecommendMain pairs the most sold starter with the most sold second course.
func (s *CatalogService) RecommendMain(ctx context.Context) (domain.Reply, error) {
	starter, err := s.store.MostSoldByCategory(ctx, config.CategoryStarters)
	if errors.Is(err, domain.ErrNotFound) {
		return backToQuestions(textNoMainCombination), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("get most sold starter: %w", err)
	}
	second, err := s.store.MostSoldByCategory(ctx, config.CategorySeconds)
	if errors.Is(err, domain.ErrNotFound) {
		return backToQuestions(textNoMainCombination), nil
	}
	if err != nil {
		return domain.Reply{}, fmt.Errorf("get most sold second: %w", err)
	}

	text := fmt.Sprintf(textMainCombinationFmt,
		starter.Product.Name, starter.TotalQuantity, starter.Product.Price.StringFixed(2),
		second.Product.Name, second.TotalQuantity, second.Product.Price.StringFixed(2))
	return backToQuestions(text), nil
}

func (s *CatalogService) lookup(ctx context.Context, name string) ([]domain.Product, error) {
	products, err := s.store.ProductsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find products %q: %w", name, err)
	}
	return products, nil
}

// Product describes the products matching name.
func (s *CatalogService) Product(ctx context.Context, name string) (domain.Reply, error) {
	products, err := s.lookup(ctx, name)
	if err != nil {
		return domain.Reply{}, err
	}

	var b strings.Builder
	switch len(products) {
	case 0:
		return backToQuestions(textNoProductByName), nil
	case 1:
		p := products[0]
		price := p.Price.StringFixed(2)
		if p.HasStock() {
			fmt.Fprintf(&b, "Claro, tenemos %s\n A un precio de $%s\n Disponemos de: %d unidades", p.Name, price, *p.Stock)
		} else {
			fmt.Fprintf(&b, "Claro, tenemos %s\n A un precio de $%s, pero recuerda estos no cuentan con un stock.", p.Name, price)
		}
		b.WriteString(textMiniAppReminder)
	default:
		fmt.Fprintf(&b, textMatchesFmt, len(products), name)
		for _, p := range products {
			if p.HasStock() {
				fmt.Fprintf(&b, "- %s: $%s (Stock: %d unidades)", p.Name, p.Price.StringFixed(2), *p.Stock)
			} else {
				fmt.Fprintf(&b, "- %s: Este producto no tiene stock.", p.Name)
			}
			b.WriteString(textMiniAppReminder)
		}
	}
	return backToQuestions(b.String()), nil
}

// Order checks whether quantity units of name could be bought. The quantity
// is validated before the catalog is queried.
func (s *CatalogService) Order(ctx context.Context, name string, quantity int) (domain.Reply, error) {
	if quantity <= 0 {
		slog.Info("rejected order quantity", "product", name, "quantity", quantity)
		return backToQuestions(textInvalidQuantity), nil
	}

	products, err := s.lookup(ctx, name)
	if err != nil {
		return domain.Reply{}, err
	}

	var b strings.Builder
	switch len(products) {
	case 0:
		return backToQuestions(textNoProductByName), nil
	case 1:
		p := products[0]
		switch {
		case p.Stock == nil:
			fmt.Fprintf(&b, textOrderUntrackedFmt, p.Name)
		case *p.Stock < quantity:
			fmt.Fprintf(&b, textOrderShortFmt, p.Name, *p.Stock)
		default:
			fmt.Fprintf(&b, textOrderOKFmt, p.Name, *p.Stock, *p.Stock-quantity)
		}
	default:
		fmt.Fprintf(&b, textMatchesFmt, len(products), name)
		for _, p := range products {
			switch {
			case p.Stock == nil:
				fmt.Fprintf(&b, textOrderUntrackedLineFmt, p.Name)
			case *p.Stock < quantity:
				fmt.Fprintf(&b, textOrderShortLineFmt, p.Name, *p.Stock)
			default:
				fmt.Fprintf(&b, textOrderOKLineFmt, p.Name, *p.Stock, *p.Stock-quantity)
			}
		}
	}
	return backToQuestions(b.String()), nil
}

func (s *CatalogService) Stock(ctx context.Context, name string) (domain.Reply, error) {
	products, err := s.lookup(ctx, name)
	if err != nil {
		return domain.Reply{}, err
	}

	var b strings.Builder
	switch len(products) {
	case 0:
		return backToQuestions(textNoProductByName), nil
	case 1:
		p := products[0]
		if p.Stock == nil {
			fmt.Fprintf(&b, textStockUntracked, p.Name)
		} else {
			fmt.Fprintf(&b, textStockFmt, p.Name, *p.Stock)
		}
	default:
		fmt.Fprintf(&b, textMatchesFmt, len(products), name)
		for _, p := range products {
			if p.Stock == nil {
				fmt.Fprintf(&b, "- %s: %s\n", p.Name, textStockUntrackedLine)
			} else {
				fmt.Fprintf(&b, "- %s: %d unidades disponibles.\n", p.Name, *p.Stock)
			}
		}
	}
	return backToQuestions(b.String()), nil
}

func (s *CatalogService) Price(ctx context.Context, name string) (domain.Reply, error) {
	products, err := s.lookup(ctx, name)
	if err != nil {
		return domain.Reply{}, err
	}

	var b strings.Builder
	switch len(products) {
	case 0:
		return backToQuestions(textNoProductByName), nil
	case 1:
		p := products[0]
		fmt.Fprintf(&b, textPriceFmt, p.Name, p.Price.StringFixed(2))
	default:
		fmt.Fprintf(&b, textMatchesFmt, len(products), name)
		for _, p := range products {
			fmt.Fprintf(&b, "- %s: $%s\n", p.Name, p.Price.StringFixed(2))
		}
	}
	return backToQuestions(b.String()), nil
}
