// Package intent holds the ordered pattern catalog and the router that
// cascades an inbound message through it.
//
// Patterns are written against the folded message (lower case, diacritics
// removed), so "menú" and "menu" are the same input.
package intent

import (
	"regexp"
	"strings"
)

type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentExit     Intent = "exit"

	IntentShowMenu          Intent = "show_menu"
	IntentMostOrdered       Intent = "most_ordered"
	IntentMostSoldDrink     Intent = "most_sold_drink"
	IntentMostSoldSport     Intent = "most_sold_sport_drink"
	IntentMostSoldBreakfast Intent = "most_sold_breakfast"
	IntentMostSoldStarter   Intent = "most_sold_starter"
	IntentMostSoldSecond    Intent = "most_sold_second"
	IntentMostSoldSnack     Intent = "most_sold_snack"
	IntentCheapestDrink     Intent = "cheapest_drink"
	IntentCheapestSport     Intent = "cheapest_sport_drink"
	IntentCheapestBreakfast Intent = "cheapest_breakfast"
	IntentCheapestStarter   Intent = "cheapest_starter"
	IntentCheapestSecond    Intent = "cheapest_second"
	IntentCheapestSnack     Intent = "cheapest_snack"
	IntentRecommendMain     Intent = "recommend_main"

	IntentCategory Intent = "category"
	IntentLunch    Intent = "lunch"
	IntentProduct  Intent = "product"
	IntentOrder    Intent = "order"
	IntentStock    Intent = "stock"
	IntentPrice    Intent = "price"
)

// TierName identifies a priority group. Tiers run in the order they appear
// in the catalog.
type TierName string

const (
	TierGreeting TierName = "greeting"
	TierExit     TierName = "exit"
	TierAction   TierName = "action"
	TierCategory TierName = "category"
	TierProduct  TierName = "product"
	TierOrder    TierName = "order"
	TierStock    TierName = "stock"
	TierPrice    TierName = "price"
)

// Rule binds an intent to its patterns, tried in declaration order.
type Rule struct {
	Intent   Intent
	Patterns []*regexp.Regexp
}

type Tier struct {
	Name  TierName
	Rules []Rule
}

// Match is the result of one pattern hitting a message.
type Match struct {
	Intent  Intent
	Pattern string
	Groups  []string
}

// Match tries each rule and pattern in declaration order against msg and
// returns the first hit.
func (t Tier) Match(msg string) (Match, bool) {
	for _, rule := range t.Rules {
		for _, re := range rule.Patterns {
			if m, ok := matchPattern(rule.Intent, re, msg); ok {
				return m, true
			}
		}
	}
	return Match{}, false
}

func matchPattern(in Intent, re *regexp.Regexp, msg string) (Match, bool) {
	sub := re.FindStringSubmatch(msg)
	if sub == nil {
		return Match{}, false
	}
	groups := make([]string, 0, len(sub)-1)
	for _, g := range sub[1:] {
		groups = append(groups, strings.TrimSpace(g))
	}
	return Match{Intent: in, Pattern: re.String(), Groups: groups}, true
}

// Keyword maps a phrase contained in the message to a category name.
type Keyword struct {
	Phrase   string
	Category string
	Intent   Intent
}

// Catalog is the read-only, process-wide table of tiers.
type Catalog struct {
	tiers    []Tier
	keywords []Keyword
	// Fragments starting with one of these are category requests, not
	// product names.
	categoryNouns []string
}

func (c *Catalog) Tiers() []Tier {
	return c.tiers
}

func (c *Catalog) Tier(name TierName) (Tier, bool) {
	for _, t := range c.tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Keyword returns the first keyword contained in msg. Multi-word keys are
// listed before the single-word keys they contain.
func (c *Catalog) Keyword(msg string) (Keyword, bool) {
	for _, k := range c.keywords {
		if strings.Contains(msg, k.Phrase) {
			return k, true
		}
	}
	return Keyword{}, false
}

// IsCategoryFragment reports whether a captured product fragment starts with
// a category noun.
func (c *Catalog) IsCategoryFragment(fragment string) bool {
	for _, noun := range c.categoryNouns {
		if strings.HasPrefix(fragment, noun) {
			return true
		}
	}
	return false
}

// ActionIntents lists the zero-argument intents of the action tier.
func (c *Catalog) ActionIntents() []Intent {
	t, _ := c.Tier(TierAction)
	intents := make([]Intent, 0, len(t.Rules))
	for _, r := range t.Rules {
		intents = append(intents, r.Intent)
	}
	return intents
}

func rule(in Intent, patterns ...string) Rule {
	r := Rule{Intent: in, Patterns: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		r.Patterns[i] = regexp.MustCompile(p)
	}
	return r
}

// mostSold builds the "most sold X" variants for a noun with the given
// gendered article and adjective ending ("la bebida mas vendida").
func mostSold(in Intent, noun, article, end string) Rule {
	return rule(in,
		`\b`+noun+` mas vendid`+end+`\b`,
		`\b`+noun+` mas popular\b`,
		`\b`+noun+` mas pedid`+end+`\b`,
		`\bcual es `+article+` `+noun+` mas vendid`+end+`\b`,
		`\bcual es `+article+` `+noun+` mas popular\b`,
		`\bcual es `+article+` `+noun+` mas pedid`+end+`\b`,
		`\bcual es `+article+` `+noun+` mas solicitad`+end+`\b`,
		`\bque `+noun+` es `+article+` mas vendid`+end+`\b`,
		`\bque `+noun+` es `+article+` mas popular\b`,
	)
}

// cheapest builds the "recommend X" variants.
func cheapest(in Intent, noun, end string, extra ...string) Rule {
	patterns := []string{
		`\b` + noun + ` recomendad` + end + `\b`,
		`\bque ` + noun + ` recomiendas\b`,
		`\bque ` + noun + ` me recomiendas\b`,
		`\bque ` + noun + ` es buen` + end + `\b`,
		`\bque ` + noun + ` economic` + end + ` me recomiendas\b`,
		`\bque ` + noun + ` es buen` + end + ` y economic` + end + `\b`,
	}
	return rule(in, append(patterns, extra...)...)
}

// DefaultCatalog is built once; its tiers are never mutated.
var DefaultCatalog = newDefaultCatalog()

func newDefaultCatalog() *Catalog {
	return &Catalog{
		tiers: []Tier{
			{Name: TierGreeting, Rules: []Rule{rule(IntentGreeting,
				`\bhola\b`, `\bhi\b`, `\bhello\b`, `\bbuenos dias\b`, `\bbuenas tardes\b`, `\bbuenas noches\b`,
				`\bcomo estas\b`, `\bque tal\b`, `\bque pasa\b`,
			)}},
			{Name: TierExit, Rules: []Rule{rule(IntentExit,
				`\bsalir\b`, `\bsalir del chat\b`, `\bterminar\b`,
			)}},
			{Name: TierAction, Rules: []Rule{
				rule(IntentShowMenu,
					`\bmenu\b`, `\bcarta\b`, `\bver opciones\b`, `\bver menu\b`, `\bver carta\b`,
				),
				rule(IntentMostOrdered,
					`\bproducto mas pedido\b`, `\borden mas pedida\b`, `\bproducto mas vendido\b`,
					`\borden mas vendida\b`, `\bcual es el producto mas pedido\b`, `\bcual es el producto mas popular\b`,
					`\bcual es el producto mas vendido\b`, `\bcual es la orden mas pedida\b`,
					`\bcual es el pedido mas popular\b`, `\bcual es la venta mas popular\b`,
					`\bcual es la orden mas vendida\b`, `\bcual es la venta mas vendida\b`,
				),
				mostSold(IntentMostSoldDrink, "bebida", "la", "a"),
				mostSold(IntentMostSoldSport, "bebida deportiva", "la", "a"),
				mostSold(IntentMostSoldBreakfast, "desayuno", "el", "o"),
				mostSold(IntentMostSoldStarter, "entrada", "la", "a"),
				mostSold(IntentMostSoldSecond, "segundo", "el", "o"),
				mostSold(IntentMostSoldSnack, "snack", "el", "o"),
				cheapest(IntentCheapestDrink, "bebida", "a"),
				cheapest(IntentCheapestSport, "bebida deportiva", "a"),
				cheapest(IntentCheapestBreakfast, "desayuno", "o"),
				cheapest(IntentCheapestStarter, "entrada", "a"),
				cheapest(IntentCheapestSecond, "segundo", "o",
					`\bque plato fuerte recomiendas\b`, `\bque plato fuerte me recomiendas\b`,
					`\bque plato fuerte es bueno\b`, `\bque plato fuerte es el mas comprado\b`,
					`\bque plato fuerte es el mas vendido\b`,
				),
				cheapest(IntentCheapestSnack, "snack", "o"),
				rule(IntentRecommendMain,
					`\balmuerzo recomendado\b`, `\bque almuerzo recomiendas\b`, `\bque almuerzo me recomiendas\b`,
					`\bcual es el plato mas popular\b`, `\bcual es el plato mas vendido\b`,
					`\bcual es el plato mas pedido\b`, `\bque almuerzo es bueno\b`,
					`\bque almuerzo economico me recomiendas\b`, `\bque almuerzo es bueno y economico\b`,
					`\bdeseo un almuerzo\b`, `\bdame un almuerzo\b`,
				),
			}},
			{Name: TierCategory, Rules: []Rule{rule(IntentCategory,
				`\b(?:que|me\s+gustaria)\s+(?:ver|tener|una|la|un)\s+(bebidas? deportivas?|desayunos?|bebidas?|entradas?|platos?|snacks?|almuerzos?|segundos?|postres?)\b`,
				`\b(?:muestrame|ensename|ver|quiero\s+ver)\s+(?:el\s+)?(?:menu|lista)\s+(?:de\s+)?(\w+)\b`,
				`\b(?:productos|articulos|opciones|cosas)\s+(?:de\s+la\s+categoria\s+)?(\w+)\b`,
				`\b(?:categoria\s+de\s+)?(\w+)\s+(?:productos|articulos|opciones|menu)\b`,
				`\b(?:tienes|hay)\s+(\w+)\s+(?:en\s+(?:el\s+menu|la\s+categoria))\b`,
				`\bquiero\s+la\s+lista\s+de\s+(\w+)\b`,
				`\bcuales\s+son\s+los\s+productos\s+de\s+la\s+categoria\s+(\w+)\b`,
			)}},
			{Name: TierProduct, Rules: []Rule{rule(IntentProduct,
				`\b(?:tienes|quiero|dame|quisiera|necesito|me\s+puedes\s+ayudar\s+con|me\s+gustaria(?:\s+pedir|\s+ordenar)?|deseo|y)\s+(?:una|un|la|el)\s+([\w\s]+)\b`,
			)}},
			{Name: TierOrder, Rules: []Rule{rule(IntentOrder,
				`\bquiero\s+(-?\d+)\s+(\w+)`,
				`\bquisiera\s+(-?\d+)\s+(\w+)`,
				`\bnecesito\s+(-?\d+)\s+(\w+)`,
			)}},
			{Name: TierStock, Rules: []Rule{rule(IntentStock,
				`\bcuant[oa]s?\s+([\w\s]+)\s+(?:tienes|hay|quedan)(?:\s+en\s+(?:stock|inventario|existencia|bodega|almacen|deposito|disponibles))?\b`,
			)}},
			{Name: TierPrice, Rules: []Rule{rule(IntentPrice,
				`\bcuanto\s+(?:cuesta|vale|valen|cuestan)\s+(?:(?:el|la|los|las)\s+)?(.*)\b`,
				`\bque\s+(?:precio|valor|costo)\s+(?:tiene|tienen)\s+(?:(?:el|la|los|las)\s+)?(.*)\b`,
				`\bprecio\s+(?:(?:del|de\s+la|de\s+los|de\s+las|de)\s+)?(.*)\b`,
				`\bcosto\s+(?:(?:del|de\s+la|de\s+los|de\s+las|de)\s+)?(.*)\b`,
				`\bvalor\s+(?:(?:del|de\s+la|de\s+los|de\s+las|de)\s+)?(.*)\b`,
			)}},
		},
		keywords: []Keyword{
			{Phrase: "almuerzo", Category: "Almuerzos", Intent: IntentLunch},
			{Phrase: "sopa", Category: "Entradas", Intent: IntentCategory},
			{Phrase: "bebida deportiva", Category: "Bebidas Deportivas", Intent: IntentCategory},
			{Phrase: "bebidas deportivas", Category: "Bebidas Deportivas", Intent: IntentCategory},
			{Phrase: "desayuno", Category: "Desayunos", Intent: IntentCategory},
			{Phrase: "bebida", Category: "Bebidas", Intent: IntentCategory},
			{Phrase: "segundo", Category: "Segundos", Intent: IntentCategory},
			{Phrase: "entrada", Category: "Entradas", Intent: IntentCategory},
			{Phrase: "snack", Category: "Snacks", Intent: IntentCategory},
		},
		categoryNouns: []string{"desayuno", "almuerzo", "segundo", "entrada", "snack", "postre"},
	}
}
