package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/textnorm"
)

const invalidQuantityText = "Por favor, proporciona una cantidad válida."

var leadingArticle = regexp.MustCompile(`^(?:una|un|el|la|los|las)\s+`)

// Resolver maps a normalized fragment to a catalog product name.
type Resolver interface {
	Resolve(ctx context.Context, fragment string) (string, error)
}

type (
	ActionFunc   func(ctx context.Context) (domain.Reply, error)
	NameFunc     func(ctx context.Context, name string) (domain.Reply, error)
	QuantityFunc func(ctx context.Context, name string, quantity int) (domain.Reply, error)
)

// Bindings wires every intent to its handler. Absence of catalog data is
// expected to come back as a reply, not an error.
type Bindings struct {
	Greeting domain.Reply
	Actions  map[Intent]ActionFunc
	Lunch    ActionFunc
	Category NameFunc
	Product  NameFunc
	Order    QuantityFunc
	Stock    NameFunc
	Price    NameFunc
}

type Outcome int

const (
	// OutcomeFallback means no tier matched.
	OutcomeFallback Outcome = iota
	OutcomeReply
	// OutcomeExit asks the caller to start the rating flow.
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReply:
		return "reply"
	case OutcomeExit:
		return "exit"
	default:
		return "fallback"
	}
}

type Result struct {
	Outcome Outcome
	Match   Match
	Reply   domain.Reply
}

type Router struct {
	catalog  *Catalog
	resolver Resolver
	b        Bindings
}

func NewRouter(catalog *Catalog, resolver Resolver, b Bindings) (*Router, error) {
	for _, in := range catalog.ActionIntents() {
		if b.Actions[in] == nil {
			return nil, fmt.Errorf("new router: no handler bound for %s", in)
		}
	}
	if b.Lunch == nil || b.Category == nil || b.Product == nil || b.Order == nil || b.Stock == nil || b.Price == nil {
		return nil, errors.New("new router: incomplete bindings")
	}
	return &Router{catalog: catalog, resolver: resolver, b: b}, nil
}

// Route runs text through the tiers in priority order and invokes the
// handler of the first match. A returned error is always a collaborator
// failure.
func (r *Router) Route(ctx context.Context, text string) (Result, error) {
	msg := textnorm.Fold(text)

	for _, tier := range r.catalog.Tiers() {
		res, ok, err := r.routeTier(ctx, tier, msg)
		if err != nil {
			return Result{}, fmt.Errorf("route %s: %w", tier.Name, err)
		}
		if ok {
			slog.Debug("intent matched", "tier", tier.Name, "intent", res.Match.Intent, "pattern", res.Match.Pattern)
			return res, nil
		}
	}
	return Result{Outcome: OutcomeFallback}, nil
}

func (r *Router) routeTier(ctx context.Context, tier Tier, msg string) (Result, bool, error) {
	switch tier.Name {
	case TierCategory:
		return r.routeCategory(ctx, tier, msg)
	case TierProduct:
		return r.routeProduct(ctx, tier, msg)
	}

	m, ok := tier.Match(msg)
	if !ok {
		return Result{}, false, nil
	}

	var (
		reply domain.Reply
		err   error
	)
	switch tier.Name {
	case TierGreeting:
		return Result{Outcome: OutcomeReply, Match: m, Reply: r.b.Greeting}, true, nil
	case TierExit:
		return Result{Outcome: OutcomeExit, Match: m}, true, nil
	case TierAction:
		reply, err = r.b.Actions[m.Intent](ctx)
	case TierOrder:
		qty, convErr := strconv.Atoi(m.Groups[0])
		if convErr != nil {
			slog.Info("invalid quantity", "raw", m.Groups[0])
			reply = domain.TextReply(invalidQuantityText)
			break
		}
		reply, err = r.b.Order(ctx, title(m.Groups[1]), qty)
	case TierStock:
		reply, err = r.b.Stock(ctx, title(m.Groups[0]))
	case TierPrice:
		name := leadingArticle.ReplaceAllString(m.Groups[0], "")
		reply, err = r.b.Price(ctx, title(name))
	default:
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	return Result{Outcome: OutcomeReply, Match: m, Reply: reply}, true, nil
}

func (r *Router) routeCategory(ctx context.Context, tier Tier, msg string) (Result, bool, error) {
	if k, ok := r.catalog.Keyword(msg); ok {
		m := Match{Intent: k.Intent, Pattern: k.Phrase, Groups: []string{k.Category}}
		var (
			reply domain.Reply
			err   error
		)
		if k.Intent == IntentLunch {
			reply, err = r.b.Lunch(ctx)
		} else {
			reply, err = r.b.Category(ctx, k.Category)
		}
		if err != nil {
			return Result{}, false, err
		}
		return Result{Outcome: OutcomeReply, Match: m, Reply: reply}, true, nil
	}

	m, ok := tier.Match(msg)
	if !ok || m.Groups[0] == "" {
		return Result{}, false, nil
	}
	reply, err := r.b.Category(ctx, title(m.Groups[0]))
	if err != nil {
		return Result{}, false, err
	}
	return Result{Outcome: OutcomeReply, Match: m, Reply: reply}, true, nil
}

// routeProduct declines when the fragment resolves to nothing so the
// quantity and price tiers still get a chance.
func (r *Router) routeProduct(ctx context.Context, tier Tier, msg string) (Result, bool, error) {
	m, ok := r.productMatch(tier, msg)
	if !ok {
		return Result{}, false, nil
	}

	name, err := r.resolver.Resolve(ctx, textnorm.Normalize(m.Groups[0]))
	if errors.Is(err, domain.ErrNotFound) {
		slog.Debug("product fragment not resolved", "fragment", m.Groups[0])
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}

	m.Groups = append(m.Groups, name)
	reply, err := r.b.Product(ctx, name)
	if err != nil {
		return Result{}, false, err
	}
	return Result{Outcome: OutcomeReply, Match: m, Reply: reply}, true, nil
}

// productMatch finds the leftmost request whose fragment is not a category
// noun, retrying from each following word.
func (r *Router) productMatch(tier Tier, msg string) (Match, bool) {
	for _, rule := range tier.Rules {
		for _, re := range rule.Patterns {
			offset := 0
			for offset < len(msg) {
				m, start, ok := matchFrom(rule.Intent, re, msg, offset)
				if !ok {
					break
				}
				if !r.catalog.IsCategoryFragment(m.Groups[0]) {
					return m, true
				}
				next := strings.IndexByte(msg[start:], ' ')
				if next < 0 {
					break
				}
				offset = start + next + 1
			}
		}
	}
	return Match{}, false
}

func matchFrom(in Intent, re *regexp.Regexp, msg string, offset int) (Match, int, bool) {
	loc := re.FindStringSubmatchIndex(msg[offset:])
	if loc == nil {
		return Match{}, 0, false
	}
	groups := make([]string, 0, len(loc)/2-1)
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, strings.TrimSpace(msg[offset+loc[i]:offset+loc[i+1]]))
	}
	return Match{Intent: in, Pattern: re.String(), Groups: groups}, offset + loc[0], true
}

func title(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}
