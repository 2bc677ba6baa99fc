// Package fuzzy resolves free-text product fragments to catalog names.
package fuzzy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/textnorm"
)

// DefaultThreshold is the score a fuzzy candidate must strictly exceed.
const DefaultThreshold = 70

// Store is the slice of the catalog the resolver reads.
type Store interface {
	ProductsByName(ctx context.Context, fragment string) ([]domain.Product, error)
	ProductNames(ctx context.Context) ([]string, error)
}

type Resolver struct {
	store     Store
	threshold int
}

func NewResolver(store Store, threshold int) *Resolver {
	return &Resolver{store: store, threshold: threshold}
}

// Resolve maps fragment to a product name. A substring hit wins outright and
// returns the first product in catalog order; otherwise the closest name is
// returned if its score is above the threshold. domain.ErrNotFound is
// returned when nothing qualifies; store failures are returned wrapped.
func (r *Resolver) Resolve(ctx context.Context, fragment string) (string, error) {
	normalized := strings.TrimSpace(textnorm.Normalize(fragment))
	if normalized == "" {
		return "", domain.ErrNotFound
	}

	products, err := r.store.ProductsByName(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("lookup products by name: %w", err)
	}
	if len(products) > 0 {
		return products[0].Name, nil
	}

	names, err := r.store.ProductNames(ctx)
	if err != nil {
		return "", fmt.Errorf("list product names: %w", err)
	}

	match, score, ok := BestMatch(normalized, names)
	if !ok || score <= r.threshold {
		slog.Debug("no fuzzy match", "fragment", normalized, "best", match, "score", score)
		return "", domain.ErrNotFound
	}

	slog.Debug("fuzzy match", "fragment", normalized, "match", match, "score", score)
	return match, nil
}
