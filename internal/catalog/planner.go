package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/models"
	"github.com/nhatminh/shopbot/internal/storage"
)

const freeTextLimit = 10

// Synonym groups used when matching a category slot against the category
// name stored on a product.
var categoryMatchGroups = map[string][]string{
	"phone":     {"phone", "điện thoại", "smartphone"},
	"laptop":    {"laptop", "máy tính"},
	"tablet":    {"tablet", "ipad"},
	"headphone": {"tai nghe", "headphone"},
	"watch":     {"đồng hồ", "watch"},
}

// Planner turns a classified intent into catalog retrievals, filters and
// ranks the results, and truncates them to the intent's result cap.
type Planner struct {
	store  storage.CatalogStore
	logger *zap.Logger
}

func NewPlanner(store storage.CatalogStore, logger *zap.Logger) *Planner {
	return &Planner{store: store, logger: logger}
}

// FindProducts retrieves the products an intent asks about. Intents that
// need no data (greeting, goodbye, FAQ, unknown) yield an empty result.
func (p *Planner) FindProducts(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	if it == nil || !it.Type.RequiresCatalog() {
		return nil, nil
	}

	var (
		products []models.Product
		err      error
	)

	switch it.Type {
	case intent.ProductInquiry, intent.CheckStock, intent.PriceInquiry:
		products, err = p.findByInquiry(ctx, it)
	case intent.FindByBudget:
		products, err = p.findByBudget(ctx, it)
	case intent.FindByCategory:
		products, err = p.findByCategory(ctx, it)
	case intent.FindByBrand:
		products, err = p.store.FindProductsByNameContains(ctx, it.Brand)
	case intent.FindBySpecs:
		products, err = p.findBySpecs(ctx, it)
	case intent.CompareProducts:
		products, err = p.findForComparison(ctx, it)
	default:
		products, err = p.findByKeywords(ctx, it)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog query for %s: %w", it.Type, err)
	}

	if it.HasPriceFilter() {
		products = filterByPrice(products, it.MinPrice, it.MaxPrice)
	}

	if it.Storage != "" {
		products, err = p.filterByStorage(ctx, products, it.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage filter: %w", err)
		}
	}

	products, err = p.sortByRelevance(ctx, products, it)
	if err != nil {
		return nil, fmt.Errorf("relevance sort: %w", err)
	}

	max := it.MaxResults
	if max <= 0 {
		max = 5
	}
	if len(products) > max {
		products = products[:max]
	}

	p.logger.Debug("catalog query complete",
		zap.String("intent", string(it.Type)),
		zap.Int("results", len(products)))

	return products, nil
}

// findByInquiry prefers an exact name hit, then unions per-keyword
// name-contains matches, then falls back to free-text search.
func (p *Planner) findByInquiry(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	if it.ProductName != "" {
		product, err := p.store.FindProductByName(ctx, it.ProductName)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if product != nil {
			return []models.Product{*product}, nil
		}
	}

	var products []models.Product
	seen := make(map[int64]struct{})
	for _, keyword := range it.Keywords {
		matches, err := p.store.FindProductsByNameContains(ctx, keyword)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			products = append(products, m)
		}
	}
	if len(products) > 0 {
		return products, nil
	}

	term := it.ProductName
	if term == "" {
		term = strings.Join(it.Keywords, " ")
	}
	return p.store.SearchProducts(ctx, term, freeTextLimit)
}

func (p *Planner) findByBudget(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	min := it.MinPrice
	max := it.MaxPrice
	if max <= 0 {
		max = math.MaxFloat64
	}

	products, err := p.store.FindProductsByPriceRange(ctx, min, max)
	if err != nil {
		return nil, err
	}

	if it.Category != "" {
		products = filterProducts(products, func(pr models.Product) bool {
			return matchesCategory(pr, it.Category)
		})
	}
	return products, nil
}

func (p *Planner) findByCategory(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	products, err := p.store.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return filterProducts(products, func(pr models.Product) bool {
		return matchesCategory(pr, it.Category)
	}), nil
}

func (p *Planner) findBySpecs(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	products, err := p.store.AllProducts(ctx)
	if err != nil {
		return nil, err
	}

	if it.Storage != "" {
		products, err = p.filterByStorage(ctx, products, it.Storage)
		if err != nil {
			return nil, err
		}
	}

	if it.RAM != "" {
		ram := strings.ToLower(it.RAM)
		products = filterProducts(products, func(pr models.Product) bool {
			return strings.Contains(strings.ToLower(pr.Name), ram)
		})
	}

	if it.Category != "" {
		products = filterProducts(products, func(pr models.Product) bool {
			return matchesCategory(pr, it.Category)
		})
	}
	return products, nil
}

// findForComparison resolves the first matching product per keyword,
// stopping once two distinct products are found. Fewer than two keywords
// cannot be compared.
func (p *Planner) findForComparison(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	if len(it.Keywords) < 2 {
		return nil, nil
	}

	var products []models.Product
	seen := make(map[int64]struct{})
	for _, keyword := range it.Keywords {
		matches, err := p.store.FindProductsByNameContains(ctx, keyword)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			if _, dup := seen[matches[0].ID]; !dup {
				seen[matches[0].ID] = struct{}{}
				products = append(products, matches[0])
			}
		}
		if len(products) >= 2 {
			break
		}
	}
	return products, nil
}

func (p *Planner) findByKeywords(ctx context.Context, it *intent.Intent) ([]models.Product, error) {
	if len(it.Keywords) == 0 {
		return nil, nil
	}
	return p.store.SearchProducts(ctx, strings.Join(it.Keywords, " "), freeTextLimit)
}

func filterProducts(products []models.Product, keep func(models.Product) bool) []models.Product {
	filtered := products[:0:0]
	for _, pr := range products {
		if keep(pr) {
			filtered = append(filtered, pr)
		}
	}
	return filtered
}

func filterByPrice(products []models.Product, min, max float64) []models.Product {
	return filterProducts(products, func(pr models.Product) bool {
		if min > 0 && pr.Price < min {
			return false
		}
		if max > 0 && pr.Price > max {
			return false
		}
		return true
	})
}

// filterByStorage keeps products whose name or any variant name mentions
// the storage token.
func (p *Planner) filterByStorage(ctx context.Context, products []models.Product, storageToken string) ([]models.Product, error) {
	token := strings.ToLower(storageToken)
	var filtered []models.Product
	for _, pr := range products {
		if strings.Contains(strings.ToLower(pr.Name), token) {
			filtered = append(filtered, pr)
			continue
		}
		variants, err := p.store.FindVariantsByProductID(ctx, pr.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			if strings.Contains(strings.ToLower(v.Name), token) {
				filtered = append(filtered, pr)
				break
			}
		}
	}
	return filtered, nil
}

// sortByRelevance orders products by descending score. Equal scores keep
// their retrieval order.
func (p *Planner) sortByRelevance(ctx context.Context, products []models.Product, it *intent.Intent) ([]models.Product, error) {
	scores := make(map[int64]int, len(products))
	for _, pr := range products {
		score, err := p.relevanceScore(ctx, pr, it)
		if err != nil {
			return nil, err
		}
		scores[pr.ID] = score
	}

	sort.SliceStable(products, func(i, j int) bool {
		return scores[products[i].ID] > scores[products[j].ID]
	})
	return products, nil
}

func (p *Planner) relevanceScore(ctx context.Context, pr models.Product, it *intent.Intent) (int, error) {
	score := 0
	name := strings.ToLower(pr.Name)

	if it.ProductName != "" && name == strings.ToLower(it.ProductName) {
		score += 100
	}

	for _, keyword := range it.Keywords {
		if strings.Contains(name, strings.ToLower(keyword)) {
			score += 10
		}
	}

	if it.Brand != "" && strings.Contains(name, strings.ToLower(it.Brand)) {
		score += 30
	}

	if it.Category != "" && matchesCategory(pr, it.Category) {
		score += 20
	}

	if it.NeedsStockCheck {
		variants, err := p.store.FindVariantsByProductID(ctx, pr.ID)
		if err != nil {
			return 0, err
		}
		for _, v := range variants {
			if v.InStock() {
				score += 10
				break
			}
		}
	}

	return score, nil
}

func matchesCategory(pr models.Product, categoryKeyword string) bool {
	if pr.CategoryName == "" {
		return false
	}

	categoryName := strings.ToLower(pr.CategoryName)
	categoryKeyword = strings.ToLower(categoryKeyword)

	for _, synonyms := range categoryMatchGroups {
		for _, syn := range synonyms {
			if syn != categoryKeyword {
				continue
			}
			for _, s := range synonyms {
				if strings.Contains(categoryName, s) {
					return true
				}
			}
			return false
		}
	}

	return strings.Contains(categoryName, categoryKeyword)
}
