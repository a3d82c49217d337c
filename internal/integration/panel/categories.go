package panel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
)

// FetchCategories reads every page of the category listing, following
// "next" links until one is absent or empty.
func (g *Gateway) FetchCategories(ctx context.Context, chatID entity.ChatID) ([]entity.Category, error) {
	a, err := g.resolveAuth(chatID)
	if err != nil {
		return nil, err
	}
	ctx = a.logContext(ctx, "fetch_categories")

	maxPages := g.cfg.MaxCategoryPages
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []entity.Category
	visited := make(map[string]bool)
	next := a.origin + CategoriesPath

	for page := 1; next != ""; page++ {
		if page > maxPages {
			return nil, &ShapeError{Reason: fmt.Sprintf("category listing exceeds %d pages", maxPages)}
		}
		if visited[next] {
			return nil, &ShapeError{Reason: fmt.Sprintf("category pagination loops back to %s", next)}
		}
		visited[next] = true

		resp, err := a.conn.Do(ctx, http.MethodGet, "", nil, "", a.withURL(next)...)
		if err != nil {
			return nil, fmt.Errorf("fetch categories page %d: %w", page, err)
		}

		root, err := decodeBody(resp)
		if err != nil {
			return nil, err
		}

		items, ok := extractItems(root)
		if !ok {
			return nil, shapeError(resp, "no results/result array in category listing")
		}

		skipped := 0
		for _, item := range items {
			c, ok := toCategory(item)
			if !ok {
				skipped++
				continue
			}
			out = append(out, c)
		}
		if skipped > 0 {
			ctxzap.Debug(ctx, "skipped categories without numeric id", zap.Int("page", page), zap.Int("skipped", skipped))
		}

		next = ""
		if ref := nextLink(root); ref != "" {
			next, err = entity.JoinURL(a.origin, ref)
			if err != nil {
				return nil, shapeError(resp, "invalid next link %q", ref)
			}
		}
	}

	ctxzap.Info(ctx, "categories fetched", zap.Int("count", len(out)))

	return out, nil
}
