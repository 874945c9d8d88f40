package apiclient

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/domain/menu"
)

var _ menu.Source = (*Client)(nil)

// Meals returns the public menu, normalized.
func (c *Client) Meals(ctx context.Context) ([]menu.Item, error) {
	return c.meals(ctx, call{
		op:       "public menu",
		method:   http.MethodGet,
		path:     "/meal",
		fallback: "Failed to fetch menu",
	})
}

func (c *Client) meals(ctx context.Context, cl call) ([]menu.Item, error) {
	body, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	raw, err := dataField(body)
	if err != nil {
		return nil, errors.Wrap(err, cl.op)
	}
	if len(raw) == 0 || raw.Type() == jx.Null {
		return []menu.Item{}, nil
	}

	items, skipped, err := menu.DecodeMeals(jx.DecodeBytes(raw))
	if err != nil {
		return nil, errors.Wrap(err, cl.op)
	}
	if skipped > 0 {
		zctx.From(ctx).Warn("Skipped meals without id",
			zap.String("op", cl.op),
			zap.Int("skipped", skipped),
		)
	}
	return items, nil
}
