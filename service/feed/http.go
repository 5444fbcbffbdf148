package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"stablevault/core"
	"stablevault/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
)

const headerKeyRequestID = "X-Request-Id"

// HTTPFeed pulls quotes from a price endpoint serving {endpoint}/{asset}
type HTTPFeed struct {
	client *resty.Client
}

// NewHTTP feed reading {endpoint}/{asset}
func NewHTTP(endpoint string) *HTTPFeed {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(endpoint, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &HTTPFeed{client: client}
}

type quoteResponse struct {
	Answer    string `json:"answer"`
	UpdatedAt int64  `json:"updated_at"`
	Decimals  uint8  `json:"decimals"`
}

func (f *HTTPFeed) LatestQuote(ctx context.Context, asset core.Asset) (*core.Quote, error) {
	log := logger.FromContext(ctx).WithField("asset", asset)

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader(headerKeyRequestID, id.GenTraceID()).
		SetPathParam("asset", string(asset)).
		Get("/{asset}")
	if err != nil {
		log.WithError(err).Errorln("feed.LatestQuote")
		return nil, fmt.Errorf("%s: %w", err.Error(), core.ErrFeedUnavailable)
	}

	if !resp.IsSuccess() {
		log.Errorln("feed.LatestQuote", resp.Status())
		return nil, fmt.Errorf("%s: %w", resp.Status(), core.ErrFeedUnavailable)
	}

	var body quoteResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		log.WithError(err).Errorln("feed.LatestQuote: decode")
		return nil, fmt.Errorf("%s: %w", err.Error(), core.ErrFeedUnavailable)
	}

	answer, ok := new(big.Int).SetString(body.Answer, 10)
	if !ok {
		return nil, fmt.Errorf("malformed answer %q: %w", body.Answer, core.ErrInvalidPrice)
	}

	return &core.Quote{
		Answer:    answer,
		UpdatedAt: body.UpdatedAt,
		Decimals:  body.Decimals,
	}, nil
}
