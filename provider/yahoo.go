package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"nsewatch/models"
)

// YahooClient implements Client against the Yahoo Finance public API.
type YahooClient struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooClient creates a Yahoo Finance client. proxyURL may be empty.
func NewYahooClient(baseURL, proxyURL string, timeout time.Duration) *YahooClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *YahooClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// DailyHistory downloads daily bars for all tickers in a single spark
// request over [start, end).
func (c *YahooClient) DailyHistory(ctx context.Context, tickers []string, start, end time.Time) (*BatchResult, error) {
	u := fmt.Sprintf("%s/v8/finance/spark?symbols=%s&period1=%d&period2=%d&interval=1d",
		c.BaseURL,
		url.QueryEscape(strings.Join(tickers, ",")),
		start.Unix(), end.Unix())

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return decodeBatch(body, tickers)
}

// yahooChart is the response structure of the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches daily closes for one ticker over a named range such
// as "1mo" or "6mo".
func (c *YahooClient) History(ctx context.Context, ticker string, period string) (models.PriceSeries, error) {
	if period == "" {
		period = DefaultHistoryPeriod
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.BaseURL, url.PathEscape(ticker), url.QueryEscape(period))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data returned")
	}
	quote := result.Indicators.Quote[0]

	bars := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, models.PriceBar{
			Date:  time.Unix(ts, 0),
			Close: toFloat(quote.Close[i]),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// yahooQuoteSummary is the envelope of the quoteSummary API.
type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []map[string]any `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Details fetches the provider's raw info object for one ticker.
func (c *YahooClient) Details(ctx context.Context, ticker string) (map[string]any, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.BaseURL, url.PathEscape(ticker), url.QueryEscape("price,summaryDetail"))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var summary yahooQuoteSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no info for %s", ticker)
	}
	return summary.QuoteSummary.Result[0], nil
}

var _ Client = (*YahooClient)(nil)
