package tushare

import (
	"github.com/quantumstock/backend/pkg/config"
	"github.com/quantumstock/backend/pkg/httputil"
	"github.com/quantumstock/backend/pkg/logger"
)

// Client talks to the Tushare Pro HTTP API.
// All provider calls go through this client.
//
// Transport-level retry is disabled on purpose: the ingestion fetcher owns
// the retry policy for provider errors, so a failure here surfaces
// immediately and exactly one policy decides what happens next.
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// NewClient creates a new Tushare client.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.New(log).
		DisableRetry().
		WithRateLimit(cfg.Tushare.RequestsPerMinute)

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.Tushare.BaseURL,
		token:      cfg.Tushare.Token,
		logger:     log.WithField("module", "tushare"),
	}
}

// request is the Tushare Pro API envelope.
type request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// response is the Tushare Pro API result envelope. Items hold one row per
// record, values in the order announced by Fields; missing values come
// back as JSON null.
type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}
