package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/nla/cdxserver/query"
)

// defaultHTTPLimit is the WB-CDX query limit applied when the request omits
// or zeroes the limit parameter. Distinct from query.DefaultLimit, which
// bounds the pipeline's own internal scan when called without an HTTP layer.
const defaultHTTPLimit = 10000

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// rawQueryParams is the WB-CDX query string decoded via gorilla/schema;
// defaulting and the Params/output split happen after decode.
type rawQueryParams struct {
	URL         string   `schema:"url"`
	MatchType   string   `schema:"matchType"`
	Limit       int      `schema:"limit"`
	AccessPoint string   `schema:"accessPoint"`
	Output      string   `schema:"output"`
	Filter      []string `schema:"filter"`
}

// queryParamsFromRequest reads the WB-CDX query parameters (url, matchType,
// limit, output, filter, ...) from the request's query string.
func queryParamsFromRequest(r *http.Request) (query.Params, string, error) {
	var raw rawQueryParams
	if err := schemaDecoder.Decode(&raw, r.URL.Query()); err != nil {
		return query.Params{}, "", fmt.Errorf("malformed query parameters: %w", err)
	}

	if raw.URL == "" {
		return query.Params{}, "", fmt.Errorf("url parameter is required")
	}

	matchType := query.MatchType(raw.MatchType)
	if matchType == "" {
		matchType = query.MatchExact
	}

	limit := raw.Limit
	if limit == 0 {
		limit = defaultHTTPLimit
	}

	output := raw.Output
	if output == "" {
		output = "text"
	}

	params := query.Params{
		URL:         raw.URL,
		MatchType:   matchType,
		Limit:       limit,
		AccessPoint: raw.AccessPoint,
		Filters:     raw.Filter,
	}
	return params, output, nil
}
