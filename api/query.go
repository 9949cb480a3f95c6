package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	apiutil "github.com/nla/cdxserver/api/util"
	"github.com/nla/cdxserver/query"
)

// QueryHandler serves GET /{col}: a WB-CDX query when ?url= is present, an
// OpenWayback XML query when ?q= is present, or collection stats otherwise.
func (s *Server) QueryHandler(w http.ResponseWriter, r *http.Request) {
	hasURL := r.URL.Query().Get("url") != ""
	hasQ := r.URL.Query().Get("q") != ""
	if !hasURL && !hasQ {
		s.StatsHandler(w, r)
		return
	}

	col := collectionName(r)
	pipeline, err := s.Store.Get(col, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	var params query.Params
	var output string
	if hasURL {
		params, output, err = queryParamsFromRequest(r)
	} else {
		params, err = openWaybackQueryParams(r.URL.Query().Get("q"))
		output = "xml"
	}
	if err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, err.Error()))
		return
	}

	from, to := timeRange(r)
	reverse := r.URL.Query().Get("sort") == "reverse"

	formatter := query.NewFormatter(output)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	switch output {
	case "json":
		w.Header().Set("Content-Type", jsonContentType)
	case "xml":
		w.Header().Set("Content-Type", "application/xml")
	default:
		w.Header().Set("Content-Type", "text/plain")
	}

	inRange := func(res query.Result) bool {
		ts := res.Capture.Timestamp
		return (from == 0 || ts >= from) && (to == 0 || ts <= to)
	}

	// "sort=reverse" requires every result before the order can be decided,
	// so it buffers; every other request streams straight through at O(1)
	// memory, same as the XML formatter's documented buffering exception.
	if !reverse {
		formatter.WriteHeader(w)
		err = pipeline.Run(params, func(res query.Result) bool {
			if inRange(res) {
				formatter.WriteRecord(w, res)
			}
			return true
		})
		if err != nil {
			apiutil.RespondWithError(w, err)
			return
		}
		formatter.WriteFooter(w)
		return
	}

	var results []query.Result
	err = pipeline.Run(params, func(res query.Result) bool {
		if inRange(res) {
			results = append(results, res)
		}
		return true
	})
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Capture.Timestamp > results[j].Capture.Timestamp
	})

	formatter.WriteHeader(w)
	for _, res := range results {
		formatter.WriteRecord(w, res)
	}
	formatter.WriteFooter(w)
}

// openWaybackQueryParams parses the OpenWayback CDX-server "q" parameter, a
// space-separated list of key:value fields (type:urlquery url:... matchType:...
// limit:...), into query.Params. "type" is accepted but otherwise ignored;
// this server only ever produces urlquery-style listings.
func openWaybackQueryParams(q string) (query.Params, error) {
	params := query.Params{
		MatchType: query.MatchExact,
		Limit:     query.DefaultLimit,
	}
	for _, field := range strings.Fields(q) {
		key, val, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		switch key {
		case "url":
			params.URL = val
		case "matchType":
			params.MatchType = query.MatchType(val)
		case "limit":
			if n, err := strconv.Atoi(val); err == nil {
				params.Limit = n
			}
		case "accessPoint":
			params.AccessPoint = val
		}
	}
	if params.URL == "" {
		return query.Params{}, fmt.Errorf("q parameter missing url: field")
	}
	return params, nil
}

// timeRange reads the 14-digit from/to timestamp bounds, if present.
func timeRange(r *http.Request) (from, to uint64) {
	if v := r.URL.Query().Get("from"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			from = n
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			to = n
		}
	}
	return from, to
}
