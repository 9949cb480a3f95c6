package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	apiutil "github.com/nla/cdxserver/api/util"
)

// ListCollectionsHandler serves GET /api/collections.
func (s *Server) ListCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	names, err := s.Store.ListCollections()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, names)
}

// StatsHandler serves GET /{col}/stats.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	n, err := idx.EstimatedRecordCount()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, map[string]uint64{"estimatedRecordCount": n})
}

// CapturesHandler serves GET /{col}/captures?key=&limit=: a raw capture
// dump starting at key, used for administration and bulk export rather
// than end-user lookups.
func (s *Server) CapturesHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	limit := apiutil.ReqParamInt(r, "limit", 1000)
	seq, err := idx.CapturesAfter(r.URL.Query().Get("key"))
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	defer seq.Close()

	var rows []map[string]interface{}
	for len(rows) < limit {
		cap, ok, err := seq.Next()
		if err != nil {
			apiutil.RespondWithError(w, err)
			return
		}
		if !ok {
			break
		}
		rows = append(rows, map[string]interface{}{
			"urlkey":      cap.UrlKey,
			"timestamp":   cap.Timestamp,
			"original":    cap.OriginalUrl,
			"mimetype":    cap.MimeType,
			"statuscode":  cap.Status,
			"digest":      cap.Digest,
			"redirecturl": cap.RedirectUrl,
			"robotflags":  cap.RobotFlags,
			"length":      cap.Length,
			"offset":      cap.Offset,
			"filename":    cap.File,
		})
	}
	apiutil.WriteResponse(w, rows)
}

// AliasesHandler serves GET /{col}/aliases?key=&limit=.
func (s *Server) AliasesHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	limit := apiutil.ReqParamInt(r, "limit", 1000)
	seq, err := idx.ListAliases(r.URL.Query().Get("key"))
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	defer seq.Close()

	var rows []map[string]string
	for len(rows) < limit {
		alias, ok, err := seq.Next()
		if err != nil {
			apiutil.RespondWithError(w, err)
			return
		}
		if !ok {
			break
		}
		rows = append(rows, map[string]string{"alias": alias.AliasSurt, "target": alias.TargetSurt})
	}
	apiutil.WriteResponse(w, rows)
}

// SequenceHandler serves GET /{col}/sequence.
func (s *Server) SequenceHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	seq, err := idx.Sequence()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, map[string]uint64{"sequenceNumber": seq})
}

// ChangesHandler serves GET /{col}/changes?since=N: the replication feed.
func (s *Server) ChangesHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	since := uint64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed since parameter"))
			return
		}
		since = n
	}

	entries, err := idx.GetUpdatesSince(since)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	type wireEntry struct {
		SequenceNumber uint64 `json:"sequenceNumber"`
		WriteBatch     string `json:"writeBatch"`
	}
	out := make([]wireEntry, len(entries))
	for i, e := range entries {
		out[i] = wireEntry{SequenceNumber: e.SequenceNumber, WriteBatch: base64.StdEncoding.EncodeToString(e.WriteBatch)}
	}

	w.Header().Set("Content-Type", jsonContentType)
	json.NewEncoder(w).Encode(out)
}

// TruncateReplicationHandler serves POST /{col}/truncate_replication,
// flushing the WAL so a secondary must request a fresh baseline.
func (s *Server) TruncateReplicationHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := s.Store.Index(collectionName(r), false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	if err := idx.FlushWal(); err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteMessageResponse(w, "replication log truncated", nil)
}
