package api

import (
	"net/http"

	apiutil "github.com/nla/cdxserver/api/util"
	"github.com/nla/cdxserver/cdx"
	"github.com/nla/cdxserver/record"
)

// IngestHandler serves POST /{col}: ingest CDX lines from the request body.
// ?badLines=skip skips malformed lines instead of aborting the whole batch;
// skipped lines are not logged or reported in the response.
func (s *Server) IngestHandler(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, false)
}

// IngestDeleteHandler serves POST /{col}/delete: the same line format, but
// every parsed record is staged as a deletion instead of an insert.
func (s *Server) IngestDeleteHandler(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, true)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request, delete bool) {
	idx, err := s.Store.Index(collectionName(r), true)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	skipBad := r.URL.Query().Get("badLines") == "skip"

	batch, err := idx.BeginUpdate()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	defer batch.Rollback()

	err = cdx.ParseStream(r.Body,
		func(c *record.Capture) error {
			if delete {
				return batch.DeleteCapture(c)
			}
			return batch.PutCapture(c)
		},
		func(a *record.Alias) error {
			if delete {
				return batch.DeleteAlias(a.AliasSurt)
			}
			return batch.PutAlias(a.AliasSurt, a.TargetSurt)
		},
		skipBad,
	)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	if err := batch.Commit(); err != nil {
		apiutil.RespondWithError(w, err)
		return
	}

	apiutil.WriteMessageResponse(w, "ingested", nil)
}
