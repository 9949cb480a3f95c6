// Package api implements the HTTP surface for cdxserver: collection
// listing, CDX query/ingest, replication feed, and access rule/policy CRUD.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	golog "github.com/ipfs/go-log"

	"github.com/nla/cdxserver/config"
	"github.com/nla/cdxserver/store"
)

var log = golog.Logger("api")

func init() {
	golog.SetLogLevel("api", "info")
}

const jsonContentType = "application/json"

// Server wires a DataStore and Config into an HTTP mux.
type Server struct {
	Store  *store.DataStore
	Config *config.Config
	Mux    *mux.Router
}

// New creates a Server over ds using cfg's API settings.
func New(cfg *config.Config, ds *store.DataStore) *Server {
	s := &Server{Store: ds, Config: cfg}
	s.Mux = NewServerRoutes(s)
	return s
}

// Serve starts the HTTP server, blocking until ctx is cancelled or
// ListenAndServe returns an error.
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.Config.API.Address,
		Handler: s.Mux,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		server.Close()
	}()

	log.Infof("listening on %s", s.Config.API.Address)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// HomeHandler responds with a health check on the empty path, 404 for
// everything else.
func (s *Server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "" || r.URL.Path == "/" {
		HealthCheckHandler(w, r)
		return
	}
	http.NotFound(w, r)
}

// HealthCheckHandler is a basic ok response for load balancers & co.
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"meta":{"code":200,"status":"ok"},"data":[]}`))
}

// NewServerRoutes returns a Muxer with every route the server exposes.
func NewServerRoutes(s *Server) *mux.Router {
	m := mux.NewRouter()

	m.Handle(AEHome, s.middleware(s.HomeHandler)).Methods(http.MethodGet)
	m.Handle(AEHealth, s.middleware(HealthCheckHandler)).Methods(http.MethodGet)
	m.Handle(AECollections, s.middleware(s.ListCollectionsHandler)).Methods(http.MethodGet)

	m.Handle(AECollectionStats, s.middleware(s.StatsHandler)).Methods(http.MethodGet)
	m.Handle(AECollectionCaptures, s.middleware(s.CapturesHandler)).Methods(http.MethodGet)
	m.Handle(AECollectionAliases, s.middleware(s.AliasesHandler)).Methods(http.MethodGet)
	m.Handle(AECollectionSequence, s.middleware(s.SequenceHandler)).Methods(http.MethodGet)
	m.Handle(AECollectionChanges, s.middleware(s.ChangesHandler)).Methods(http.MethodGet)
	m.Handle(AECollectionTruncateReplication, s.middleware(s.TruncateReplicationHandler)).Methods(http.MethodPost)

	m.Handle(AEAccessRules, s.middleware(s.ListRulesHandler)).Methods(http.MethodGet)
	m.Handle(AEAccessRules, s.middleware(s.PutRuleHandler)).Methods(http.MethodPost)
	m.Handle(AEAccessRule, s.middleware(s.GetRuleHandler)).Methods(http.MethodGet)
	m.Handle(AEAccessRule, s.middleware(s.DeleteRuleHandler)).Methods(http.MethodDelete)
	m.Handle(AEAccessPolicies, s.middleware(s.ListPoliciesHandler)).Methods(http.MethodGet)
	m.Handle(AEAccessPolicies, s.middleware(s.PutPolicyHandler)).Methods(http.MethodPost)
	m.Handle(AEAccessPolicy, s.middleware(s.GetPolicyHandler)).Methods(http.MethodGet)
	m.Handle(AEAccessPolicy, s.middleware(s.DeletePolicyHandler)).Methods(http.MethodDelete)
	m.Handle(AEAccessCheck, s.middleware(s.AccessCheckHandler)).Methods(http.MethodGet, http.MethodPost)

	m.Handle(AECollectionDelete, s.middleware(s.IngestDeleteHandler)).Methods(http.MethodPost)
	m.Handle(AECollection, s.middleware(s.QueryHandler)).Methods(http.MethodGet)
	m.Handle(AECollection, s.middleware(s.IngestHandler)).Methods(http.MethodPost)

	return m
}

// collectionName reads the {col} path variable.
func collectionName(r *http.Request) string {
	return mux.Vars(r)["col"]
}

func writeJSONError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"meta":{"code":%d,"error":%q}}`, status, fmt.Sprintf(format, args...))
}
