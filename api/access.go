package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apiutil "github.com/nla/cdxserver/api/util"
	"github.com/nla/cdxserver/access"
)

func (s *Server) accessStore(r *http.Request, createIfMissing bool) (*access.Store, error) {
	return s.Store.Access(collectionName(r), createIfMissing)
}

func idFromPath(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

// ListRulesHandler serves GET /{col}/access/rules.
func (s *Server) ListRulesHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	rules, err := acc.ListRules()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, rules)
}

// PutRuleHandler serves POST /{col}/access/rules.
func (s *Server) PutRuleHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, true)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	var rule access.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed rule body: "+err.Error()))
		return
	}
	saved, err := acc.PutRule(&rule)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, saved)
}

// GetRuleHandler serves GET /{col}/access/rules/{id}.
func (s *Server) GetRuleHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed id"))
		return
	}
	rule, err := acc.GetRule(id)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, rule)
}

// DeleteRuleHandler serves DELETE /{col}/access/rules/{id}.
func (s *Server) DeleteRuleHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed id"))
		return
	}
	if err := acc.DeleteRule(id); err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteMessageResponse(w, "deleted", nil)
}

// ListPoliciesHandler serves GET /{col}/access/policies.
func (s *Server) ListPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	policies, err := acc.ListPolicies()
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, policies)
}

// PutPolicyHandler serves POST /{col}/access/policies.
func (s *Server) PutPolicyHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, true)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	var policy access.Policy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed policy body: "+err.Error()))
		return
	}
	saved, err := acc.PutPolicy(&policy)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, saved)
}

// GetPolicyHandler serves GET /{col}/access/policies/{id}.
func (s *Server) GetPolicyHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed id"))
		return
	}
	policy, err := acc.GetPolicy(id)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, policy)
}

// DeletePolicyHandler serves DELETE /{col}/access/policies/{id}.
func (s *Server) DeletePolicyHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed id"))
		return
	}
	if err := acc.DeletePolicy(id); err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteMessageResponse(w, "deleted", nil)
}

// AccessCheckHandler serves GET/POST /{col}/ap/{ap}/check?url=&timestamp=.
func (s *Server) AccessCheckHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accessStore(r, false)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	ap := mux.Vars(r)["ap"]
	url := r.URL.Query().Get("url")
	if url == "" {
		apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "url parameter is required"))
		return
	}
	timestamp := uint64(0)
	if v := r.URL.Query().Get("timestamp"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apiutil.RespondWithError(w, apiutil.NewAPIError(http.StatusBadRequest, "malformed timestamp"))
			return
		}
		timestamp = n
	}

	decision, err := acc.CheckAccess(ap, url, timestamp, timestamp)
	if err != nil {
		apiutil.RespondWithError(w, err)
		return
	}
	apiutil.WriteResponse(w, decision)
}
