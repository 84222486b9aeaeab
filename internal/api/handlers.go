package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mliu7/trackrest/internal/resource"
)

// handleList serves GET on the collection endpoint.
func (a *API) handleList(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.listOperation(r.Context(), res, identity, queryToMap(r.URL.Query()), false)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusOK, result)
	}
}

// handleDetail serves GET on the detail endpoint.
func (a *API) handleDetail(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		ids, err := pathIDs(r, res.Descriptor.NumIDs)
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.detailOperation(r.Context(), res, identity, ids, queryToMap(r.URL.Query()), false)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusOK, result)
	}
}

// handleCreate serves POST on the collection endpoint.
func (a *API) handleCreate(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := gate.AuthorizeVerb(r.Method, identity); err != nil {
			a.respondError(w, err)
			return
		}
		raw, err := parseBody(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.createOperation(r.Context(), res, identity, raw, false)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusCreated, result)
	}
}

// handleUpdate serves PUT on the detail endpoint.
func (a *API) handleUpdate(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := gate.AuthorizeVerb(r.Method, identity); err != nil {
			a.respondError(w, err)
			return
		}
		ids, err := pathIDs(r, res.Descriptor.NumIDs)
		if err != nil {
			a.respondError(w, err)
			return
		}
		raw, err := parseBody(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.updateOperation(r.Context(), res, identity, ids, raw, false)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusOK, result)
	}
}

// handleDelete serves DELETE on the detail endpoint. Success is an
// empty 204; the row survives in storage with its terminal status.
func (a *API) handleDelete(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := gate.AuthorizeVerb(r.Method, identity); err != nil {
			a.respondError(w, err)
			return
		}
		ids, err := pathIDs(r, res.Descriptor.NumIDs)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := a.deleteOperation(r.Context(), res, identity, ids); err != nil {
			a.respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleMerge serves POST on the merge action endpoint.
func (a *API) handleMerge(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := gate.AuthorizeVerb(r.Method, identity); err != nil {
			a.respondError(w, err)
			return
		}
		targetID, err := pathID(r, "id1")
		if err != nil {
			a.respondError(w, err)
			return
		}
		sourceID, err := pathID(r, "id2")
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.mergeOperation(r.Context(), res, identity, targetID, sourceID)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusOK, result)
	}
}

// handleUnmerge serves POST on the unmerge action endpoint.
func (a *API) handleUnmerge(res *Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := a.gateFor(res)
		identity, err := gate.Authenticate(r)
		if err != nil {
			a.respondError(w, err)
			return
		}
		if err := gate.AuthorizeVerb(r.Method, identity); err != nil {
			a.respondError(w, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			a.respondError(w, err)
			return
		}
		result, err := a.unmergeOperation(r.Context(), res, identity, id)
		if err != nil {
			a.respondError(w, err)
			return
		}
		a.respondJSON(w, http.StatusOK, result)
	}
}

// parseBody decodes a JSON request body into raw request data.
func parseBody(r *http.Request) (map[string]interface{}, error) {
	defer r.Body.Close()
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, resource.NewError(resource.KindMalformedInput,
			"The data passed in is not properly formatted JSON.")
	}
	return raw, nil
}

// pathIDs extracts the identifying keys from the URL path.
func pathIDs(r *http.Request, numIDs int) ([]int64, error) {
	if numIDs == 2 {
		id1, err := pathID(r, "id1")
		if err != nil {
			return nil, err
		}
		id2, err := pathID(r, "id2")
		if err != nil {
			return nil, err
		}
		return []int64{id1, id2}, nil
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	return []int64{id}, nil
}

// pathID extracts one positive-integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, resource.NewError(resource.KindNotFound,
			"A resource with this id could not be found.")
	}
	return id, nil
}
