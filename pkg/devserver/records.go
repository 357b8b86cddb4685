package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DeBrosOfficial/contacts/pkg/httputil"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

const (
	defaultPerPage = 30
	maxPerPage     = 1000
)

var systemFields = map[string]bool{"id": true, "created": true, "updated": true, "collectionName": true}

// newID returns a 15 character lowercase identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}

// collection resolves the {collection} URL parameter and enforces its auth rule.
// It writes the error response and returns false when the request cannot proceed.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (CollectionConfig, bool) {
	name := chi.URLParam(r, "collection")
	cfg, ok := s.collections[name]
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "Missing collection context.")
		return cfg, false
	}

	rec, err := s.authenticate(r)
	if err != nil || (cfg.RequireAuth && rec == nil) {
		httputil.WriteError(w, http.StatusUnauthorized, "The request requires valid record authorization token.")
		return cfg, false
	}
	return cfg, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.collection(w, r)
	if !ok {
		return
	}

	page := httputil.QueryParamInt(r, "page", 1)
	perPage := httputil.QueryParamInt(r, "perPage", defaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if httputil.QueryParam(r, "filter", "") != "" {
		httputil.WriteError(w, http.StatusBadRequest, "Filter expressions are not supported by the dev server.")
		return
	}

	keys, err := parseSort(httputil.QueryParam(r, "sort", ""))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.RLock()
	all := make([]*storedRecord, 0, len(s.records[cfg.Name]))
	for _, sr := range s.records[cfg.Name] {
		all = append(all, sr)
	}
	s.mu.RUnlock()

	sortRecords(all, keys)

	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	items := make([]record.Record, 0, end-start)
	for _, sr := range all[start:end] {
		items = append(items, sr.data.Clone())
	}

	totalItems, totalPages := total, (total+perPage-1)/perPage
	if httputil.QueryParamBool(r, "skipTotal", false) {
		totalItems, totalPages = -1, -1
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"perPage":    perPage,
		"totalItems": totalItems,
		"totalPages": totalPages,
		"items":      items,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.collection(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	sr, found := s.records[cfg.Name][chi.URLParam(r, "id")]
	var rec record.Record
	if found {
		rec = sr.data.Clone()
	}
	s.mu.RUnlock()

	if !found {
		httputil.WriteError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.collection(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	if data := validateRequired(cfg, body, true); len(data) > 0 {
		httputil.WriteErrorData(w, http.StatusBadRequest, "Failed to create record.", data)
		return
	}

	s.mu.Lock()
	id, _ := body["id"].(string)
	if id == "" {
		id = newID()
	} else if _, exists := s.records[cfg.Name][id]; exists {
		s.mu.Unlock()
		httputil.WriteErrorData(w, http.StatusBadRequest, "Failed to create record.", map[string]any{
			"id": httputil.FieldError("validation_invalid_id", "The model id is invalid or already exists."),
		})
		return
	}

	now := s.now()
	rec := record.Record{}
	for k, v := range body {
		if !systemFields[k] {
			rec[k] = normalize(v)
		}
	}
	rec["id"] = id
	rec["collectionName"] = cfg.Name
	rec["created"] = now
	rec["updated"] = now

	s.records[cfg.Name][id] = &storedRecord{seq: s.nextSeq(), data: rec}
	out := rec.Clone()
	s.mu.Unlock()

	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.collection(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	if data := validateRequired(cfg, body, false); len(data) > 0 {
		httputil.WriteErrorData(w, http.StatusBadRequest, "Failed to update record.", data)
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	sr, found := s.records[cfg.Name][id]
	if !found {
		s.mu.Unlock()
		httputil.WriteError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}

	next := sr.data.Clone()
	for k, v := range body {
		if !systemFields[k] {
			next[k] = normalize(v)
		}
	}
	next["updated"] = s.now()
	sr.data = next
	out := next.Clone()
	s.mu.Unlock()

	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.collection(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, found := s.records[cfg.Name][id]
	if found {
		delete(s.records[cfg.Name], id)
	}
	s.mu.Unlock()

	if !found {
		httputil.WriteError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	httputil.WriteNoContent(w)
}

// validateRequired reports required fields that are blank. On create, missing
// fields count as blank; on update only fields present in body are checked.
func validateRequired(cfg CollectionConfig, body map[string]any, create bool) map[string]any {
	data := map[string]any{}
	for _, field := range cfg.Required {
		v, present := body[field]
		if !present && !create {
			continue
		}
		if isBlank(v) {
			data[field] = httputil.FieldError("validation_required", "Missing required value.")
		}
	}
	return data
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// normalize turns json.Number into float64 so stored records match what a JSON
// decoder on the client side would produce.
func normalize(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

type sortKey struct {
	field string
	desc  bool
}

func parseSort(raw string) ([]sortKey, error) {
	var keys []sortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k := sortKey{field: part}
		switch part[0] {
		case '-':
			k.desc, k.field = true, part[1:]
		case '+':
			k.field = part[1:]
		}
		if k.field == "" {
			return nil, fmt.Errorf("invalid sort expression %q", raw)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// sortRecords orders by keys; ties fall back to insertion order, reversed when
// the first key is descending so "-created" lists the newest insert first.
func sortRecords(recs []*storedRecord, keys []sortKey) {
	tieDesc := len(keys) > 0 && keys[0].desc
	sort.SliceStable(recs, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(recs[i].data[k.field], recs[j].data[k.field])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		if tieDesc {
			return recs[i].seq > recs[j].seq
		}
		return recs[i].seq < recs[j].seq
	})
}

func compareValues(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(orEmpty(a)), fmt.Sprint(orEmpty(b)))
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
