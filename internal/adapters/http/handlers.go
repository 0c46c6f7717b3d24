package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/locus/internal/adapters/geojson"
	"github.com/jobrunner/locus/internal/domain"
)

// relateRequest is the body of POST /api/v1/relate.
type relateRequest struct {
	A json.RawMessage `json:"a"`
	B json.RawMessage `json:"b"`
}

// handleContains answers which features contain a point.
func (s *Server) handleContains(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c, err := parseCoordinate(q.Get("lat"), q.Get("lng"))
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	req := domain.QueryRequest{
		Geometry:     c,
		CollectionID: q.Get("collection"),
		Properties:   parseList(q.Get("properties")),
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	response, err := s.queryService.Query(ctx, req)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatQueryResponse(response))
}

// handleQuery evaluates a GeoJSON geometry against all ready collections.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseQueryRequest(w, r)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}
	req.CollectionID = r.URL.Query().Get("collection")

	ctx, cancel := s.queryContext(r)
	defer cancel()

	response, err := s.queryService.Query(ctx, req)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatQueryResponse(response))
}

// handleQueryCollection evaluates a GeoJSON geometry against one collection.
func (s *Server) handleQueryCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	req, err := s.parseQueryRequest(w, r)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	result, err := s.queryService.QueryCollection(ctx, collectionID, req)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatQueryResult(result))
}

// handleRelate reports both intersection tiers for two geometries.
func (s *Server) handleRelate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	var rr relateRequest
	if err := json.Unmarshal(body, &rr); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(rr.A) == 0 || len(rr.B) == 0 {
		s.writeError(w, http.StatusBadRequest, `both "a" and "b" geometries are required`)
		return
	}

	a, err := geojson.DecodeGeometry(rr.A)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}
	b, err := geojson.DecodeGeometry(rr.B)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	rel, err := s.queryService.Relate(ctx, a, b)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"bounds_intersect": rel.BoundsIntersect,
		"intersects":       rel.Intersects,
	})
}

// handleDistance measures the distance between two coordinates.
func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := domain.ParseCoordinate(q.Get("from"))
	if err != nil {
		s.handleQueryError(w, fmt.Errorf("from: %w", err))
		return
	}
	to, err := domain.ParseCoordinate(q.Get("to"))
	if err != nil {
		s.handleQueryError(w, fmt.Errorf("to: %w", err))
		return
	}

	method := q.Get("method")
	if method == "" {
		method = "haversine"
	}
	calc, ok := s.options.Distances[method]
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown distance method: "+method)
		return
	}

	formatName := q.Get("format")
	if formatName == "" {
		formatName = "decimal"
	}
	formatter, ok := s.options.Formatters[formatName]
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown format: "+formatName)
		return
	}

	meters, err := from.Distance(to, calc)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":   from.Format(formatter),
		"to":     to.Format(formatter),
		"method": method,
		"meters": meters,
	})
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":             boolToStatus(details.Healthy),
		"ready":              details.Ready,
		"collections_loaded": details.CollectionsLoaded,
		"collections_ready":  details.CollectionsReady,
		"components":         details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListCollections returns all loaded collections.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.registry.ListCollections(r.Context())
	if err != nil {
		s.logger.Error("listing collections failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list collections")
		return
	}

	response := make([]map[string]interface{}, len(collections))
	for i := range collections {
		response[i] = s.formatCollection(r, &collections[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"collections": response,
		"count":       len(collections),
	})
}

// handleGetCollection returns a specific collection.
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	c, err := s.registry.GetCollection(r.Context(), collectionID)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatCollection(r, c))
}

// handleGetFeatures returns the features of a collection as a GeoJSON
// FeatureCollection.
func (s *Server) handleGetFeatures(w http.ResponseWriter, r *http.Request) {
	collectionID := mux.Vars(r)["collectionId"]

	c, err := s.registry.GetCollection(r.Context(), collectionID)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	fc, err := geojson.NewFeatureCollection(c.Features)
	if err != nil {
		s.logger.Error("encoding features failed", "collection", collectionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to encode features")
		return
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		s.logger.Error("encoding features failed", "collection", collectionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to encode features")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncTrigger == nil {
		s.writeError(w, http.StatusNotFound, "Sync service not available")
		return
	}

	result, err := s.syncTrigger.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		if errors.Is(err, domain.ErrUnavailable) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// parseQueryRequest reads a GeoJSON geometry body and the ?precise and
// ?properties parameters.
func (s *Server) parseQueryRequest(w http.ResponseWriter, r *http.Request) (domain.QueryRequest, error) {
	q := r.URL.Query()

	precise := s.options.PreciseDefault
	if v := q.Get("precise"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.QueryRequest{}, &domain.ValidationError{
				Field:      "precise",
				Value:      v,
				Constraint: "boolean",
				Message:    "invalid precise parameter",
			}
		}
		precise = b
	}

	body, err := s.readBody(w, r)
	if err != nil {
		return domain.QueryRequest{}, err
	}

	g, err := geojson.DecodeGeometry(body)
	if err != nil {
		return domain.QueryRequest{}, err
	}

	return domain.QueryRequest{
		Geometry:   g,
		Precise:    precise,
		Properties: parseList(q.Get("properties")),
	}, nil
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.config.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &domain.ValidationError{
				Field:      "body",
				Value:      tooLarge.Limit,
				Constraint: "max_body_bytes",
				Message:    "request body too large",
			}
		}
		return nil, fmt.Errorf("reading body: %w", domain.ErrInvalidInput)
	}
	if len(body) == 0 {
		return nil, &domain.ValidationError{
			Field:      "body",
			Constraint: "required",
			Message:    "request body is empty",
		}
	}
	return body, nil
}

// parseCoordinate parses lat and lng query parameters.
func parseCoordinate(latParam, lngParam string) (domain.Coordinate, error) {
	if latParam == "" || lngParam == "" {
		return domain.Coordinate{}, &domain.ValidationError{
			Field:      "lat,lng",
			Constraint: "required",
			Message:    "coordinates required: use lat and lng",
		}
	}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lat", Value: latParam, Constraint: "number", Message: "invalid lat parameter"}
	}
	lng, err := strconv.ParseFloat(lngParam, 64)
	if err != nil {
		return domain.Coordinate{}, &domain.ValidationError{Field: "lng", Value: lngParam, Constraint: "number", Message: "invalid lng parameter"}
	}

	return domain.NewCoordinate(lat, lng)
}

// parseList splits a comma separated parameter, dropping empty items.
func parseList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// formatQueryResponse formats the query response for JSON output.
func (s *Server) formatQueryResponse(resp *domain.QueryResponse) map[string]interface{} {
	results := make([]map[string]interface{}, len(resp.Results))
	for i := range resp.Results {
		results[i] = s.formatQueryResult(&resp.Results[i])
	}

	return map[string]interface{}{
		"precise":            resp.Precise,
		"bounds":             formatBounds(resp.Bounds),
		"results":            results,
		"total_features":     resp.TotalFeatures,
		"processing_time_ms": resp.ProcessingTime.Milliseconds(),
	}
}

// formatQueryResult formats the matches of one collection.
func (s *Server) formatQueryResult(r *domain.QueryResult) map[string]interface{} {
	features := make([]map[string]interface{}, len(r.Features))
	for j := range r.Features {
		f := &r.Features[j]
		features[j] = map[string]interface{}{
			"id":         f.ID,
			"name":       f.Name,
			"kind":       f.Geometry.Kind().String(),
			"properties": f.Properties,
		}
		// Only include geometry if explicitly enabled via query.with_geometry
		if s.options.WithGeometry {
			if g, err := geojson.MarshalGeometry(f.Geometry); err == nil {
				features[j]["geometry"] = g
			}
		}
	}

	return map[string]interface{}{
		"collection_id":   r.CollectionID,
		"collection_name": r.CollectionName,
		"features":        features,
		"feature_count":   r.FeatureCount(),
		"checked":         r.Checked,
		"query_time_ms":   r.QueryTime.Milliseconds(),
	}
}

// formatCollection formats a collection for JSON output.
func (s *Server) formatCollection(r *http.Request, c *domain.Collection) map[string]interface{} {
	out := map[string]interface{}{
		"id":            c.ID,
		"name":          c.Name,
		"key":           c.Key,
		"size":          c.Size,
		"feature_count": c.FeatureCount(),
		"loaded_at":     c.LoadedAt.UTC().Format(time.RFC3339),
	}

	if status, err := s.registry.GetCollectionStatus(r.Context(), c.ID); err == nil {
		out["status"] = status
	}
	if b, ok := c.Bounds(); ok {
		out["bounds"] = formatBounds(b)
	}
	return out
}

func formatBounds(b domain.Bounds) map[string]float64 {
	return map[string]float64{
		"north": b.North(),
		"east":  b.East(),
		"south": b.South(),
		"west":  b.West(),
	}
}

// handleQueryError maps domain errors to HTTP status codes.
func (s *Server) handleQueryError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		s.writeError(w, http.StatusBadRequest, decodeErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupported):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCollectionNotFound):
		s.writeError(w, http.StatusNotFound, "Collection not found")
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, "Query timed out")
	default:
		s.logger.Error("query error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Query failed")
	}
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}

// queryContext bounds a query by the configured timeout.
func (s *Server) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.options.QueryTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.options.QueryTimeout)
}
