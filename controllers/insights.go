package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/services"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type InsightController struct {
	svc *services.InsightService
}

func NewInsightController(svc *services.InsightService) *InsightController {
	return &InsightController{svc: svc}
}

func (c *InsightController) Recommend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.RecommendationRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		q, err := query.ParseRecommendation(body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		result, err := c.svc.Recommend(r.Context(), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Count: count(len(result.Results.Recommendations)), Data: result})
	}
}

func (c *InsightController) Market() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := c.svc.Market(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: result})
	}
}

func (c *InsightController) Neighborhood() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := c.svc.Neighborhood(r.Context(), mux.Vars(r)["name"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: result})
	}
}

type chatRequest struct {
	Message string               `json:"message"`
	History []models.ChatMessage `json:"history"`
}

func (c *InsightController) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		reply, err := c.svc.Chat(r.Context(), body.Message, body.History)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: reply})
	}
}

// decodeBody rejects malformed JSON and unknown fields as a validation
// failure. Decoder text is never echoed back to the client.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return nil
	}

	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)
	verr := &models.ValidationError{}
	switch {
	case errors.As(err, &tooLarge):
		return models.ErrTooLarge
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr.Add(typeErr.Field, "must be %s", jsonKind(typeErr.Type))
	case errors.Is(err, io.EOF):
		verr.Add("body", "is required")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		verr.Add(strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`), "is not a recognised field")
	default:
		verr.Add("body", "must be valid JSON")
	}
	return verr
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
