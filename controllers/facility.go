package controllers

import (
	"context"
	"net/http"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/services"
	"github.com/dcode-github/capetown_discovery/backend/shape"
	"github.com/gorilla/mux"
)

type FacilityController struct {
	svc *services.FacilityService
}

func NewFacilityController(svc *services.FacilityService) *FacilityController {
	return &FacilityController{svc: svc}
}

func (c *FacilityController) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		filter, ferr := query.ParseFacilityFilter(values)
		format, serr := shape.ParseFormat(values.Get("format"))
		if err := query.JoinValidation(ferr, serr); err != nil {
			writeError(w, r, err)
			return
		}

		page, err := c.svc.List(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{
			Count:      count(len(page.Items)),
			Data:       shape.Facilities(page.Items, format),
			Pagination: page.Pagination(),
			Filters:    filter,
		})
	}
}

func (c *FacilityController) Classifications() http.HandlerFunc {
	return c.distinct(c.svc.Classifications)
}

func (c *FacilityController) Districts() http.HandlerFunc {
	return c.distinct(c.svc.Districts)
}

func (c *FacilityController) distinct(load func(context.Context) ([]string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		values, err := load(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Count: count(len(values)), Data: values})
	}
}

func (c *FacilityController) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		stats, err := c.svc.Stats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: stats})
	}
}

func (c *FacilityController) Near() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		values := r.URL.Query()
		proximity, perr := query.ParseNear(vars["lng"], vars["lat"], vars["distance"])
		page, lerr := query.ParseProximityLimit(values)
		format, serr := shape.ParseFormat(values.Get("format"))
		if err := query.JoinValidation(perr, lerr, serr); err != nil {
			writeError(w, r, err)
			return
		}

		result, err := c.svc.Near(r.Context(), proximity, page)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{
			Count:      count(len(result.Items)),
			Data:       shape.Facilities(result.Items, format),
			Pagination: result.Pagination(),
			Filters: map[string]float64{
				"lng":      proximity.Lng,
				"lat":      proximity.Lat,
				"distance": proximity.MaxDistance,
			},
		})
	}
}

func (c *FacilityController) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		req, qerr := query.ParseFacilitySearch(mux.Vars(r)["term"], values)
		format, serr := shape.ParseFormat(values.Get("format"))
		if err := query.JoinValidation(qerr, serr); err != nil {
			writeError(w, r, err)
			return
		}

		page, err := c.svc.Search(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{
			Count:      count(len(page.Items)),
			Data:       shape.Facilities(page.Items, format),
			Pagination: page.Pagination(),
			Filters:    map[string]string{"term": req.Term},
		})
	}
}

func (c *FacilityController) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		format, serr := shape.ParseFormat(values.Get("format"))
		if err := query.JoinValidation(query.RejectUnknown(values, "format"), serr); err != nil {
			writeError(w, r, err)
			return
		}

		facility, err := c.svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: shape.Facility(facility, format)})
	}
}
