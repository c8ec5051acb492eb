package controllers

import (
	"net/http"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/services"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/gorilla/mux"
)

type RentalController struct {
	svc *services.RentalService
}

func NewRentalController(svc *services.RentalService) *RentalController {
	return &RentalController{svc: svc}
}

func (c *RentalController) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := query.ParseRentalFilter(r.URL.Query())
		if err != nil {
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
			Data:       page.Items,
			Pagination: page.Pagination(),
			Filters:    filter,
		})
	}
}

func (c *RentalController) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		stats, err := c.svc.Stats(r.Context(), query.All())
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: stats})
	}
}

func (c *RentalController) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := query.ParseRentalSearch(r.URL.Query())
		if err != nil {
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
			Data:       page.Items,
			Pagination: page.Pagination(),
			Filters:    map[string]string{"q": req.Term},
		})
	}
}

type locationData struct {
	Location string          `json:"location"`
	Listings []models.Rental `json:"listings"`
	Stats    store.Summary   `json:"stats"`
}

func (c *RentalController) ByLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location := mux.Vars(r)["location"]
		filter, err := query.ParseRentalFilter(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}
		result, err := c.svc.ByLocation(r.Context(), location, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Location = location
		ok(w, models.APIResponse{
			Count:      count(len(result.Page.Items)),
			Data:       locationData{Location: location, Listings: result.Page.Items, Stats: result.Price},
			Pagination: result.Page.Pagination(),
			Filters:    filter,
		})
	}
}

// Get returns one rental. Every fetch increments the listing's view
// counter, a side effect existing clients rely on.
func (c *RentalController) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := query.RejectUnknown(r.URL.Query()); err != nil {
			writeError(w, r, err)
			return
		}
		rental, err := c.svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		ok(w, models.APIResponse{Data: rental})
	}
}
