package routes

import (
	"net/http"

	"github.com/dcode-github/capetown_discovery/backend/controllers"
	"github.com/dcode-github/capetown_discovery/backend/middleware"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Store      store.Store
	Facilities *controllers.FacilityController
	Rentals    *controllers.RentalController
	Insights   *controllers.InsightController
	Metrics    http.Handler
	Logger     *zap.Logger
}

// Routes registers every endpoint. Fixed paths are registered before the
// {id} routes that would otherwise shadow them.
func Routes(router *mux.Router, d Deps) {
	router.Use(middleware.RequestLogger(d.Logger), middleware.Metrics, middleware.Recover)

	router.HandleFunc("/health", controllers.Health(d.Store)).Methods("GET")
	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.Handle("/metrics", metrics).Methods("GET")

	// Facility routes
	router.HandleFunc("/facilities", d.Facilities.List()).Methods("GET")
	router.HandleFunc("/facilities/classifications", d.Facilities.Classifications()).Methods("GET")
	router.HandleFunc("/facilities/districts", d.Facilities.Districts()).Methods("GET")
	router.HandleFunc("/facilities/stats", d.Facilities.Stats()).Methods("GET")
	router.HandleFunc("/facilities/near/{lng}/{lat}/{distance}", d.Facilities.Near()).Methods("GET")
	router.HandleFunc("/facilities/search/{term}", d.Facilities.Search()).Methods("GET")
	router.HandleFunc("/facilities/{id}", d.Facilities.Get()).Methods("GET")

	// Rental routes
	router.HandleFunc("/rentals", d.Rentals.List()).Methods("GET")
	router.HandleFunc("/rentals/stats", d.Rentals.Stats()).Methods("GET")
	router.HandleFunc("/rentals/search", d.Rentals.Search()).Methods("GET")
	router.HandleFunc("/rentals/location/{location}", d.Rentals.ByLocation()).Methods("GET")
	router.HandleFunc("/rentals/recommendations", d.Insights.Recommend()).Methods("POST")
	router.HandleFunc("/rentals/market-insights", d.Insights.Market()).Methods("GET")
	router.HandleFunc("/rentals/neighborhood/{name}", d.Insights.Neighborhood()).Methods("GET")
	router.HandleFunc("/rentals/{id}", d.Rentals.Get()).Methods("GET")

	// Assistant routes
	router.HandleFunc("/assistant/chat", d.Insights.Chat()).Methods("POST")
}
