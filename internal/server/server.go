package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"flighttracker-backend/internal/components/assert"
	"flighttracker-backend/internal/components/telemetry"
	"flighttracker-backend/internal/flights"
	"flighttracker-backend/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	report_server_handle  = "server.handle"
	report_server_request = "server.request"
)

const ServiceName = "flight-price-tracker"

const requestIDKey = "request_id"

type RouteStore interface {
	CreateRoute(ctx context.Context, input flights.NewRoute) (int64, error)
	GetRoute(ctx context.Context, id int64) (flights.Route, error)
	ListRoutes(ctx context.Context) ([]flights.Route, error)
	DeleteRoute(ctx context.Context, id int64) error
	History(ctx context.Context, routeID int64) ([]flights.Observation, error)
}

type Checker interface {
	CheckPrice(ctx context.Context, routeID int64) (tracker.Result, error)
}

// Server exposes the tracker as a small json api.
type Server struct {
	store   RouteStore
	checker Checker
	tel     telemetry.API
}

var registerBindingNames sync.Once

func NewServer(store RouteStore, checker Checker, tel telemetry.API) Server {
	assert.NotNil(store, "store")
	assert.NotNil(checker, "checker")
	assert.NotNil(tel, "tel")

	registerBindingNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			flights.RegisterJsonNames(v)
		}
	})

	return Server{
		store:   store,
		checker: checker,
		tel:     telemetry.NewScopedAPI("server", tel),
	}
}

func (s Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogging())

	router.GET("/health", s.health)

	routes := router.Group("/api/routes")
	routes.GET("", s.listRoutes)
	routes.POST("", s.createRoute)
	routes.GET("/:id", s.getRoute)
	routes.DELETE("/:id", s.deleteRoute)
	routes.GET("/:id/history", s.history)
	routes.POST("/:id/check", s.check)
	return router
}

// requestLogging tags every request with an id and reports how it went.
func (s Server) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		s.tel.ReportDebug(
			report_server_request,
			requestID,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).String(),
		)
	}
}

type RouteJson struct {
	ID            int64               `json:"id"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureDate string              `json:"departure_date"`
	Email         string              `json:"email"`
	TargetPrice   decimal.NullDecimal `json:"target_price"`
	CreatedAt     time.Time           `json:"created_at"`
}

func routeJson(r flights.Route) RouteJson {
	return RouteJson{
		ID:            r.ID,
		Origin:        r.Origin.String(),
		Destination:   r.Destination.String(),
		DepartureDate: r.DepartureDate.Format(flights.DateLayout),
		Email:         r.Email,
		TargetPrice:   r.TargetPrice,
		CreatedAt:     r.CreatedAt,
	}
}

type ObservationJson struct {
	ID         int64           `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	ObservedAt time.Time       `json:"observed_at"`
}

func observationJson(o flights.Observation) ObservationJson {
	return ObservationJson{ID: o.ID, Amount: o.Amount, ObservedAt: o.ObservedAt}
}

type SummaryJson struct {
	Count         int             `json:"count"`
	Lowest        decimal.Decimal `json:"lowest"`
	Highest       decimal.Decimal `json:"highest"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

type HistoryJson struct {
	RouteID      int64             `json:"route_id"`
	Observations []ObservationJson `json:"observations"`
	Summary      *SummaryJson      `json:"summary,omitempty"`
}

type EventJson struct {
	Kind      string          `json:"kind"`
	Current   decimal.Decimal `json:"current"`
	Magnitude decimal.Decimal `json:"magnitude"`
	Delivery  string          `json:"delivery"`
	Error     string          `json:"error,omitempty"`
}

type CheckJson struct {
	RouteID     int64            `json:"route_id"`
	Outcome     string           `json:"outcome"`
	Observation *ObservationJson `json:"observation,omitempty"`
	Previous    *ObservationJson `json:"previous,omitempty"`
	Events      []EventJson      `json:"events"`
}

// CreateRouteJson carries the same rules as flights.NewRoute.Validate, so
// malformed input is rejected before it reaches the store.
type CreateRouteJson struct {
	Origin        string              `json:"origin" binding:"required,len=3,alpha"`
	Destination   string              `json:"destination" binding:"required,len=3,alpha"`
	DepartureDate string              `json:"departure_date" binding:"required,datetime=2006-01-02"`
	Email         string              `json:"email" binding:"required,email"`
	TargetPrice   decimal.NullDecimal `json:"target_price"`
}

type ErrorJson struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s Server) respondWithError(c *gin.Context, err error) {
	var validation *flights.ValidationError
	var notFound *flights.NotFoundError
	var checkFailed *tracker.CheckFailedError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorJson{Error: err.Error(), Field: validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorJson{Error: err.Error()})
	case errors.As(err, &checkFailed):
		c.JSON(http.StatusBadGateway, ErrorJson{Error: err.Error()})
	default:
		s.tel.ReportBroken(report_server_handle, err, c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, ErrorJson{Error: "internal error"})
	}
}

func parseRouteID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, &flights.ValidationError{Field: "id", Reason: "must be an integer"}
	}
	return id, nil
}

func (s Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func (s Server) listRoutes(c *gin.Context) {
	routes, err := s.store.ListRoutes(c.Request.Context())
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	out := make([]RouteJson, 0, len(routes))
	for _, route := range routes {
		out = append(out, routeJson(route))
	}
	c.JSON(http.StatusOK, out)
}

func (s Server) createRoute(c *gin.Context) {
	var body CreateRouteJson
	err := c.ShouldBindJSON(&body)
	if err != nil {
		if verr := flights.ValidationErrorOf(err); verr != nil {
			s.respondWithError(c, verr)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorJson{Error: "invalid json body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	id, err := s.store.CreateRoute(ctx, flights.NewRoute{
		Origin:        body.Origin,
		Destination:   body.Destination,
		DepartureDate: body.DepartureDate,
		Email:         body.Email,
		TargetPrice:   body.TargetPrice,
	})
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	route, err := s.store.GetRoute(ctx, id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routeJson(route))
}

func (s Server) getRoute(c *gin.Context) {
	id, err := parseRouteID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	route, err := s.store.GetRoute(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, routeJson(route))
}

func (s Server) deleteRoute(c *gin.Context) {
	id, err := parseRouteID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	err = s.store.DeleteRoute(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s Server) history(c *gin.Context) {
	id, err := parseRouteID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	history, err := s.store.History(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	out := HistoryJson{RouteID: id, Observations: make([]ObservationJson, 0, len(history))}
	for _, o := range history {
		out.Observations = append(out.Observations, observationJson(o))
	}
	if summary, ok := flights.Summarize(history); ok {
		out.Summary = &SummaryJson{
			Count:         summary.Count,
			Lowest:        summary.Lowest,
			Highest:       summary.Highest,
			Change:        summary.Change,
			ChangePercent: summary.ChangePercent,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s Server) check(c *gin.Context) {
	id, err := parseRouteID(c)
	if err != nil {
		s.respondWithError(c, err)
		return
	}
	result, err := s.checker.CheckPrice(c.Request.Context(), id)
	if err != nil {
		s.respondWithError(c, err)
		return
	}

	out := CheckJson{
		RouteID: result.RouteID,
		Outcome: result.Outcome.String(),
		Events:  []EventJson{},
	}
	if result.Outcome.Recorded() {
		o := observationJson(result.Observation)
		out.Observation = &o
	}
	if result.Previous != nil {
		p := observationJson(*result.Previous)
		out.Previous = &p
	}
	for _, a := range result.Alerts {
		event := EventJson{
			Kind:      a.Event.Kind.String(),
			Current:   a.Event.Current,
			Magnitude: a.Event.Magnitude,
			Delivery:  a.Delivery.String(),
		}
		if a.Err != nil {
			event.Error = a.Err.Error()
		}
		out.Events = append(out.Events, event)
	}
	c.JSON(http.StatusOK, out)
}
