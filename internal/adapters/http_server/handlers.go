package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"stay_spotter/internal/domain"
)

// Searcher and AvailabilityChecker are the two application entry points
// this layer fronts. The pipeline owns the semantics; handlers only
// parse, validate, and translate errors.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Stay, error)
}

type AvailabilityChecker interface {
	Check(ctx context.Context, stayURL, knownPrice string) (domain.AvailabilityResult, error)
}

type Handlers struct {
	Search Searcher
	Avail  AvailabilityChecker
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/stays", h.postStays)
	s.mux.Post("/v1/stays/availability", h.postAvailability)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type staysRequest struct {
	City            string `json:"city" validate:"required"`
	Adults          int    `json:"adults" validate:"gte=0"`
	Rooms           int    `json:"rooms" validate:"gte=0"`
	CheckIn         string `json:"checkIn" validate:"required_with=CheckOut,omitempty,datetime=2006-01-02"`
	CheckOut        string `json:"checkOut" validate:"required_with=CheckIn,omitempty,datetime=2006-01-02"`
	PriceRangeStart *int   `json:"priceRangeStart" validate:"omitempty,gte=0"`
	PriceRangeEnd   *int   `json:"priceRangeEnd" validate:"omitempty,gte=0"`
}

type availabilityRequest struct {
	StayURL      string `json:"stayUrl" validate:"required,url"`
	InitialPrice string `json:"initialPrice" validate:"required"`
}

func (h *Handlers) postStays(w http.ResponseWriter, r *http.Request) {
	var req staysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	q := domain.SearchQuery{
		City:     req.City,
		Adults:   req.Adults,
		Rooms:    req.Rooms,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		PriceMin: req.PriceRangeStart,
		PriceMax: req.PriceRangeEnd,
	}
	stays, err := h.Search.Search(r.Context(), q)
	if err != nil {
		writeScrapeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stays)
}

func (h *Handlers) postAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	res, err := h.Avail.Check(r.Context(), req.StayURL, req.InitialPrice)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedProvider) {
			writeProblem(w, http.StatusUnprocessableEntity, "Unsupported provider", "stayUrl matches no known provider")
			return
		}
		writeScrapeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeScrapeProblem maps pipeline failures onto upstream-style statuses:
// the provider page being unreachable or unreadable is a bad gateway from
// the caller's point of view.
func writeScrapeProblem(w http.ResponseWriter, err error) {
	var fe *domain.FetchError
	var xe *domain.ExtractionError
	switch {
	case errors.As(err, &fe):
		writeProblem(w, http.StatusBadGateway, "Provider unreachable", fe.Error())
	case errors.As(err, &xe):
		writeProblem(w, http.StatusBadGateway, "Provider page unreadable", xe.Error())
	default:
		log.Error().Err(err).Msg("unhandled pipeline error")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
	}
}
