package kitchen

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/clock"
	"github.com/appetiteclub/pos/pkg/enums/ticketstatus"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type HandlerDeps struct {
	Service  *Service
	Feed     ChangeFeed
	Hub      *InvalidationHub
	Clock    clock.Clock
	Interval time.Duration
}

type Handler struct {
	service  *Service
	feed     ChangeFeed
	hub      *InvalidationHub
	clock    clock.Clock
	interval time.Duration
	logger   apt.Logger
	config   *apt.Config
	tlm      *telemetry.HTTP
}

func NewHandler(deps HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Handler{
		service:  deps.Service,
		feed:     deps.Feed,
		hub:      deps.Hub,
		clock:    deps.Clock,
		interval: deps.Interval,
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stations/{stationID}", func(r chi.Router) {
		r.Get("/board", h.GetBoard)
		r.Get("/board/stream", h.StreamBoard)
		r.Get("/timing-rules", h.ListTimingRules)
		r.Put("/timing-rules", h.PutTimingRules)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/{id}", h.GetTicket)
		r.Patch("/{id}/preparing", h.bump(ticketstatus.Statuses.Preparing.Name))
		r.Patch("/{id}/ready", h.bump(ticketstatus.Statuses.Ready.Name))
		r.Patch("/{id}/serve", h.transition(ticketstatus.Statuses.Served.Name))
		r.Patch("/{id}/complete", h.transition(ticketstatus.Statuses.Completed.Name))
		r.Patch("/{id}/cancel", h.transition(ticketstatus.Statuses.Cancelled.Name))
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", "error", err)
	}
	apt.RespondError(w, status, apperr.PublicMessage(err))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBoard")
	defer finish()

	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
		return
	}

	view, err := h.service.Board(r.Context(), chi.URLParam(r, "stationID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	apt.Respond(w, http.StatusOK, view, nil)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTickets")
	defer finish()

	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
		return
	}

	filter := TicketFilter{
		StationID: r.URL.Query().Get("station"),
		Status:    r.URL.Query().Get("status"),
	}
	if filter.Status != "" && ticketstatus.ByName(filter.Status) == nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if orderIDStr := r.URL.Query().Get("order_id"); orderIDStr != "" {
		orderID, err := uuid.Parse(orderIDStr)
		if err != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}
		filter.OrderID = &orderID
	}

	tickets, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
	}, nil)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTicket")
	defer finish()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}
	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
		return
	}

	ticket, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	apt.Respond(w, http.StatusOK, ticket, nil)
}

func (h *Handler) bump(status string) http.HandlerFunc {
	return h.changeStatus("Handler.Bump", status, true)
}

func (h *Handler) transition(status string) http.HandlerFunc {
	return h.changeStatus("Handler.Transition", status, false)
}

func (h *Handler) changeStatus(name, status string, bump bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, r, finish := h.tlm.Start(w, r, name)
		defer finish()

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid ticket ID")
			return
		}
		if h.service == nil {
			apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
			return
		}

		var ticket *Ticket
		if bump {
			ticket, err = h.service.Bump(r.Context(), id, status)
		} else {
			ticket, err = h.service.Transition(r.Context(), id, status)
		}
		if err != nil {
			h.respondErr(w, r, err)
			return
		}

		apt.Respond(w, http.StatusOK, ticket, nil)
	}
}

func (h *Handler) ListTimingRules(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTimingRules")
	defer finish()

	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
		return
	}

	rules, err := h.service.TimingRules(r.Context(), chi.URLParam(r, "stationID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
	}, nil)
}

func (h *Handler) PutTimingRules(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PutTimingRules")
	defer finish()

	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Kitchen service not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req struct {
		Rules []validate.TimingRuleInput `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rules, err := h.service.SetTimingRules(r.Context(), chi.URLParam(r, "stationID"), req.Rules)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
	}, nil)
}
