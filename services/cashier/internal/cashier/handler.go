package cashier

import (
	"encoding/json"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	MaxBodyBytes = 1 << 20

	// ActorHeader carries the authenticated employee id set by the upstream gateway.
	ActorHeader = "X-Actor-ID"
)

type HandlerDeps struct {
	Service       *Service
	GatewaySecret []byte
}

type Handler struct {
	service *Service
	secret  []byte
	logger  apt.Logger
	config  *apt.Config
	tlm     *telemetry.HTTP
}

func NewHandler(deps HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		service: deps.Service,
		secret:  deps.GatewaySecret,
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/terminals", func(r chi.Router) {
		r.Post("/", h.RegisterTerminal)
		r.Get("/{id}", h.GetTerminal)
		r.Patch("/{id}/approve", h.ApproveTerminal)
		r.Patch("/{id}/deactivate", h.DeactivateTerminal)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.OpenSession)
		r.Get("/current", h.GetCurrentSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/close", h.CloseSession)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/confirm", h.ConfirmOrder)
	})

	r.Post("/payments", h.ProcessPayment)
	r.Post("/payments/gateway", h.StartGatewayPayment)
	r.Post("/webhooks/gateway", h.GatewayWebhook)

	r.Post("/customers", h.CreateCustomer)
	r.Post("/employees", h.CreateEmployee)
	r.Post("/inventory", h.CreateInventoryItem)
	r.Post("/vouchers", h.CreateVoucher)
	r.Post("/tables", h.CreateTable)
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

// actorID reads the acting employee. A missing or malformed header yields uuid.Nil,
// which every operation that needs an actor rejects as Unauthorized.
func actorID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(r.Header.Get(ActorHeader))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid "+name+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		apt.RespondError(w, http.StatusServiceUnavailable, "Cashier service not configured")
		return false
	}
	return true
}

func (h *Handler) RegisterTerminal(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RegisterTerminal")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.TerminalInput
	if !h.decode(w, r, &in) {
		return
	}

	t, err := h.service.RegisterTerminal(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, t, nil)
}

func (h *Handler) GetTerminal(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTerminal")
	defer finish()

	id, ok := h.pathID(w, r, "terminal")
	if !ok || !h.ready(w) {
		return
	}

	t, err := h.service.GetTerminal(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, t, nil)
}

func (h *Handler) ApproveTerminal(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ApproveTerminal")
	defer finish()

	id, ok := h.pathID(w, r, "terminal")
	if !ok || !h.ready(w) {
		return
	}

	t, err := h.service.ApproveTerminal(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, t, nil)
}

func (h *Handler) DeactivateTerminal(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeactivateTerminal")
	defer finish()

	id, ok := h.pathID(w, r, "terminal")
	if !ok || !h.ready(w) {
		return
	}

	t, err := h.service.DeactivateTerminal(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, t, nil)
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OpenSession")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.OpenSessionInput
	if !h.decode(w, r, &in) {
		return
	}

	session, err := h.service.OpenSession(r.Context(), actorID(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, session, nil)
}

func (h *Handler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCurrentSession")
	defer finish()

	if !h.ready(w) {
		return
	}

	summary, err := h.service.GetCurrentSession(r.Context(), actorID(r))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, summary, nil)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSession")
	defer finish()

	id, ok := h.pathID(w, r, "session")
	if !ok || !h.ready(w) {
		return
	}

	summary, err := h.service.GetSession(r.Context(), actorID(r), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, summary, nil)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CloseSession")
	defer finish()

	id, ok := h.pathID(w, r, "session")
	if !ok || !h.ready(w) {
		return
	}
	var in validate.CloseSessionInput
	if !h.decode(w, r, &in) {
		return
	}
	in.SessionID = id

	session, err := h.service.CloseSession(r.Context(), actorID(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, session, nil)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.OrderInput
	if !h.decode(w, r, &in) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), actorID(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, order, nil)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	id, ok := h.pathID(w, r, "order")
	if !ok || !h.ready(w) {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ConfirmOrder")
	defer finish()

	id, ok := h.pathID(w, r, "order")
	if !ok || !h.ready(w) {
		return
	}

	order, err := h.service.ConfirmOrder(r.Context(), actorID(r), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ProcessPayment")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.PaymentInput
	if !h.decode(w, r, &in) {
		return
	}

	result, err := h.service.ProcessPayment(r.Context(), actorID(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusOK, result, nil)
}

func (h *Handler) StartGatewayPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.StartGatewayPayment")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.GatewayPaymentInput
	if !h.decode(w, r, &in) {
		return
	}

	p, err := h.service.StartGatewayPayment(r.Context(), actorID(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, map[string]interface{}{
		"payment":    p,
		"request_id": p.IdempotencyKey,
	}, nil)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateCustomer")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.CustomerInput
	if !h.decode(w, r, &in) {
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, c, nil)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateEmployee")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.EmployeeInput
	if !h.decode(w, r, &in) {
		return
	}

	e, err := h.service.CreateEmployee(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, e, nil)
}

func (h *Handler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateInventoryItem")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.InventoryItemInput
	if !h.decode(w, r, &in) {
		return
	}

	item, err := h.service.CreateInventoryItem(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, item, nil)
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateVoucher")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.VoucherInput
	if !h.decode(w, r, &in) {
		return
	}

	v, err := h.service.CreateVoucher(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, v, nil)
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	if !h.ready(w) {
		return
	}
	var in validate.TableInput
	if !h.decode(w, r, &in) {
		return
	}

	t, err := h.service.CreateTable(r.Context(), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	apt.Respond(w, http.StatusCreated, t, nil)
}
