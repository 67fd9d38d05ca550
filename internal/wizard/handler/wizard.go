package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"barberbook/internal/availability"
	shopservice "barberbook/internal/shops/service"
	"barberbook/internal/wizard"
	apperrors "barberbook/pkg/errors"
	httputil "barberbook/pkg/http"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
)

// WizardHandler exposes the booking wizard over HTTP. Each session wraps one
// wizard instance; the client drives it step by step and receives the full
// session view after every action, so a stateless frontend can re-render
// from any response.
type WizardHandler struct {
	shops     shopservice.ShopService
	slots     wizard.SlotSource
	committer wizard.Committer
	store     *wizard.SessionStore
	log       *logger.Logger
}

func NewWizardHandler(
	shops shopservice.ShopService,
	slots wizard.SlotSource,
	committer wizard.Committer,
	store *wizard.SessionStore,
	log *logger.Logger,
) *WizardHandler {
	return &WizardHandler{
		shops:     shops,
		slots:     slots,
		committer: committer,
		store:     store,
		log:       log,
	}
}

type sessionView struct {
	SessionID string                  `json:"session_id"`
	ShopID    string                  `json:"shop_id"`
	State     wizard.State            `json:"state"`
	Draft     wizard.Draft            `json:"draft"`
	Slots     []availability.TimeSlot `json:"slots,omitempty"`
	Booking   *model.Booking          `json:"booking,omitempty"`
}

func (h *WizardHandler) view(session *wizard.Session, shopID string) sessionView {
	w := session.Wizard
	return sessionView{
		SessionID: session.ID,
		ShopID:    shopID,
		State:     w.State(),
		Draft:     w.Draft(),
		Slots:     w.OfferedSlots(),
		Booking:   w.Booking(),
	}
}

// translateWizardError maps the wizard's sentinel errors onto AppErrors so
// the response layer can assign statuses. AppErrors pass through untouched.
func translateWizardError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, wizard.ErrSubmitInFlight):
		return apperrors.Conflict("A submission is already in progress for this session")
	case errors.Is(err, wizard.ErrInvalidTransition):
		return apperrors.Conflict("Action not allowed in the current wizard state")
	case errors.Is(err, wizard.ErrSlotUnavailable):
		return apperrors.Conflict("The selected slot is already booked")
	case errors.Is(err, wizard.ErrUnknownSlot):
		return apperrors.InvalidInput("Slot is not part of the offered schedule")
	case errors.Is(err, wizard.ErrUnknownService):
		return apperrors.InvalidInput("Service is not in the shop catalog")
	case errors.Is(err, wizard.ErrNoDateSelected):
		return apperrors.InvalidInput("A date must be selected first")
	default:
		return apperrors.Internal("Wizard action failed", err)
	}
}

func (h *WizardHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, translateWizardError(err)); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *WizardHandler) writeView(w http.ResponseWriter, handler string, session *wizard.Session, shopID string) {
	if err := httputil.WriteSuccess(w, h.view(session, shopID)); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

// session resolves the path parameter to a live session, writing the 404
// itself when the session is gone.
func (h *WizardHandler) session(w http.ResponseWriter, ps httprouter.Params, handler string) (*wizard.Session, bool) {
	id := ps.ByName("id")
	session, ok := h.store.Get(id)
	if !ok {
		h.writeError(w, handler, apperrors.NotFoundWithID("Wizard session", id))
		return nil, false
	}
	return session, true
}

type startRequest struct {
	ShopID string `json:"shop_id"`
}

func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Start", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.ShopID == "" {
		h.writeError(w, "Start", apperrors.InvalidInput("shop_id is required"))
		return
	}

	shop, err := h.shops.GetByID(r.Context(), req.ShopID)
	if err != nil {
		h.writeError(w, "Start", err)
		return
	}

	session := h.store.Create(wizard.New(shop, h.slots, h.committer, h.log))
	h.log.Info("Wizard session started", "session_id", session.ID, "shop_id", shop.ID)

	if err := httputil.WriteCreated(w, h.view(session, shop.ID)); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "Get")
	if !ok {
		return
	}
	h.writeView(w, "Get", session, session.Wizard.ShopID())
}

type serviceRequest struct {
	ServiceID string `json:"service_id"`
}

func (h *WizardHandler) AddService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "AddService")
	if !ok {
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "AddService", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := session.Wizard.AddService(req.ServiceID); err != nil {
		h.writeError(w, "AddService", err)
		return
	}
	h.writeView(w, "AddService", session, session.Wizard.ShopID())
}

func (h *WizardHandler) RemoveService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "RemoveService")
	if !ok {
		return
	}

	if err := session.Wizard.RemoveService(ps.ByName("serviceID")); err != nil {
		h.writeError(w, "RemoveService", err)
		return
	}
	h.writeView(w, "RemoveService", session, session.Wizard.ShopID())
}

func (h *WizardHandler) ConfirmServices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "ConfirmServices")
	if !ok {
		return
	}

	if err := session.Wizard.ConfirmServices(); err != nil {
		h.writeError(w, "ConfirmServices", err)
		return
	}
	h.writeView(w, "ConfirmServices", session, session.Wizard.ShopID())
}

type dateRequest struct {
	Date string `json:"date"`
}

func (h *WizardHandler) SelectDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "SelectDate")
	if !ok {
		return
	}

	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SelectDate", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := session.Wizard.SelectDate(r.Context(), req.Date); err != nil {
		h.writeError(w, "SelectDate", err)
		return
	}
	h.writeView(w, "SelectDate", session, session.Wizard.ShopID())
}

// RefreshSlots recomputes the slot board for the selected date. Clients call
// it after a conflicted submit, or to poll while the user hesitates.
func (h *WizardHandler) RefreshSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "RefreshSlots")
	if !ok {
		return
	}

	if err := session.Wizard.RefreshSlots(r.Context()); err != nil {
		h.writeError(w, "RefreshSlots", err)
		return
	}
	h.writeView(w, "RefreshSlots", session, session.Wizard.ShopID())
}

type slotRequest struct {
	Slot string `json:"slot"`
}

func (h *WizardHandler) SelectSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "SelectSlot")
	if !ok {
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SelectSlot", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := session.Wizard.SelectSlot(req.Slot); err != nil {
		h.writeError(w, "SelectSlot", err)
		return
	}
	h.writeView(w, "SelectSlot", session, session.Wizard.ShopID())
}

func (h *WizardHandler) EnterContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "EnterContact")
	if !ok {
		return
	}

	var customer model.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.writeError(w, "EnterContact", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := session.Wizard.EnterContact(customer); err != nil {
		h.writeError(w, "EnterContact", err)
		return
	}
	h.writeView(w, "EnterContact", session, session.Wizard.ShopID())
}

// Submit dispatches the draft for commit. A slot conflict comes back as 409
// with the session already rewound to slot selection; the client refreshes
// the board and lets the user pick again without re-entering contact details.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "Submit")
	if !ok {
		return
	}

	booking, err := session.Wizard.Submit(r.Context())
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	h.log.Info("Wizard session confirmed",
		"session_id", session.ID,
		"booking_id", booking.ID,
	)

	if writeErr := httputil.WriteCreated(w, h.view(session, session.Wizard.ShopID())); writeErr != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", writeErr)
	}
}

func (h *WizardHandler) Reset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, ps, "Reset")
	if !ok {
		return
	}

	session.Wizard.Reset()
	h.writeView(w, "Reset", session, session.Wizard.ShopID())
}

func (h *WizardHandler) Abandon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	h.store.Delete(id)
	httputil.WriteNoContent(w)
}

func (h *WizardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/wizard", h.Start)
	router.GET("/api/v1/wizard/:id", h.Get)
	router.DELETE("/api/v1/wizard/:id", h.Abandon)
	router.POST("/api/v1/wizard/:id/services", h.AddService)
	router.DELETE("/api/v1/wizard/:id/services/:serviceID", h.RemoveService)
	router.POST("/api/v1/wizard/:id/services/confirm", h.ConfirmServices)
	router.POST("/api/v1/wizard/:id/date", h.SelectDate)
	router.POST("/api/v1/wizard/:id/slots/refresh", h.RefreshSlots)
	router.POST("/api/v1/wizard/:id/slot", h.SelectSlot)
	router.POST("/api/v1/wizard/:id/contact", h.EnterContact)
	router.POST("/api/v1/wizard/:id/submit", h.Submit)
	router.POST("/api/v1/wizard/:id/reset", h.Reset)
}
