package records

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
	"github.com/zhouzirui/recordkeeper/backend/internal/logger"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/record"
	recordService "github.com/zhouzirui/recordkeeper/backend/internal/service/records"
	"github.com/zhouzirui/recordkeeper/backend/internal/validator"
	"github.com/zhouzirui/recordkeeper/backend/pkg/utils"
)

// CreateInput is a decoded create request in store terms.
type CreateInput[P any] struct {
	Label    string
	Metadata *string
	Data     P
}

// Decoder turns a domain specific create body into a CreateInput.
type Decoder[P any] func(r *http.Request) (CreateInput[P], error)

// Handler exposes one record service over HTTP.
type Handler[S record.Status, P any] struct {
	svc         *recordService.Service[S, P]
	decode      Decoder[P]
	log         *logger.Logger
	watchBuffer int
	upgrader    websocket.Upgrader
}

// New creates a handler for svc. watchBuffer sizes each change-feed subscription.
func New[S record.Status, P any](svc *recordService.Service[S, P], decode Decoder[P], log *logger.Logger, watchBuffer int) *Handler[S, P] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler[S, P]{
		svc:         svc,
		decode:      decode,
		log:         log.Named("http." + svc.Domain()),
		watchBuffer: watchBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the record routes on r, usually a /api/{domain} sub-router.
func (h *Handler[S, P]) RegisterRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/lookup", h.handleLookup)
	r.Post("/labels/{verb}", h.handleLabelVerb)
	r.Get("/ws", h.handleWebSocket)
	r.Get("/events", h.handleEvents)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/transitions", h.handleTransition)
	r.Post("/{id}/{verb}", h.handleVerb)
}

type listResponse[S record.Status, P any] struct {
	Items  []record.Record[S, P] `json:"items"`
	Counts map[S]int             `json:"counts"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type labelRequest struct {
	Label string `json:"label" validate:"required"`
}

func (h *Handler[S, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(r)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	rec, err := h.svc.Create(r.Context(), in.Label, in.Metadata, in.Data)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, rec)
}

func (h *Handler[S, P]) handleList(w http.ResponseWriter, r *http.Request) {
	var filter *S
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := h.svc.ParseStatus(raw)
		if err != nil {
			utils.RespondErr(w, err)
			return
		}
		filter = &st
	}

	utils.RespondJSON(w, http.StatusOK, listResponse[S, P]{
		Items:  h.svc.List(r.Context(), filter),
		Counts: h.svc.Counts(r.Context()),
	})
}

func (h *Handler[S, P]) handleLookup(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		utils.RespondError(w, http.StatusBadRequest, "label query parameter is required")
		return
	}

	rec, err := h.svc.Lookup(r.Context(), label)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[S, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[S, P]) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.RespondErr(w, err)
		return
	}

	target, err := h.svc.ParseStatus(req.Status)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	rec, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), target)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

func (h *Handler[S, P]) handleVerb(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Apply(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "verb"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

// handleLabelVerb applies a verb to the record found by label, e.g. loaning a
// book by its title.
func (h *Handler[S, P]) handleLabelVerb(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.RespondErr(w, err)
		return
	}

	rec, err := h.svc.Lookup(r.Context(), req.Label)
	if err != nil {
		utils.RespondErr(w, err)
		return
	}

	rec, err = h.svc.Apply(r.Context(), rec.ID, chi.URLParam(r, "verb"))
	if err != nil {
		utils.RespondErr(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}

// decodeJSON decodes the request body into dst and checks its validate tags.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ierr.WithError(err).
			WithHint("invalid request body").
			Mark(ierr.ErrValidation)
	}
	return validator.ValidateRequest(dst)
}
