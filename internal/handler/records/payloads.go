package records

import (
	"net/http"
	"time"

	"github.com/zhouzirui/recordkeeper/backend/internal/model/appointment"
)

type createAppointmentRequest struct {
	Patient     string    `json:"patient" validate:"required,max=200"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       *string   `json:"notes" validate:"omitempty,max=1000"`
}

// DecodeAppointment reads {"patient", "scheduledAt", "notes"}.
func DecodeAppointment(r *http.Request) (CreateInput[appointment.Details], error) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		return CreateInput[appointment.Details]{}, err
	}
	return CreateInput[appointment.Details]{
		Label:    req.Patient,
		Metadata: req.Notes,
		Data:     appointment.Details{ScheduledAt: req.ScheduledAt.UTC()},
	}, nil
}

type createBookRequest struct {
	Title  string `json:"title" validate:"required,max=300"`
	Author string `json:"author" validate:"required,max=200"`
}

// DecodeBook reads {"title", "author"}; the author becomes the record metadata.
func DecodeBook(r *http.Request) (CreateInput[struct{}], error) {
	var req createBookRequest
	if err := decodeJSON(r, &req); err != nil {
		return CreateInput[struct{}]{}, err
	}
	return CreateInput[struct{}]{Label: req.Title, Metadata: &req.Author}, nil
}

type createTaskRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

// DecodeTask reads {"description", "category"}.
func DecodeTask(r *http.Request) (CreateInput[struct{}], error) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		return CreateInput[struct{}]{}, err
	}
	return CreateInput[struct{}]{Label: req.Description, Metadata: req.Category}, nil
}
