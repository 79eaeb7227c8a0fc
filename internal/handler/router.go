package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/recordkeeper/backend/internal/handler/records"
	"github.com/zhouzirui/recordkeeper/backend/internal/logger"
	middlewarePkg "github.com/zhouzirui/recordkeeper/backend/internal/middleware"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/appointment"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/book"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/task"
	recordService "github.com/zhouzirui/recordkeeper/backend/internal/service/records"
	"github.com/zhouzirui/recordkeeper/backend/pkg/utils"
)

// Services bundles the record services exposed over HTTP.
type Services struct {
	Appointments *recordService.Service[appointment.Status, appointment.Details]
	Books        *recordService.Service[book.Status, struct{}]
	Tasks        *recordService.Service[task.Status, struct{}]
}

// NewServices builds a fresh, empty service for every domain.
func NewServices(log *logger.Logger) Services {
	return Services{
		Appointments: recordService.NewService("appointments", appointment.NewStore(), appointment.Verbs, log),
		Books:        recordService.NewService("books", book.NewStore(), book.Verbs, log),
		Tasks:        recordService.NewService("tasks", task.NewStore(), task.Verbs, log),
	}
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svcs Services, log *logger.Logger, watchBuffer int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status": "ok",
				"records": map[string]int{
					svcs.Appointments.Domain(): len(svcs.Appointments.List(r.Context(), nil)),
					svcs.Books.Domain():        len(svcs.Books.List(r.Context(), nil)),
					svcs.Tasks.Domain():        len(svcs.Tasks.List(r.Context(), nil)),
				},
			})
		})

		api.Route("/appointments", records.New(svcs.Appointments, records.DecodeAppointment, log, watchBuffer).RegisterRoutes)
		api.Route("/books", records.New(svcs.Books, records.DecodeBook, log, watchBuffer).RegisterRoutes)
		api.Route("/tasks", records.New(svcs.Tasks, records.DecodeTask, log, watchBuffer).RegisterRoutes)
	})

	return r
}
