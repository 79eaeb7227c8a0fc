// Package demo replays the scripted front-desk sessions of the three record
// domains and seeds servers with the same data.
package demo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/zhouzirui/recordkeeper/backend/internal/handler"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/appointment"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/book"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/task"
	"github.com/zhouzirui/recordkeeper/backend/internal/report"
)

type appointmentSeed struct {
	patient string
	at      time.Time
	notes   *string
}

var (
	appointmentSeeds = []appointmentSeed{
		{"João da Silva", time.Date(2025, 10, 20, 10, 0, 0, 0, time.Local), lo.ToPtr("Exame de rotina")},
		{"Maria Oliveira", time.Date(2025, 10, 21, 14, 30, 0, 0, time.Local), nil},
		{"Pedro Santos", time.Date(2025, 10, 22, 9, 0, 0, 0, time.Local), lo.ToPtr("Avaliação inicial")},
		{"Ana Paula", time.Date(2025, 10, 23, 11, 0, 0, 0, time.Local), nil},
	}

	bookSeeds = [][2]string{
		{"O Hobbit", "J.R.R. Tolkien"},
		{"1984", "George Orwell"},
		{"O Código Da Vinci", "Dan Brown"},
	}

	taskSeeds = []struct {
		description string
		category    *string
	}{
		{"Fazer compras", lo.ToPtr("Pessoal")},
		{"Responder e-mails do trabalho", nil},
		{"Ligar para o dentista", lo.ToPtr("Saúde")},
		{"Finalizar relatório do projeto", nil},
	}
)

// Seed loads the demo records into svcs without running any transitions.
func Seed(ctx context.Context, svcs handler.Services) error {
	for _, s := range appointmentSeeds {
		if _, err := svcs.Appointments.Create(ctx, s.patient, s.notes, appointment.Details{ScheduledAt: s.at.UTC()}); err != nil {
			return fmt.Errorf("seed appointment %q: %w", s.patient, err)
		}
	}
	for _, s := range bookSeeds {
		if _, err := svcs.Books.Create(ctx, s[0], lo.ToPtr(s[1]), struct{}{}); err != nil {
			return fmt.Errorf("seed book %q: %w", s[0], err)
		}
	}
	for _, s := range taskSeeds {
		if _, err := svcs.Tasks.Create(ctx, s.description, s.category, struct{}{}); err != nil {
			return fmt.Errorf("seed task %q: %w", s.description, err)
		}
	}
	return nil
}

// Run replays all three sessions against svcs, printing through p.
func Run(ctx context.Context, p *report.Printer, svcs handler.Services) {
	Appointments(ctx, p, svcs)
	Library(ctx, p, svcs)
	Tasks(ctx, p, svcs)
}

// Appointments schedules four visits, cancels and completes some of them, and
// retries operations that must be refused.
func Appointments(ctx context.Context, p *report.Printer, svcs handler.Services) {
	svc := svcs.Appointments
	p.Section("Starting the scheduling desk")

	for _, s := range appointmentSeeds {
		rec, err := svc.Create(ctx, s.patient, s.notes, appointment.Details{ScheduledAt: s.at.UTC()})
		if err != nil {
			p.Failure(err)
			continue
		}
		p.Info("Appointment for %q scheduled.\n> ID: %s", rec.Label, rec.ID)
	}

	listAppointments(ctx, p, svcs)

	apply := func(id, verb string) {
		rec, err := svc.Apply(ctx, id, verb)
		if err != nil {
			p.Failure(err)
			return
		}
		if rec.StatusAt != nil {
			p.Info("Appointment %q is now %s (%s).", rec.ID, rec.Status, p.When(*rec.StatusAt))
			return
		}
		p.Info("Appointment %q is now %s.", rec.ID, rec.Status)
	}

	apply("appointment-2", "cancel")
	apply("appointment-1", "complete")
	apply("appointment-4", "cancel")

	apply("appointment-1", "complete")
	apply("appointment-99", "cancel")

	listAppointments(ctx, p, svcs)

	for _, st := range svc.Statuses() {
		p.Section(fmt.Sprintf("Appointments with status %q", st))
		items := svc.List(ctx, &st)
		if len(items) == 0 {
			p.Line("No appointments with status %q.", st)
			continue
		}
		for _, rec := range items {
			p.Line("- ID: %s | Patient: %s | Scheduled: %s", rec.ID, rec.Label, report.Time(rec.Data.ScheduledAt))
		}
	}
}

func listAppointments(ctx context.Context, p *report.Printer, svcs handler.Services) {
	p.Section("All appointments")
	items := svcs.Appointments.List(ctx, nil)
	if len(items) == 0 {
		p.Line("No appointments found.")
		return
	}
	for _, rec := range items {
		completed, _ := rec.Stamp(appointment.StampCompleted)
		cancelled, _ := rec.Stamp(appointment.StampCancelled)
		p.Block(
			report.Field{Name: "ID", Value: rec.ID},
			report.Field{Name: "Patient", Value: rec.Label},
			report.Field{Name: "Scheduled", Value: report.Time(rec.Data.ScheduledAt)},
			report.Field{Name: "Status", Value: string(rec.Status)},
			report.Field{Name: "Notes", Value: report.Optional(rec.Metadata)},
			report.Field{Name: "Completed", Value: stampText(p, completed)},
			report.Field{Name: "Cancelled", Value: stampText(p, cancelled)},
		)
	}
	p.Rule()
}

// Library registers books, loans and returns "1984" by title, and tries the
// loans and returns the catalog must refuse.
func Library(ctx context.Context, p *report.Printer, svcs handler.Services) {
	svc := svcs.Books
	p.Section("Running the library catalog")

	for _, s := range append(slices.Clone(bookSeeds), [2]string{"o hobbit", "Someone Else"}) {
		rec, err := svc.Create(ctx, s[0], lo.ToPtr(s[1]), struct{}{})
		if err != nil {
			p.Failure(err)
			continue
		}
		p.Info("Book %q by %s registered.", rec.Label, report.Optional(rec.Metadata))
	}

	listBooks(ctx, p, svcs)
	listAvailable(ctx, p, svcs)

	move := func(title string, target book.Status) {
		rec, err := svc.TransitionByLabel(ctx, title, target)
		if err != nil {
			p.Failure(err)
			return
		}
		p.Info("Book %q is now %s (%s).", rec.Label, rec.Status, p.OptionalWhen(rec.StatusAt))
	}

	move("1984", book.StatusLoaned)
	move("1984", book.StatusLoaned)
	listAvailable(ctx, p, svcs)
	move("1984", book.StatusAvailable)
	move("O Hobbit", book.StatusAvailable)

	listBooks(ctx, p, svcs)
}

func listBooks(ctx context.Context, p *report.Printer, svcs handler.Services) {
	p.Section("Full catalog")
	items := svcs.Books.List(ctx, nil)
	if len(items) == 0 {
		p.Line("The catalog is empty.")
		return
	}
	for _, rec := range items {
		loaned, _ := rec.Stamp(book.StampLoaned)
		returned, _ := rec.Stamp(book.StampReturned)
		p.Block(
			report.Field{Name: "Title", Value: fmt.Sprintf("%q", rec.Label)},
			report.Field{Name: "Author", Value: report.Optional(rec.Metadata)},
			report.Field{Name: "Status", Value: string(rec.Status)},
			report.Field{Name: "Loaned", Value: stampText(p, loaned)},
			report.Field{Name: "Returned", Value: stampText(p, returned)},
		)
	}
	p.Rule()
}

func listAvailable(ctx context.Context, p *report.Printer, svcs handler.Services) {
	p.Section("Books available for loan")
	items := svcs.Books.List(ctx, lo.ToPtr(book.StatusAvailable))
	if len(items) == 0 {
		p.Line("No books available right now.")
		return
	}
	for _, rec := range items {
		p.Line("- Title: %q, Author: %s", rec.Label, report.Optional(rec.Metadata))
	}
}

// Tasks adds four to-dos, completes two, and retries a completed and an
// unknown task.
func Tasks(ctx context.Context, p *report.Printer, svcs handler.Services) {
	svc := svcs.Tasks
	p.Section("Running the task list")

	for _, s := range taskSeeds {
		rec, err := svc.Create(ctx, s.description, s.category, struct{}{})
		if err != nil {
			p.Failure(err)
			continue
		}
		p.Info("Task %q added.", rec.Label)
	}

	listPending(ctx, p, svcs)

	for _, id := range []string{"1", "4", "1", "99"} {
		rec, err := svc.Apply(ctx, id, "complete")
		if err != nil {
			p.Failure(err)
			continue
		}
		p.Info("Task %q completed %s.", rec.Label, p.OptionalWhen(rec.StatusAt))
	}

	listPending(ctx, p, svcs)

	p.Section("Completed tasks")
	done := svc.List(ctx, lo.ToPtr(task.StatusDone))
	if len(done) == 0 {
		p.Line("No task has been completed yet.")
		return
	}
	for _, rec := range done {
		at := "date unavailable"
		if rec.StatusAt != nil {
			at = report.Time(*rec.StatusAt)
		}
		p.Line("[ID: %s] - %s (completed %s)", rec.ID, rec.Label, at)
	}
}

func listPending(ctx context.Context, p *report.Printer, svcs handler.Services) {
	p.Section("Pending tasks")
	pending := svcs.Tasks.List(ctx, lo.ToPtr(task.StatusPending))
	if len(pending) == 0 {
		p.Line("Nothing pending. Good job!")
		return
	}
	for _, rec := range pending {
		category := ""
		if rec.Metadata != nil {
			category = fmt.Sprintf(" (%s)", *rec.Metadata)
		}
		p.Line("[ID: %s] - %s%s", rec.ID, rec.Label, category)
	}
}

func stampText(p *report.Printer, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return p.When(t)
}
