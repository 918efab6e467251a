package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	event2 "github.com/podium-events/podium/internal/services/event"
)

type CreateOrganiserRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func RegisterEventRoutes(r *router.Router, svc *services.Services) {
	// Create organiser
	r.POST("/api/organisers", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body CreateOrganiserRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		if body.Name == "" || body.Slug == "" {
			writeError(ctx, stdCtx, "Name and slug are required", perrors.NewErrInvalidRequest("Name and slug are required", errors.New("missing fields")))
			return
		}

		created, err := svc.Event.CreateOrganiser(stdCtx, body.Name, body.Slug)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create organiser", perrors.NewErrInternalServerError("Failed to create organiser", err))
			return
		}

		writeOK(ctx, stdCtx, "Organiser created successfully", created)
	})

	// Create event
	r.POST("/api/events", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body event2.CreateEventRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		if body.Name == "" || body.Slug == "" {
			writeError(ctx, stdCtx, "Name and slug are required", perrors.NewErrInvalidRequest("Name and slug are required", errors.New("missing fields")))
			return
		}

		created, err := svc.Event.Create(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create event", perrors.NewErrInternalServerError("Failed to create event", err))
			return
		}

		writeOK(ctx, stdCtx, "Event created successfully", created)
	})

	// List events
	r.GET("/api/events", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		events, err := svc.Event.List(stdCtx)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list events", perrors.NewErrInternalServerError("Failed to list events", err))
			return
		}

		writeOK(ctx, stdCtx, "success", events)
	})

	// Get event
	r.GET("/api/events/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		ev, err := svc.Event.GetByID(stdCtx, id)
		if err != nil {
			switch {
			case errors.Is(err, event2.ErrEventNotFound):
				writeError(ctx, stdCtx, "Event not found", perrors.NewErrNotFound("Event not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get event", perrors.NewErrInternalServerError("Failed to get event", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "success", ev)
	})

	// Update event
	r.PUT("/api/events/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body event2.UpdateEventRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Event.Update(stdCtx, id, &body)
		if err != nil {
			switch {
			case errors.Is(err, event2.ErrEventNotFound):
				writeError(ctx, stdCtx, "Event not found", perrors.NewErrNotFound("Event not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to update event", perrors.NewErrInternalServerError("Failed to update event", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Event updated successfully", updated)
	})

	// Submission dashboard counts
	r.GET("/api/events/{id}/stats", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		stats, err := svc.Submission.Stats(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to compute stats", perrors.NewErrInternalServerError("Failed to compute stats", err))
			return
		}

		writeOK(ctx, stdCtx, "success", stats)
	})

	// Queued mail for the event
	r.GET("/api/events/{id}/mails", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		mails, err := svc.Mail.ListByEvent(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list mails", perrors.NewErrInternalServerError("Failed to list mails", err))
			return
		}

		writeOK(ctx, stdCtx, "success", mails)
	})
}
