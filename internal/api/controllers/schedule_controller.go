package controllers

import (
	"bytes"
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	schedule2 "github.com/podium-events/podium/internal/services/schedule"
)

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type FreezeRequest struct {
	Version string `json:"version"`
}

type PlaceSlotRequest struct {
	schedule2.SlotPlacement
	SubmissionID string `json:"submission_id"`
}

func RegisterScheduleRoutes(r *router.Router, svc *services.Services) {
	// Create room
	r.POST("/api/events/{id}/rooms", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body CreateRoomRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		if body.Name == "" {
			writeError(ctx, stdCtx, "Name is required", perrors.NewErrInvalidRequest("Name is required", errors.New("name is required")))
			return
		}

		room, err := svc.Schedule.CreateRoom(stdCtx, eventID, body.Name, body.Position)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create room", perrors.NewErrInternalServerError("Failed to create room", err))
			return
		}

		writeOK(ctx, stdCtx, "Room created successfully", room)
	})

	// List rooms
	r.GET("/api/events/{id}/rooms", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		rooms, err := svc.Schedule.Rooms(stdCtx, eventID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list rooms", perrors.NewErrInternalServerError("Failed to list rooms", err))
			return
		}

		writeOK(ctx, stdCtx, "success", rooms)
	})

	// WIP schedule and its slots
	r.GET("/api/events/{id}/schedule", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var sched *schedule2.Schedule
		if version := string(ctx.QueryArgs().Peek("version")); version != "" {
			sched, err = svc.Schedule.Version(stdCtx, eventID, version)
		} else {
			sched, err = svc.Schedule.WIP(stdCtx, eventID)
		}
		if err != nil {
			switch {
			case errors.Is(err, schedule2.ErrScheduleNotFound):
				writeError(ctx, stdCtx, "Schedule not found", perrors.NewErrNotFound("Schedule not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get schedule", perrors.NewErrInternalServerError("Failed to get schedule", err))
			}
			return
		}

		slots, err := svc.Schedule.Slots(stdCtx, sched.ID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list slots", perrors.NewErrInternalServerError("Failed to list slots", err))
			return
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"schedule": sched, "slots": slots})
	})

	// Published versions
	r.GET("/api/events/{id}/schedule/versions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		versions, err := svc.Schedule.Versions(stdCtx, eventID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list schedule versions", perrors.NewErrInternalServerError("Failed to list schedule versions", err))
			return
		}

		writeOK(ctx, stdCtx, "success", versions)
	})

	// Freeze the WIP schedule under a version name
	r.POST("/api/events/{id}/schedule/freeze", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body FreezeRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		if body.Version == "" {
			writeError(ctx, stdCtx, "Version is required", perrors.NewErrInvalidRequest("Version is required", errors.New("version is required")))
			return
		}

		frozen, err := svc.Schedule.Freeze(stdCtx, eventID, body.Version)
		if err != nil {
			switch {
			case errors.Is(err, schedule2.ErrVersionExists):
				writeError(ctx, stdCtx, "Schedule version already exists", perrors.NewErrConflict("Schedule version already exists", err))
			case errors.Is(err, schedule2.ErrScheduleNotFound):
				writeError(ctx, stdCtx, "No schedule to freeze", perrors.NewErrNotFound("No schedule to freeze", err))
			default:
				writeError(ctx, stdCtx, "Failed to freeze schedule", perrors.NewErrInternalServerError("Failed to freeze schedule", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Schedule frozen successfully", frozen)
	})

	// Place a submission on the WIP schedule
	r.POST("/api/events/{id}/schedule/slots", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body PlaceSlotRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		submissionID, err := uuidFromString(body.SubmissionID)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid submission_id format", perrors.NewErrInvalidRequest("Invalid submission_id format", err))
			return
		}

		slot, err := svc.Schedule.PlaceSlot(stdCtx, eventID, submissionID, &body.SlotPlacement)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to place slot", perrors.NewErrInternalServerError("Failed to place slot", err))
			return
		}

		writeOK(ctx, stdCtx, "Slot placed successfully", slot)
	})

	// Remove a submission from the WIP schedule
	r.DELETE("/api/events/{id}/schedule/slots/{submissionId}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}
		submissionID, err := pathParamUUID(ctx, "submissionId")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid submission ID format", perrors.NewErrInvalidRequest("Invalid submission ID format", err))
			return
		}

		if err := svc.Schedule.RemoveSlot(stdCtx, eventID, submissionID); err != nil {
			writeError(ctx, stdCtx, "Failed to remove slot", perrors.NewErrInternalServerError("Failed to remove slot", err))
			return
		}

		writeOK(ctx, stdCtx, "Slot removed successfully", map[string]any{"event_id": eventID, "submission_id": submissionID})
	})

	// Import a frab schedule XML export
	r.POST("/api/events/{id}/schedule/import", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		body := ctx.PostBody()
		if len(body) == 0 {
			writeError(ctx, stdCtx, "Request body is empty", perrors.NewErrInvalidRequest("Request body is empty", errors.New("empty body")))
			return
		}

		result, err := svc.Schedule.Import(stdCtx, eventID, bytes.NewReader(body))
		if err != nil {
			switch {
			case errors.Is(err, schedule2.ErrVersionExists):
				writeError(ctx, stdCtx, "Schedule version already exists", perrors.NewErrConflict("Schedule version already exists", err))
			default:
				writeError(ctx, stdCtx, "Failed to import schedule", perrors.NewErrInvalidRequest("Failed to import schedule", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Schedule imported successfully", result)
	})
}
