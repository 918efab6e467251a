package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	user2 "github.com/podium-events/podium/internal/services/user"
)

func RegisterUserRoutes(r *router.Router, svc *services.Services) {
	// Get user by id
	r.GET("/api/users/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrUserNotFound):
				writeError(ctx, stdCtx, "User not found", perrors.NewErrNotFound("User not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "success", usr)
	})

	// Update own profile
	r.PUT("/api/users/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		claims := currentUser(ctx)
		if claims == nil || (claims.UserID != id && !claims.IsAdmin) {
			writeError(ctx, stdCtx, "Forbidden", perrors.NewErrForbidden("Forbidden", errors.New("not your account")))
			return
		}

		var body user2.UpdateUserRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.User.Update(stdCtx, id, &body)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrEmailTaken):
				writeError(ctx, stdCtx, "Email address already in use", perrors.NewErrConflict("Email address already in use", err))
			case errors.Is(err, user2.ErrUserNotFound):
				writeError(ctx, stdCtx, "User not found", perrors.NewErrNotFound("User not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to update user", perrors.NewErrInternalServerError("Failed to update user", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "User updated successfully", updated)
	})

	// Deactivate account. Irreversible: scrubs personal data and severs team
	// memberships.
	r.POST("/api/users/{id}/deactivate", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		claims := currentUser(ctx)
		if claims == nil || (claims.UserID != id && !claims.IsAdmin) {
			writeError(ctx, stdCtx, "Forbidden", perrors.NewErrForbidden("Forbidden", errors.New("not your account")))
			return
		}

		if err := svc.User.Deactivate(stdCtx, id); err != nil {
			switch {
			case errors.Is(err, user2.ErrUserNotFound):
				writeError(ctx, stdCtx, "User not found", perrors.NewErrNotFound("User not found", err))
			case errors.Is(err, user2.ErrUserDeactivated):
				writeError(ctx, stdCtx, "Account is already deactivated", perrors.NewErrConflict("Account is already deactivated", err))
			default:
				writeError(ctx, stdCtx, "Failed to deactivate account", perrors.NewErrInternalServerError("Failed to deactivate account", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Account deactivated", map[string]any{"id": id})
	})

	// Effective permissions for one event
	r.GET("/api/users/{id}/permissions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		eventUUID, err := requireUUIDQuery(ctx, "event_id")
		if err != nil {
			writeError(ctx, stdCtx, "event_id is required", perrors.NewErrInvalidRequest("event_id is required", err))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		caps, err := svc.User.PermissionsForEvent(stdCtx, usr, eventUUID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to resolve permissions", perrors.NewErrInternalServerError("Failed to resolve permissions", err))
			return
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"permissions": caps.Names()})
	})

	// Events the user holds any organiser permission for
	r.GET("/api/users/{id}/events", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		eventIDs, err := svc.User.EventsWithAnyPermission(stdCtx, usr)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list events", perrors.NewErrInternalServerError("Failed to list events", err))
			return
		}

		events, err := svc.Event.ListByIDs(stdCtx, eventIDs)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list events", perrors.NewErrInternalServerError("Failed to list events", err))
			return
		}

		writeOK(ctx, stdCtx, "success", events)
	})

	// Remaining override votes for one event
	r.GET("/api/users/{id}/override-votes", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		eventUUID, err := requireUUIDQuery(ctx, "event_id")
		if err != nil {
			writeError(ctx, stdCtx, "event_id is required", perrors.NewErrInvalidRequest("event_id is required", err))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		remaining, err := svc.User.RemainingOverrideVotes(stdCtx, usr, eventUUID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to compute override votes", perrors.NewErrInternalServerError("Failed to compute override votes", err))
			return
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"remaining_override_votes": remaining})
	})

	// Orga-initiated password reset
	r.POST("/api/users/{id}/reset-password", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		claims := currentUser(ctx)
		if claims == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no user claims")))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		initiator, err := svc.User.GetByID(stdCtx, claims.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get initiator", perrors.NewErrInternalServerError("Failed to get initiator", err))
			return
		}

		if err := svc.User.ResetPassword(stdCtx, usr, nil, initiator); err != nil {
			writeError(ctx, stdCtx, "Failed to send recovery mail", perrors.NewErrInternalServerError("Failed to send recovery mail", err))
			return
		}

		writeOK(ctx, stdCtx, "Recovery mail queued", map[string]any{"id": id})
	})

	// Speaker profile for one event, created on first access
	r.GET("/api/users/{id}/profile", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		eventUUID, err := requireUUIDQuery(ctx, "event_id")
		if err != nil {
			writeError(ctx, stdCtx, "event_id is required", perrors.NewErrInvalidRequest("event_id is required", err))
			return
		}

		profile, err := svc.User.EventProfile(stdCtx, id, eventUUID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get profile", perrors.NewErrInternalServerError("Failed to get profile", err))
			return
		}

		writeOK(ctx, stdCtx, "success", profile)
	})

	// Actions the user performed
	r.GET("/api/users/{id}/activity", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		entries, err := svc.Activity.OwnActions(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list activity", perrors.NewErrInternalServerError("Failed to list activity", err))
			return
		}

		writeOK(ctx, stdCtx, "success", entries)
	})
}
