package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	team2 "github.com/podium-events/podium/internal/services/team"
)

func RegisterTeamRoutes(r *router.Router, svc *services.Services) {
	// Create team
	r.POST("/api/teams", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body team2.CreateTeamRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Name == "" {
			writeError(ctx, stdCtx, "Name is required", perrors.NewErrInvalidRequest("Name is required", errors.New("name is required")))
			return
		}

		created, err := svc.Team.Create(stdCtx, &body)
		if err != nil {
			switch {
			case errors.Is(err, team2.ErrNegativeOverrideVotes):
				writeError(ctx, stdCtx, "Override vote allotment cannot be negative", perrors.NewErrInvalidRequest("Override vote allotment cannot be negative", err))
			default:
				writeError(ctx, stdCtx, "Failed to create team", perrors.NewErrInternalServerError("Failed to create team", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Team created successfully", created)
	})

	// List teams of an organiser
	r.GET("/api/teams", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		organiserID, err := requireUUIDQuery(ctx, "organiser_id")
		if err != nil {
			writeError(ctx, stdCtx, "organiser_id is required", perrors.NewErrInvalidRequest("organiser_id is required", err))
			return
		}

		teams, err := svc.Team.ListByOrganiser(stdCtx, organiserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list teams", perrors.NewErrInternalServerError("Failed to list teams", err))
			return
		}

		writeOK(ctx, stdCtx, "success", teams)
	})

	// Get team
	r.GET("/api/teams/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		t, err := svc.Team.GetByID(stdCtx, id)
		if err != nil {
			switch {
			case errors.Is(err, team2.ErrTeamNotFound):
				writeError(ctx, stdCtx, "Team not found", perrors.NewErrNotFound("Team not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get team", perrors.NewErrInternalServerError("Failed to get team", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "success", t)
	})

	// Update team
	r.PUT("/api/teams/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body team2.UpdateTeamRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Team.Update(stdCtx, id, &body)
		if err != nil {
			switch {
			case errors.Is(err, team2.ErrTeamNotFound):
				writeError(ctx, stdCtx, "Team not found", perrors.NewErrNotFound("Team not found", err))
			case errors.Is(err, team2.ErrNegativeOverrideVotes):
				writeError(ctx, stdCtx, "Override vote allotment cannot be negative", perrors.NewErrInvalidRequest("Override vote allotment cannot be negative", err))
			default:
				writeError(ctx, stdCtx, "Failed to update team", perrors.NewErrInternalServerError("Failed to update team", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Team updated successfully", updated)
	})

	// Delete team
	r.DELETE("/api/teams/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Team.Delete(stdCtx, id); err != nil {
			switch {
			case errors.Is(err, team2.ErrTeamNotFound):
				writeError(ctx, stdCtx, "Team not found", perrors.NewErrNotFound("Team not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to delete team", perrors.NewErrInternalServerError("Failed to delete team", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Team deleted successfully", map[string]any{"id": id})
	})

	// Add member
	r.POST("/api/teams/{id}/members/{userId}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}
		userID, err := pathParamUUID(ctx, "userId")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid user ID format", perrors.NewErrInvalidRequest("Invalid user ID format", err))
			return
		}

		if err := svc.Team.AddMember(stdCtx, id, userID); err != nil {
			writeError(ctx, stdCtx, "Failed to add member", perrors.NewErrInternalServerError("Failed to add member", err))
			return
		}

		writeOK(ctx, stdCtx, "Member added successfully", map[string]any{"team_id": id, "user_id": userID})
	})

	// Remove member
	r.DELETE("/api/teams/{id}/members/{userId}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}
		userID, err := pathParamUUID(ctx, "userId")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid user ID format", perrors.NewErrInvalidRequest("Invalid user ID format", err))
			return
		}

		if err := svc.Team.RemoveMember(stdCtx, id, userID); err != nil {
			writeError(ctx, stdCtx, "Failed to remove member", perrors.NewErrInternalServerError("Failed to remove member", err))
			return
		}

		writeOK(ctx, stdCtx, "Member removed successfully", map[string]any{"team_id": id, "user_id": userID})
	})

	// List members
	r.GET("/api/teams/{id}/members", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		memberIDs, err := svc.Team.MemberIDs(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list members", perrors.NewErrInternalServerError("Failed to list members", err))
			return
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"member_ids": memberIDs})
	})
}
