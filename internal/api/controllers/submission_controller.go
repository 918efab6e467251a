package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	submission2 "github.com/podium-events/podium/internal/services/submission"
)

type TransitionRequest struct {
	State submission2.State `json:"state"`
}

func RegisterSubmissionRoutes(r *router.Router, svc *services.Services) {
	// File a submission while the CfP is open
	r.POST("/api/events/{id}/submissions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		claims := currentUser(ctx)
		if claims == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no user claims")))
			return
		}

		var body submission2.CreateSubmissionRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		body.EventID = eventID
		body.SpeakerID = claims.UserID

		if body.Title == "" {
			writeError(ctx, stdCtx, "Title is required", perrors.NewErrInvalidRequest("Title is required", errors.New("title is required")))
			return
		}

		created, err := svc.Submission.Create(stdCtx, &body)
		if err != nil {
			switch {
			case errors.Is(err, submission2.ErrCfPClosed):
				writeError(ctx, stdCtx, "The call for papers is closed", perrors.NewErrForbidden("The call for papers is closed", err))
			default:
				writeError(ctx, stdCtx, "Failed to create submission", perrors.NewErrInternalServerError("Failed to create submission", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Submission created successfully", created)
	})

	// List submissions of an event, optionally by state
	r.GET("/api/events/{id}/submissions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var states []submission2.State
		if raw := ctx.QueryArgs().Peek("state"); len(raw) > 0 {
			states = append(states, submission2.State(raw))
		}

		subs, err := svc.Submission.ListByEvent(stdCtx, eventID, states)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list submissions", perrors.NewErrInternalServerError("Failed to list submissions", err))
			return
		}

		writeOK(ctx, stdCtx, "success", subs)
	})

	// Get submission
	r.GET("/api/submissions/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		sub, err := svc.Submission.GetByID(stdCtx, id)
		if err != nil {
			switch {
			case errors.Is(err, submission2.ErrSubmissionNotFound):
				writeError(ctx, stdCtx, "Submission not found", perrors.NewErrNotFound("Submission not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get submission", perrors.NewErrInternalServerError("Failed to get submission", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "success", sub)
	})

	// Update submission content
	r.PUT("/api/submissions/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body submission2.UpdateSubmissionRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Submission.Update(stdCtx, id, &body)
		if err != nil {
			switch {
			case errors.Is(err, submission2.ErrSubmissionNotFound):
				writeError(ctx, stdCtx, "Submission not found", perrors.NewErrNotFound("Submission not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to update submission", perrors.NewErrInternalServerError("Failed to update submission", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Submission updated successfully", updated)
	})

	// Move a submission through its state machine
	r.POST("/api/submissions/{id}/transition", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body TransitionRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		sub, err := svc.Submission.Transition(stdCtx, id, body.State)
		if err != nil {
			switch {
			case errors.Is(err, submission2.ErrSubmissionNotFound):
				writeError(ctx, stdCtx, "Submission not found", perrors.NewErrNotFound("Submission not found", err))
			case errors.Is(err, submission2.ErrInvalidTransition):
				writeError(ctx, stdCtx, "Invalid state transition", perrors.NewErrInvalidRequest("Invalid state transition", err))
			default:
				writeError(ctx, stdCtx, "Failed to change state", perrors.NewErrInternalServerError("Failed to change state", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "State changed successfully", sub)
	})

	// Speakers
	r.POST("/api/submissions/{id}/speakers/{userId}", func(ctx *fasthttp.RequestCtx) {
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

		if err := svc.Submission.AddSpeaker(stdCtx, id, userID); err != nil {
			writeError(ctx, stdCtx, "Failed to add speaker", perrors.NewErrInternalServerError("Failed to add speaker", err))
			return
		}

		writeOK(ctx, stdCtx, "Speaker added successfully", map[string]any{"submission_id": id, "user_id": userID})
	})

	r.DELETE("/api/submissions/{id}/speakers/{userId}", func(ctx *fasthttp.RequestCtx) {
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

		if err := svc.Submission.RemoveSpeaker(stdCtx, id, userID); err != nil {
			writeError(ctx, stdCtx, "Failed to remove speaker", perrors.NewErrInternalServerError("Failed to remove speaker", err))
			return
		}

		writeOK(ctx, stdCtx, "Speaker removed successfully", map[string]any{"submission_id": id, "user_id": userID})
	})

	// Save a review. Speakers cannot review their own submission.
	r.POST("/api/submissions/{id}/reviews", func(ctx *fasthttp.RequestCtx) {
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

		var body submission2.SaveReviewRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		body.SubmissionID = id
		body.UserID = claims.UserID

		review, err := svc.Submission.SaveReview(stdCtx, &body)
		if err != nil {
			switch {
			case errors.Is(err, submission2.ErrSpeakerSelfReview):
				writeError(ctx, stdCtx, "Speakers cannot review their own submission", perrors.NewErrForbidden("Speakers cannot review their own submission", err))
			default:
				writeError(ctx, stdCtx, "Failed to save review", perrors.NewErrInternalServerError("Failed to save review", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Review saved successfully", review)
	})

	// List reviews of a submission
	r.GET("/api/submissions/{id}/reviews", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		reviews, err := svc.Submission.ReviewsBySubmission(stdCtx, id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list reviews", perrors.NewErrInternalServerError("Failed to list reviews", err))
			return
		}

		writeOK(ctx, stdCtx, "success", reviews)
	})
}
