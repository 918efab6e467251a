package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	cfp2 "github.com/podium-events/podium/internal/services/cfp"
)

func RegisterCfPRoutes(r *router.Router, svc *services.Services) {
	// Create or update the event's CfP
	r.PUT("/api/events/{id}/cfp", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body cfp2.UpsertCfPRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		c, err := svc.CfP.Upsert(stdCtx, eventID, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to save CfP", perrors.NewErrInternalServerError("Failed to save CfP", err))
			return
		}

		writeOK(ctx, stdCtx, "CfP saved successfully", c)
	})

	// Get the CfP, including whether it is currently open
	r.GET("/api/events/{id}/cfp", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		c, err := svc.CfP.GetByEvent(stdCtx, eventID)
		if err != nil {
			switch {
			case errors.Is(err, cfp2.ErrCfPNotFound):
				writeError(ctx, stdCtx, "CfP not found", perrors.NewErrNotFound("CfP not found", err))
			default:
				writeError(ctx, stdCtx, "Failed to get CfP", perrors.NewErrInternalServerError("Failed to get CfP", err))
			}
			return
		}

		open, err := svc.CfP.IsOpen(stdCtx, eventID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get CfP", perrors.NewErrInternalServerError("Failed to get CfP", err))
			return
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"cfp": c, "is_open": open})
	})

	// Create submission type
	r.POST("/api/events/{id}/submission-types", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body cfp2.CreateSubmissionTypeRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		body.EventID = eventID

		if body.Name == "" {
			writeError(ctx, stdCtx, "Name is required", perrors.NewErrInvalidRequest("Name is required", errors.New("name is required")))
			return
		}

		created, err := svc.CfP.CreateSubmissionType(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create submission type", perrors.NewErrInternalServerError("Failed to create submission type", err))
			return
		}

		writeOK(ctx, stdCtx, "Submission type created successfully", created)
	})

	// List submission types
	r.GET("/api/events/{id}/submission-types", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		types, err := svc.CfP.SubmissionTypes(stdCtx, eventID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list submission types", perrors.NewErrInternalServerError("Failed to list submission types", err))
			return
		}

		writeOK(ctx, stdCtx, "success", types)
	})

	// Create question
	r.POST("/api/events/{id}/questions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body cfp2.CreateQuestionRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		body.EventID = eventID

		if body.Question == "" {
			writeError(ctx, stdCtx, "Question text is required", perrors.NewErrInvalidRequest("Question text is required", errors.New("question is required")))
			return
		}

		created, err := svc.CfP.CreateQuestion(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create question", perrors.NewErrInternalServerError("Failed to create question", err))
			return
		}

		writeOK(ctx, stdCtx, "Question created successfully", created)
	})

	// List questions, optionally filtered by target
	r.GET("/api/events/{id}/questions", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		eventID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var target *cfp2.QuestionTarget
		if raw := ctx.QueryArgs().Peek("target"); len(raw) > 0 {
			t := cfp2.QuestionTarget(raw)
			target = &t
		}

		questions, err := svc.CfP.Questions(stdCtx, eventID, target)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list questions", perrors.NewErrInternalServerError("Failed to list questions", err))
			return
		}

		writeOK(ctx, stdCtx, "success", questions)
	})

	// Answer options of a question
	r.GET("/api/questions/{id}/options", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		questionID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		options, err := svc.CfP.Options(stdCtx, questionID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list options", perrors.NewErrInternalServerError("Failed to list options", err))
			return
		}

		writeOK(ctx, stdCtx, "success", options)
	})

	// Save an answer
	r.POST("/api/questions/{id}/answers", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		questionID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		claims := currentUser(ctx)
		if claims == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no user claims")))
			return
		}

		var body cfp2.SaveAnswerRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}
		body.QuestionID = questionID
		body.UserID = claims.UserID

		saved, err := svc.CfP.SaveAnswer(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to save answer", perrors.NewErrInternalServerError("Failed to save answer", err))
			return
		}

		writeOK(ctx, stdCtx, "Answer saved successfully", saved)
	})
}
