package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/api/authenticator"
	"github.com/podium-events/podium/internal/perrors"
	"github.com/podium-events/podium/internal/services"
	"github.com/podium-events/podium/internal/services/federation"
	user2 "github.com/podium-events/podium/internal/services/user"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Code    *string `json:"code"`
	IsAdmin bool    `json:"is_admin"`
}

func userResponse(usr *user2.User) UserResponse {
	return UserResponse{
		ID:      usr.ID.String(),
		Name:    usr.DisplayName(),
		Email:   usr.Email,
		Code:    usr.Code,
		IsAdmin: usr.IsAdministrator,
	}
}

type ResetRequest struct {
	Email string `json:"email"`
}

type RecoverRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator) {
	// Register with email/password
	r.POST("/api/auth/register", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body user2.CreateUserRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Email == "" || body.Password == "" {
			writeError(ctx, stdCtx, "Email and password are required", perrors.NewErrInvalidRequest("Email and password are required", errors.New("missing credentials")))
			return
		}

		usr, err := svc.User.Create(stdCtx, &body)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrEmailTaken):
				writeError(ctx, stdCtx, "Email address already in use", perrors.NewErrConflict("Email address already in use", err))
			default:
				writeError(ctx, stdCtx, "Failed to create account", perrors.NewErrInternalServerError("Failed to create account", err))
			}
			return
		}

		token, err := auth.GenerateToken(usr.ID, usr.Email, usr.DisplayName(), usr.IsAdministrator)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		setSessionCookie(ctx, token)
		writeOK(ctx, stdCtx, "Account created successfully", LoginResponse{Token: token, User: userResponse(usr)})
	})

	// Login with email/password
	r.POST("/api/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body LoginRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Email == "" || body.Password == "" {
			writeError(ctx, stdCtx, "Email and password are required", perrors.NewErrInvalidRequest("Email and password are required", errors.New("missing credentials")))
			return
		}

		usr, err := svc.User.Authenticate(stdCtx, body.Email, body.Password)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrUserDeactivated):
				writeError(ctx, stdCtx, "Account is deactivated", perrors.NewErrForbidden("Account is deactivated", err))
			default:
				writeError(ctx, stdCtx, "Invalid credentials", perrors.NewErrUnauthorized("Invalid credentials", err))
			}
			return
		}

		token, err := auth.GenerateToken(usr.ID, usr.Email, usr.DisplayName(), usr.IsAdministrator)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		setSessionCookie(ctx, token)
		writeOK(ctx, stdCtx, "success", LoginResponse{Token: token, User: userResponse(usr)})
	})

	// Logout clears the session cookie
	r.POST("/api/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var cookie fasthttp.Cookie
		cookie.SetKey("access_token")
		cookie.SetValue("")
		cookie.SetPath("/")
		cookie.SetHTTPOnly(true)
		cookie.SetExpire(time.Now().Add(-1 * time.Hour))
		ctx.Response.Header.SetCookie(&cookie)

		writeOK(ctx, stdCtx, "success", map[string]any{"message": "Logged out successfully"})
	})

	// Current user
	r.GET("/api/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		claims := currentUser(ctx)
		if claims == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no user claims")))
			return
		}

		usr, err := svc.User.GetByID(stdCtx, claims.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		writeOK(ctx, stdCtx, "success", userResponse(usr))
	})

	// Request a password reset mail. Always answers 200 so the endpoint does
	// not reveal which addresses have accounts.
	r.POST("/api/auth/reset", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body ResetRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		usr, err := svc.User.GetByEmail(stdCtx, body.Email)
		if err == nil {
			if err := svc.User.ResetPassword(stdCtx, usr, nil, nil); err != nil {
				writeError(ctx, stdCtx, "Failed to send recovery mail", perrors.NewErrInternalServerError("Failed to send recovery mail", err))
				return
			}
		}

		writeOK(ctx, stdCtx, "success", map[string]any{"message": "If the address has an account, a recovery mail is on its way"})
	})

	// Set a new password using a recovery token
	r.POST("/api/auth/recover", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body RecoverRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Token == "" || body.Password == "" {
			writeError(ctx, stdCtx, "Token and password are required", perrors.NewErrInvalidRequest("Token and password are required", errors.New("missing fields")))
			return
		}

		usr, err := svc.User.RecoverPassword(stdCtx, body.Token, body.Password)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrTokenNotFound), errors.Is(err, user2.ErrTokenExpired):
				writeError(ctx, stdCtx, "Recovery link is invalid or expired", perrors.NewErrInvalidRequest("Recovery link is invalid or expired", err))
			default:
				writeError(ctx, stdCtx, "Failed to recover password", perrors.NewErrInternalServerError("Failed to recover password", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "success", userResponse(usr))
	})

	registerOIDCRoutes(r, svc, auth)
}

func registerOIDCRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator) {
	r.GET("/api/auth/oidc/enabled", func(ctx *fasthttp.RequestCtx) {
		writeOK(ctx, requestContext(ctx), "success", map[string]any{"oidc_enabled": auth.OIDCEnabled()})
	})

	// Redirect to the OIDC provider
	r.GET("/api/auth/oidc/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if !auth.OIDCEnabled() {
			writeError(ctx, stdCtx, "Federated login is not configured", perrors.NewErrInvalidRequest("Federated login is not configured", errors.New("oidc disabled")))
			return
		}

		csrf := make([]byte, 16)
		rand.Read(csrf)

		state := authenticator.OAuthState{
			CSRF:      base64.RawURLEncoding.EncodeToString(csrf),
			Redirect:  string(ctx.QueryArgs().Peek("redirect")),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}

		signed, err := auth.GetSignedState(state)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create login state", perrors.NewErrInternalServerError("Failed to create login state", err))
			return
		}

		ctx.Redirect(auth.AuthCodeURL(signed), fasthttp.StatusFound)
	})

	// Provider callback: verify state and id token, link the identity to a
	// local account (creating one on first login) and start a session.
	r.GET("/api/auth/oidc/callback", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		state, err := auth.VerifySignedState(string(ctx.QueryArgs().Peek("state")))
		if err != nil {
			writeError(ctx, stdCtx, "Invalid login state", perrors.NewErrInvalidRequest("Invalid login state", err))
			return
		}

		code := string(ctx.QueryArgs().Peek("code"))
		if code == "" {
			writeError(ctx, stdCtx, "Missing authorization code", perrors.NewErrInvalidRequest("Missing authorization code", errors.New("no code")))
			return
		}

		token, err := auth.Exchange(stdCtx, code)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to exchange authorization code", perrors.NewErrUnauthorized("Failed to exchange authorization code", err))
			return
		}

		idToken, err := auth.VerifyIDToken(stdCtx, token)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to verify identity token", perrors.NewErrUnauthorized("Failed to verify identity token", err))
			return
		}

		var profile struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
		}
		if err := idToken.Claims(&profile); err != nil {
			writeError(ctx, stdCtx, "Failed to read identity claims", perrors.NewErrUnauthorized("Failed to read identity claims", err))
			return
		}

		usr, err := resolveFederatedUser(ctx, svc, idToken.Issuer, idToken.Subject, profile.Email, profile.EmailVerified, profile.Name)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to resolve account", perrors.NewErrInternalServerError("Failed to resolve account", err))
			return
		}
		if !usr.IsActive {
			writeError(ctx, stdCtx, "Account is deactivated", perrors.NewErrForbidden("Account is deactivated", user2.ErrUserDeactivated))
			return
		}

		sessionToken, err := auth.GenerateToken(usr.ID, usr.Email, usr.DisplayName(), usr.IsAdministrator)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}
		setSessionCookie(ctx, sessionToken)

		if state.Redirect != "" {
			ctx.Redirect(state.Redirect, fasthttp.StatusFound)
			return
		}
		writeOK(ctx, stdCtx, "success", LoginResponse{Token: sessionToken, User: userResponse(usr)})
	})
}

func resolveFederatedUser(ctx *fasthttp.RequestCtx, svc *services.Services, provider, subject, email string, verified bool, name string) (*user2.User, error) {
	stdCtx := requestContext(ctx)

	ident, err := svc.Federation.GetBySubject(stdCtx, provider, subject)
	if err == nil {
		return svc.User.GetByID(stdCtx, ident.UserID)
	}
	if !errors.Is(err, federation.ErrIdentityNotFound) {
		return nil, err
	}

	// First login with this identity: attach to an existing account with the
	// same address, or create a fresh one without a password.
	usr, err := svc.User.GetByEmail(stdCtx, email)
	if errors.Is(err, user2.ErrUserNotFound) {
		usr, err = svc.User.Create(stdCtx, &user2.CreateUserRequest{Name: name, Email: email})
	}
	if err != nil {
		return nil, err
	}

	_, err = svc.Federation.Link(stdCtx, &federation.LinkRequest{
		UserID:   usr.ID,
		Provider: provider,
		Subject:  subject,
		Email:    &email,
		Verified: verified,
	})
	if err != nil {
		return nil, err
	}
	return usr, nil
}

func setSessionCookie(ctx *fasthttp.RequestCtx, token string) {
	var cookie fasthttp.Cookie
	cookie.SetKey("access_token")
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(time.Now().Add(24 * time.Hour))
	ctx.Response.Header.SetCookie(&cookie)
}
