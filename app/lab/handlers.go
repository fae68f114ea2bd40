package lab

import (
	"errors"

	"github.com/dmitrymomot/sessionlab/core/auth"
	"github.com/dmitrymomot/sessionlab/core/binding"
	"github.com/dmitrymomot/sessionlab/core/handler"
	"github.com/dmitrymomot/sessionlab/core/response"
	"github.com/dmitrymomot/sessionlab/core/session"
	"github.com/dmitrymomot/sessionlab/middleware"
)

// invalidCredentialsMessage is the only login failure shown to users.
const invalidCredentialsMessage = "Invalid credentials"

func (a *App) home(ctx *Context) handler.Response {
	sess := middleware.MustGetSession(ctx)
	if !sess.Authenticated() {
		return response.Redirect("/login")
	}

	rec := sess.Outcome.Record
	return a.render(indexPage, page{
		Title:     "Home",
		Username:  rec.Username,
		SessionID: rec.ID,
	})
}

func (a *App) loginForm(ctx *Context) handler.Response {
	sess := middleware.MustGetSession(ctx)
	if a.auth.SkipLogin(sess.Current()) {
		return response.Redirect("/")
	}
	return a.render(loginPage, page{Title: "Login"})
}

func (a *App) loginSubmit(ctx *Context) handler.Response {
	sess := middleware.MustGetSession(ctx)

	r := ctx.Request()
	if err := r.ParseForm(); err != nil {
		if errors.Is(err, middleware.ErrBodyTooLarge) {
			return response.Error(response.ErrRequestEntityTooLarge.WithError(err))
		}
		return response.Error(response.ErrBadRequest.WithError(err))
	}

	res, err := a.auth.Authenticate(ctx, sess.Current(), r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.KeepClientState(ctx)
		return a.render(loginPage, page{Title: "Login", Message: invalidCredentialsMessage})
	case errors.Is(err, session.ErrNotFound):
		// The session was destroyed while this login was in flight
		middleware.SetSession(ctx, binding.Outcome{Action: binding.ActionRedirectLogin, ClearCookie: true})
		return response.Redirect("/login")
	case err != nil:
		return response.Error(response.ErrInternalServerError.WithError(err))
	}

	if res.Status == auth.StatusAuthenticated {
		middleware.SetSession(ctx, res.Outcome)
	}
	return response.Redirect("/")
}

func (a *App) logout(ctx *Context) handler.Response {
	sess := middleware.MustGetSession(ctx)

	out, err := a.auth.Logout(ctx, sess.Current())
	if err != nil {
		return response.Error(response.ErrInternalServerError.WithError(err))
	}

	middleware.SetSession(ctx, out)
	return response.Redirect("/login")
}
