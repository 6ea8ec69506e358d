package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/service"
	"github.com/daikitazaki/foodswho/internal/view"
)

// AuthHandler exposes sign-up, sign-in, sign-out, refresh and the current
// session.
type AuthHandler struct {
	Sessions     Sessions
	Validate     *validator.Validate
	SecureCookie bool
	Log          *zap.Logger
}

func NewAuthHandler(s Sessions, v *validator.Validate, secureCookie bool, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Sessions: s, Validate: v, SecureCookie: secureCookie, Log: log}
}

type credentialsForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// registerForm carries the sign-up page's display name.  It is accepted
// but not stored; accounts are keyed by email alone.
type registerForm struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toAuthResp(s service.Session) authResp {
	return authResp{
		User:    userPart{ID: s.User.ID, Email: s.User.Email},
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

// Register creates an account.  It does not sign the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var in registerForm
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sub := &view.Submitter[registerForm, userPart]{
		Validate: h.Validate,
		Write: func(ctx context.Context, in registerForm) (userPart, error) {
			u, err := h.Sessions.SignUp(ctx, in.Email, in.Password)
			if err != nil {
				return userPart{}, err
			}
			return userPart{ID: u.ID, Email: u.Email}, nil
		},
		Message: "Registration successful!",
	}
	out := sub.Submit(ctx, in)
	out.Form = scrubPassword(out.Form)
	return respond(c, http.StatusCreated, out)
}

// Login signs in and sets the access cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var in credentialsForm
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sub := &view.Submitter[credentialsForm, authResp]{
		Validate: h.Validate,
		Write: func(ctx context.Context, in credentialsForm) (authResp, error) {
			s, err := h.Sessions.SignIn(ctx, in.Email, in.Password)
			if err != nil {
				return authResp{}, err
			}
			h.setAccessCookie(c, s.Access.Token, s.Access.Exp)
			return toAuthResp(s), nil
		},
		Message:  "Logged in successfully!",
		Redirect: "/",
	}
	out := sub.Submit(ctx, in)
	out.Form = scrubPassword(out.Form)
	return respond(c, http.StatusOK, out)
}

// Logout ends the session.  The refresh token in the body is optional;
// without it every refresh token of the caller is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.SignOut(ctx, middleware.AccessToken(c), req.RefreshToken); err != nil {
		h.Log.Error("sign out failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": view.SubmitError, "error": view.Message(err)})
	}
	h.setAccessCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, echo.Map{
		"status":  view.SubmitSubmitted,
		"message": "Logged out.",
		"user":    nil,
		"menu":    view.AccountMenu(nil),
	})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": view.ValidationMessage(err)})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if errors.Is(err, service.ErrInvalidRefreshToken) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	if err != nil {
		h.Log.Error("refresh failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	h.setAccessCookie(c, s.Access.Token, s.Access.Exp)
	return c.JSON(http.StatusOK, toAuthResp(s))
}

// Current returns {"user": {id, email}} or {"user": null}.
func (h *AuthHandler) Current(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Sessions.Current(ctx, middleware.AccessToken(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": view.Message(err)})
	}
	var user *model.User
	if u != nil {
		user = &model.User{ID: u.ID, Email: u.Email}
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *AuthHandler) setAccessCookie(c echo.Context, token string, exp time.Time) {
	ck := &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}

// scrubPassword keeps the echoed form free of the password.
func scrubPassword(form any) any {
	switch f := form.(type) {
	case credentialsForm:
		f.Password = ""
		return f
	case registerForm:
		f.Password = ""
		return f
	}
	return form
}
