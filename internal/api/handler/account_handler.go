package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// AccountHandler serves /users and /users/me.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type createAccountRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

type updateAccountRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (r updateAccountRequest) patch() domain.AccountPatch {
	p := domain.AccountPatch{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type accountResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// toAccountResponse renders a for viewer. The email address is only shown to
// administrators and to the account itself.
func toAccountResponse(a *domain.Account, viewer access.Caller) accountResponse {
	resp := accountResponse{
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Bio:       a.Bio,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
	if viewer.IsAdmin() || viewer.AccountID == a.ID {
		resp.Email = a.Email
	}
	return resp
}

// List handles GET /users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  pageResponse[accountResponse]
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), params)
	if err != nil {
		return err
	}

	viewer := caller(c)
	items := make([]accountResponse, 0, len(list.Items))
	for _, a := range list.Items {
		items = append(items, toAccountResponse(a, viewer))
	}
	return c.JSON(http.StatusOK, newPage(items, list.PageInfo))
}

// Create handles POST /users.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  map[string][]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Create(c.Request().Context(), ports.CreateAccountInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(account, caller(c)))
}

// Get handles GET /users/:username.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  accountResponse
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account, caller(c)))
}

// Update handles PATCH /users/:username.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string                true  "Username"
// @Param        body      body      updateAccountRequest  true  "Fields to change"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  map[string][]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Update(c.Request().Context(), c.Param("username"), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account, caller(c)))
}

// Delete handles DELETE /users/:username.
//
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{username} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /users/me.
//
// @Summary      Get the caller's account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	viewer := caller(c)
	account, err := h.service.Me(c.Request().Context(), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account, viewer))
}

// UpdateMe handles PATCH /users/me. The role field is ignored.
//
// @Summary      Update the caller's account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  map[string][]string
// @Failure      401   {object}  map[string]string
// @Router       /users/me [patch]
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	viewer := caller(c)
	account, err := h.service.UpdateMe(c.Request().Context(), viewer, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account, viewer))
}
