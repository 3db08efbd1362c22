package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// ModerationHandler is the admin surface over restrictions and suspensions.
type ModerationHandler struct {
	moderation ports.ModerationService
}

func NewModerationHandler(moderation ports.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// ListRestrictions handles GET /admin/identities/:id/restrictions.
//
// @Summary      List restrictions of an identity
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  envelope{data=[]domain.Restriction}
// @Failure      403  {object}  errorResponse
// @Router       /admin/identities/{id}/restrictions [get]
func (h *ModerationHandler) ListRestrictions(c echo.Context) error {
	var p identityIDParam
	if err := bind(c, &p); err != nil {
		return err
	}

	items, err := h.moderation.ListRestrictions(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Restrictions", nonNil(items))
}

// AddRestriction handles POST /admin/identities/:id/restrictions. Adding a kind twice is a no-op.
//
// @Summary      Restrict an identity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Identity id"
// @Param        body  body      addRestrictionRequest  true  "Restriction"
// @Success      201   {object}  envelope{data=domain.Restriction}
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/identities/{id}/restrictions [post]
func (h *ModerationHandler) AddRestriction(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req addRestrictionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	r, err := h.moderation.AddRestriction(c.Request().Context(), actor.ID, req.ID, domain.RestrictionKind(req.Kind), req.Reason)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Restriction added", r)
}

// RemoveRestriction handles DELETE /admin/identities/:id/restrictions/:kind.
//
// @Summary      Lift a restriction
// @Tags         admin
// @Produce      json
// @Param        id    path      string  true  "Identity id"
// @Param        kind  path      string  true  "Restriction kind"
// @Success      200   {object}  envelope
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/identities/{id}/restrictions/{kind} [delete]
func (h *ModerationHandler) RemoveRestriction(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req removeRestrictionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.moderation.RemoveRestriction(c.Request().Context(), actor.ID, req.ID, domain.RestrictionKind(req.Kind)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Restriction removed", nil)
}

// SetSuspension handles PATCH /admin/identities/:id/suspension.
//
// @Summary      Suspend or reinstate an identity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Identity id"
// @Param        body  body      suspensionRequest  true  "Suspension flag"
// @Success      200   {object}  envelope
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/identities/{id}/suspension [patch]
func (h *ModerationHandler) SetSuspension(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req suspensionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.moderation.SetSuspended(c.Request().Context(), actor.ID, req.ID, *req.Suspended); err != nil {
		return err
	}
	msg := "Account reinstated"
	if *req.Suspended {
		msg = "Account suspended"
	}
	return respond(c, http.StatusOK, msg, nil)
}

// SecurityEvents handles GET /admin/identities/:id/events, newest first.
//
// @Summary      Security audit trail of an identity
// @Tags         admin
// @Produce      json
// @Param        id     path      string  true   "Identity id"
// @Param        limit  query     int     false  "At most 200"
// @Success      200    {object}  envelope{data=[]domain.AuthEvent}
// @Failure      403    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /admin/identities/{id}/events [get]
func (h *ModerationHandler) SecurityEvents(c echo.Context) error {
	var q securityEventsQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	events, err := h.moderation.SecurityEvents(c.Request().Context(), q.ID, q.Limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Security events", nonNil(events))
}
