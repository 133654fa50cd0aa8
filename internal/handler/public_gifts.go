package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelines/gift-registry/internal/middleware"
	"github.com/avelines/gift-registry/internal/model"
	"github.com/avelines/gift-registry/internal/repository"
)

// PublicHandler serves the unauthenticated read side of the registry:
// the gift listing every visitor sees.  Each gift is decorated with its
// global claim state and with canToggle, the per-requester answer to
// "may I flip this claim" that lets the UI disable buttons before
// making a doomed request.
type PublicHandler struct {
	Gifts   *repository.GiftRepo
	Toggles *repository.ToggleRepo
}

// NewPublicHandler constructs a PublicHandler with the provided repositories.
func NewPublicHandler(gifts *repository.GiftRepo, toggles *repository.ToggleRepo) *PublicHandler {
	if gifts == nil || toggles == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Gifts: gifts, Toggles: toggles}
}

// ListGifts handles GET /v1/gifts.  Gifts come back newest first; the
// listing is advisory – the claim protocol re-checks everything under
// its lock, so a stale canToggle only costs the visitor a conflict
// response, never a double claim.
func (h *PublicHandler) ListGifts(c echo.Context) error {
	visitorID := middleware.VisitorID(c)
	isAdmin := middleware.IsAdmin(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	gifts, err := h.Gifts.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch gifts"})
	}
	claims, err := h.Toggles.ActiveClaims(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch gifts"})
	}

	views := make([]model.GiftView, 0, len(gifts))
	for _, g := range gifts {
		v := model.GiftView{Gift: recordToGift(g), CanToggle: true}
		if t, ok := claims[g.ID]; ok {
			holder := t.VisitorID
			v.Bought = true
			v.BoughtBy = &holder
			v.CanToggle = isAdmin || holder == visitorID
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, views)
}

// recordToGift converts the repository's null-wrapped record into the
// pointer-based JSON model.
func recordToGift(g repository.GiftRecord) model.Gift {
	out := model.Gift{ID: g.ID, Title: g.Title}
	if g.Note.Valid {
		v := g.Note.String
		out.Note = &v
	}
	if g.URL.Valid {
		v := g.URL.String
		out.URL = &v
	}
	if g.ImageURL.Valid {
		v := g.ImageURL.String
		out.ImageURL = &v
	}
	if g.ImageFocalX.Valid {
		v := g.ImageFocalX.Float64
		out.ImageFocalX = &v
	}
	if g.ImageFocalY.Valid {
		v := g.ImageFocalY.Float64
		out.ImageFocalY = &v
	}
	if g.CreatedAt.Valid {
		out.CreatedAt = g.CreatedAt.Time
	}
	return out
}
