package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelines/gift-registry/internal/repository"
)

// AdminGiftHandler implements the admin-gated catalog writes.  The
// router stacks RequireAdmin in front of every route here, so handlers
// can assume a verified admin.  Catalog writes are rare and
// human-paced; they do not need the claim protocol's locking, except
// for delete, which cascades claim rows inside one transaction.
type AdminGiftHandler struct {
	Gifts    *repository.GiftRepo
	Settings *repository.SettingsRepo
	// UploadDir is the local directory stored gift images live in.
	// Deleting a gift best-effort removes its image from here.
	UploadDir string
}

// NewAdminGiftHandler constructs an AdminGiftHandler.
func NewAdminGiftHandler(gifts *repository.GiftRepo, settings *repository.SettingsRepo) *AdminGiftHandler {
	if gifts == nil {
		panic("nil repository passed to NewAdminGiftHandler")
	}
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return &AdminGiftHandler{Gifts: gifts, Settings: settings, UploadDir: dir}
}

type giftReq struct {
	Title       string   `json:"title"`
	Note        *string  `json:"note"`
	URL         *string  `json:"url"`
	ImageURL    *string  `json:"image_url"`
	ImageFocalX *float64 `json:"image_focal_x"`
	ImageFocalY *float64 `json:"image_focal_y"`
}

// fields validates and converts the request body.  Title is the only
// required column; focal coordinates, when present, must be normalized.
func (r giftReq) fields() (repository.GiftFields, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return repository.GiftFields{}, errors.New("title is required")
	}
	for _, f := range []*float64{r.ImageFocalX, r.ImageFocalY} {
		if f != nil && (*f < 0 || *f > 1) {
			return repository.GiftFields{}, errors.New("focal coordinates must be within [0,1]")
		}
	}
	return repository.GiftFields{
		Title:       title,
		Note:        emptyToNil(r.Note),
		URL:         emptyToNil(r.URL),
		ImageURL:    emptyToNil(r.ImageURL),
		ImageFocalX: r.ImageFocalX,
		ImageFocalY: r.ImageFocalY,
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Create handles POST /v1/admin/gifts.
func (h *AdminGiftHandler) Create(c echo.Context) error {
	var req giftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, err := req.fields()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if h.readOnly(ctx) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "the list is in read-only mode"})
	}
	g, err := h.Gifts.Create(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create gift"})
	}
	return c.JSON(http.StatusCreated, recordToGift(*g))
}

// Update handles PUT /v1/admin/gifts/:id.
func (h *AdminGiftHandler) Update(c echo.Context) error {
	id, err := giftIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gift id"})
	}
	var req giftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, err := req.fields()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if h.readOnly(ctx) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "the list is in read-only mode"})
	}
	g, err := h.Gifts.Update(ctx, id, f)
	if err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update gift"})
	}
	return c.JSON(http.StatusOK, recordToGift(*g))
}

// Delete handles DELETE /v1/admin/gifts/:id.  The repository cascades
// claim rows in the same transaction; the stored image, if the gift had
// one, is removed afterwards on a best-effort basis – a file that is
// already gone is not an error.
func (h *AdminGiftHandler) Delete(c echo.Context) error {
	id, err := giftIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gift id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if h.readOnly(ctx) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "the list is in read-only mode"})
	}
	imageURL, err := h.Gifts.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete gift"})
	}
	h.cleanupImage(imageURL)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateSetting handles PUT /v1/admin/settings/:key.  Only
// read_only_mode matters to the server today, but unknown keys are
// stored so the UI can grow settings without a schema change.
func (h *AdminGiftHandler) UpdateSetting(c echo.Context) error {
	if h.Settings == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "settings unavailable"})
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "setting key is required"})
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Settings.Set(ctx, key, body.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update setting"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "key": key, "value": body.Value})
}

// readOnly reports whether the registry is in read-only mode.
// Settings may be nil in tests, which means writable.
func (h *AdminGiftHandler) readOnly(ctx context.Context) bool {
	if h.Settings == nil {
		return false
	}
	ro, err := h.Settings.ReadOnly(ctx)
	if err != nil {
		log.Printf("admin: read-only lookup failed: %v", err)
	}
	return ro
}

// cleanupImage removes a locally stored gift image.  Only paths that
// resolve inside the upload directory are touched; anything else (a
// remote URL, a traversal attempt) is left alone.  All failures are
// logged and swallowed.
func (h *AdminGiftHandler) cleanupImage(imageURL *string) {
	if imageURL == nil || *imageURL == "" {
		return
	}
	name := filepath.Base(filepath.Clean(*imageURL))
	if name == "." || name == string(filepath.Separator) {
		return
	}
	path := filepath.Join(h.UploadDir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("admin: image cleanup failed for %s: %v", path, err)
	}
}

func giftIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid gift id")
	}
	return id, nil
}

// reqCtx bounds a handler's database work to five seconds, matching
// the rest of the handlers.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
