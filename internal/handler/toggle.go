package handler

import (
	"context"      // detached context for fire-and-forget telemetry
	"errors"       // errors.Is comparisons against repository sentinels
	"log"          // server-side logging of swallowed telemetry errors
	"net/http"     // HTTP status codes
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avelines/gift-registry/internal/config"
	"github.com/avelines/gift-registry/internal/middleware"
	"github.com/avelines/gift-registry/internal/model"
	"github.com/avelines/gift-registry/internal/queue"
	"github.com/avelines/gift-registry/internal/repository"
	queue_publisher "github.com/avelines/gift-registry/internal/service"
)

// ToggleHandler implements the claim protocol: the state machine that
// gives anonymous visitors mutually exclusive claim rights over gifts.
// Every transition runs inside a transaction whose first statement
// takes the per-gift row lock, so two concurrent requests for the same
// gift are serialized by the database and can never both observe
// "unclaimed".
type ToggleHandler struct {
	Cfg         config.Config
	Gifts       *repository.GiftRepo
	Toggles     *repository.ToggleRepo
	VisitorLogs *repository.VisitorLogRepo
	Settings    *repository.SettingsRepo
}

// NewToggleHandler constructs a ToggleHandler.  VisitorLogs and
// Settings may be nil in tests; the corresponding side behaviors are
// skipped.
func NewToggleHandler(cfg config.Config, gifts *repository.GiftRepo, toggles *repository.ToggleRepo, logs *repository.VisitorLogRepo, settings *repository.SettingsRepo) *ToggleHandler {
	if gifts == nil || toggles == nil {
		panic("nil repository passed to NewToggleHandler")
	}
	return &ToggleHandler{Cfg: cfg, Gifts: gifts, Toggles: toggles, VisitorLogs: logs, Settings: settings}
}

// claimOp is the ledger mutation a decision calls for.
type claimOp int

const (
	opNone    claimOp = iota // state already matches the request
	opClaim                  // upsert the requester's row with bought=1
	opRelease                // delete the gift's claim rows
)

// Decision is the outcome of evaluating a claim or release request
// against the gift's current state.  Err is nil for allowed
// transitions and no-ops; rejected requests carry ErrConflict or
// ErrForbidden plus the current claimant so the caller can reconcile
// optimistic UI state.
type Decision struct {
	Op       claimOp
	Err      error
	Bought   bool    // authoritative bought state after (or despite) the request
	BoughtBy *string // claimant owning that state, nil when unclaimed
}

// Decide evaluates the claim state machine.  active is the gift's
// current bought=true row (nil when unclaimed), visitorID identifies
// the requester, desired is the requested bought state and isAdmin is
// the ambient admin verdict.
//
// Claim direction: an unclaimed gift goes to the requester; re-claiming
// one's own gift (or an admin re-affirming) is a no-op success; a gift
// held by someone else is a conflict – admins do not steal claims, they
// release first and claim separately.
//
// Release direction: releasing an unclaimed gift is a no-op success;
// the claimant may always release; anyone else needs the admin
// override.
func Decide(active *model.Toggle, visitorID string, desired bool, isAdmin bool) Decision {
	if desired {
		if active == nil {
			return Decision{Op: opClaim, Bought: true, BoughtBy: &visitorID}
		}
		holder := active.VisitorID
		if holder == visitorID || isAdmin {
			return Decision{Op: opNone, Bought: true, BoughtBy: &holder}
		}
		return Decision{Op: opNone, Err: repository.ErrConflict, Bought: true, BoughtBy: &holder}
	}
	if active == nil {
		return Decision{Op: opNone, Bought: false}
	}
	if active.VisitorID == visitorID || isAdmin {
		return Decision{Op: opRelease, Bought: false}
	}
	holder := active.VisitorID
	return Decision{Op: opNone, Err: repository.ErrForbidden, Bought: true, BoughtBy: &holder}
}

type toggleReq struct {
	GiftID uint64 `json:"gift_id"`
	Bought *bool  `json:"bought"` // pointer so a missing flag is distinguishable from false
}

// Toggle handles POST /v1/toggle.  The request carries the target gift
// and desired bought state; visitor identity and admin verdict are
// ambient (cookie middleware).  Success returns the authoritative
// state; rejections return 403 with the current claimant.  Conflicts
// and forbidden releases are expected business outcomes under normal
// multi-visitor usage, not failures.
func (h *ToggleHandler) Toggle(c echo.Context) error {
	var req toggleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.GiftID == 0 || req.Bought == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gift_id and bought are required"})
	}
	desired := *req.Bought
	visitorID := middleware.VisitorID(c)
	isAdmin := middleware.IsAdmin(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.Settings != nil {
		ro, err := h.Settings.ReadOnly(ctx)
		if err != nil {
			log.Printf("toggle: read-only lookup failed: %v", err)
		}
		if ro {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "the list is in read-only mode"})
		}
	}

	dec, err := h.transition(ctx, req.GiftID, visitorID, desired, isAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrGiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "gift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to toggle bought status, please try again"})
	}

	// The visitor identity participates in claim state from here on, so
	// persist a newly minted cookie even when the request was rejected –
	// the browser keeps the same identity for its retry.
	middleware.PersistVisitor(c)
	h.recordInteraction(visitorID, c.RealIP())

	if dec.Err != nil {
		msg := "this item is already marked as bought by another user"
		if errors.Is(dec.Err, repository.ErrForbidden) {
			msg = "only the user who bought this item or an admin can mark it as not bought"
		}
		return c.JSON(http.StatusForbidden, echo.Map{
			"success":   false,
			"error":     msg,
			"bought":    dec.Bought,
			"bought_by": dec.BoughtBy,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"bought":    dec.Bought,
		"bought_by": dec.BoughtBy,
	})
}

// transition runs one claim transition inside its serializing
// transaction: lock the gift row (also the existence check), read the
// active claim, decide, apply, commit.  A decision rejected by the
// protocol commits too – nothing was written, but the read state it
// reports is the authoritative one observed under the lock.
func (h *ToggleHandler) transition(ctx context.Context, giftID uint64, visitorID string, desired, isAdmin bool) (Decision, error) {
	tx, err := h.Gifts.DB().BeginTx(ctx, nil)
	if err != nil {
		return Decision{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Gifts.LockTx(ctx, tx, giftID); err != nil {
		return Decision{}, err
	}
	active, err := h.Toggles.GetActiveClaimTx(ctx, tx, giftID)
	if err != nil {
		return Decision{}, err
	}

	dec := Decide(active, visitorID, desired, isAdmin)
	switch dec.Op {
	case opClaim:
		if err := h.Toggles.SetClaimedTx(ctx, tx, giftID, visitorID); err != nil {
			return Decision{}, err
		}
	case opRelease:
		if err := h.Toggles.ClearClaimTx(ctx, tx, giftID); err != nil {
			return Decision{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Decision{}, err
	}
	committed = true
	return dec, nil
}

// recordInteraction feeds the advisory abuse guard.  It runs on its own
// goroutine with a detached context: failures are logged and swallowed,
// and nothing here may block or fail the claim transition that
// triggered it.
func (h *ToggleHandler) recordInteraction(visitorID, ip string) {
	if h.VisitorLogs == nil {
		return
	}
	threshold := h.Cfg.AbuseThreshold
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.VisitorLogs.Record(ctx, visitorID, ip); err != nil {
			log.Printf("abuse-guard: record visitor failed: %v", err)
			return
		}
		n, err := h.VisitorLogs.CountUniqueToday(ctx)
		if err != nil {
			log.Printf("abuse-guard: count visitors failed: %v", err)
			return
		}
		if threshold > 0 && n > threshold {
			now := time.Now().UTC()
			log.Printf("abuse-guard: %d unique visitors today exceeds threshold %d", n, threshold)
			_ = queue_publisher.PublishAbuseAlert(ctx, queue.AbuseAlertEvent{
				Day:            now.Format("2006-01-02"),
				UniqueVisitors: n,
				Threshold:      threshold,
				VisitorID:      visitorID,
				IP:             ip,
				ObservedAt:     now.Format(time.RFC3339),
			})
		}
	}()
}
