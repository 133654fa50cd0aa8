package model

import "time"

// Gift is a single catalog entry owned by the admin.  Visitors can
// only read gifts; all writes go through admin-authenticated
// endpoints.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – required short description of the gift idea.
//  Note        – optional free-form note.
//  URL         – optional link to a shop page.
//  ImageURL    – optional stored image location.
//  ImageFocalX – optional normalized crop center X in [0,1].
//  ImageFocalY – optional normalized crop center Y in [0,1].
//  CreatedAt   – immutable creation timestamp.
type Gift struct {
	ID          uint64    `json:"id"`           // gifts.id
	Title       string    `json:"title"`        // gifts.title
	Note        *string   `json:"note"`         // gifts.note (nullable)
	URL         *string   `json:"url"`          // gifts.url (nullable)
	ImageURL    *string   `json:"image_url"`    // gifts.image_url (nullable)
	ImageFocalX *float64  `json:"image_focal_x"` // gifts.image_focal_x (nullable)
	ImageFocalY *float64  `json:"image_focal_y"` // gifts.image_focal_y (nullable)
	CreatedAt   time.Time `json:"created_at"`   // gifts.created_at
}

// GiftView is a Gift decorated with the claim state visible to the
// requesting visitor.  Bought reflects the gift's global claimed
// status, BoughtBy names the claimant and CanToggle reports whether
// the requester is allowed to flip the claim (the gift is unclaimed,
// the requester holds the claim, or the requester is an admin).
type GiftView struct {
	Gift
	Bought    bool    `json:"bought"`
	BoughtBy  *string `json:"bought_by"`
	CanToggle bool    `json:"can_toggle"`
}
