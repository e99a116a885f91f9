package model

import "time"

const (
	MinRating = 1
	MaxRating = 5

	maxCommentLength = 2000
)

type Review struct {
	ID        ReviewID
	ProductID ProductID
	UserID    UserID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func NewReview(productID ProductID, userID UserID, rating int, comment string) (*Review, error) {
	errs := NewValidationErrors()

	if rating < MinRating || rating > MaxRating {
		errs.Add("rating", "rating must be between 1 and 5", "OUT_OF_RANGE")
	}

	if len(comment) > maxCommentLength {
		errs.Add("comment", "comment must not exceed 2000 characters", "TOO_LONG")
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	return &Review{
		ID:        NewReviewID(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CanBeDeletedBy allows the author and administrators.
func (r *Review) CanBeDeletedBy(p Principal) bool {
	return p.Role == RoleAdmin || r.UserID == p.UserID
}
