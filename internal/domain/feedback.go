package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	ID        int64
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
