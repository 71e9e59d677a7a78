package domain

import "time"

type Grade string

const (
	GradeVIP     Grade = "vip"
	GradeRegular Grade = "regular"
	GradeNormal  Grade = "normal"
)

func (g Grade) IsValid() bool {
	switch g {
	case GradeVIP, GradeRegular, GradeNormal:
		return true
	}
	return false
}

// Member is referenced by accounts, never owned by them. The core only
// consults the grade, for fee discounting; credentials are opaque here.
type Member struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Grade        Grade
	CreatedAt    time.Time
}
