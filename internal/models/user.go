package models

type UserRole string

const (
	RoleCreator UserRole = "creator"
	RoleTaker   UserRole = "taker"
	RoleAdmin   UserRole = "admin"
)

// User records live in the identity provider; the quiz service only ever
// sees the resolved identity (see internal/auth) and stores user IDs as
// opaque strings on quizzes and responses.
