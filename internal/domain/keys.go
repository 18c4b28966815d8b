package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyIsAdmin   CtxKey = "IsAdmin"
	KeyRequestID CtxKey = "RequestID"
)
