package domain

import "errors"

// Domain errors surfaced by services and repositories. Handlers map these
// to HTTP statuses at the API boundary; nothing below the handler layer
// writes an HTTP response.
var (
	// ErrDuplicateName is returned when the admin already owns a group with the same name
	ErrDuplicateName = errors.New("a group with this name already exists")

	// ErrGroupInactive is returned when the group no longer accepts join requests
	ErrGroupInactive = errors.New("group is not active")

	// ErrAlreadyMember is returned when the requester is already in the member list
	ErrAlreadyMember = errors.New("user is already a member of this group")

	// ErrGroupFull is returned when all slots of the group are taken
	ErrGroupFull = errors.New("group is full")

	// ErrDuplicateRequest is returned when the requester already has a pending join request
	ErrDuplicateRequest = errors.New("join request is already pending approval")

	// ErrAlreadyProcessed is returned when the join request was approved or rejected earlier
	ErrAlreadyProcessed = errors.New("join request is already processed")

	// ErrForbidden is returned when a non-admin attempts an admin-only action,
	// or a non-member requests group details
	ErrForbidden = errors.New("access denied")

	// ErrNotFound is returned when a resource is absent
	ErrNotFound = errors.New("resource not found")

	// ErrGroupNotFound is returned when the group is absent
	ErrGroupNotFound = errors.New("group not found")

	// ErrRequestNotFound is returned when the join request is absent
	ErrRequestNotFound = errors.New("join request not found")

	// ErrUserNotFound is returned when the user is absent
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on signup with an already registered email
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials is returned on signin with a wrong email or password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPaymentFailed is returned when the payment gateway rejects an operation
	// or the gateway signature does not verify
	ErrPaymentFailed = errors.New("payment could not be processed")

	// ErrUnauthorized is returned when no verified caller identity is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken is returned when the JWT token is malformed or expired
	ErrInvalidToken = errors.New("invalid token")
)

// ErrorCode identifies an API error in the response envelope
type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION"
	CodeDuplicateName    ErrorCode = "DUPLICATE_NAME"
	CodeGroupInactive    ErrorCode = "GROUP_INACTIVE"
	CodeAlreadyMember    ErrorCode = "ALREADY_MEMBER"
	CodeGroupFull        ErrorCode = "GROUP_FULL"
	CodeDuplicateRequest ErrorCode = "DUPLICATE_REQUEST"
	CodeAlreadyProcessed ErrorCode = "ALREADY_PROCESSED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeEmailTaken       ErrorCode = "EMAIL_TAKEN"
	CodeBadCredentials   ErrorCode = "INVALID_CREDENTIALS"
	CodePaymentFailed    ErrorCode = "PAYMENT_FAILED"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToCode converts a domain error into its API error code
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrGroupInactive):
		return CodeGroupInactive
	case errors.Is(err, ErrAlreadyMember):
		return CodeAlreadyMember
	case errors.Is(err, ErrGroupFull):
		return CodeGroupFull
	case errors.Is(err, ErrDuplicateRequest):
		return CodeDuplicateRequest
	case errors.Is(err, ErrAlreadyProcessed):
		return CodeAlreadyProcessed
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrEmailTaken):
		return CodeEmailTaken
	case errors.Is(err, ErrInvalidCredentials):
		return CodeBadCredentials
	case errors.Is(err, ErrPaymentFailed):
		return CodePaymentFailed
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrGroupNotFound),
		errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
