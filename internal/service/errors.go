package service

import "errors"

var (
	// ErrInvalidCredentials is reported for any failed login, without saying why.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotLoggedIn indicates the operation needs a current session.
	ErrNotLoggedIn = errors.New("please log in first")

	// ErrSessionChanged is returned when the currentUser slot no longer holds
	// the user the caller was authenticated as.
	ErrSessionChanged = errors.New("session has changed, please log in again")

	// ErrAlreadyApplied is returned when the session user is already an applicant.
	ErrAlreadyApplied = errors.New("you've already applied to this vacancy")

	ErrVacancyNotFound = errors.New("vacancy not found")

	ErrUserNotFound = errors.New("user not found")

	ErrGroupNotFound = errors.New("group not found")

	// ErrNoMembersSelected is returned when a group is formed without members.
	ErrNoMembersSelected = errors.New("please select at least one user for the group")

	ErrGroupNameRequired = errors.New("please enter a group name")

	// ErrSelectionFull is returned when a fifth user is selected for a pack.
	ErrSelectionFull = errors.New("maximum 4 users can be selected for a group")

	ErrResumeNotStored = errors.New("no resume stored for user")

	// ErrPasswordTooLong is returned when a password cannot be hashed with bcrypt.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)
