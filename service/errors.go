package service

import "errors"

// 业务错误，handler 层用 errors.Is 映射为 HTTP 状态码
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrMissingCredentials  = errors.New("username and password required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountBlocked      = errors.New("account is blocked")
	ErrCannotModifySelf    = errors.New("cannot apply this action to yourself")
	ErrAlreadyFriends      = errors.New("already friends")
	ErrDuplicateRequest    = errors.New("request already sent")
	ErrSelfRequest         = errors.New("cannot send a friend request to yourself")
	ErrRequestNotFound     = errors.New("request not found")
	ErrEmptyMessage        = errors.New("message is required")
	ErrSettingNotFound     = errors.New("setting not found")
	ErrInvalidSettingValue = errors.New("value must be 'true' or 'false'")
)
