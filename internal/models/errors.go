package models

import "errors"

var (
	errEmailRequired = errors.New("emailId is required")
	errWeakPassword  = errors.New("password must be at least 8 characters")
)
