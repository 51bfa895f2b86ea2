package model

import "errors"

var (
	ErrModuleNotFound   = errors.New("module not found")
	ErrAlreadyPublished = errors.New("module already published")
)
