package core

import "errors"

var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrOrgNotFound          = errors.New("organization not found")
	ErrInvalidInput         = errors.New("invalid input")
)
