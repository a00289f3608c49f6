// Package repository persists users, stakes and trades.
//
// Two backends share the same method sets: Mongo for deployments and Memory
// for local runs and tests. Every record is validated before it is written and
// again after it is read.
package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrConditionFailed = errors.New("update condition not met")
	ErrInvalidRecord   = errors.New("invalid record")
)

type validator interface {
	Validate() error
}

func checkRecord(v validator) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
