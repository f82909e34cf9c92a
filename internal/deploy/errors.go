package deploy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTarget matches every *MissingTargetError.
var ErrMissingTarget = errors.New("no target node")

// ErrNoZone is returned when a vnet must be created without an SDN zone.
var ErrNoZone = errors.New("an SDN zone is required to create a network")

// MissingTargetError lists services that have no node of their own and no
// default to fall back on. Nothing is created when it is returned.
type MissingTargetError struct {
	Services []string
}

func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("no target node for %s: set node in the stack file or pass --node",
		strings.Join(e.Services, ", "))
}

func (e *MissingTargetError) Is(target error) bool {
	return target == ErrMissingTarget
}

// ServiceError wraps a host failure with the service being deployed.
type ServiceError struct {
	Service string
	Node    string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Service, e.Node, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
