package service

import (
	"errors"

	"github.com/halipro/api/internal/enum"
)

var (
	ErrTerminalStatus = errors.New("order is in a terminal status")
	ErrUnknownStatus  = errors.New("unknown order status")
)

// statusChain is the forward path of an order. CANCELLED is reachable from
// any non-terminal status but never part of the chain itself.
var statusChain = []string{
	enum.OrderStatusToBePickedUp,
	enum.OrderStatusPickedUp,
	enum.OrderStatusWashing,
	enum.OrderStatusReady,
	enum.OrderStatusToBeDelivered,
	enum.OrderStatusDelivered,
}

// NextStatus returns the status one step forward in the chain.
func NextStatus(current string) (string, error) {
	for i, s := range statusChain {
		if s != current {
			continue
		}
		if i == len(statusChain)-1 {
			return "", ErrTerminalStatus
		}
		return statusChain[i+1], nil
	}
	if current == enum.OrderStatusCancelled {
		return "", ErrTerminalStatus
	}
	return "", ErrUnknownStatus
}

// IsTerminal reports whether no further transitions exist.
func IsTerminal(status string) bool {
	return status == enum.OrderStatusDelivered || status == enum.OrderStatusCancelled
}

// CanCancel reports whether the order may still be cancelled.
func CanCancel(status string) bool {
	return !IsTerminal(status)
}
