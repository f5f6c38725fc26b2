package service

import (
	"errors"
	"testing"

	"github.com/halipro/api/internal/enum"
)

func TestNextStatus(t *testing.T) {
	steps := []struct{ from, to string }{
		{enum.OrderStatusToBePickedUp, enum.OrderStatusPickedUp},
		{enum.OrderStatusPickedUp, enum.OrderStatusWashing},
		{enum.OrderStatusWashing, enum.OrderStatusReady},
		{enum.OrderStatusReady, enum.OrderStatusToBeDelivered},
		{enum.OrderStatusToBeDelivered, enum.OrderStatusDelivered},
	}
	for _, step := range steps {
		got, err := NextStatus(step.from)
		if err != nil {
			t.Fatalf("NextStatus(%s): %v", step.from, err)
		}
		if got != step.to {
			t.Errorf("NextStatus(%s) = %s, want %s", step.from, got, step.to)
		}
	}
}

func TestNextStatusTerminal(t *testing.T) {
	for _, status := range []string{enum.OrderStatusDelivered, enum.OrderStatusCancelled} {
		if _, err := NextStatus(status); !errors.Is(err, ErrTerminalStatus) {
			t.Errorf("NextStatus(%s) err = %v, want ErrTerminalStatus", status, err)
		}
	}
}

func TestNextStatusUnknown(t *testing.T) {
	if _, err := NextStatus("LOST"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("err = %v, want ErrUnknownStatus", err)
	}
}

func TestCanCancel(t *testing.T) {
	cancellable := []string{
		enum.OrderStatusToBePickedUp,
		enum.OrderStatusPickedUp,
		enum.OrderStatusWashing,
		enum.OrderStatusReady,
		enum.OrderStatusToBeDelivered,
	}
	for _, status := range cancellable {
		if !CanCancel(status) {
			t.Errorf("CanCancel(%s) = false, want true", status)
		}
	}
	for _, status := range []string{enum.OrderStatusDelivered, enum.OrderStatusCancelled} {
		if CanCancel(status) {
			t.Errorf("CanCancel(%s) = true, want false", status)
		}
	}
}
