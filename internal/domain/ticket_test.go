package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{TicketStatusPendingEstimate, TicketStatusWaitingApproval, true},
		{TicketStatusWaitingApproval, TicketStatusInProgress, true},
		{TicketStatusWaitingApproval, TicketStatusRejected, true},
		{TicketStatusRejected, TicketStatusWaitingApproval, true},
		{TicketStatusInProgress, TicketStatusWaitingConfirmation, true},
		{TicketStatusWaitingConfirmation, TicketStatusClosed, true},

		{TicketStatusPendingEstimate, TicketStatusInProgress, false},
		{TicketStatusPendingEstimate, TicketStatusClosed, false},
		{TicketStatusRejected, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusWaitingApproval, false},
		{TicketStatusClosed, TicketStatusClosed, false},
		{TicketStatusWaitingConfirmation, TicketStatusInProgress, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCustomerDebit(t *testing.T) {
	customer := Customer{ID: "customer-1", Name: "Acme", TotalMandays: 10, UsedMandays: 3, RemainingMandays: 7}

	debited := customer.Debit(1.5)
	if debited.UsedMandays != 4.5 || debited.RemainingMandays != 5.5 {
		t.Fatalf("Debit: got used=%v remaining=%v", debited.UsedMandays, debited.RemainingMandays)
	}
	// original value untouched
	if customer.UsedMandays != 3 || customer.RemainingMandays != 7 {
		t.Fatalf("Debit mutated receiver: %+v", customer)
	}

	// over-spend goes negative rather than being clamped
	over := debited.Debit(10)
	if over.RemainingMandays != -4.5 {
		t.Fatalf("over-spend: got remaining=%v, want -4.5", over.RemainingMandays)
	}
}
