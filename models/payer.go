package models

import "github.com/google/uuid"

type PayerKind string

const (
	PayerMember PayerKind = "member"
	PayerGuest  PayerKind = "guest"
)

// Payer identifies who a payment belongs to: a registered member or a
// guest attendee. A transaction carries exactly one of the two.
type Payer struct {
	Kind PayerKind
	ID   uuid.UUID
}

func MemberPayer(id uuid.UUID) Payer {
	return Payer{Kind: PayerMember, ID: id}
}

func GuestPayer(id uuid.UUID) Payer {
	return Payer{Kind: PayerGuest, ID: id}
}
