package models

import "time"

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusFulfilled RequestStatus = "fulfilled"
)

// UnknownItemName is displayed for requests whose item no longer exists.
const UnknownItemName = "Unknown Item"

var RequestStatuses = []RequestStatus{StatusPending, StatusApproved, StatusRejected, StatusFulfilled}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFulfilled:
		return true
	}
	return false
}

// Request is a supply request submitted by a staff member for an inventory item.
type Request struct {
	ID          int           `json:"id"`
	ItemID      int           `json:"itemId"`
	Quantity    int           `json:"quantity"`
	Requester   string        `json:"requester"`
	Department  string        `json:"department"`
	Notes       string        `json:"notes,omitempty"`
	Status      RequestStatus `json:"status"`
	RequestDate time.Time     `json:"requestDate"`
}
