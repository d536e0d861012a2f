package schema

// PalRequestsTable represents the 'pal_requests' table
type PalRequestsTable struct {
	Table       string
	ID          string
	RequesterID string
	RequesteeID string
	Status      string
	CreatedAt   string
}

// PalRequests is the schema definition for pal_requests
var PalRequests = PalRequestsTable{
	Table:       "pal_requests",
	ID:          "pal_request_id",
	RequesterID: "requester_id",
	RequesteeID: "requestee_id",
	Status:      "status",
	CreatedAt:   "created_at",
}

