package activity

// ServiceListActivity is the request-reply service registered by ActivityModule.
const ServiceListActivity = "list-activity"

// ListActivityRequest asks for the journal entries of one user.
type ListActivityRequest struct {
	UserID string `json:"user_id"`
}

// ListActivityResponse carries the user's entries, newest first.
type ListActivityResponse struct {
	Entries []Entry `json:"entries"`
}
