package api

// JSON shapes mirror the surface the mobile app already speaks.

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UID string `json:"uid"`
}

type userResponse struct {
	Email         string         `json:"email"`
	LinkedDustbin *string        `json:"linked_dustbin"`
	Points        pointsPayload  `json:"points"`
}

type pointsPayload struct {
	Dry    int `json:"dry"`
	Wet    int `json:"wet"`
	EWaste int `json:"ewaste"`
	Total  int `json:"total"`
}

type linkRequest struct {
	UID       string `json:"uid"`
	DustbinID string `json:"dustbin_id"`
}

type unlinkRequest struct {
	UID string `json:"uid"`
}

type leaderboardEntry struct {
	Email       string `json:"email"`
	TotalPoints int    `json:"total_points"`
}

type statusResponse struct {
	Status   string `json:"status"`
	LastSeen *int64 `json:"last_seen"`
}

type coachRequest struct {
	UserData struct {
		Points pointsPayload `json:"points"`
	} `json:"user_data"`
	UserQuery string `json:"user_query"`
}

type coachResponse struct {
	Response string `json:"response"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
