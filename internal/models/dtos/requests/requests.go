package requests

import "github.com/So-lol/ace-website-sub001/internal/services"

// SessionRequest exchanges a sign-in token for a session cookie.
type SessionRequest struct {
	IDToken string `json:"idToken"`
}

type AdjustPointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type AddMenteeRequest struct {
	MenteeID string `json:"menteeId"`
}

type ImportUsersRequest struct {
	Rows []services.UserImportRow `json:"rows"`
}

type ImportPairingsRequest struct {
	Rows []services.PairingImportRow `json:"rows"`
}
