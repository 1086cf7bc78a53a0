package responses

import "github.com/So-lol/ace-website-sub001/internal/auth"

type SessionResponse struct {
	User      *auth.Identity `json:"user"`
	ExpiresIn int            `json:"expires_in"`
}
