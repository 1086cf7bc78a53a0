package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixLeaderboard   CachePrefix = "/leaderboard"
	CachePrefixFamilies      CachePrefix = "/families"
	CachePrefixAnnouncements CachePrefix = "/announcements"
	CachePrefixBonus         CachePrefix = "/bonus-activities"
	CachePrefixAdmin         CachePrefix = "/admin"
)

// Session cookie contract shared with the web client.
const (
	SessionCookieName = "firebase-session"
	SessionMaxAge     = 7 * 24 * time.Hour
)

// RetentionPeriod is the wait between archiving media and permanent deletion.
const RetentionPeriod = 30 * 24 * time.Hour

// Submission lifecycle.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

// Document store collections.
const (
	CollectionPairingPoints = "pairing_points"
	CollectionSubmissions   = "submissions"
	CollectionBonus         = "bonus_activities"
	CollectionAnnouncements = "announcements"
	CollectionAuditLogs     = "audit_logs"
	CollectionRateLimits    = "rate_limits"
	CollectionUserMirrors   = "users"
)
