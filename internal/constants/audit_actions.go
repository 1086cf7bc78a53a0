package constants

// AuditAction names what an admin did.
type AuditAction string

const (
	ActionPointsAdded        AuditAction = "POINTS_ADDED"
	ActionPointsDeducted     AuditAction = "POINTS_DEDUCTED"
	ActionWeeklyPointsReset  AuditAction = "WEEKLY_POINTS_RESET"
	ActionMediaArchived      AuditAction = "MEDIA_ARCHIVED"
	ActionMediaRestored      AuditAction = "MEDIA_RESTORED"
	ActionMediaDeleted       AuditAction = "MEDIA_DELETED"
	ActionFamilyCreated      AuditAction = "FAMILY_CREATED"
	ActionFamilyUpdated      AuditAction = "FAMILY_UPDATED"
	ActionFamilyDeleted      AuditAction = "FAMILY_DELETED"
	ActionPairingCreated     AuditAction = "PAIRING_CREATED"
	ActionPairingUpdated     AuditAction = "PAIRING_UPDATED"
	ActionPairingDeleted     AuditAction = "PAIRING_DELETED"
	ActionUsersImported      AuditAction = "USERS_IMPORTED"
	ActionPairingsImported   AuditAction = "PAIRINGS_IMPORTED"
	ActionUserUpdated        AuditAction = "USER_UPDATED"
	ActionUserDeleted        AuditAction = "USER_DELETED"
	ActionAnnouncementCreate AuditAction = "ANNOUNCEMENT_CREATED"
	ActionAnnouncementUpdate AuditAction = "ANNOUNCEMENT_UPDATED"
	ActionAnnouncementDelete AuditAction = "ANNOUNCEMENT_DELETED"
	ActionBonusCreated       AuditAction = "BONUS_ACTIVITY_CREATED"
	ActionBonusUpdated       AuditAction = "BONUS_ACTIVITY_UPDATED"
	ActionBonusDeleted       AuditAction = "BONUS_ACTIVITY_DELETED"
	ActionSubmissionApproved AuditAction = "SUBMISSION_APPROVED"
	ActionSubmissionRejected AuditAction = "SUBMISSION_REJECTED"
)

// Target types recorded on audit entries.
const (
	TargetPairing      = "PAIRING"
	TargetFamily       = "FAMILY"
	TargetMedia        = "SUBMISSION"
	TargetUser         = "USER"
	TargetAnnouncement = "ANNOUNCEMENT"
	TargetBonus        = "BONUS_ACTIVITY"
	TargetImport       = "IMPORT"
)
