package constants

const (
	MsgAdminRequired      = "admin access required"
	MsgAuthRequired       = "authentication required"
	MsgGeneric            = "something went wrong, please try again"
	MsgAuditNotWritten    = "action applied but audit entry could not be written"
	MsgRateLimited        = "too many requests, please slow down"
	MsgReasonRequired     = "a reason is required"
	MsgAmountZero         = "amount must not be zero"
	MsgPairingFull        = "a pairing may not have more than 2 mentees"
	MsgPairingNeedsMentee = "a pairing needs at least one mentee"
	MsgNameRequired       = "name is required"
	MsgTitleRequired      = "title is required"
	MsgMediaNotArchived   = "media must be archived before it can be permanently deleted"
	MsgInvalidBody        = "invalid request body"
	MsgInvalidSession     = "invalid or expired sign-in token"
)
