package constants

// Written with ? placeholders; callers Rebind for the active driver.
const (
	SelectFamilyRoles = `
	SELECT user_id, kind FROM family_roles WHERE family_id = ? ORDER BY id
	`

	SelectFamilyPairingMembers = `
	SELECT p.id AS pairing_id, p.mentor_id AS mentor_id, COALESCE(pm.mentee_id, '') AS mentee_id
	FROM pairings p
	LEFT JOIN pairing_mentees pm ON pm.pairing_id = p.id
	WHERE p.family_id = ?
	ORDER BY p.created_at, p.id, pm.id
	`
)
