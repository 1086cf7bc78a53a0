package services

import (
	"context"
	"testing"

	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	m1 := f.seedUser(t, "m1@ace.org", constants.RoleMentee)
	m2 := f.seedUser(t, "m2@ace.org", constants.RoleMentee)
	m3 := f.seedUser(t, "m3@ace.org", constants.RoleMentee)

	alpha := f.seedFamily(t, "Alpha")
	beta := f.seedFamily(t, "Beta")
	gamma := f.seedFamily(t, "Gamma")
	pa := f.seedPairing(t, alpha.ID, mentor, m1)
	pb := f.seedPairing(t, beta.ID, mentor, m2)
	pg := f.seedPairing(t, gamma.ID, mentor, m3)

	for id, pts := range map[string]int{pa.ID: 10, pb.ID: 20, pg.ID: 10} {
		_, err := f.points.AdjustPairingPoints(f.adminCtx, id, pts, "seed")
		require.NoError(t, err)
	}

	board, err := f.board.Leaderboard(f.ctxAs(m1))
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, LeaderboardEntry{Rank: 1, FamilyID: beta.ID, Name: "Beta", TotalPoints: 20, WeeklyPoints: 20}, board[0])
	assert.Equal(t, "Alpha", board[1].Name)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, "Gamma", board[2].Name)
	assert.Equal(t, 2, board[2].Rank, "equal totals share a rank")

	// cached until invalidated
	_, err = f.points.AdjustPairingPoints(f.adminCtx, pg.ID, 50, "late surge")
	require.NoError(t, err)
	board, err = f.board.Leaderboard(f.ctxAs(m1))
	require.NoError(t, err)
	assert.Equal(t, "Beta", board[0].Name)

	f.cache.InvalidatePrefix(string(constants.CachePrefixLeaderboard))
	board, err = f.board.Leaderboard(f.ctxAs(m1))
	require.NoError(t, err)
	assert.Equal(t, "Gamma", board[0].Name)
	assert.Equal(t, 60, board[0].TotalPoints)

	_, err = f.board.Leaderboard(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestListAuditLogs(t *testing.T) {
	f := newFixture(t)
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	_, err := f.bonus.CreateBonusActivity(f.adminCtx, BonusActivityInput{Name: "Quiz", Points: 2})
	require.NoError(t, err)
	_, err = f.news.CreateAnnouncement(f.adminCtx, AnnouncementInput{Title: "Hello"})
	require.NoError(t, err)

	all, err := f.auditSvc.ListAuditLogs(f.adminCtx, 0, audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bonusOnly, err := f.auditSvc.ListAuditLogs(f.adminCtx, 10, audit.Filter{TargetType: constants.TargetBonus})
	require.NoError(t, err)
	require.Len(t, bonusOnly, 1)
	assert.Equal(t, constants.ActionBonusCreated, bonusOnly[0].Action)

	_, err = f.auditSvc.ListAuditLogs(f.ctxAs(mentor), 10, audit.Filter{})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
