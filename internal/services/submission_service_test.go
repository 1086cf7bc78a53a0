package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCreateSubmission(t *testing.T) {
	f := newFixture(t)
	family := f.seedFamily(t, "Bánh Flan")
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	mentee := f.seedUser(t, "mentee@ace.org", constants.RoleMentee)
	p := f.seedPairing(t, family.ID, mentor, mentee)
	karaoke, err := f.bonus.CreateBonusActivity(f.adminCtx, BonusActivityInput{Name: "Karaoke", Points: 5})
	require.NoError(t, err)

	sub, err := f.subs.CreateSubmission(f.ctxAs(mentee), SubmissionInput{
		Image:            pngHeader,
		BonusActivityIDs: []string{karaoke.ID, karaoke.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, constants.SubmissionPending, sub.Status)
	assert.Equal(t, p.ID, sub.PairingID)
	assert.Equal(t, mentee.ID, sub.SubmitterID)
	assert.Equal(t, []string{karaoke.ID}, sub.BonusActivityIDs)
	assert.Equal(t, 2025, sub.Year)
	assert.Equal(t, 10, sub.WeekNumber)
	assert.Equal(t, fmt.Sprintf("submissions/2025/10/%s.png", sub.ID), sub.ImagePath)
	assert.Equal(t, "/media/"+sub.ImagePath, sub.ImageURL)

	stored, err := afero.ReadFile(f.fs, sub.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestCreateSubmission_Rejects(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "u@ace.org", constants.RoleMentee)

	_, err := f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{})
	assert.Equal(t, "an image is required", publicMessage(t, err))

	_, err = f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: []byte("plain text, not a picture")})
	assert.Contains(t, publicMessage(t, err), "unsupported image type")

	_, err = f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: make([]byte, MaxImageBytes+1), ContentType: "image/png"})
	assert.Equal(t, "image must be at most 10 MB", publicMessage(t, err))

	_, err = f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: pngHeader, BonusActivityIDs: []string{"nope"}})
	assert.Equal(t, "bonus activity nope is not available", publicMessage(t, err))

	_, err = f.subs.CreateSubmission(context.Background(), SubmissionInput{Image: pngHeader})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestCreateSubmission_RateLimited(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "eager@ace.org", constants.RoleMentee)
	other := f.seedUser(t, "calm@ace.org", constants.RoleMentee)

	for i := 0; i < 3; i++ {
		_, err := f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: pngHeader})
		require.NoError(t, err, "upload %d", i+1)
	}
	_, err := f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: pngHeader})
	assert.ErrorIs(t, err, ratelimit.ErrLimited)

	_, err = f.subs.CreateSubmission(f.ctxAs(other), SubmissionInput{Image: pngHeader})
	require.NoError(t, err, "limits are per user")

	f.clock.Advance(time.Hour + time.Second)
	_, err = f.subs.CreateSubmission(f.ctxAs(u), SubmissionInput{Image: pngHeader})
	require.NoError(t, err, "a new window starts after the old one ends")

	all, err := f.subs.ListSubmissions(f.adminCtx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestReviewSubmission_ApprovalCreditsPairingOnce(t *testing.T) {
	f := newFixture(t)
	family := f.seedFamily(t, "Sương Sáo")
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	mentee := f.seedUser(t, "mentee@ace.org", constants.RoleMentee)
	p := f.seedPairing(t, family.ID, mentor, mentee)
	a, err := f.bonus.CreateBonusActivity(f.adminCtx, BonusActivityInput{Name: "Hike", Points: 10})
	require.NoError(t, err)
	b, err := f.bonus.CreateBonusActivity(f.adminCtx, BonusActivityInput{Name: "Pho night", Points: 4})
	require.NoError(t, err)

	sub, err := f.subs.CreateSubmission(f.ctxAs(mentor), SubmissionInput{Image: pngHeader, BonusActivityIDs: []string{a.ID, b.ID}})
	require.NoError(t, err)

	_, err = f.subs.ReviewSubmission(f.adminCtx, sub.ID, ReviewInput{Status: constants.SubmissionPending})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	reviewed, err := f.subs.ReviewSubmission(f.adminCtx, sub.ID, ReviewInput{Status: constants.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, constants.SubmissionApproved, reviewed.Status)
	assert.Equal(t, 14, reviewed.TotalPoints)
	assert.Equal(t, f.admin.ID, reviewed.ReviewedBy)

	tally := f.tally(t, p.ID)
	assert.Equal(t, 14, tally.TotalPoints)
	assert.Equal(t, 14, tally.WeeklyPoints)

	_, err = f.subs.ReviewSubmission(f.adminCtx, sub.ID, ReviewInput{Status: constants.SubmissionApproved})
	assert.Equal(t, "submission has already been reviewed", publicMessage(t, err))
	assert.Equal(t, 14, f.tally(t, p.ID).TotalPoints)

	entries := f.auditFor(t, constants.TargetMedia, sub.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.ActionSubmissionApproved, entries[0].Action)
}

func TestReviewSubmission_RejectAndOverride(t *testing.T) {
	f := newFixture(t)
	family := f.seedFamily(t, "Bánh Bò")
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	mentee := f.seedUser(t, "mentee@ace.org", constants.RoleMentee)
	p := f.seedPairing(t, family.ID, mentor, mentee)

	first, err := f.subs.CreateSubmission(f.ctxAs(mentee), SubmissionInput{Image: pngHeader})
	require.NoError(t, err)
	second, err := f.subs.CreateSubmission(f.ctxAs(mentee), SubmissionInput{Image: pngHeader})
	require.NoError(t, err)

	rejected, err := f.subs.ReviewSubmission(f.adminCtx, first.ID, ReviewInput{Status: constants.SubmissionRejected})
	require.NoError(t, err)
	assert.Zero(t, rejected.TotalPoints)

	override := 8
	_, err = f.subs.ReviewSubmission(f.adminCtx, second.ID, ReviewInput{Status: constants.SubmissionApproved, Points: &override})
	require.NoError(t, err)
	assert.Equal(t, 8, f.tally(t, p.ID).TotalPoints)

	pending, err := f.subs.ListSubmissions(f.adminCtx, string(constants.SubmissionPending))
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.subs.ReviewSubmission(f.ctxAs(mentee), second.ID, ReviewInput{Status: constants.SubmissionApproved})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.subs.ReviewSubmission(f.adminCtx, "missing", ReviewInput{Status: constants.SubmissionRejected})
	assert.Equal(t, "submission not found", publicMessage(t, err))
}

func TestReviewSubmission_MissingPairingLeavesSubmissionPending(t *testing.T) {
	f := newFixture(t)
	family := f.seedFamily(t, "Chè Ba Màu")
	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	mentee := f.seedUser(t, "mentee@ace.org", constants.RoleMentee)
	p := f.seedPairing(t, family.ID, mentor, mentee)

	sub, err := f.subs.CreateSubmission(f.ctxAs(mentee), SubmissionInput{Image: pngHeader})
	require.NoError(t, err)
	_, err = f.pairingSvc.DeletePairing(f.adminCtx, p.ID)
	require.NoError(t, err)

	points := 5
	_, err = f.subs.ReviewSubmission(f.adminCtx, sub.ID, ReviewInput{Status: constants.SubmissionApproved, Points: &points})
	assert.Equal(t, "pairing not found", publicMessage(t, err))

	pending, err := f.subs.ListSubmissions(f.adminCtx, string(constants.SubmissionPending))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Zero(t, pending[0].TotalPoints)
	assert.Empty(t, f.auditFor(t, constants.TargetMedia, sub.ID))

	rejected, err := f.subs.ReviewSubmission(f.adminCtx, sub.ID, ReviewInput{Status: constants.SubmissionRejected})
	require.NoError(t, err, "the submission can still be reviewed")
	assert.Equal(t, constants.SubmissionRejected, rejected.Status)
	assert.Len(t, f.auditFor(t, constants.TargetMedia, sub.ID), 1)
}
