package services

import (
	"context"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

// seedMedia stores a submission document and, when withFile is set, its image.
func seedMedia(t *testing.T, f *fixture, id string, withFile bool) docs.Submission {
	t.Helper()
	sub := docs.Submission{
		ID:          id,
		SubmitterID: "user-1",
		ImagePath:   "submissions/2025/10/" + id + ".jpg",
		ImageURL:    "/media/submissions/2025/10/" + id + ".jpg",
		Status:      constants.SubmissionApproved,
		CreatedAt:   f.clock.Now(),
	}
	if withFile {
		require.NoError(t, f.fs.MkdirAll("submissions/2025/10", 0o755))
		require.NoError(t, afero.WriteFile(f.fs, sub.ImagePath, []byte("jpeg"), 0o644))
	}
	require.NoError(t, f.store.Set(context.Background(), constants.CollectionSubmissions, id, sub))
	return sub
}

func publicMessage(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	msg, ok := apperr.PublicMessage(err)
	require.True(t, ok, "expected a public message for %v", err)
	return msg
}

func TestMediaLifecycle_RetentionGuard(t *testing.T) {
	f := newFixture(t)
	sub := seedMedia(t, f, "s1", true)

	archived, err := f.media.ArchiveMedia(f.adminCtx, sub.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)
	assert.True(t, archived.ArchivedAt.Equal(testStart))

	f.clock.Advance(29 * day)
	_, err = f.media.DeleteArchivedMedia(f.adminCtx, sub.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "media can be permanently deleted in 1 day", publicMessage(t, err))

	f.clock.Advance(day)
	deleted, err := f.media.DeleteArchivedMedia(f.adminCtx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ImagePath, deleted.ImagePath)

	exists, err := afero.Exists(f.fs, sub.ImagePath)
	require.NoError(t, err)
	assert.False(t, exists, "image should be removed from storage")

	var gone docs.Submission
	assert.ErrorIs(t, f.store.Get(context.Background(), constants.CollectionSubmissions, sub.ID, &gone), docstore.ErrNotFound)

	entries := f.auditFor(t, constants.TargetMedia, sub.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.ActionMediaDeleted, entries[0].Action)
	assert.Equal(t, sub.ImagePath, entries[0].Metadata["imagePath"])
	assert.Equal(t, sub.SubmitterID, entries[0].Metadata["submitterId"])
	assert.Equal(t, constants.ActionMediaArchived, entries[1].Action)
}

func TestDeleteArchivedMedia_Guards(t *testing.T) {
	f := newFixture(t)
	seedMedia(t, f, "live", true)

	_, err := f.media.DeleteArchivedMedia(f.adminCtx, "live")
	assert.Equal(t, constants.MsgMediaNotArchived, publicMessage(t, err))

	_, err = f.media.DeleteArchivedMedia(f.adminCtx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.media.ArchiveMedia(f.adminCtx, "live")
	require.NoError(t, err)
	_, err = f.media.DeleteArchivedMedia(f.adminCtx, "live")
	assert.Equal(t, "media can be permanently deleted in 30 days", publicMessage(t, err))

	mentor := f.seedUser(t, "mentor@ace.org", constants.RoleMentor)
	f.clock.Advance(45 * day)
	_, err = f.media.DeleteArchivedMedia(f.ctxAs(mentor), "live")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	exists, err := afero.Exists(f.fs, "submissions/2025/10/live.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteArchivedMedia_MissingFileStillDeletesRecord(t *testing.T) {
	f := newFixture(t)
	seedMedia(t, f, "orphan", false)

	_, err := f.media.ArchiveMedia(f.adminCtx, "orphan")
	require.NoError(t, err)
	f.clock.Advance(31 * day)

	_, err = f.media.DeleteArchivedMedia(f.adminCtx, "orphan")
	require.NoError(t, err)

	var gone docs.Submission
	assert.ErrorIs(t, f.store.Get(context.Background(), constants.CollectionSubmissions, "orphan", &gone), docstore.ErrNotFound)
}

func TestArchiveAndRestore(t *testing.T) {
	f := newFixture(t)
	seedMedia(t, f, "s1", false)

	_, err := f.media.RestoreMedia(f.adminCtx, "s1")
	assert.Equal(t, "media is not archived", publicMessage(t, err))

	_, err = f.media.ArchiveMedia(f.adminCtx, "s1")
	require.NoError(t, err)

	f.clock.Advance(10 * day)
	_, err = f.media.ArchiveMedia(f.adminCtx, "s1")
	assert.Equal(t, "media is already archived", publicMessage(t, err))

	var stored docs.Submission
	require.NoError(t, f.store.Get(context.Background(), constants.CollectionSubmissions, "s1", &stored))
	assert.True(t, stored.ArchivedAt.Equal(testStart), "archiving twice must not restart the countdown")

	restored, err := f.media.RestoreMedia(f.adminCtx, "s1")
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Nil(t, restored.ArchivedAt)

	_, err = f.media.ArchiveMedia(f.adminCtx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListArchivedMedia(t *testing.T) {
	f := newFixture(t)
	seedMedia(t, f, "old", false)
	seedMedia(t, f, "new", false)
	seedMedia(t, f, "live", false)

	_, err := f.media.ArchiveMedia(f.adminCtx, "old")
	require.NoError(t, err)
	f.clock.Advance(20 * day)
	_, err = f.media.ArchiveMedia(f.adminCtx, "new")
	require.NoError(t, err)
	f.clock.Advance(12 * day)

	list, err := f.media.ListArchivedMedia(f.adminCtx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "old", list[0].ID)
	assert.True(t, list[0].EligibleForDeletion)
	assert.Zero(t, list[0].DaysRemaining)

	assert.Equal(t, "new", list[1].ID)
	assert.False(t, list[1].EligibleForDeletion)
	assert.Equal(t, 18, list[1].DaysRemaining)
}
