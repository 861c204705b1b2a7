package validation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/induslogic/isapa/internal/database"
	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/grammar"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(db.Conn()))

	g, err := grammar.Default()
	require.NoError(t, err)

	v, err := New(g)
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	em := events.NewManager(zerolog.Nop())

	return NewService(v, repo, em, zerolog.Nop())
}

func TestServiceRunArchivesReceipt(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Run([]domain.SignID{59, 789, 342}, false)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusValidReceipt, rec.Result.Status)
	assert.Equal(t, "mahadevan-administrative", rec.GrammarName)
	assert.False(t, rec.CollectAll)

	got, err := svc.GetByID(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, []domain.SignID{59, 789, 342}, got.Signs)
	assert.Equal(t, StatusValidReceipt, got.Result.Status)
	assert.Equal(t, 3, got.Result.Processed)
	require.Len(t, got.Result.Items, 1)
	assert.Equal(t, domain.SignID(59), got.Result.Items[0].Sign)
	assert.Equal(t, 1, got.Result.Items[0].Count)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestServiceRunViolationRoundTrip(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Run([]domain.SignID{342, 59, 789}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusProtocolViolation, rec.Result.Status)

	got, err := svc.GetByID(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotEmpty(t, got.Result.Reasons)
	assert.Equal(t, ReasonPrematureClose, got.Result.Reasons[0].Code)
	assert.Equal(t, 0, got.Result.Reasons[0].Position)
}

func TestServiceRunCollectAll(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Run([]domain.SignID{905, 789, 59, 342}, true)
	require.NoError(t, err)
	assert.True(t, rec.CollectAll)
	assert.Equal(t, StatusProtocolViolation, rec.Result.Status)

	got, err := svc.GetByID(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Result.Reasons, 2)
	assert.Equal(t, ReasonUnknownSign, got.Result.Reasons[0].Code)
	assert.Equal(t, ReasonOrphanQuantity, got.Result.Reasons[1].Code)
}

func TestServiceGetByIDMissing(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GetByID("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestServiceRecentAndStats(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Run([]domain.SignID{59, 342}, false)
	require.NoError(t, err)
	_, err = svc.Run([]domain.SignID{59}, false)
	require.NoError(t, err)
	_, err = svc.Run([]domain.SignID{343, 59, 789, 342}, false)
	require.NoError(t, err)

	records, err := svc.Recent(10)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = svc.Recent(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	counts, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[string(StatusValidReceipt)])
	assert.Equal(t, 1, counts[string(StatusProtocolViolation)])
}

func TestServiceCheckDoesNotArchive(t *testing.T) {
	svc := newTestService(t)

	result := svc.Check([]domain.SignID{59, 342}, false)
	assert.Equal(t, StatusValidReceipt, result.Status)

	records, err := svc.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
