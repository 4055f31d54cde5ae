package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medislot/models"
)

func TestReconcileDayFreshDay(t *testing.T) {
	env := newTestEnv(t)

	res := env.reconcile(t, "09:00", "12:00", 30, "Main Hospital")
	assert.Equal(t, 6, res.Created)
	assert.Equal(t, 0, res.Overwritten)
	assert.Equal(t, "Success! Added 6 new slots to your day.", res.Message)

	all := env.repo.All()
	require.Len(t, all, 6)
	for _, s := range all {
		assert.Equal(t, models.SlotStatusActive, s.Status)
		assert.False(t, s.IsBooked)
		assert.Equal(t, 30, s.DurationMinutes)
		assert.Equal(t, "Main Hospital", s.LocationLabel)
		assert.NotEmpty(t, s.ID)
		assert.False(t, s.CreatedAt.IsZero())
	}
	assert.Contains(t, env.cache.invalidated, testProvider+":"+testDate)
}

func TestReconcileDayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "12:00", 30, "Main")
	first := liveTimes(env.repo.All())

	res := env.reconcile(t, "09:00", "12:00", 30, "Main")
	assert.Equal(t, 6, res.Overwritten)
	assert.Equal(t, 6, res.Created)
	assert.Equal(t, "Updated! Replaced 6 old slots and added 0 new ones.", res.Message)

	all := env.repo.All()
	assert.Equal(t, first, liveTimes(all))
	assert.Len(t, all, 6, "unbooked collisions are deleted, not cancelled")
}

func TestReconcileDayPreservesDisjointSessions(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "12:00", 30, "Main")
	morning := env.liveAt(t, "10:00")

	res := env.reconcile(t, "17:00", "19:00", 30, "Evening Clinic")
	assert.Equal(t, 0, res.Overwritten)
	assert.Equal(t, 4, res.Created)

	assert.Equal(t, morning, env.liveAt(t, "10:00"))
	counts := liveTimes(env.repo.All())
	assert.Len(t, counts, 10)
	for label, n := range counts {
		assert.Equal(t, 1, n, "time %s", label)
	}
}

func TestReconcileDayPartialOverlap(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "11:00", 30, "Main")
	kept := env.liveAt(t, "09:00")

	res := env.reconcile(t, "10:00", "12:00", 30, "Annex")
	assert.Equal(t, 2, res.Overwritten)
	assert.Equal(t, 4, res.Created)

	assert.Equal(t, kept.ID, env.liveAt(t, "09:00").ID)
	assert.Equal(t, "Annex", env.liveAt(t, "10:00").LocationLabel)
	assert.Equal(t, "Annex", env.liveAt(t, "11:30").LocationLabel)
}

func TestReconcileDayCancelsBookedCollisions(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "12:00", 30, "Main")
	target := env.liveAt(t, "09:30")
	env.book(t, target.ID, "pat-1")

	res := env.reconcile(t, "09:00", "12:00", 30, "Main")
	assert.Equal(t, 6, res.Overwritten)

	cancelled, err := env.repo.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsBooked)
	assert.Equal(t, ScheduleUpdatedNotice, cancelled.AdminMessage)
	assert.Equal(t, "pat-1", cancelled.PatientID, "history keeps the occupant")

	fresh := env.liveAt(t, "09:30")
	assert.NotEqual(t, target.ID, fresh.ID)
	assert.Equal(t, models.SlotStatusActive, fresh.Status)

	notices := env.notifier.received()
	require.Len(t, notices, 1)
	assert.Equal(t, target.ID, notices[0].SlotID)
	assert.Equal(t, "pat-1", notices[0].PatientID)
	assert.Equal(t, ScheduleUpdatedNotice, notices[0].Message)
}

func TestReconcileDayLeavesCancelledHistoryAlone(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "10:00", 30, "Main")
	target := env.liveAt(t, "09:00")
	env.book(t, target.ID, "pat-1")
	env.reconcile(t, "09:00", "10:00", 30, "Main")
	env.reconcile(t, "09:00", "10:00", 30, "Main")

	cancelled, err := env.repo.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusCancelled, cancelled.Status)
	assert.Equal(t, 2, cancelled.Version, "booked once, cancelled once, then never touched")
	assert.Len(t, env.notifier.received(), 1)
}

func TestReconcileDayNotifierFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("queue down")

	env.reconcile(t, "09:00", "10:00", 30, "Main")
	env.book(t, env.liveAt(t, "09:00").ID, "pat-1")

	res := env.reconcile(t, "09:00", "10:00", 30, "Main")
	assert.Equal(t, 2, res.Overwritten)
}

func TestReconcileDayValidation(t *testing.T) {
	env := newTestEnv(t)
	valid := models.ReconcileDayRequest{
		ProviderID: testProvider, Date: testDate,
		StartTime: "09:00", EndTime: "12:00", DurationMinutes: 30,
	}

	cases := map[string]func(r *models.ReconcileDayRequest){
		"missing provider": func(r *models.ReconcileDayRequest) { r.ProviderID = "" },
		"bad date":         func(r *models.ReconcileDayRequest) { r.Date = "16/10/2026" },
		"bad start":        func(r *models.ReconcileDayRequest) { r.StartTime = "9am" },
		"start after end":  func(r *models.ReconcileDayRequest) { r.StartTime, r.EndTime = "12:00", "09:00" },
		"zero duration":    func(r *models.ReconcileDayRequest) { r.DurationMinutes = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := env.svc.ReconcileDay(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, env.repo.All())
}

func TestReconcileDayStoreFailureLeavesStateIntact(t *testing.T) {
	env := newTestEnv(t)

	env.reconcile(t, "09:00", "12:00", 30, "Main")
	env.book(t, env.liveAt(t, "10:00").ID, "pat-1")
	before := env.repo.All()

	storeDown := errors.New("store unavailable")
	env.repo.FailCommitsWith(storeDown)
	_, err := env.svc.ReconcileDay(context.Background(), models.ReconcileDayRequest{
		ProviderID: testProvider, Date: testDate,
		StartTime: "09:00", EndTime: "12:00", DurationMinutes: 20,
	})
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, storeDown)
	assert.Equal(t, before, env.repo.All())
	assert.Empty(t, env.notifier.received())
}
