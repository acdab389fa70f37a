package planner_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/tempora/internal/domain"
	"github.com/gosuda/tempora/internal/planner"
)

func plannedTask(day time.Time, order int) *domain.Task {
	d := planner.StartOfDay(day)
	return &domain.Task{
		ID:         uuid.New(),
		Status:     domain.TaskStatusScheduled,
		PlannedDay: &d,
		DayOrder:   order,
	}
}

func timedTask(day time.Time, hour, order int) *domain.Task {
	t := plannedTask(day, order)
	start := planner.CombineDayHour(day, hour)
	end := start.Add(time.Hour)
	t.TimeBlockStart = &start
	t.TimeBlockEnd = &end
	return t
}

// ---------------------------------------------------------------------------
// IndexByDay.
// ---------------------------------------------------------------------------

func TestIndexByDay_GroupsAndOrders(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	days := []time.Time{mon, tue}

	untimedLate := plannedTask(mon, 5)
	untimedEarly := plannedTask(mon, 2)
	timedNine := timedTask(mon, 9, 7)
	timedSeven := timedTask(mon, 7, 1)
	other := plannedTask(tue, 1)

	idx := planner.IndexByDay(
		[]*domain.Task{untimedLate, other, timedNine, untimedEarly, timedSeven},
		days, planner.ByPlannedDay,
	)

	require.Len(t, idx, 2)
	monCell := idx[planner.DateKey(mon)]
	require.Len(t, monCell, 4)

	// Timed ascending by start, then untimed ascending by day order.
	assert.Equal(t, timedSeven.ID, monCell[0].ID)
	assert.Equal(t, timedNine.ID, monCell[1].ID)
	assert.Equal(t, untimedEarly.ID, monCell[2].ID)
	assert.Equal(t, untimedLate.ID, monCell[3].ID)

	assert.Len(t, idx[planner.DateKey(tue)], 1)
}

func TestIndexByDay_ExcludesNonSchedulable(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	done := plannedTask(mon, 1)
	done.IsCompleted = true
	parent := plannedTask(mon, 2)
	parent.IsRecurringParent = true
	unplaced := &domain.Task{ID: uuid.New()}

	idx := planner.IndexByDay([]*domain.Task{done, parent, unplaced}, []time.Time{mon}, planner.ByPlannedDay)
	assert.Empty(t, idx[planner.DateKey(mon)])
}

func TestIndexByDay_ScheduledDateFieldIsSeparate(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)

	task := plannedTask(mon, 1)
	task.ScheduledDate = &tue // due Tuesday, planned Monday

	byPlanned := planner.IndexByDay([]*domain.Task{task}, []time.Time{mon, tue}, planner.ByPlannedDay)
	assert.Len(t, byPlanned[planner.DateKey(mon)], 1)
	assert.Empty(t, byPlanned[planner.DateKey(tue)])

	byScheduled := planner.IndexByDay([]*domain.Task{task}, []time.Time{mon, tue}, planner.ByScheduledDate)
	assert.Empty(t, byScheduled[planner.DateKey(mon)])
	assert.Len(t, byScheduled[planner.DateKey(tue)], 1)
}

// ---------------------------------------------------------------------------
// IndexByDayAndHour.
// ---------------------------------------------------------------------------

func TestIndexByDayAndHour_UntimedNeverInHourCells(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	slots := []int{8, 10, 12, 14, 16}

	untimed := plannedTask(mon, 3)
	timed := timedTask(mon, 10, 1)

	grid := planner.IndexByDayAndHour([]*domain.Task{untimed, timed}, []time.Time{mon}, slots, planner.ByPlannedDay)
	day := grid[planner.DateKey(mon)]
	require.NotNil(t, day)

	require.Len(t, day.Untimed, 1)
	assert.Equal(t, untimed.ID, day.Untimed[0].ID)
	require.Len(t, day.Hours[10], 1)
	assert.Equal(t, timed.ID, day.Hours[10][0].ID)
}

func TestIndexByDayAndHour_NearestSlotCoarseGrid(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	slots := []int{8, 10, 12, 14} // 2-hour condensed grid

	nine := timedTask(mon, 9, 1)      // equidistant 8 vs 10, lower wins
	eleven := timedTask(mon, 11, 2)   // equidistant 10 vs 12, lower wins
	thirteen := timedTask(mon, 13, 3) // equidistant 12 vs 14, lower wins
	late := timedTask(mon, 17, 4)     // beyond the grid, clamps to 14

	grid := planner.IndexByDayAndHour([]*domain.Task{nine, eleven, thirteen, late}, []time.Time{mon}, slots, planner.ByPlannedDay)
	day := grid[planner.DateKey(mon)]

	assert.Len(t, day.Hours[8], 1)
	assert.Len(t, day.Hours[10], 1)
	assert.Len(t, day.Hours[12], 1)
	assert.Len(t, day.Hours[14], 1)
}

func TestNearestSlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hour  int
		slots []int
		want  int
	}{
		{"exact match", 10, []int{8, 10, 12}, 10},
		{"tie breaks low", 9, []int{8, 10, 12}, 8},
		{"below range", 5, []int{8, 10, 12}, 8},
		{"above range", 20, []int{8, 10, 12}, 12},
		{"empty slots pass through", 7, nil, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, planner.NearestSlot(tt.hour, tt.slots))
		})
	}
}

// ---------------------------------------------------------------------------
// ExtractLocalHour — string-level, timezone-proof.
// ---------------------------------------------------------------------------

func TestExtractLocalHour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"plain timestamp", "2026-01-09T09:00:00", 9, false},
		{"timestamp with offset", "2026-01-09T23:30:00+09:00", 23, false},
		{"timestamp with zulu", "2026-01-09T07:15:00Z", 7, false},
		{"space separator", "2026-01-09 14:00:00", 14, false},
		{"bare clock", "09:30", 9, false},
		{"single digit clock", "8:05", 8, false},
		{"midnight", "2026-01-09T00:00:00", 0, false},
		{"bare date", "2026-01-09", 0, true},
		{"garbage", "soon", 0, true},
		{"hour out of range", "2026-01-09T25:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := planner.ExtractLocalHour(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, planner.ErrNoHour)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestExtractLocalHour_HostTimezoneIndependent pins the critical case: the
// extracted hour comes from the string itself, so zone suffixes that would
// shift the instant under a timezone-converting parser change nothing.
func TestExtractLocalHour_HostTimezoneIndependent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"2026-01-09T09:00:00",
		"2026-01-09T09:00:00Z",
		"2026-01-09T09:00:00-08:00",
		"2026-01-09T09:00:00+09:00",
	} {
		got, err := planner.ExtractLocalHour(in)
		require.NoError(t, err)
		assert.Equal(t, 9, got, "hour must be read verbatim from %q", in)
	}
}

// ---------------------------------------------------------------------------
// AttachEvents — read-only feed merge.
// ---------------------------------------------------------------------------

func TestAttachEvents(t *testing.T) {
	t.Parallel()

	mon := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	slots := []int{8, 10, 12}

	grid := planner.IndexByDayAndHour(nil, []time.Time{mon}, slots, planner.ByPlannedDay)
	events := []domain.CalendarEvent{
		{ID: "standup", Start: "2025-01-06T10:00:00+01:00", End: "2025-01-06T10:30:00+01:00"},
		{ID: "offsite", Start: "2025-01-06", End: "2025-01-07"},
		{ID: "elsewhere", Start: "2025-01-08T10:00:00", End: "2025-01-08T11:00:00"},
	}

	planner.AttachEvents(grid, events, slots)
	day := grid[planner.DateKey(mon)]

	require.Len(t, day.Events[10], 1)
	assert.Equal(t, "standup", day.Events[10][0].ID)
	require.Len(t, day.AllDayEvents, 1)
	assert.Equal(t, "offsite", day.AllDayEvents[0].ID)
}
