package insight

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"anitrack/internal/library"
)

type CountdownMode string

const (
	ModePremiere    CountdownMode = "premiere"
	ModeNextEpisode CountdownMode = "next_episode"
)

// broadcastOffsetHours is the offset of the published broadcast times (JST).
const broadcastOffsetHours = 9

type Remaining struct {
	Mode      CountdownMode `json:"mode"`
	At        time.Time     `json:"at"`
	Remaining time.Duration `json:"remaining_ns"`
	Label     string        `json:"label"`
}

// Countdown returns the time until an entry's premiere or next episode. The
// premiere branch applies to unstarted titles; when the premiere is unknown
// or already past the weekly broadcast slot is used instead.
func Countdown(now time.Time, e library.Entry) (Remaining, bool) {
	now = now.UTC()

	unstarted := e.Status == library.StatusPlanToWatch ||
		(e.EpisodesWatched == 0 && e.Status == library.StatusOnHold)
	if unstarted && e.AiredFrom != nil && e.AiredFrom.After(now) {
		return newRemaining(ModePremiere, now, e.AiredFrom.UTC()), true
	}

	if e.Broadcast == nil {
		return Remaining{}, false
	}
	next, ok := nextBroadcast(now, *e.Broadcast)
	if !ok {
		return Remaining{}, false
	}
	return newRemaining(ModeNextEpisode, now, next), true
}

func newRemaining(mode CountdownMode, now, at time.Time) Remaining {
	d := at.Sub(now)
	return Remaining{Mode: mode, At: at, Remaining: d, Label: FormatRemaining(d)}
}

// nextBroadcast finds the first occurrence of the JST weekday and time that is
// strictly after now. The stated hour is shifted into UTC before the weekday
// arithmetic, so a slot early on a JST morning lands on the previous UTC day.
func nextBroadcast(now time.Time, b library.Broadcast) (time.Time, bool) {
	day, ok := ParseWeekday(b.Day)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(b.Time)
	if !ok {
		return time.Time{}, false
	}

	offset := (int(day) - int(now.Weekday()) + 7) % 7
	y, m, d := now.Date()
	next := time.Date(y, m, d+offset, hour-broadcastOffsetHours, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next, true
}

// ParseWeekday accepts "Monday" as well as the plural "Mondays".
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name+"s" {
			return d, true
		}
	}
	return 0, false
}

func parseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	mi, err := strconv.Atoi(mm)
	if err != nil || mi < 0 || mi > 59 {
		return 0, 0, false
	}
	return h, mi, true
}

// FormatRemaining renders "3d 4h" for a day or more and "4h 12m" below that.
// Units are truncated, never rounded up.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	if days >= 1 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	minutes := int(d%time.Hour) / int(time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
