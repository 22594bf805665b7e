// Package policy computes UI-level previews of the booking platform's
// time-window rules: cancellation refund tiers, reschedule penalties, and the
// join-meeting window. Every result here is an estimate; the Sphere API is the
// sole authority and its response supersedes anything computed locally.
package policy

import (
	"fmt"
	"time"
)

// Refund/penalty tier boundaries, in hours before the appointment start.
const (
	FullRefundHours = 48
	HalfRefundHours = 24

	RescheduleBlockedHours = 4
	ReschedulePenaltyHours = 24

	// JoinLeadTime is how early the meeting link opens before the start time.
	JoinLeadTime = 15 * time.Minute
)

// EstimatedRefund is a client-side preview of the cancellation refund. It is
// deliberately a distinct type from sphere.ActualRefund: the two must never be
// conflated, because the backend recomputes the refund at request time.
type EstimatedRefund struct {
	Percentage int     `json:"percentage"`
	Amount     float64 `json:"amount"`
	HoursUntil float64 `json:"hoursUntil"`
}

// ReschedulePreview reports whether a reschedule is currently offered and at
// what penalty. Like EstimatedRefund, it is advisory only.
type ReschedulePreview struct {
	Allowed           bool    `json:"allowed"`
	PenaltyPercentage int     `json:"penaltyPercentage"`
	HoursUntil        float64 `json:"hoursUntil"`
}

// JoinWindow describes whether the meeting link is currently usable.
type JoinWindow struct {
	Enabled bool      `json:"enabled"`
	OpensAt time.Time `json:"opensAt"`
	Reason  string    `json:"reason,omitempty"`
}

// CancellationRefund maps hours-until-start to the refund tier:
// >=48h full refund, >=24h half, under 24h nothing.
func CancellationRefund(now, start time.Time, amount float64) EstimatedRefund {
	hours := start.Sub(now).Hours()
	pct := 0
	switch {
	case hours >= FullRefundHours:
		pct = 100
	case hours >= HalfRefundHours:
		pct = 50
	}
	return EstimatedRefund{
		Percentage: pct,
		Amount:     amount * float64(pct) / 100,
		HoursUntil: hours,
	}
}

// Reschedule maps hours-until-start to the reschedule tier: blocked inside 4h,
// allowed with a 50% penalty inside 24h, free otherwise.
func Reschedule(now, start time.Time) ReschedulePreview {
	hours := start.Sub(now).Hours()
	p := ReschedulePreview{HoursUntil: hours}
	switch {
	case hours < RescheduleBlockedHours:
		// Must cancel instead.
	case hours < ReschedulePenaltyHours:
		p.Allowed = true
		p.PenaltyPercentage = 50
	default:
		p.Allowed = true
	}
	return p
}

// MeetingJoinable reports whether the join control should be enabled. The
// window is [start - JoinLeadTime, end], and requires a confirmed appointment
// with a meeting link.
func MeetingJoinable(now, start, end time.Time, confirmed bool, meetingLink string) JoinWindow {
	opens := start.Add(-JoinLeadTime)
	w := JoinWindow{OpensAt: opens}
	switch {
	case meetingLink == "":
		w.Reason = "no meeting link"
	case !confirmed:
		w.Reason = "appointment is not confirmed"
	case now.Before(opens):
		w.Reason = fmt.Sprintf("meeting opens at %s", opens.Format("15:04"))
	case now.After(end):
		w.Reason = "meeting has ended"
	default:
		w.Enabled = true
	}
	return w
}

// StartInstant combines the backend's calendar-date and time-of-day fields
// ("2006-01-02" and "15:04") into a single instant in loc.
func StartInstant(appointmentDate, startTime string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", appointmentDate+" "+startTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("policy: parse appointment start: %w", err)
	}
	return t, nil
}
