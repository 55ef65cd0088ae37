package domain

import "fmt"

// CallType distinguishes the two media modes the clients negotiate.
type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

// CallStatus is a terminal outcome of a call attempt. Calls have no stored
// mid-flight entity; the summary message is their only durable trace.
type CallStatus string

const (
	CallCompleted CallStatus = "completed"
	CallMissed    CallStatus = "missed"
	CallDeclined  CallStatus = "declined"
)

// FormatCallDuration renders seconds as m:ss, e.g. 125 -> "2:05".
func FormatCallDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// CallSummaryText builds the human-readable body of a call record message.
func CallSummaryText(callType CallType, durationSeconds int, status CallStatus) string {
	kind := "Voice"
	lower := "voice"
	if callType == CallVideo {
		kind = "Video"
		lower = "video"
	}
	switch status {
	case CallCompleted:
		if d := FormatCallDuration(durationSeconds); d != "" {
			return fmt.Sprintf("📞 %s call • %s", kind, d)
		}
		return fmt.Sprintf("📞 %s call", kind)
	case CallMissed:
		return fmt.Sprintf("📵 Missed %s call", lower)
	case CallDeclined:
		return fmt.Sprintf("❌ %s call declined", kind)
	default:
		return fmt.Sprintf("📞 %s call", kind)
	}
}
