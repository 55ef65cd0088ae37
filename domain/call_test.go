package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCallDuration(t *testing.T) {
	req := require.New(t)

	req.Equal("2:05", FormatCallDuration(125))
	req.Equal("0:09", FormatCallDuration(9))
	req.Equal("60:00", FormatCallDuration(3600))
	req.Equal("", FormatCallDuration(0))
	req.Equal("", FormatCallDuration(-5))
}

func TestCallSummaryText(t *testing.T) {
	req := require.New(t)

	req.Equal("📞 Voice call • 3:45", CallSummaryText(CallVoice, 225, CallCompleted))
	req.Equal("📞 Video call • 0:01", CallSummaryText(CallVideo, 1, CallCompleted))

	// Zero-duration completed calls omit the duration
	req.Equal("📞 Voice call", CallSummaryText(CallVoice, 0, CallCompleted))

	req.Equal("📵 Missed video call", CallSummaryText(CallVideo, 0, CallMissed))
	req.Equal("📵 Missed voice call", CallSummaryText(CallVoice, 0, CallMissed))

	req.Equal("❌ Voice call declined", CallSummaryText(CallVoice, 0, CallDeclined))
	req.Equal("❌ Video call declined", CallSummaryText(CallVideo, 0, CallDeclined))

	// Unknown status falls back to a plain call marker
	req.Equal("📞 Voice call", CallSummaryText(CallVoice, 30, CallStatus("weird")))
}
