package detector

import (
	"strconv"
	"strings"
	"time"

	"weatheralert/internal/models"
)

// FriendlyTimeLayout renders e.g. "Tue, Mar 05 3:00 PM".
const FriendlyTimeLayout = "Mon, Jan 02 3:04 PM"

// Compose renders the alert as a message body. It returns false when no condition is set.
// Lines always appear in cold, wind, rain order.
func Compose(alert models.AggregateAlert, loc *time.Location) (string, bool) {
	if alert.Empty() {
		return "", false
	}

	var b strings.Builder
	if alert.Cold.IsSet {
		b.WriteString("Cold Alert: " + FormatValue(alert.Cold.Value) + " degrees at " + FriendlyTime(alert.Cold.Timestamp, loc) + "\n")
	}
	if alert.Wind.IsSet {
		b.WriteString("Wind Alert: " + FormatValue(alert.Wind.Value) + " mph at " + FriendlyTime(alert.Wind.Timestamp, loc) + "\n")
	}
	if alert.Rain.IsSet {
		b.WriteString(alert.Rain.Value + ": " + FriendlyTime(alert.Rain.Timestamp, loc))
	}

	return b.String(), true
}

// FriendlyTime formats epoch seconds in loc; a nil loc means time.Local.
func FriendlyTime(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format(FriendlyTimeLayout)
}

// FormatValue prints a float the shortest way, keeping one decimal for whole numbers (30 -> "30.0").
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
