package messaging

const (
	// PublicSubject carries public chat for every online player.
	PublicSubject = "chat.public"
	// ReportSubject answers requests with the current status report.
	ReportSubject = "server.report"

	playerPrefix = "player."
)

// PlayerSubject is the subject private messages to name are published on.
func PlayerSubject(name string) string {
	return playerPrefix + name
}
