package email

const (
	subjectVisitScheduledFmt = "Your %s is booked for %s"
	subjectVisitReminderFmt  = "Reminder: your %s is tomorrow"
	subjectOpsAlertFmt       = "[ops] %s"
)
