package scheduling

// Fingerprint is the tuple of fields used to decide whether a canonical item
// has changed meaningfully enough to force-replace a local mirror. It is a
// comparable struct so equality is plain tuple equality.
type Fingerprint struct {
	ItemID       string
	CrewID       string
	TaskID       string
	Status       TaskStatus
	CompletedAt  int64 // unix nanos, 0 when pending
	Progress     int
	StartDate    string
	EndDate      string
	DurationDays int
}

const fingerprintDateLayout = "2006-01-02"

// FingerprintOf computes the identity-relevant fingerprint of an item.
// Items without a task fingerprint to the zero task fields, so attaching or
// detaching a task always changes the fingerprint.
func FingerprintOf(item ScheduledItem) Fingerprint {
	fp := Fingerprint{
		ItemID: item.ID,
		CrewID: item.CrewMemberID,
	}

	if item.Task == nil {
		return fp
	}

	fp.TaskID = item.Task.ID
	fp.Status = item.Task.Status
	fp.Progress = item.Task.ProgressPercent
	fp.StartDate = item.Task.StartDate.Format(fingerprintDateLayout)
	fp.EndDate = item.Task.EndDate.Format(fingerprintDateLayout)
	fp.DurationDays = item.Task.DurationDays
	if item.Task.CompletedAt != nil {
		fp.CompletedAt = item.Task.CompletedAt.UnixNano()
	}
	return fp
}
