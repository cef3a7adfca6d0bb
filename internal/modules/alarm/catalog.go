package alarm

// PredefinedAlarm is one entry of the fixed built-in sound catalog.
type PredefinedAlarm struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

const defaultAlarmID = "alarm_1"

var predefinedCatalog = []PredefinedAlarm{
	{ID: "alarm_1", Name: "Classic Bell", Path: "/audio/alarm_1.mp3"},
	{ID: "alarm_2", Name: "Digital Beep", Path: "/audio/alarm_2.mp3"},
	{ID: "alarm_3", Name: "Gentle Chime", Path: "/audio/alarm_3.mp3"},
	{ID: "alarm_4", Name: "Rooster", Path: "/audio/alarm_4.mp3"},
	{ID: "alarm_5", Name: "Retro Alarm", Path: "/audio/alarm_5.mp3"},
}

// PredefinedCatalog returns the built-in alarm sounds.
func PredefinedCatalog() []PredefinedAlarm {
	out := make([]PredefinedAlarm, len(predefinedCatalog))
	copy(out, predefinedCatalog)
	return out
}

func predefinedByID(id string) (PredefinedAlarm, bool) {
	for _, p := range predefinedCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return PredefinedAlarm{}, false
}
