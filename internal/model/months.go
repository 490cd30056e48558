package model

// DefaultMonths returns the canonical calendar: December of the prior
// year through December of the archive year, each with its static
// presentation metadata. Callers get a fresh copy they may mutate.
func DefaultMonths() *Snapshot {
	months := []MonthData{
		{ID: 12, Year: 2024, Name: "December 2024", DisplayName: "DEC 24", Color: "#1e40af", Gradient: "from-blue-900 to-indigo-950", Quote: "The final chapter of one year, the prologue to another."},
		{ID: 1, Year: 2025, Name: "January", DisplayName: "JAN", Color: "#3b82f6", Gradient: "from-blue-600 to-indigo-900", Quote: "A fresh start, a blank canvas for the new year."},
		{ID: 2, Year: 2025, Name: "February", DisplayName: "FEB", Color: "#ec4899", Gradient: "from-pink-500 to-rose-900", Quote: "Quiet moments and cold mornings."},
		{ID: 3, Year: 2025, Name: "March", DisplayName: "MAR", Color: "#10b981", Gradient: "from-emerald-500 to-teal-900", Quote: "Waiting for the first signs of spring."},
		{ID: 4, Year: 2025, Name: "April", DisplayName: "APR", Color: "#f59e0b", Gradient: "from-amber-500 to-orange-900", Quote: "The world begins to change colors."},
		{ID: 5, Year: 2025, Name: "May", DisplayName: "MAY", Color: "#8b5cf6", Gradient: "from-violet-500 to-purple-900", Quote: "Fresh blooms and warmer breezes."},
		{ID: 6, Year: 2025, Name: "June", DisplayName: "JUN", Color: "#0ea5e9", Gradient: "from-sky-500 to-blue-900", Quote: "The long days of early summer."},
		{ID: 7, Year: 2025, Name: "July", DisplayName: "JUL", Color: "#ef4444", Gradient: "from-red-500 to-orange-800", Quote: "Golden sun and infinite heat."},
		{ID: 8, Year: 2025, Name: "August", DisplayName: "AUG", Color: "#facc15", Gradient: "from-yellow-400 to-amber-700", Quote: "Slow afternoons and hazy horizons."},
		{ID: 9, Year: 2025, Name: "September", DisplayName: "SEP", Color: "#d97706", Gradient: "from-orange-600 to-amber-900", Quote: "The air turns crisp, the days shorten."},
		{ID: 10, Year: 2025, Name: "October", DisplayName: "OCT", Color: "#ea580c", Gradient: "from-orange-700 to-red-950", Quote: "Autumn in its full, fiery glory."},
		{ID: 11, Year: 2025, Name: "November", DisplayName: "NOV", Color: "#713f12", Gradient: "from-brown-700 to-stone-900", Quote: "Moments of gratitude and inner warmth."},
		{ID: 12, Year: 2025, Name: "December", DisplayName: "DEC 25", Color: "#1e40af", Gradient: "from-blue-800 to-slate-950", Quote: "Coming full circle."},
	}
	for i := range months {
		months[i].Memories = []Memory{}
	}
	return &Snapshot{SchemaVersion: SchemaVersion, Months: months}
}
