package midi

// DrumKit maps the 8 drum voices of the drum register to MIDI notes
type DrumKit struct {
	Name  string
	Notes [8]uint8
}

// Voice names for reference
// 0: Kick
// 1: Low Tom
// 2: Mid Tom
// 3: High Tom
// 4: Snare
// 5: Closed HH
// 6: Open HH
// 7: Crash

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Notes: [8]uint8{
			36, // Kick
			41, // Low Tom
			43, // Mid Tom
			45, // High Tom
			38, // Snare
			42, // Closed HH
			46, // Open HH
			49, // Crash
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [8]uint8{
			36, // Kick (BD)
			45, // Low Tom (LT)
			48, // Mid Tom (MT)
			50, // High Tom (HT)
			40, // Snare (SD) - note: RD-8 uses 40, not 38!
			42, // Closed HH (CH)
			46, // Open HH (OH)
			49, // Crash (CY)
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: [8]uint8{
			36, // Perc Synth 1 (Kick)
			40, // Perc Synth 3 (Tom)
			41, // Perc Synth 4 (Zap/Cowbell)
			43, // Audio In 1
			38, // Perc Synth 2 (Snare)
			42, // Closed HH (PCM)
			46, // Open HH (PCM)
			49, // Crash (PCM)
		},
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "er1"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
