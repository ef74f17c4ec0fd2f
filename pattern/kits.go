package pattern

// Kit maps the 16 drum slots to MIDI notes for a particular machine.
type Kit struct {
	Name  string
	Notes [16]uint8
}

// Slot layout: 0 kick, 1 snare, 2 closed hat, 3 open hat, 4-6 toms,
// 7 crash, 8 ride, 9 clap, 10 rimshot, 11 cowbell, 12 clave,
// 13 shaker, 14-15 percussion.

// Kits contains the built-in drum kit mappings, keyed by config name.
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: [16]uint8{
			36, 38, 42, 46, 41, 43, 45, 49,
			51, 39, 37, 56, 75, 70, 64, 63,
		},
	},
	"volca-beats": {
		Name: "Korg Volca Beats",
		Notes: [16]uint8{
			36, 38, 42, 46, 43, 50, 50, 49,
			49, 39, 39, 67, 75, 70, 64, 63,
		},
	},
}

// GetKit returns the named kit, falling back to General MIDI.
func GetKit(name string) Kit {
	if k, ok := Kits[name]; ok {
		return k
	}
	return Kits["gm"]
}
