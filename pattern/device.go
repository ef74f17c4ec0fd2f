package pattern

// Device maps parameter names to CC numbers for one hardware target,
// with optional per-channel overrides (multitimbral boxes expose the
// same parameter on different CCs per part).
type Device struct {
	Name     string
	Params   map[string]uint8
	Channels map[uint8]map[string]uint8
}

// ResolveCC looks the parameter up, channel override first.
func (d *Device) ResolveCC(param string, channel uint8) (uint8, bool) {
	if d == nil {
		return 0, false
	}
	if byCh, ok := d.Channels[channel]; ok {
		if cc, ok := byCh[param]; ok {
			return cc, true
		}
	}
	cc, ok := d.Params[param]
	return cc, ok
}

// Devices contains the built-in device profiles, keyed by config name.
var Devices = map[string]*Device{
	"generic": {
		Name: "Generic synth",
		Params: map[string]uint8{
			"cutoff":    74,
			"resonance": 71,
			"attack":    73,
			"release":   72,
			"volume":    7,
			"pan":       10,
		},
	},
	"volca-keys": {
		Name: "Korg Volca Keys",
		Params: map[string]uint8{
			"cutoff":    44,
			"voice":     40,
			"detune":    42,
			"vcoEG":     43,
			"lfoRate":   45,
			"lfoPitch":  46,
			"lfoCutoff": 47,
			"attack":    49,
			"release":   51,
		},
	},
}

// GetDevice returns the named profile, or nil when unknown (the loop
// then falls back to its constant CC).
func GetDevice(name string) *Device {
	return Devices[name]
}
