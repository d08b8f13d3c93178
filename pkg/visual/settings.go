package visual

// Tunable animation parameters shared across layouts.
const (
	// clockStep is the fixed animation clock increment per frame.
	clockStep = 0.016

	// intensityAlpha is the exponential smoothing coefficient. It is
	// the sole source of temporal smoothing and is shared by every
	// layout so they all react with the same feel.
	intensityAlpha = 0.15

	// searchingBase/searchingSwing define the synthetic oscillation
	// used while the agent is searching, independent of audio.
	searchingBase  = 0.3
	searchingSwing = 0.2

	// innerDiskThreshold is the intensity above which the simple
	// circle layout shows its inner disk.
	innerDiskThreshold = 0.35
)

// Settings is the flat numeric record a profile carries. The engine
// treats it as read-only input; ownership stays with the profile layer.
type Settings struct {
	// Geometry
	Radius    float64 `json:"radius"`
	Density   float64 `json:"density"`
	Thickness float64 `json:"thickness"`

	// Audio reactivity gains
	Sensitivity       float64 `json:"sensitivity"`
	RadiusSensitivity float64 `json:"radius_sensitivity"`
	SizeSensitivity   float64 `json:"size_sensitivity"`
	NoiseGate         float64 `json:"noise_gate"`

	// Idle breathing
	BreathingAmplitude float64 `json:"breathing_amplitude"`
	BreathingFrequency float64 `json:"breathing_frequency"`

	// Per-mode rates and intensities
	ListeningRate      float64 `json:"listening_rate"`
	ListeningIntensity float64 `json:"listening_intensity"`
	SpeakingRate       float64 `json:"speaking_rate"`
	SpeakingIntensity  float64 `json:"speaking_intensity"`
	SearchingRate      float64 `json:"searching_rate"`
	SearchingIntensity float64 `json:"searching_intensity"`

	// Sphere layout
	PulseRate      float64 `json:"pulse_rate"`
	RotationSpeedX float64 `json:"rotation_speed_x"`
	RotationSpeedY float64 `json:"rotation_speed_y"`
	FOV            float64 `json:"fov"`

	// Optional outer shell, drawn only while searching
	OuterShell        bool    `json:"outer_shell"`
	OuterShellDensity float64 `json:"outer_shell_density"`

	// Colors as #rrggbb hex; empty falls back to the theme palette
	PrimaryColor    string `json:"primary_color,omitempty"`
	SecondaryColor  string `json:"secondary_color,omitempty"`
	BackgroundLight string `json:"background_light,omitempty"`
	BackgroundDark  string `json:"background_dark,omitempty"`
}

// DefaultSettings returns the stock settings used by the default
// profile and as the base for user edits.
func DefaultSettings() Settings {
	return Settings{
		Radius:    120,
		Density:   0.5,
		Thickness: 2,

		Sensitivity:       1.0,
		RadiusSensitivity: 1.0,
		SizeSensitivity:   1.0,
		NoiseGate:         0.15,

		BreathingAmplitude: 0.05,
		BreathingFrequency: 1.2,

		ListeningRate:      4,
		ListeningIntensity: 1.2,
		SpeakingRate:       16,
		SpeakingIntensity:  1.0,
		SearchingRate:      3,
		SearchingIntensity: 1.0,

		PulseRate:      2.5,
		RotationSpeedX: 0.4,
		RotationSpeedY: 0.7,
		FOV:            300,

		OuterShell:        true,
		OuterShellDensity: 0.3,
	}
}
