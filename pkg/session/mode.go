package session

// Mode is the agent's conversational phase. It drives both audio
// semantics and visual parameter selection.
type Mode string

const (
	// ModeIdle means no session is active.
	ModeIdle Mode = "idle"
	// ModeListening means the microphone is live and the agent is quiet.
	ModeListening Mode = "listening"
	// ModeSpeaking means synthesized audio is scheduled or playing.
	ModeSpeaking Mode = "speaking"
	// ModeSearching is a UI-only preview override. The manager never
	// enters it.
	ModeSearching Mode = "searching"
)

// Event is a state-machine trigger. The last applied event is retained
// so tests and the dashboard can see what caused a transition.
type Event string

const (
	EventSessionOpened   Event = "session_opened"
	EventAudioScheduled  Event = "audio_scheduled"
	EventPlaybackDrained Event = "playback_drained"
	EventInterrupted     Event = "interrupted"
	EventDisconnected    Event = "disconnected"
	EventTransportError  Event = "transport_error"
)

// transitions is the explicit mode transition table. Events missing
// from a mode's row are ignored (logged at debug level by the manager).
var transitions = map[Mode]map[Event]Mode{
	ModeIdle: {
		EventSessionOpened: ModeListening,
	},
	ModeListening: {
		EventAudioScheduled: ModeSpeaking,
		EventInterrupted:    ModeListening,
		EventDisconnected:   ModeIdle,
		EventTransportError: ModeIdle,
	},
	ModeSpeaking: {
		EventAudioScheduled:  ModeSpeaking,
		EventPlaybackDrained: ModeListening,
		EventInterrupted:     ModeListening,
		EventDisconnected:    ModeIdle,
		EventTransportError:  ModeIdle,
	},
}

// next returns the mode reached by applying ev in mode m.
// ok is false when the transition is not defined.
func next(m Mode, ev Event) (Mode, bool) {
	row, ok := transitions[m]
	if !ok {
		return m, false
	}
	to, ok := row[ev]
	return to, ok
}
