package live

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "valid",
			config:  Config{APIKey: "test-key"},
			wantErr: nil,
		},
		{
			name:    "missing key",
			config:  Config{},
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if c.cfg.Model != DefaultModel {
		t.Errorf("model = %s, want %s", c.cfg.Model, DefaultModel)
	}
	if c.cfg.Voice != DefaultVoice {
		t.Errorf("voice = %s, want %s", c.cfg.Voice, DefaultVoice)
	}
	if c.IsConnected() {
		t.Error("new client should not report connected")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err != ErrMissingAPIKey {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSendAudioBeforeConnect(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})
	if err := c.SendAudio([]byte{1, 2}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestCloseBeforeConnect(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})
	if err := c.Close(); err != nil {
		t.Errorf("Close() before connect: %v", err)
	}
	// Second close is a no-op.
	if err := c.Close(); err != nil {
		t.Errorf("second Close(): %v", err)
	}
}

func TestHandleServerContentAudio(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})

	var got []byte
	c.OnAudio(func(pcm []byte) { got = pcm })

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	content := map[string]any{
		"modelTurn": map[string]any{
			"parts": []any{
				map[string]any{
					"inlineData": map[string]any{
						"mimeType": "audio/pcm;rate=24000",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					},
				},
			},
		},
	}
	c.handleServerContent(content)

	if len(got) != len(pcm) {
		t.Fatalf("decoded %d bytes, want %d", len(got), len(pcm))
	}
	for i := range pcm {
		if got[i] != pcm[i] {
			t.Errorf("byte %d = %x, want %x", i, got[i], pcm[i])
		}
	}
}

func TestHandleServerContentMalformedChunk(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})

	var calls int
	c.OnAudio(func(pcm []byte) { calls++ })

	good := base64.StdEncoding.EncodeToString([]byte{9, 9})
	content := map[string]any{
		"modelTurn": map[string]any{
			"parts": []any{
				map[string]any{
					"inlineData": map[string]any{
						"mimeType": "audio/pcm",
						"data":     "!!!not-base64!!!",
					},
				},
				map[string]any{
					"inlineData": map[string]any{
						"mimeType": "audio/pcm",
						"data":     good,
					},
				},
			},
		},
	}

	// Must not panic, and the good chunk after the bad one still arrives.
	c.handleServerContent(content)
	if calls != 1 {
		t.Errorf("audio callback calls = %d, want 1", calls)
	}
}

func TestHandleServerContentIgnoresNonPCM(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})

	var calls int
	c.OnAudio(func(pcm []byte) { calls++ })

	content := map[string]any{
		"modelTurn": map[string]any{
			"parts": []any{
				map[string]any{
					"inlineData": map[string]any{
						"mimeType": "image/png",
						"data":     base64.StdEncoding.EncodeToString([]byte{1}),
					},
				},
			},
		},
	}
	c.handleServerContent(content)
	if calls != 0 {
		t.Errorf("audio callback fired for non-PCM mime")
	}
}

func TestHandleMessageInterrupted(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})

	var interrupted bool
	c.OnInterrupted(func() { interrupted = true })

	c.handleMessage(map[string]any{
		"serverContent": map[string]any{"interrupted": true},
	})
	if !interrupted {
		t.Error("interrupted callback not fired from serverContent")
	}

	interrupted = false
	c.handleMessage(map[string]any{"interrupted": true})
	if !interrupted {
		t.Error("interrupted callback not fired from top-level flag")
	}
}

func TestHandleMessageTurnComplete(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})

	var done bool
	c.OnTurnComplete(func() { done = true })

	c.handleMessage(map[string]any{
		"serverContent": map[string]any{"turnComplete": true},
	})
	if !done {
		t.Error("turn complete callback not fired")
	}
}

func TestSetupMessageShape(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantSearch bool
		wantPrompt bool
	}{
		{
			name:       "minimal",
			cfg:        Config{APIKey: "k"},
			wantSearch: false,
			wantPrompt: false,
		},
		{
			name:       "search and persona",
			cfg:        Config{APIKey: "k", EnableSearch: true, SystemPrompt: "You are Aura."},
			wantSearch: true,
			wantPrompt: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewClient(tt.cfg)

			raw, err := json.Marshal(c.setupMessage())
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var decoded map[string]any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			inner := decoded["setup"].(map[string]any)

			_, hasTools := inner["tools"]
			if hasTools != tt.wantSearch {
				t.Errorf("tools present = %v, want %v", hasTools, tt.wantSearch)
			}
			_, hasPrompt := inner["system_instruction"]
			if hasPrompt != tt.wantPrompt {
				t.Errorf("system_instruction present = %v, want %v", hasPrompt, tt.wantPrompt)
			}

			gen := inner["generation_config"].(map[string]any)
			mods := gen["response_modalities"].([]any)
			if len(mods) != 1 || mods[0] != "AUDIO" {
				t.Errorf("response_modalities = %v, want [AUDIO]", mods)
			}
		})
	}
}

func TestIsPCMMime(t *testing.T) {
	if !isPCMMime("audio/pcm") || !isPCMMime("audio/pcm;rate=24000") {
		t.Error("expected PCM mimes to match")
	}
	if isPCMMime("audio/ogg") {
		t.Error("unexpected match for audio/ogg")
	}
}
