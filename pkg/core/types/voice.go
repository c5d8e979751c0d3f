package types

import "fmt"

// Voice is a catalogue entry. The catalogue mixes standard and cloned
// voices whose shape is owned by the TTS backend, so the record is kept
// as a map with accessors for the fields every entry carries.
type Voice map[string]any

// ID returns the voice identifier ("id" or "voice_id").
func (v Voice) ID() string {
	for _, key := range []string{"id", "voice_id"} {
		if s := v.stringField(key); s != "" {
			return s
		}
	}
	return ""
}

// Name returns the display name.
func (v Voice) Name() string {
	return v.stringField("name")
}

func (v Voice) stringField(key string) string {
	raw, ok := v[key]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

// VoiceDesign is the /voices/design response: a synthesized preview.
type VoiceDesign struct {
	AudioBase64 string `json:"audio_base64"`
	Instruct    string `json:"instruct"`
}

// VoiceRegistration is the /voices/register response.
type VoiceRegistration struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
