package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlayground_KnownFrames(t *testing.T) {
	tests := []struct {
		raw  string
		want Frame
	}{
		{`{"type":"session_start","session_id":"s1","agent_name":"Ava"}`, SessionStart{SessionID: "s1", AgentName: "Ava"}},
		{`{"type":"text_chunk","text":"Hel"}`, TextChunk{Text: "Hel"}},
		{`{"type":"intent_detected","intent":"billing"}`, IntentDetected{Intent: "billing"}},
		{`{"type":"agent_switch","from":"Ava","to":"Bo","reason":"billing"}`, AgentSwitch{From: "Ava", To: "Bo", Reason: "billing"}},
		{`{"type":"escalation","reason":"angry caller"}`, Escalation{Reason: "angry caller"}},
		{`{"type":"error","message":"stt unavailable"}`, Error{Message: "stt unavailable"}},
		{`{"type":"transcription","text":"hello there"}`, Transcription{Text: "hello there"}},
		{`{"type":"start_response"}`, ResponseStart{}},
		{`{"type":"end_response"}`, ResponseEnd{}},
	}
	for _, tt := range tests {
		t.Run(tt.want.FrameType(), func(t *testing.T) {
			got, err := DecodePlayground([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePlayground_Audio(t *testing.T) {
	frame, err := DecodePlayground([]byte(`{"type":"audio","data":"SUQzBA=="}`))
	require.NoError(t, err)
	audio, ok := frame.(Audio)
	require.True(t, ok, "decoded type = %T", frame)
	assert.Equal(t, []byte("ID3\x04"), audio.Data)

	_, err = DecodePlayground([]byte(`{"type":"audio","data":"***"}`))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "bad_frame", decErr.Code)
}

func TestDecodePlayground_ToolCallArguments(t *testing.T) {
	frame, err := DecodePlayground([]byte(`{"type":"tool_call","arguments":{"order_id":"42"}}`))
	require.NoError(t, err)
	call := frame.(ToolCall)
	assert.Empty(t, call.Name)
	assert.JSONEq(t, `{"order_id":"42"}`, call.ArgumentsText())

	frame, err = DecodePlayground([]byte(`{"type":"tool_call","name":"lookup","arguments":"{\"q\":1}"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"q":1}`, frame.(ToolCall).ArgumentsText())

	frame, err = DecodePlayground([]byte(`{"type":"tool_call","name":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, "{}", frame.(ToolCall).ArgumentsText())
}

func TestDecodePlayground_Errors(t *testing.T) {
	_, err := DecodePlayground([]byte(`not json`))
	assert.EqualError(t, err, "invalid json frame")

	_, err = DecodePlayground([]byte(`{"text":"no type"}`))
	assert.EqualError(t, err, "missing type (type)")

	_, err = DecodePlayground([]byte(`{"type":"text_chunk","text":5}`))
	assert.EqualError(t, err, "invalid text_chunk frame")
}

func TestDecodePlayground_UnknownType(t *testing.T) {
	raw := `{"type":"latency_report","ms":120}`
	frame, err := DecodePlayground([]byte(raw))
	require.NoError(t, err)
	unknown, ok := frame.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "latency_report", unknown.FrameType())
	assert.JSONEq(t, raw, string(unknown.Raw))
}

func TestClientFrames(t *testing.T) {
	data, err := json.Marshal(NewClientText("hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"hi"}`, string(data))

	data, err = json.Marshal(NewClientAudio([]byte{0x01, 0x02}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"audio":"AQI="}`, string(data))
}

func TestDecodeMonitor_Envelope(t *testing.T) {
	event, err := DecodeMonitor([]byte(`{"session_id":"s9","type":"transcription","data":{"role":"assistant","text":"Sure."},"timestamp":1234.5}`))
	require.NoError(t, err)
	assert.Equal(t, "s9", event.SessionID)
	assert.Equal(t, 1234.5, event.Timestamp)
	assert.Equal(t, MonitorTranscription{Role: "assistant", Text: "Sure."}, event.Frame)
}

func TestDecodeMonitor_InitialState(t *testing.T) {
	raw := `{"type":"initial_state","data":{"session_id":"s1","agent_id":"a1","status":"active",
		"history":[{"role":"user","content":"hi"}],"created_at":"2026-02-01T09:00:00.123456"}}`
	event, err := DecodeMonitor([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "s1", event.SessionID)
	initial := event.Frame.(InitialState)
	assert.Equal(t, "active", initial.Session.Status)
	require.Len(t, initial.Session.History, 1)
	assert.Equal(t, "hi", initial.Session.History[0].Content)
}

func TestDecodeMonitor_Payloads(t *testing.T) {
	tests := []struct {
		raw  string
		want Frame
	}{
		{`{"type":"text_chunk","data":{"text":"par"}}`, MonitorTextChunk{Text: "par"}},
		{`{"type":"intent_detected","data":{"intent":"refund"}}`, MonitorIntent{Intent: "refund"}},
		{`{"type":"agent_switch","data":{"from":"Ava","to":"Bo"}}`, MonitorAgentSwitch{From: "Ava", To: "Bo"}},
		{`{"type":"escalation","data":{"reason":"legal"}}`, MonitorEscalation{Reason: "legal"}},
		{`{"type":"compliance_alert","data":{"risk_score":0.92}}`, ComplianceAlert{RiskScore: 0.92}},
		{`{"type":"session_start","data":{"agent_id":"a1","agent_name":"Ava","caller_id":null}}`, MonitorSessionStart{AgentID: "a1", AgentName: "Ava"}},
	}
	for _, tt := range tests {
		t.Run(tt.want.FrameType(), func(t *testing.T) {
			event, err := DecodeMonitor([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Frame)
		})
	}
}

func TestDecodeMonitor_ToolFrames(t *testing.T) {
	event, err := DecodeMonitor([]byte(`{"type":"tool_result","data":{"name":"lookup","result":"found 3"}}`))
	require.NoError(t, err)
	result := event.Frame.(ToolResult)
	assert.Equal(t, "lookup", result.Name)
	assert.Equal(t, "found 3", result.ResultText())

	event, err = DecodeMonitor([]byte(`{"type":"tool_call","data":{"name":"lookup","arguments":{"id":1}}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, event.Frame.(MonitorToolCall).ArgumentsText())
}

func TestDecodeMonitor_UnknownAndInvalid(t *testing.T) {
	event, err := DecodeMonitor([]byte(`{"type":"sentiment","data":{"score":1},"timestamp":"late"}`))
	require.NoError(t, err)
	assert.IsType(t, Unknown{}, event.Frame)
	assert.Zero(t, event.Timestamp)

	_, err = DecodeMonitor([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = DecodeMonitor([]byte(`{"type":"text_chunk","data":"oops"}`))
	assert.EqualError(t, err, "invalid text_chunk frame")
}
