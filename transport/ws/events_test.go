package ws

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"chathub/domain/event"
)

func TestEncodeFrame_Wraps_Event_Name_And_Body(t *testing.T) {
	req := require.New(t)

	data, err := encodeFrame(event.UserStatus{UserID: "alice", Status: "online"})
	req.NoError(err)
	req.JSONEq(`{"event":"user_status","data":{"userId":"alice","status":"online"}}`, string(data))
}

func TestEncodeFrame_CallSignal_Passes_Payload_Through(t *testing.T) {
	req := require.New(t)

	signal := event.CallSignal{Name: "call_incoming", Data: json.RawMessage(`{"signal":"sdp","from":"alice"}`)}
	data, err := encodeFrame(signal)
	req.NoError(err)
	req.JSONEq(`{"event":"call_incoming","data":{"signal":"sdp","from":"alice"}}`, string(data))

	// An empty relay still produces a valid body
	data, err = encodeFrame(event.CallSignal{Name: "call_ended"})
	req.NoError(err)
	req.JSONEq(`{"event":"call_ended","data":{}}`, string(data))
}

func TestDecodeID_Accepts_Both_Client_Forms(t *testing.T) {
	req := require.New(t)

	// Bare string, the historical form
	id, err := decodeID(json.RawMessage(`"alice"`), "userId")
	req.NoError(err)
	req.Equal("alice", id)

	// Object form
	id, err = decodeID(json.RawMessage(`{"userId":"alice"}`), "userId")
	req.NoError(err)
	req.Equal("alice", id)

	// Wrong key
	_, err = decodeID(json.RawMessage(`{"groupId":"g1"}`), "userId")
	req.Error(err)

	// Not decodable at all
	_, err = decodeID(json.RawMessage(`42`), "userId")
	req.Error(err)
}

func TestPayload_Validation(t *testing.T) {
	req := require.New(t)
	validate := validator.New()

	// Given a message without target
	var direct directMessagePayload
	req.NoError(json.Unmarshal([]byte(`{"message":"hi"}`), &direct))
	req.Error(validate.Struct(direct))

	// And a complete one
	req.NoError(json.Unmarshal([]byte(`{"toUserId":"bob","message":"hi"}`), &direct))
	req.NoError(validate.Struct(direct))

	// Call records constrain type and status
	var record callRecordPayload
	req.NoError(json.Unmarshal([]byte(`{"toUserId":"bob","callType":"smoke","duration":1,"status":"completed"}`), &record))
	req.Error(validate.Struct(record))

	req.NoError(json.Unmarshal([]byte(`{"toUserId":"bob","callType":"voice","duration":0,"status":"missed"}`), &record))
	req.NoError(validate.Struct(record))
}
