package sessions

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

func sampleConversation() *conversation.Conversation {
	conv := conversation.New("llama3")
	conv.Append(conversation.UserMessage("hello"))
	conv.Append(conversation.AssistantMessage("hi there"))
	conv.Append(conversation.UserMessage("  spaced \n text  "))
	return conv
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	conv := sampleConversation()

	data, err := Encode(conv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(conv, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	conv := sampleConversation()

	first, err := Encode(conv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(conv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encodings differ:\n%s\n---\n%s", first, second)
	}
}

func TestEncodeSchema(t *testing.T) {
	conv := conversation.New("m")
	conv.Append(conversation.UserMessage("q"))
	conv.Append(conversation.AssistantMessage("a"))

	data, err := Encode(conv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `{
  "messages": [
    {
      "content": "q",
      "sender": "User"
    },
    {
      "content": "a",
      "sender": "AI"
    }
  ],
  "current_model": "m"
}
`
	if string(data) != want {
		t.Errorf("Encode =\n%s\nwant\n%s", data, want)
	}
}

func TestEncodeEmptyMessages(t *testing.T) {
	data, err := Encode(&conversation.Conversation{CurrentModel: "m"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(data, []byte(`"messages": []`)) {
		t.Errorf("expected empty array, got %s", data)
	}
}

func TestDecodeTolerant(t *testing.T) {
	data := []byte(`{
		"version": 3,
		"messages": [{"content": "hi", "sender": "User", "ts": 12}],
		"current_model": "X"
	}`)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.CurrentModel != "X" {
		t.Errorf("CurrentModel = %q, want X", got.CurrentModel)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hi" {
		t.Errorf("Messages = %+v", got.Messages)
	}
}

func TestDecodeNullMessages(t *testing.T) {
	got, err := Decode([]byte(`{"messages": null, "current_model": "X"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Messages == nil || len(got.Messages) != 0 {
		t.Errorf("Messages = %#v, want empty non-nil slice", got.Messages)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "{not json"},
		{"wrong shape", `{"messages": "hello", "current_model": "X"}`},
		{"missing model", `{"messages": []}`},
		{"empty model", `{"messages": [], "current_model": ""}`},
		{"unknown sender", `{"messages": [{"content": "x", "sender": "Bot"}], "current_model": "X"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) err = %v, want ErrMalformed", tt.data, err)
			}
		})
	}
}
