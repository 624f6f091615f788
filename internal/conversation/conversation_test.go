package conversation

import "testing"

func TestNew(t *testing.T) {
	c := New("nemotron")

	if c.CurrentModel != "nemotron" {
		t.Errorf("CurrentModel = %q, want %q", c.CurrentModel, "nemotron")
	}
	if c.Messages == nil {
		t.Fatal("Messages is nil, want empty slice")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Last(); ok {
		t.Error("Last on empty conversation returned ok")
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	c := New("m")
	c.Append(UserMessage("one"))
	c.Append(AssistantMessage("two"))
	c.Append(UserMessage(""))

	want := []Message{
		{Content: "one", Sender: SenderUser},
		{Content: "two", Sender: SenderAssistant},
		{Content: "", Sender: SenderUser},
	}
	if c.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", c.Len(), len(want))
	}
	for i, m := range c.Messages {
		if m != want[i] {
			t.Errorf("Messages[%d] = %+v, want %+v", i, m, want[i])
		}
	}

	last, ok := c.Last()
	if !ok || last != want[2] {
		t.Errorf("Last = %+v, %v; want %+v, true", last, ok, want[2])
	}
}

func TestSenderValid(t *testing.T) {
	if !SenderUser.Valid() || !SenderAssistant.Valid() {
		t.Error("known senders reported invalid")
	}
	if Sender("Assistant").Valid() {
		t.Error(`Sender("Assistant") reported valid`)
	}
}
