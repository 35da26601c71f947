package game

import "testing"

func TestWsMessageParse(t *testing.T) {
	msg, err := NewWsMessage(MsgTypeLoaded, LoadedMessage{Epoch: 3, Index: 7})
	if err != nil {
		t.Fatalf("NewWsMessage failed: %v", err)
	}
	p, err := msg.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	loaded, ok := p.(*LoadedMessage)
	if !ok {
		t.Fatalf("Expected *LoadedMessage, got %T", p)
	}
	if loaded.Epoch != 3 || loaded.Index != 7 {
		t.Errorf("Got %+v, expected epoch 3 index 7", loaded)
	}

	empty, _ := NewWsMessage(MsgTypeOpenSearch, nil)
	if p, err := empty.Parse(); err != nil {
		t.Errorf("Parse of empty payload failed: %v", err)
	} else if _, ok := p.(*OpenSearchMessage); !ok {
		t.Errorf("Expected *OpenSearchMessage, got %T", p)
	}

	unknown := WsMessage{Type: "bogus"}
	if _, err := unknown.Parse(); err == nil {
		t.Errorf("Expected error for unknown message type")
	}
}

func TestCardSlotHidesPairKey(t *testing.T) {
	msg, err := NewWsMessage(MsgTypeState, StateMessage{View: View{
		Cards: []Card{{CardSlot: CardSlot{Index: 0, PairKey: 42}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := msg.Parse()
	view := p.(*StateMessage).View
	if view.Cards[0].PairKey != 0 {
		t.Errorf("Pair key leaked to the wire: %d", view.Cards[0].PairKey)
	}
}
