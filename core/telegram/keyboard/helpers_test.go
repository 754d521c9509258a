package keyboard

import "testing"

func TestInlineButtonsRowsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "Plank", Data: "E:A:Plank"}, {Text: "Change Load", Data: "CL:A:Plank"}},
		nil,
		[]InlineBtn{{Text: "Completed!", Data: "FE:A"}},
	)
	if m == nil || len(m.InlineKeyboard) != 2 {
		t.Fatalf("unexpected markup: %+v", m)
	}
	first := m.InlineKeyboard[0]
	if len(first) != 2 || first[0].Text != "Plank" || first[0].Data != "E:A:Plank" || first[0].Unique != "" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if got := m.InlineKeyboard[1][0].Data; got != "FE:A" {
		t.Fatalf("last row data = %q", got)
	}
	if InlineButtonsRows() != nil {
		t.Fatal("empty keyboard should be nil")
	}
}
