package keyboard

import "testing"

func TestChunk(t *testing.T) {
	rows := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(rows) != 3 || len(rows[2]) != 1 || rows[2][0] != 5 {
		t.Fatalf("unexpected rows %v", rows)
	}
	if got := Chunk([]int{1, 2}, 0); len(got) != 2 {
		t.Fatalf("n<=1 must yield one per row, got %v", got)
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{
		{Text: "A", Unique: "category", Data: "1"},
		{Text: "B", Unique: "category", Data: "2"},
		{Text: "C", Unique: "category", Data: "3"},
	}
	markup := InlineButtonsNPerRow(btns, 2, []InlineBtn{CancelButton("menu", "", "Back")})
	if len(markup.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(markup.InlineKeyboard))
	}
	first := markup.InlineKeyboard[0][0]
	if first.Unique != "category" || first.Data != "1" || first.Text != "A" {
		t.Fatalf("unexpected first button %+v", first)
	}
	back := markup.InlineKeyboard[2][0]
	if back.Text != "Back" || back.Data != "cancel" {
		t.Fatalf("unexpected tail button %+v", back)
	}
}

func TestReplyAndContactMarkup(t *testing.T) {
	m := ReplyButtons([]string{"Catalog", "Cart"}, []string{"Orders"})
	if len(m.ReplyKeyboard) != 2 || m.ReplyKeyboard[0][1].Text != "Cart" {
		t.Fatalf("unexpected reply keyboard %+v", m.ReplyKeyboard)
	}
	c := ContactRequest("Share phone")
	if !c.ReplyKeyboard[0][0].Contact {
		t.Fatal("contact button must request contact")
	}
}
