package domain_broadcast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"whatsfleet/internal/domain/broadcast"
)

func TestTemplate_Eval_Literal(t *testing.T) {
	tmpl := broadcast.Parse("Hello there, no tokens here.")
	got := tmpl.Eval(broadcast.EvalContext{})
	assert.Equal(t, "Hello there, no tokens here.", got)
}

func TestTemplate_Eval_PushName(t *testing.T) {
	tmpl := broadcast.Parse("Hi [[NAME]]!")

	t.Run("uses the WhatsApp push name when present", func(t *testing.T) {
		got := tmpl.Eval(broadcast.EvalContext{PushName: "Budi", Phone: "6281234567890"})
		assert.Equal(t, "Hi Budi!", got)
	})

	t.Run("falls back to the phone number when push name is empty", func(t *testing.T) {
		got := tmpl.Eval(broadcast.EvalContext{Phone: "6281234567890"})
		assert.Equal(t, "Hi 6281234567890!", got)
	})
}

func TestTemplate_Eval_ContactName(t *testing.T) {
	tmpl := broadcast.Parse("Hi {{nama}}, apa kabar {nama}?")

	got := tmpl.Eval(broadcast.EvalContext{ContactName: "Siti", Phone: "628999"})

	assert.Equal(t, "Hi Siti, apa kabar Siti?", got)
}

func TestTemplate_Eval_Variables(t *testing.T) {
	tmpl := broadcast.Parse("{var1} / {var2} / {var3} / {nomor}")

	got := tmpl.Eval(broadcast.EvalContext{Var1: "A", Var2: "B", Var3: "C", Phone: "628111"})

	assert.Equal(t, "A / B / C / 628111", got)
}

func TestTemplate_Eval_TimeDateDay(t *testing.T) {
	tmpl := broadcast.Parse("{waktu} {tanggal} {hari}")
	now := time.Date(2026, 7, 31, 9, 5, 0, 0, time.UTC) // Friday

	got := tmpl.Eval(broadcast.EvalContext{Now: now})

	assert.Equal(t, "09:05 31-07-2026 Jumat", got)
}

func TestTemplate_Eval_RandomSegmentPicksFromChoices(t *testing.T) {
	tmpl := broadcast.Parse("(hi|hello|hey) there")

	choices := map[string]bool{"hi there": true, "hello there": true, "hey there": true}
	for i := 0; i < 20; i++ {
		got := tmpl.Eval(broadcast.EvalContext{})
		assert.True(t, choices[got], "unexpected render: %s", got)
	}
}

func TestTemplate_Eval_MixedTokens(t *testing.T) {
	tmpl := broadcast.Parse("Hi [[NAME]], your code is {var1}.")

	got := tmpl.Eval(broadcast.EvalContext{PushName: "Rudi", Var1: "1234"})

	assert.Equal(t, "Hi Rudi, your code is 1234.", got)
}

func TestTemplate_Eval_UnrecognizedBraceTokenIsLiteral(t *testing.T) {
	tmpl := broadcast.Parse("Keep {this} as-is")

	got := tmpl.Eval(broadcast.EvalContext{})

	assert.Equal(t, "Keep {this} as-is", got)
}
