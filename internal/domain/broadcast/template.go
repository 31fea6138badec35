package broadcast

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

// SegmentKind identifies what a parsed template segment renders as.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentRandom
	SegmentVariable
)

// Variable names a substitution slot. The distinction between PushName and
// ContactName mirrors §4.5's ordering: [[NAME]] is the WhatsApp-reported
// display name, while {{NAME}}/{nama}/{{nama}} pull from the contact store.
type Variable string

const (
	VarPushName    Variable = "pushname"
	VarContactName Variable = "contactname"
	VarPhone       Variable = "phone"
	VarVar1        Variable = "var1"
	VarVar2        Variable = "var2"
	VarVar3        Variable = "var3"
	VarTime        Variable = "time"
	VarDate        Variable = "date"
	VarDay         Variable = "day"
)

// Segment is one parsed piece of a message template.
type Segment struct {
	Kind    SegmentKind
	Literal string
	Choices []string
	Var     Variable
}

// Template is a parsed-once AST evaluated once per recipient (§4.5, §9).
type Template struct {
	segments []Segment
}

// EvalContext is the per-recipient data the template renders against.
type EvalContext struct {
	PushName    string
	ContactName string
	Phone       string
	Var1        string
	Var2        string
	Var3        string
	Now         time.Time
}

var tokenPattern = regexp.MustCompile(
	`\([^()]+(?:\|[^()]+)+\)` + // (a|b|c)
		`|\[\[\s*(?i:NAME)\s*\]\]` + // [[NAME]]
		`|\{\{?\s*(?i:NAME|nama|nomor|var1|var2|var3|waktu|tanggal|hari)\s*\}\}?`, // {nama}, {{nama}}, {nomor}, ...
)

// Parse builds a Template AST from raw message text. It never errors: any
// text it cannot classify as a special token is kept as a literal segment.
func Parse(raw string) *Template {
	matches := tokenPattern.FindAllStringIndex(raw, -1)
	segments := make([]Segment, 0, len(matches)*2+1)
	pos := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > pos {
			segments = append(segments, Segment{Kind: SegmentLiteral, Literal: raw[pos:start]})
		}
		segments = append(segments, classify(raw[start:end]))
		pos = end
	}
	if pos < len(raw) {
		segments = append(segments, Segment{Kind: SegmentLiteral, Literal: raw[pos:]})
	}
	return &Template{segments: segments}
}

func classify(token string) Segment {
	switch {
	case strings.HasPrefix(token, "("):
		inner := strings.TrimSuffix(strings.TrimPrefix(token, "("), ")")
		return Segment{Kind: SegmentRandom, Choices: strings.Split(inner, "|")}
	case strings.HasPrefix(token, "[["):
		return Segment{Kind: SegmentVariable, Var: VarPushName}
	default:
		inner := strings.ToLower(strings.Trim(token, "{}"))
		inner = strings.TrimSpace(inner)
		switch inner {
		case "name", "nama":
			return Segment{Kind: SegmentVariable, Var: VarContactName}
		case "nomor":
			return Segment{Kind: SegmentVariable, Var: VarPhone}
		case "var1":
			return Segment{Kind: SegmentVariable, Var: VarVar1}
		case "var2":
			return Segment{Kind: SegmentVariable, Var: VarVar2}
		case "var3":
			return Segment{Kind: SegmentVariable, Var: VarVar3}
		case "waktu":
			return Segment{Kind: SegmentVariable, Var: VarTime}
		case "tanggal":
			return Segment{Kind: SegmentVariable, Var: VarDate}
		case "hari":
			return Segment{Kind: SegmentVariable, Var: VarDay}
		default:
			return Segment{Kind: SegmentLiteral, Literal: token}
		}
	}
}

var indonesianDays = []string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// Eval renders the template against a single recipient's context. Random
// segments are re-chosen on every call, so two recipients never see the same
// draw deterministically tied together.
func (t *Template) Eval(ctx EvalContext) string {
	var b strings.Builder
	for _, seg := range t.segments {
		switch seg.Kind {
		case SegmentLiteral:
			b.WriteString(seg.Literal)
		case SegmentRandom:
			b.WriteString(Parse(seg.Choices[rand.IntN(len(seg.Choices))]).Eval(ctx))
		case SegmentVariable:
			b.WriteString(resolveVar(seg.Var, ctx))
		}
	}
	return b.String()
}

func resolveVar(v Variable, ctx EvalContext) string {
	switch v {
	case VarPushName:
		if ctx.PushName != "" {
			return ctx.PushName
		}
		return ctx.Phone
	case VarContactName:
		if ctx.ContactName != "" {
			return ctx.ContactName
		}
		return ctx.Phone
	case VarPhone:
		return ctx.Phone
	case VarVar1:
		return ctx.Var1
	case VarVar2:
		return ctx.Var2
	case VarVar3:
		return ctx.Var3
	case VarTime:
		return ctx.Now.Format("15:04")
	case VarDate:
		return ctx.Now.Format("02-01-2006")
	case VarDay:
		return indonesianDays[int(ctx.Now.Weekday())]
	default:
		return ""
	}
}
