package keycode

// Glyph-prefixed labels shown by the editor. The glyphs are Nerd Font
// private-use code points.
const (
	LabelLinuxSuper   = "\uf31a "
	LabelWindowsKey   = "\ue62a "
	LabelMacCommand   = "\U000f0633 Command"
	LabelMacCtrl      = "\U000f0634 Ctrl"
	LabelMacLeftOpt   = "\U000f0635 Left Option"
	LabelMacRightOpt  = "\U000f0635 Right Option"
	LabelMacFn        = "\ueb01 Fn"
	LabelBackspace    = "\U000f006e  BackSp"
	LabelGenericMeta  = "Meta"
	LabelGenericShift = "Shift"
)

type entry struct {
	label string
	token Token
}

// commonKeys are offered on every platform after the modifier block.
var commonKeys = []entry{
	{"Tab", "KC_TAB"},
	{LabelBackspace, "KC_BSPC"},
	{"Delete", "KC_DEL"},
	{"Space", "KC_SPC"},
	{"Up", "KC_UP"},
	{"Down", "KC_DOWN"},
	{"Left", "KC_LEFT"},
	{"Right", "KC_RGHT"},
	{"Home", "KC_HOME"},
	{"End", "KC_END"},
	{"PgUp", "KC_PGUP"},
	{"PgDn", "KC_PGDN"},
	{"F1", "KC_F1"},
	{"F2", "KC_F2"},
	{"F3", "KC_F3"},
	{"F4", "KC_F4"},
	{"F5", "KC_F5"},
	{"F6", "KC_F6"},
	{"F7", "KC_F7"},
	{"F8", "KC_F8"},
	{"F9", "KC_F9"},
	{"F10", "KC_F10"},
	{"F11", "KC_F11"},
	{"F12", "KC_F12"},
}

// pcModifiers is the modifier block shared by the generic, Windows and
// Linux vocabularies; only the GUI key label differs between them.
func pcModifiers(gui string) []entry {
	return []entry{
		{"Esc", "KC_ESC"},
		{"Enter", "KC_ENT"},
		{gui, "KC_LGUI"},
		{LabelGenericShift, "KC_LSFT"},
		{"Caps Lock", "KC_CAPS"},
		{"Left Ctrl", "KC_LCTL"},
		{"Right Ctrl", "KC_RCTL"},
		{"Left Alt", "KC_LALT"},
		{"Right Alt", "KC_RALT"},
	}
}

var macModifiers = []entry{
	{"Esc", "KC_ESC"},
	{"Enter", "KC_ENT"},
	{LabelMacCommand, "KC_LGUI"},
	{LabelGenericShift, "KC_LSFT"},
	{"Caps Lock", "KC_CAPS"},
	{LabelMacCtrl, "KC_LCTL"},
	{LabelMacLeftOpt, "KC_LALT"},
	{LabelMacRightOpt, "KC_RALT"},
}

// hiddenKeys compile on every platform but are not offered in any
// vocabulary: the layer-switch keys written by the firmware service.
var hiddenKeys = []entry{
	{"Fn", "MO(1)"},
	{LabelMacFn, "MO(1)"},
}

// symbolKeys maps single punctuation characters. Shifted variants share
// the unshifted key's token; the firmware derives shift state from
// modifiers, not from the keycode.
var symbolKeys = map[rune]Token{
	' ':  "KC_SPC",
	';':  "KC_SCLN",
	':':  "KC_SCLN",
	'\'': "KC_QUOTE",
	'"':  "KC_QUOTE",
	'`':  "KC_GRAVE",
	'~':  "KC_GRAVE",
	',':  "KC_COMMA",
	'<':  "KC_COMMA",
	'.':  "KC_DOT",
	'>':  "KC_DOT",
	'/':  "KC_SLASH",
	'?':  "KC_SLASH",
	'\\': "KC_BACKSLASH",
	'|':  "KC_BACKSLASH",
	'-':  "KC_MINUS",
	'_':  "KC_MINUS",
	'=':  "KC_EQUAL",
	'+':  "KC_EQUAL",
	'[':  "KC_LEFT_BRACKET",
	'{':  "KC_LEFT_BRACKET",
	']':  "KC_RIGHT_BRACKET",
	'}':  "KC_RIGHT_BRACKET",
}

type table struct {
	order  []string
	tokens map[string]Token
}

func newTable(blocks ...[]entry) table {
	t := table{tokens: make(map[string]Token)}
	for _, block := range blocks {
		for _, e := range block {
			t.order = append(t.order, e.label)
			t.tokens[e.label] = e.token
		}
	}
	return t
}

// Built once at init and never written afterwards.
var (
	tables = map[Platform]table{
		Generic: newTable(pcModifiers(LabelGenericMeta), commonKeys),
		Windows: newTable(pcModifiers(LabelWindowsKey), commonKeys),
		Linux:   newTable(pcModifiers(LabelLinuxSuper), commonKeys),
		Mac:     newTable(macModifiers, commonKeys),
	}
	hidden = newTable(hiddenKeys)
)
