// Package theme provides the styling for the querydesk terminal UI. Every
// visual element references a lipgloss.Style held in a Theme so the whole
// look can be swapped at runtime. Themes are built from a small palette.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every UI element in the application.
type Theme struct {
	Name string

	// Schema explorer
	SidebarBorder     lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarDatabase   lipgloss.Style
	SidebarTable      lipgloss.Style
	SidebarColumn     lipgloss.Style
	SidebarColumnType lipgloss.Style
	SidebarSelected   lipgloss.Style
	BadgePK           lipgloss.Style
	BadgeFK           lipgloss.Style

	// Editor
	EditorBorder     lipgloss.Style
	EditorLineNumber lipgloss.Style
	LintWarning      lipgloss.Style

	// SQL syntax highlighting
	SQLKeyword    lipgloss.Style
	SQLString     lipgloss.Style
	SQLNumber     lipgloss.Style
	SQLComment    lipgloss.Style
	SQLOperator   lipgloss.Style
	SQLFunction   lipgloss.Style
	SQLType       lipgloss.Style
	SQLIdentifier lipgloss.Style

	// Results
	ResultsBorder   lipgloss.Style
	ResultsHeader   lipgloss.Style
	ResultsCell     lipgloss.Style
	ResultsAltRow   lipgloss.Style
	ResultsSelected lipgloss.Style
	ResultsNull     lipgloss.Style
	ErrorPanel      lipgloss.Style

	// Result view tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabDisabled lipgloss.Style
	TabBar      lipgloss.Style

	// Status bar
	StatusBar        lipgloss.Style
	StatusBarKey     lipgloss.Style
	StatusBarValue   lipgloss.Style
	StatusBarError   lipgloss.Style
	StatusBarSuccess lipgloss.Style

	// Chat transcript
	ChatBorder  lipgloss.Style
	ChatUser    lipgloss.Style
	ChatAI      lipgloss.Style
	ChatSystem  lipgloss.Style
	ChatCode    lipgloss.Style
	ChatLoading lipgloss.Style

	// Toasts
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style

	// Autocomplete
	AutocompleteItem     lipgloss.Style
	AutocompleteSelected lipgloss.Style
	AutocompleteBorder   lipgloss.Style

	// Dialogs and forms
	DialogBorder         lipgloss.Style
	DialogTitle          lipgloss.Style
	DialogButton         lipgloss.Style
	DialogButtonActive   lipgloss.Style
	DialogButtonDisabled lipgloss.Style
	FormLabel            lipgloss.Style
	FormError            lipgloss.Style

	// General
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
	ErrorText       lipgloss.Style
	SuccessText     lipgloss.Style
	WarningText     lipgloss.Style
	MutedText       lipgloss.Style
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	bg, surface, panel string
	border, accent     string
	fg, muted          string
	selBg, selFg       string
	keyword, str, num  string
	comment, op, fn    string
	typ, ident         string
	database, table    string
	errC, ok, warn     string
	statusBg, statusFg string
	okFg, userBg, aiBg string
}

func build(name string, p palette) *Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	fg := func(col string) lipgloss.Style { return lipgloss.NewStyle().Foreground(c(col)) }
	border := func(col string) lipgloss.Style {
		return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(c(col))
	}
	badge := func(bgCol string) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c(p.bg)).Background(c(bgCol)).Padding(0, 1)
	}
	toast := func(col string) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c(col)).
			Foreground(c(p.fg)).
			Background(c(p.surface)).
			Padding(0, 1)
	}
	button := lipgloss.NewStyle().PaddingLeft(2).PaddingRight(2)
	tab := lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).PaddingLeft(1).PaddingRight(1)

	return &Theme{
		Name: name,

		SidebarBorder:     border(p.border),
		SidebarTitle:      fg(p.accent).Bold(true).PaddingLeft(1),
		SidebarDatabase:   fg(p.database).Bold(true),
		SidebarTable:      fg(p.table),
		SidebarColumn:     fg(p.fg),
		SidebarColumnType: fg(p.muted).Italic(true),
		SidebarSelected:   lipgloss.NewStyle().Bold(true).Foreground(c(p.selFg)).Background(c(p.selBg)),
		BadgePK:           badge(p.warn),
		BadgeFK:           badge(p.typ),

		EditorBorder:     border(p.border),
		EditorLineNumber: fg(p.muted),
		LintWarning:      fg(p.warn),

		SQLKeyword:    fg(p.keyword).Bold(true),
		SQLString:     fg(p.str),
		SQLNumber:     fg(p.num),
		SQLComment:    fg(p.comment).Italic(true),
		SQLOperator:   fg(p.op),
		SQLFunction:   fg(p.fn),
		SQLType:       fg(p.typ),
		SQLIdentifier: fg(p.ident),

		ResultsBorder:   border(p.border),
		ResultsHeader:   fg(p.accent).Bold(true).Background(c(p.surface)).Padding(0, 1),
		ResultsCell:     fg(p.fg).Padding(0, 1),
		ResultsAltRow:   fg(p.fg).Background(c(p.panel)).Padding(0, 1),
		ResultsSelected: lipgloss.NewStyle().Foreground(c(p.selFg)).Background(c(p.selBg)).Padding(0, 1),
		ResultsNull:     fg(p.muted).Italic(true),
		ErrorPanel:      border(p.errC).Foreground(c(p.errC)).Padding(0, 1),

		TabActive: tab.
			Bold(true).
			Foreground(c(p.fg)).
			Background(c(p.bg)).
			BorderBottom(false).
			BorderForeground(c(p.accent)),
		TabInactive: tab.
			Foreground(c(p.muted)).
			Background(c(p.panel)).
			BorderBottom(true).
			BorderForeground(c(p.border)),
		TabDisabled: tab.
			Faint(true).
			Strikethrough(true).
			Foreground(c(p.muted)).
			BorderBottom(true).
			BorderForeground(c(p.border)),
		TabBar: lipgloss.NewStyle().Background(c(p.surface)),

		StatusBar:        lipgloss.NewStyle().Foreground(c(p.statusFg)).Background(c(p.statusBg)),
		StatusBarKey:     lipgloss.NewStyle().Bold(true).Foreground(c(p.statusFg)).Background(c(p.statusBg)).Padding(0, 1),
		StatusBarValue:   lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.surface)).Padding(0, 1),
		StatusBarError:   lipgloss.NewStyle().Bold(true).Foreground(c(p.statusFg)).Background(c(p.errC)),
		StatusBarSuccess: lipgloss.NewStyle().Bold(true).Foreground(c(p.okFg)).Background(c(p.ok)),

		ChatBorder:  border(p.border),
		ChatUser:    lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.userBg)).Padding(0, 1),
		ChatAI:      lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.aiBg)).Padding(0, 1),
		ChatSystem:  fg(p.muted).Italic(true),
		ChatCode:    border(p.accent).Padding(0, 1),
		ChatLoading: fg(p.muted),

		ToastInfo:    toast(p.accent),
		ToastSuccess: toast(p.ok),
		ToastWarning: toast(p.warn),
		ToastError:   toast(p.errC),

		AutocompleteItem:     fg(p.fg).Background(c(p.surface)).Padding(0, 1),
		AutocompleteSelected: lipgloss.NewStyle().Foreground(c(p.selFg)).Background(c(p.selBg)).Padding(0, 1),
		AutocompleteBorder:   border(p.accent),

		DialogBorder:         border(p.accent).Padding(1, 2),
		DialogTitle:          fg(p.accent).Bold(true),
		DialogButton:         button.Foreground(c(p.fg)).Background(c(p.border)),
		DialogButtonActive:   button.Bold(true).Foreground(c(p.selFg)).Background(c(p.selBg)),
		DialogButtonDisabled: button.Faint(true).Foreground(c(p.muted)).Background(c(p.panel)),
		FormLabel:            fg(p.muted),
		FormError:            fg(p.errC),

		FocusedBorder:   border(p.accent),
		UnfocusedBorder: border(p.border),
		ErrorText:       fg(p.errC).Bold(true),
		SuccessText:     fg(p.ok),
		WarningText:     fg(p.warn),
		MutedText:       fg(p.muted),
	}
}

var (
	darkPalette = palette{
		bg: "#1E1E1E", surface: "#252526", panel: "#2D2D2D",
		border: "#3C3C3C", accent: "#569CD6",
		fg: "#D4D4D4", muted: "#808080",
		selBg: "#264F78", selFg: "#FFFFFF",
		keyword: "#569CD6", str: "#CE9178", num: "#B5CEA8",
		comment: "#6A9955", op: "#D4D4D4", fn: "#DCDCAA",
		typ: "#4EC9B0", ident: "#9CDCFE",
		database: "#DCDCAA", table: "#4EC9B0",
		errC: "#F44747", ok: "#6A9955", warn: "#CCA700",
		statusBg: "#007ACC", statusFg: "#FFFFFF",
		okFg: "#FFFFFF", userBg: "#264F78", aiBg: "#333333",
	}

	lightPalette = palette{
		bg: "#FFFFFF", surface: "#F3F3F3", panel: "#ECECEC",
		border: "#D4D4D4", accent: "#0451A5",
		fg: "#1E1E1E", muted: "#A0A0A0",
		selBg: "#0060C0", selFg: "#FFFFFF",
		keyword: "#0000FF", str: "#A31515", num: "#098658",
		comment: "#008000", op: "#1E1E1E", fn: "#795E26",
		typ: "#267F99", ident: "#001080",
		database: "#795E26", table: "#267F99",
		errC: "#E51400", ok: "#16825D", warn: "#BF8803",
		statusBg: "#0060C0", statusFg: "#FFFFFF",
		okFg: "#FFFFFF", userBg: "#DDEBFA", aiBg: "#F3F3F3",
	}

	monokaiPalette = palette{
		bg: "#272822", surface: "#3E3D32", panel: "#1E1F1C",
		border: "#49483E", accent: "#F92672",
		fg: "#F8F8F2", muted: "#75715E",
		selBg: "#49483E", selFg: "#F8F8F2",
		keyword: "#F92672", str: "#E6DB74", num: "#AE81FF",
		comment: "#75715E", op: "#F92672", fn: "#A6E22E",
		typ: "#66D9EF", ident: "#F8F8F2",
		database: "#E6DB74", table: "#A6E22E",
		errC: "#F92672", ok: "#A6E22E", warn: "#E6DB74",
		statusBg: "#75715E", statusFg: "#F8F8F2",
		okFg: "#272822", userBg: "#49483E", aiBg: "#3E3D32",
	}
)

// Themes maps theme names to their Theme definitions.
var Themes = map[string]*Theme{
	"default": build("default", darkPalette),
	"light":   build("light", lightPalette),
	"monokai": build("monokai", monokaiPalette),
}

// Current is the currently active theme. It is initialized to Default.
var Current = Themes["default"]

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme identified by name, or Default when no theme with
// that name exists.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// Names returns the registered theme names in a stable order.
func Names() []string {
	return []string{"default", "light", "monokai"}
}
