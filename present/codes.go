package present

import "fmt"

// ANSI control sequences, grounded on the standard ECMA-48 CSI set used by
// every modern terminal emulator.
const (
	csi   = "\x1b["
	esc   = "\x1b"
	reset = csi + "0m"

	clearScreen = csi + "2J"
	clearLine   = csi + "2K"
	cursorHome  = csi + "H"
	hideCursor  = csi + "?25l"
	showCursor  = csi + "?25h"

	altScreenEnable  = csi + "?1049h"
	altScreenDisable = csi + "?1049l"

	mouseSGREnable  = csi + "?1006h"
	mouseSGRDisable = csi + "?1006l"

	bracketedPasteEnable  = csi + "?2004h"
	bracketedPasteDisable = csi + "?2004l"

	focusEventsEnable  = csi + "?1004h"
	focusEventsDisable = csi + "?1004l"
)

// moveCursor returns the 1-based CSI cursor-position sequence for 0-based
// (x, y).
func moveCursor(x, y int) string {
	return fmt.Sprintf("%s%d;%dH", csi, y+1, x+1)
}

const (
	attrBoldOn      = "1"
	attrDimOn       = "2"
	attrItalicOn    = "3"
	attrUnderlineOn = "4"
	attrBlinkOn     = "5"
	attrReverseOn   = "7"
	attrHiddenOn    = "8"
	attrStrikeOn    = "9"
)
