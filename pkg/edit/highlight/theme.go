package highlight

import "src.kesh.sh/pkg/ui"

var stylingFor = map[string]ui.Styling{
	barewordRegion:     nil,
	singleQuotedRegion: ui.FgYellow,
	doubleQuotedRegion: ui.FgYellow,
	variableRegion:     ui.FgMagenta,
	substRegion:        ui.FgMagenta,
	wildcardRegion:     nil,
	tildeRegion:        nil,
	escapeRegion:       nil,

	commentRegion: ui.FgCyan,

	">":   ui.FgGreen,
	">>":  ui.FgGreen,
	">|":  ui.FgGreen,
	"<":   ui.FgGreen,
	"<<":  ui.FgGreen,
	"<<-": ui.FgGreen,
	"<<<": ui.FgGreen,
	"<>":  ui.FgGreen,
	"<&":  ui.FgGreen,
	">&":  ui.FgGreen,
	"|":   ui.FgGreen,
	"(":   ui.Bold,
	")":   ui.Bold,
	"&":   ui.Bold,
	"&&":  ui.Bold,
	"||":  ui.Bold,
	";;":  ui.Bold,

	ioNumberRegion: ui.FgGreen,
	heredocRegion:  ui.FgYellow,
	commandRegion:  ui.FgGreen,
	keywordRegion:  ui.FgYellow,
	errorRegion:    ui.BgRed,
}

var (
	stylingForGoodCommand = ui.FgGreen
	stylingForBadCommand  = ui.FgRed
)
