package bot

// Command constants for Telegram bot commands.
const (
	CommandStart    = "/start"
	CommandHelp     = "/help"
	CommandPath     = "/path"
	CommandCancel   = "/cancel"
	CommandHistory  = "/history"
	CommandAddRoute = "/addroute"
	CommandRoute    = "/route"
	CommandDelRoute = "/delroute"
	CommandSearch   = "/search"
	CommandStation  = "/station"
	CommandSetMap   = "/setmap"
	CommandSeeMap   = "/seemap"
	CommandSettings = "/settings"
)
