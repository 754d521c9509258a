package dialog

import "strings"

// Command describes a bot command for the help text and the Telegram menu.
type Command struct {
	Name        string
	Description string
}

const (
	CommandStart = "start"
	CommandHelp  = "help"
)

// Commands lists the supported commands in menu order.
var Commands = []Command{
	{Name: CommandHelp, Description: "display this text."},
	{Name: CommandStart, Description: "choose a training."},
}

// HelpText is the reply to /help.
func HelpText() string {
	var b strings.Builder
	b.WriteString("These commands are supported:\n")
	for _, c := range Commands {
		b.WriteString("\n/" + c.Name + " - " + c.Description)
	}
	return b.String()
}
