package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/telegram/keyboard"
)

// commandAliases maps slash commands to workflow commands
var commandAliases = map[string]conversation.Command{
	"start":                       conversation.CommandStart,
	"help":                        conversation.CommandStart,
	"newproduct":                  conversation.CommandBeginWorkflow,
	"registerandcreatenewproduct": conversation.CommandBeginWorkflow,
	"cancel":                      conversation.CommandCancel,
	"changetoken":                 conversation.CommandResetCredentials,
	"resetcredentials":            conversation.CommandResetCredentials,
}

var callbackActions = map[string]conversation.Command{
	keyboard.ActionBegin:  conversation.CommandBeginWorkflow,
	keyboard.ActionReset:  conversation.CommandResetCredentials,
	keyboard.ActionCancel: conversation.CommandCancel,
}

// menuCommands is the command list published to Telegram clients
var menuCommands = []tgbotapi.BotCommand{
	{Command: "newproduct", Description: "Create a product in the admin panel"},
	{Command: "cancel", Description: "Cancel the current step"},
	{Command: "changetoken", Description: "Forget the panel address and credentials"},
	{Command: "start", Description: "Show help"},
}

// CommandFromName resolves a slash command. Unknown names pass through and
// are rejected by the workflow.
func CommandFromName(name string) conversation.Command {
	if cmd, ok := commandAliases[strings.ToLower(name)]; ok {
		return cmd
	}
	return conversation.Command(name)
}

// EventFromMessage converts a message into a workflow event. Messages
// without text, photo or document are ignored.
func EventFromMessage(msg *tgbotapi.Message) (conversation.Event, bool) {
	if msg == nil || msg.Chat == nil {
		return conversation.Event{}, false
	}

	ev := conversation.Event{ChatID: entity.ChatIDFromInt(msg.Chat.ID)}

	switch {
	case msg.IsCommand():
		ev.Kind = conversation.InputCommand
		ev.Command = CommandFromName(msg.Command())
	case len(msg.Photo) > 0:
		largest := largestPhoto(msg.Photo)
		ev.Kind = conversation.InputPhoto
		ev.Photo = &conversation.PhotoRef{
			FileID: largest.FileID,
			Size:   int64(largest.FileSize),
		}
	case msg.Document != nil:
		ev.Kind = conversation.InputPhoto
		ev.Photo = &conversation.PhotoRef{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			Size:     int64(msg.Document.FileSize),
		}
	case msg.Text != "":
		ev.Kind = conversation.InputText
		ev.Text = msg.Text
	default:
		return conversation.Event{}, false
	}

	return ev, true
}

// EventFromCallback converts an inline button press into a command event
func EventFromCallback(query *tgbotapi.CallbackQuery) (conversation.Event, bool) {
	if query == nil || query.Message == nil || query.Message.Chat == nil {
		return conversation.Event{}, false
	}

	data, err := keyboard.ParseCallback(query.Data)
	if err != nil || data.Action != keyboard.ActionPrefix {
		return conversation.Event{}, false
	}

	cmd, ok := callbackActions[data.Value]
	if !ok {
		return conversation.Event{}, false
	}

	return conversation.Event{
		ChatID:  entity.ChatIDFromInt(query.Message.Chat.ID),
		Kind:    conversation.InputCommand,
		Command: cmd,
	}, true
}

// largestPhoto picks the highest resolution variant
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[len(sizes)-1]
	for _, p := range sizes {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}
