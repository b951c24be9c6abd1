// Copyright 2026 The Greenroom Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"fmt"

	"github.com/greenroom-project/greenroom/chat"
)

// CustomIDPrefix namespaces Greenroom's button custom IDs so the
// gateway can discard interactions from other components. The action
// name follows the prefix.
const CustomIDPrefix = "room_"

// panelMessage builds the control panel posted into a room's text
// channel: an embed listing the eight actions and four rows of two
// buttons whose custom IDs carry the action names.
func panelMessage(target Room) chat.MessageContent {
	button := func(action Action, label string, style int, emoji string) chat.Button {
		return chat.Button{
			Type:     chat.ComponentButton,
			Style:    style,
			Label:    label,
			CustomID: CustomIDPrefix + string(action),
			Emoji:    &chat.Emoji{Name: emoji},
		}
	}

	embed := chat.Embed{
		Title: "👑 Room control panel",
		Description: fmt.Sprintf(
			"Room owned by %s\n\n"+
				"🔇 **Mute All** — mute every occupant\n"+
				"🔊 **Unmute All** — lift all mutes\n"+
				"🔒 **Lock Room** — block new connections\n"+
				"🔓 **Unlock Room** — allow connections again\n"+
				"👁️ **Hide Room** — hide from the channel list\n"+
				"💬 **Show Room** — make visible again\n"+
				"🚫 **Kick All** — disconnect every occupant\n"+
				"❌ **Close Room** — delete the room",
			target.OwnerID.Mention()),
		Color: 0xf1c40f,
	}

	return chat.MessageContent{
		Content: fmt.Sprintf("👑 %s this panel controls your voice room: <#%s>",
			target.OwnerID.Mention(), target.PrimaryID),
		Embeds: []chat.Embed{embed},
		Components: []chat.ActionRow{
			chat.NewActionRow(
				button(ActionMuteAll, "Mute All", chat.ButtonDanger, "🔇"),
				button(ActionUnmuteAll, "Unmute All", chat.ButtonSuccess, "🔊"),
			),
			chat.NewActionRow(
				button(ActionLock, "Lock Room", chat.ButtonSecondary, "🔒"),
				button(ActionUnlock, "Unlock Room", chat.ButtonSecondary, "🔓"),
			),
			chat.NewActionRow(
				button(ActionHide, "Hide Room", chat.ButtonSecondary, "👁️"),
				button(ActionShow, "Show Room", chat.ButtonSecondary, "💬"),
			),
			chat.NewActionRow(
				button(ActionKickAll, "Kick All", chat.ButtonDanger, "🚫"),
				button(ActionClose, "Close Room", chat.ButtonDanger, "❌"),
			),
		},
	}
}
