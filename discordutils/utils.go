package discordutils

import (
	"github.com/bwmarrin/discordgo"
)

// MemberHasAdminPermissions returns true if the given member has admin
// permissions.
func MemberHasAdminPermissions(guild *discordgo.Guild, member *discordgo.Member) bool {
	guildRoles := make(map[string]*discordgo.Role)
	for _, role := range guild.Roles {
		guildRoles[role.ID] = role
	}

	for _, roleID := range member.Roles {
		if role, ok := guildRoles[roleID]; ok {
			if RoleAllowsAdminPermissions(role) {
				return true
			}
		}
	}

	return false
}

// RoleAllowsAdminPermissions returns true if the given role allows admin
// permissions.
func RoleAllowsAdminPermissions(role *discordgo.Role) bool {
	return role.Permissions&discordgo.PermissionAdministrator > 0
}

// AckInteraction sends an ephemeral deferred response for the given
// interaction.
func AckInteraction(
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) error {
	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// SendFollowup creates a followup message with the given content.
func SendFollowup(
	content string,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.FollowupMessageCreate(
		interaction,
		true,
		&discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	)
}

// GuildsInCommonWithUser returns the ids of every guild the session is in
// that the given user is also a member of.
func GuildsInCommonWithUser(session *discordgo.Session, userID string) ([]string, error) {
	var guildIDs []string
	for _, guild := range session.State.Guilds {
		if _, err := session.State.Member(guild.ID, userID); err == nil {
			guildIDs = append(guildIDs, guild.ID)
			continue
		}
		if _, err := session.GuildMember(guild.ID, userID); err == nil {
			guildIDs = append(guildIDs, guild.ID)
		}
	}
	return guildIDs, nil
}

// ModalInputValue finds a text input by custom id in submitted modal data.
// Missing inputs read as "".
func ModalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// MemberDisplayName returns the member's nickname, falling back to their
// username.
func MemberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}
