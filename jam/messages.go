package jam

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/foopis23/art-of-the-week/models"
)

// Component custom ids for the submission flow. The modal id embeds the
// announcement message id so the submission can be correlated back to the
// right guild jam.
const (
	SubmitButtonID        = "jam_submit"
	SubmissionModalPrefix = "jam_submission:"
)

const announcementDateFormat = "1/2/2006"
const deadlineFormat = "1/2/2006 3:04pm"
const submissionTimeFormat = "1/2/2006 3:04 PM"

// AnnouncementMessage renders the weekly theme announcement with its
// submission button.
func AnnouncementMessage(jam *models.Jam) *discordgo.MessageSend {
	var b strings.Builder
	fmt.Fprintf(&b, "# Theme of the Week (%v)\n", jam.CreatedAt.Format(announcementDateFormat))
	b.WriteString("-# The dawn of the new week has begun.\n")
	fmt.Fprintf(&b, "## New Theme: [%v]\n", jam.Theme)
	fmt.Fprintf(&b, "Deadline: %v (%v)\n", jam.Deadline.Format(deadlineFormat), humanize.Time(jam.Deadline))
	b.WriteString("All art is accepted. Submit below:")

	return &discordgo.MessageSend{
		Content: b.String(),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Upload Submission",
						Style:    discordgo.PrimaryButton,
						CustomID: SubmitButtonID,
					},
				},
			},
		},
	}
}

// SubmissionMessage renders a submission re-share for one guild, linking
// back to that guild's own announcement message.
func SubmissionMessage(guildJam *models.GuildJam, submission *models.Submission) *discordgo.MessageSend {
	var b strings.Builder
	fmt.Fprintf(&b, "<@%v>\n", submission.UserID)
	if submission.Title != "" {
		fmt.Fprintf(&b, "#  — %v — \n", submission.Title)
	}
	if submission.Description != "" {
		fmt.Fprintf(&b, "%v\n\n", submission.Description)
	}
	fmt.Fprintf(
		&b,
		"-# Submission for [[%v - %v](%v)]\n",
		guildJam.CreatedAt.Format(announcementDateFormat),
		guildJam.Jam.Theme,
		guildJam.MessageLink,
	)
	for _, attachment := range submission.Attachments {
		fmt.Fprintf(&b, "%v\n", attachment.URL)
	}

	return &discordgo.MessageSend{Content: b.String()}
}

// ReminderMessage renders the midweek deadline reminder.
func ReminderMessage(guildJam *models.GuildJam) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf(
			"# —Reminder—\nFor Art Jam [[%v](%v)]\n\nSubmission deadline is %v (%v).",
			guildJam.Jam.Theme,
			guildJam.MessageLink,
			guildJam.Jam.Deadline.Format(deadlineFormat),
			humanize.Time(guildJam.Jam.Deadline),
		),
	}
}

// RecapMessage renders the end-of-week recap. Zero submissions is a valid
// state and renders an explicit no-submissions recap.
func RecapMessage(guildJam *models.GuildJam, submissions []models.Submission) *discordgo.MessageSend {
	header := fmt.Sprintf(
		"# —End of the Week—\n-# Art Jam [[%v - %v](%v)] is over\n\n",
		guildJam.CreatedAt.Format(announcementDateFormat),
		guildJam.Jam.Theme,
		guildJam.MessageLink,
	)

	if len(submissions) == 0 {
		return &discordgo.MessageSend{
			Content: header + "No submissions this week.",
		}
	}

	earliest := submissions[0]
	latest := submissions[0]
	for _, submission := range submissions {
		if submission.CreatedAt.Before(earliest.CreatedAt) {
			earliest = submission
		}
		if submission.CreatedAt.After(latest.CreatedAt) {
			latest = submission
		}
	}

	return &discordgo.MessageSend{
		Content: header + fmt.Sprintf(
			"Contributions: [%v]\nFirst Submission: %v\nLast Submission: %v",
			len(submissions),
			earliest.CreatedAt.Format(submissionTimeFormat),
			latest.CreatedAt.Format(submissionTimeFormat),
		),
	}
}

// ArchiveWarningMessage renders the inline channel warning sent when a
// guild's archive is enabled but unusable.
func ArchiveWarningMessage(cause error) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf(
			"⚠️ Archiving is enabled for this server but isn't working: %v\n"+
				"The jam continues without archival. Check `/settings google-drive`.",
			cause,
		),
	}
}
