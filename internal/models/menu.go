package models

const DefaultRangeHours = 24

// MenuRecord is the persisted display preference of one chat message.
type MenuRecord struct {
	MessageID    string `json:"message_id" validate:"required"`
	ChannelID    string `json:"channel_id"`
	GuildID      string `json:"guild_id"`
	IncludeGraph bool   `json:"include_graph"`
	RangeHours   int    `json:"range_hours" validate:"required|int|min:1"`
}

type RangeChoice struct {
	Label string `json:"label"`
	Hours int    `json:"hours"`
}

var GraphRangeChoices = []RangeChoice{
	{Label: "6 hours", Hours: 6},
	{Label: "12 hours", Hours: 12},
	{Label: "24 hours", Hours: 24},
	{Label: "48 hours", Hours: 48},
	{Label: "7 days", Hours: 168},
}

func IsAllowedRange(hours int) bool {
	for _, c := range GraphRangeChoices {
		if c.Hours == hours {
			return true
		}
	}
	return false
}
