package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const taskOutputFixture = `{
	"organizations": [
		{
			"id": "o1",
			"name": "Eagles",
			"sport": "Football",
			"teams": [
				{
					"id": "t1",
					"name": "Eagles Varsity",
					"players": [
						{"name": "A B", "jerseyNumber": "#9", "position": "QB"}
					],
					"staff": [
						{"name": "C D", "title": "Head Coach"}
					]
				}
			]
		}
	]
}`

func TestParseTaskOutputBareJson(t *testing.T) {
	cache, err := ParseTaskOutput([]byte(taskOutputFixture))
	require.NoError(t, err)
	require.True(t, cache.Resolved)

	require.Len(t, cache.Organizations, 1)
	require.Equal(t, "Eagles", cache.Organizations[0].Name)

	teams := cache.TeamsByOrg["o1"]
	require.Len(t, teams, 1)
	require.Equal(t, "o1", teams[0].OrganizationId)
	require.Equal(t, 1, teams[0].PlayerCount)
	require.Equal(t, 1, teams[0].StaffCount)

	roster := cache.RostersByTeam["t1"]
	require.Equal(t, "#9", roster.Players[0].JerseyNumber)
	require.Equal(t, "Head Coach", roster.Staff[0].Title)
}

func TestParseTaskOutputFencedWithProse(t *testing.T) {
	raw := "I extracted the account's data, here it is:\n\n```json\n" +
		taskOutputFixture + "\n```\n\nLet me know if anything is missing."

	cache, err := ParseTaskOutput([]byte(raw))
	require.NoError(t, err)
	require.Len(t, cache.Organizations, 1)
	require.Len(t, cache.RostersByTeam["t1"].Players, 1)
}

func TestParseTaskOutputBraceSpan(t *testing.T) {
	raw := "Result: " + taskOutputFixture + " (end of output)"

	cache, err := ParseTaskOutput([]byte(raw))
	require.NoError(t, err)
	require.Len(t, cache.Organizations, 1)
}

func TestParseTaskOutputGarbage(t *testing.T) {
	_, err := ParseTaskOutput([]byte("I could not log in, the password was rejected."))
	require.Error(t, err)
}

func TestParsedOutputPreviewSummary(t *testing.T) {
	cache, err := ParseTaskOutput([]byte(taskOutputFixture))
	require.NoError(t, err)

	preview := previewFromCache(cache)
	require.Equal(t, PreviewSummary{
		OrganizationCount: 1,
		TeamCount:         1,
		PlayerCount:       1,
		StaffCount:        1,
	}, preview.Summary)
}
