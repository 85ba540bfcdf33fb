// Package catalog holds the built-in CURARE challenge over the Stack Overflow releases.
package catalog

import (
	"time"

	"curare-challenge/internal/domain"
)

// ChallengeID identifies the built-in challenge.
const ChallengeID = "curare"

// Release files in the order used by subset answers.
var Files = []string{"Badges", "Comments", "Posts", "Users", "Votes"}

var Releases = []domain.Option{
	{Label: "January 1rst 2018", Value: "R1"},
	{Label: "January 2nd 2018", Value: "R2"},
	{Label: "January 3rd 2018", Value: "R3"},
}

var Attributes = map[string][]string{
	"Badges": {"Id", "UserId", "Name", "Date", "Class", "TagBased"},
	"Comments": {
		"Id", "PostId", "Score", "Text", "CreationDate", "UserDisplayName", "UserId",
	},
	"Posts": {
		"Id", "PostTypeId", "AcceptedAnswerId", "ParentId", "CreationDate", "DeletionDate",
		"Score", "ViewCount", "Body", "OwnerUserId", "OwnerDisplayName", "LastEditorUserId",
		"LastEditorDisplayName", "LastEditDate", "LastActivityDate", "Title", "Tags",
		"AnswerCount", "CommentCount", "FavoriteCount", "ClosedDate", "CommunityOwnedDate",
	},
	"Users": {
		"Id", "Reputation", "CreationDate", "DisplayName", "LastAccessDate", "WebsiteUrl",
		"Location", "AboutMe", "Views", "UpVotes", "DownVotes", "ProfileImageUrl",
		"EmailHash", "AccountId",
	},
	"Votes": {"Id", "PostId", "VoteTypeId", "UserId", "CreationDate", "BountyAmount"},
}

// Definition returns a fresh copy of the CURARE challenge definition.
func Definition() domain.Definition {
	attrs := make(map[string][]string, len(Attributes))
	for file, list := range Attributes {
		attrs[file] = append([]string(nil), list...)
	}
	return domain.Definition{
		ID: ChallengeID,
		Questions: []domain.QuestionSpec{
			{
				ID:       "Q1",
				Prompt:   "Which release has the **most number of records**?",
				Expected: domain.SingleAnswer("R3"),
			},
			{
				ID:       "Q2",
				Prompt:   "Which is the release with best quality? (**fewest null values**)",
				Expected: domain.SingleAnswer("R1"),
			},
			{
				ID:       "Q3",
				Prompt:   "Which **Posts** attribute(s) help to identify the **most trendy topic** in a release?",
				Expected: domain.SetAnswer("Score", "FavoriteCount", "ViewCount"),
				Source:   "Posts",
				Visible:  []string{"Posts"},
			},
			{
				ID:       "Q4",
				Prompt:   "In which release **USERS.location** is most **evenly distributed**?",
				Expected: domain.SingleAnswer("R2"),
			},
			{
				ID:     "Q5",
				Prompt: "Which attribute(s) help identify the **USERS** with the **highest reputation**?",
				Expected: domain.SubsetAnswer(
					[]string{"Id", "Name"},
					[]string{"PostId", "Score"},
					[]string{"Id", "Score", "Tags"},
					[]string{},
					[]string{},
				),
			},
			{
				ID:     "Q6",
				Prompt: "Which attributes can be used as **sharding keys** to fragment releases using an **interval based strategy**?",
				Expected: domain.SubsetAnswer(
					[]string{"Name"},
					[]string{"Id"},
					[]string{"Id"},
					[]string{"Id", "DisplayName"},
					[]string{"Id", "PostId"},
				),
			},
		},
		Files:          append([]string(nil), Files...),
		Releases:       append([]domain.Option(nil), Releases...),
		Attributes:     attrs,
		Matches:        2,
		Penalty:        domain.PenaltyWindow{Lower: 60 * time.Second, Upper: 180 * time.Second},
		DefaultRelease: "R3",
		DefaultEffort:  1,
	}
}

// Challenge builds the CURARE challenge. The definition is static, so a
// validation failure is a programming error.
func Challenge() *domain.Challenge {
	ch, err := domain.NewChallenge(Definition())
	if err != nil {
		panic(err)
	}
	return ch
}
