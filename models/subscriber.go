package models

import (
	"time"
)

// SourceMarketingSite tags subscribers that signed up through the landing page form.
const SourceMarketingSite = "marketing-site"

type Subscriber struct {
	Email           string     `json:"email"`
	SignupDate      time.Time  `json:"signup_date"`
	Source          string     `json:"source"`
	SurveySent      bool       `json:"survey_sent"`
	SurveyCompleted bool       `json:"survey_completed"` // Only flipped by external survey tooling
	RewardEligible  bool       `json:"reward_eligible"`
	LastEmailedAt   *time.Time `json:"last_emailed_at"`
}

// NewSubscriber builds the record stored for a fresh landing page signup.
// Timestamps are kept at millisecond precision in UTC so they survive a
// round trip through every backend unchanged.
func NewSubscriber(email string, now time.Time) Subscriber {
	now = now.UTC().Truncate(time.Millisecond)
	emailedAt := now
	return Subscriber{
		Email:           email,
		SignupDate:      now,
		Source:          SourceMarketingSite,
		SurveySent:      true,
		SurveyCompleted: false,
		RewardEligible:  true,
		LastEmailedAt:   &emailedAt,
	}
}
