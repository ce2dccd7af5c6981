package capitalship

import (
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// BuildProgress tracks phased resource donation toward construction or
// full-reconstruction repair. Each phase has its own required amounts;
// partial donations accumulate in Donated until every resource meets its
// requirement, then the phase advances and Donated resets.
type BuildProgress struct {
	Required       shared.Amounts `json:"required"`
	Donated        shared.Amounts `json:"donated"`
	Phase          int            `json:"phase"` // 1-based
	TotalPhases    int            `json:"totalPhases"`
	IsRepair       bool           `json:"isRepair"`
	LastDonationAt *time.Time     `json:"lastDonationTime,omitempty"`
}

// NewBuildProgress starts progress at phase 1 with the given requirement
func NewBuildProgress(required shared.Amounts, totalPhases int, isRepair bool) *BuildProgress {
	return &BuildProgress{
		Required:    required.Clone(),
		Donated:     shared.Amounts{},
		Phase:       1,
		TotalPhases: totalPhases,
		IsRepair:    isRepair,
	}
}

// StillNeeded returns how much of one resource the current phase still wants
func (p *BuildProgress) StillNeeded(r shared.Resource) int {
	remaining := p.Required.Get(r) - p.Donated.Get(r)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Accept applies a donation, capped at what the phase still needs, and
// returns the amount actually accepted per resource. Donated never exceeds
// Required for any resource.
func (p *BuildProgress) Accept(offer shared.Amounts, now time.Time) shared.Amounts {
	accepted := shared.Amounts{}
	for r, amount := range offer {
		take := shared.MinInt(amount, p.StillNeeded(r))
		if take <= 0 {
			continue
		}
		if p.Donated == nil {
			p.Donated = shared.Amounts{}
		}
		p.Donated[r] += take
		accepted[r] = take
	}
	if !accepted.IsZero() {
		t := now
		p.LastDonationAt = &t
	}
	return accepted
}

// PhaseComplete reports whether every resource in the current phase's
// requirement is met or exceeded.
func (p *BuildProgress) PhaseComplete() bool {
	return p.Donated.Covers(p.Required)
}

// AdvancePhase moves to the next phase with its requirement, resetting
// Donated. Returns true when the whole build is complete (phase would pass
// TotalPhases), in which case the caller clears the progress record.
func (p *BuildProgress) AdvancePhase(nextRequired shared.Amounts) (done bool) {
	p.Phase++
	p.Donated = shared.Amounts{}
	if p.Phase > p.TotalPhases {
		return true
	}
	p.Required = nextRequired.Clone()
	return false
}

// DelayRemaining returns how long until the next donation is allowed under
// an inter-donation delay, zero when no delay applies.
func (p *BuildProgress) DelayRemaining(delay time.Duration, now time.Time) time.Duration {
	if delay <= 0 || p.LastDonationAt == nil {
		return 0
	}
	allowedAt := p.LastDonationAt.Add(delay)
	if !now.Before(allowedAt) {
		return 0
	}
	return allowedAt.Sub(now)
}
