// v0
// internal/score/participants.go
package score

import "github.com/Salmankotakuth/ai-tanmiya/internal/domain"

// Attendance weights per role category. They sum to 1.0 and are a deployment
// constant, not user-configurable.
const (
	weightAdministrator = 0.3
	weightSubAdmin      = 0.2
	weightCoordinator   = 0.2
	weightMember        = 0.2
	weightGuest         = 0.1
)

// ParticipantsScore computes the weighted attendance score in [0,1]. A role
// with zero total contributes 0 rather than dividing by zero, so a record
// with no participants at all scores exactly 0.0.
func ParticipantsScore(p domain.Participants) float64 {
	return ratio(p.PresentAdministrators, p.TotalAdministrators)*weightAdministrator +
		ratio(p.PresentSubAdmins, p.TotalSubAdmins)*weightSubAdmin +
		ratio(p.PresentCoordinators, p.TotalCoordinators)*weightCoordinator +
		ratio(p.PresentMembers, p.TotalMembers)*weightMember +
		ratio(p.PresentGuests, p.TotalGuests)*weightGuest
}

func ratio(present, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(present) / float64(total)
}
