package lead

import "travelcrm/internal/domain"

// transitions enumerates every permitted status change. Anything absent is
// rejected; Converted is terminal and cannot be left through the normal
// update path.
var transitions = map[domain.LeadStatus]map[domain.LeadStatus]bool{
	domain.LeadNew: {
		domain.LeadWarm:      true,
		domain.LeadHot:       true,
		domain.LeadCold:      true,
		domain.LeadOfferSent: true,
		domain.LeadConverted: true,
	},
	domain.LeadWarm: {
		domain.LeadHot:       true,
		domain.LeadCold:      true,
		domain.LeadOfferSent: true,
		domain.LeadConverted: true,
	},
	domain.LeadHot: {
		domain.LeadOfferSent: true,
		domain.LeadConverted: true,
		domain.LeadCold:      true,
	},
	domain.LeadOfferSent: {
		domain.LeadConverted: true,
		domain.LeadCold:      true,
		domain.LeadHot:       true,
	},
	// Reactivation only; a cold lead has to warm up before converting.
	domain.LeadCold: {
		domain.LeadNew:  true,
		domain.LeadWarm: true,
	},
	domain.LeadConverted: {},
}

// CanTransition reports whether the status pair is in the adjacency table.
func CanTransition(from, to domain.LeadStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// ValidateTransition returns a TransitionError naming the offending pair when
// the change is not permitted.
func ValidateTransition(from, to domain.LeadStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
