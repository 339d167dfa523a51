package lifecycle

import "github.com/umt-lostfound/lostfound-api/models"

var itemTransitions = map[models.ItemStatus][]models.ItemStatus{
	models.ItemStatusActive:   {models.ItemStatusClaimed, models.ItemStatusArchived, models.ItemStatusRejected, models.ItemStatusRemoved},
	models.ItemStatusClaimed:  {models.ItemStatusResolved, models.ItemStatusActive},
	models.ItemStatusArchived: {models.ItemStatusActive, models.ItemStatusRemoved},
	models.ItemStatusRejected: {models.ItemStatusActive, models.ItemStatusRemoved},
}

var claimTransitions = map[models.ClaimStatus][]models.ClaimStatus{
	models.ClaimStatusPending:  {models.ClaimStatusApproved, models.ClaimStatusRejected},
	models.ClaimStatusApproved: {models.ClaimStatusCompleted, models.ClaimStatusRejected},
}

var disputeTransitions = map[models.DisputeStatus][]models.DisputeStatus{
	models.DisputeStatusOpen:          {models.DisputeStatusInvestigating, models.DisputeStatusResolved, models.DisputeStatusDismissed},
	models.DisputeStatusInvestigating: {models.DisputeStatusOpen, models.DisputeStatusResolved, models.DisputeStatusDismissed},
	models.DisputeStatusResolved:      {models.DisputeStatusOpen},
	models.DisputeStatusDismissed:     {models.DisputeStatusOpen},
}

// CanTransitionItem reports whether an item may move from one status to another.
// Staying in the same status is always allowed.
func CanTransitionItem(from, to models.ItemStatus) bool {
	return from == to || contains(itemTransitions[from], to)
}

// CanTransitionClaim reports whether a claim may move from one status to another
func CanTransitionClaim(from, to models.ClaimStatus) bool {
	return from == to || contains(claimTransitions[from], to)
}

// CanTransitionDispute reports whether a dispute may move from one status to another
func CanTransitionDispute(from, to models.DisputeStatus) bool {
	return from == to || contains(disputeTransitions[from], to)
}

// IsTerminalItem reports whether no transition leaves the status
func IsTerminalItem(s models.ItemStatus) bool {
	return len(itemTransitions[s]) == 0
}

// itemStatusForClaim is the item status that accompanies a claim moving to the given status
func itemStatusForClaim(from, to models.ClaimStatus) (itemFrom, itemTo models.ItemStatus, ok bool) {
	switch {
	case from == models.ClaimStatusPending && to == models.ClaimStatusApproved:
		return models.ItemStatusActive, models.ItemStatusClaimed, true
	case from == models.ClaimStatusApproved && to == models.ClaimStatusCompleted:
		return models.ItemStatusClaimed, models.ItemStatusResolved, true
	case from == models.ClaimStatusApproved && to == models.ClaimStatusRejected:
		return models.ItemStatusClaimed, models.ItemStatusActive, true
	}
	return "", "", false
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
