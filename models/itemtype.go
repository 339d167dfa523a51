package models

// ItemType tells whether an item was lost or found
type ItemType string

// Predefined ItemType values
const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

// ValidItemTypes returns all valid ItemType values
func ValidItemTypes() []ItemType {
	return []ItemType{ItemTypeLost, ItemTypeFound}
}

// IsValid checks if the ItemType value is one of the predefined constants
func (t ItemType) IsValid() bool {
	for _, validType := range ValidItemTypes() {
		if t == validType {
			return true
		}
	}
	return false
}

// ItemCategory represents the standardized categories of items in the system
type ItemCategory string

// Predefined ItemCategory values
const (
	CategoryElectronics ItemCategory = "electronics"
	CategoryBags        ItemCategory = "bags"
	CategoryJewelry     ItemCategory = "jewelry"
	CategoryClothing    ItemCategory = "clothing"
	CategoryPersonal    ItemCategory = "personal"
	CategoryBooks       ItemCategory = "books"
	CategorySports      ItemCategory = "sports"
	CategoryOther       ItemCategory = "other"
)

// ValidItemCategories returns all valid ItemCategory values
func ValidItemCategories() []ItemCategory {
	return []ItemCategory{
		CategoryElectronics,
		CategoryBags,
		CategoryJewelry,
		CategoryClothing,
		CategoryPersonal,
		CategoryBooks,
		CategorySports,
		CategoryOther,
	}
}

// IsValid checks if the ItemCategory value is one of the predefined constants
func (c ItemCategory) IsValid() bool {
	for _, valid := range ValidItemCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// Urgency is how pressing the owner considers the item
type Urgency string

// Predefined Urgency values
const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ValidUrgencies returns all valid Urgency values
func ValidUrgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}
}

// IsValid checks if the Urgency value is one of the predefined constants
func (u Urgency) IsValid() bool {
	for _, valid := range ValidUrgencies() {
		if u == valid {
			return true
		}
	}
	return false
}

// ItemStatus is the lifecycle state of an item
type ItemStatus string

// Predefined ItemStatus values
const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusClaimed  ItemStatus = "claimed"
	ItemStatusResolved ItemStatus = "resolved"
	ItemStatusArchived ItemStatus = "archived"
	ItemStatusRejected ItemStatus = "rejected"
	ItemStatusRemoved  ItemStatus = "removed"
)

// ValidItemStatuses returns all valid ItemStatus values
func ValidItemStatuses() []ItemStatus {
	return []ItemStatus{
		ItemStatusActive,
		ItemStatusClaimed,
		ItemStatusResolved,
		ItemStatusArchived,
		ItemStatusRejected,
		ItemStatusRemoved,
	}
}

// IsValid checks if the ItemStatus value is one of the predefined constants
func (s ItemStatus) IsValid() bool {
	for _, valid := range ValidItemStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ClaimStatus is the lifecycle state of a claim request
type ClaimStatus string

// Predefined ClaimStatus values
const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusApproved  ClaimStatus = "approved"
	ClaimStatusRejected  ClaimStatus = "rejected"
	ClaimStatusCompleted ClaimStatus = "completed"
)

// ValidClaimStatuses returns all valid ClaimStatus values
func ValidClaimStatuses() []ClaimStatus {
	return []ClaimStatus{
		ClaimStatusPending,
		ClaimStatusApproved,
		ClaimStatusRejected,
		ClaimStatusCompleted,
	}
}

// IsValid checks if the ClaimStatus value is one of the predefined constants
func (s ClaimStatus) IsValid() bool {
	for _, valid := range ValidClaimStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ModerationAction is an admin action applied to an item
type ModerationAction string

// Predefined ModerationAction values
const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
	ModerationArchive ModerationAction = "archive"
	ModerationFlag    ModerationAction = "flag"
	ModerationRemove  ModerationAction = "remove"
)

// ValidModerationActions returns all valid ModerationAction values
func ValidModerationActions() []ModerationAction {
	return []ModerationAction{
		ModerationApprove,
		ModerationReject,
		ModerationArchive,
		ModerationFlag,
		ModerationRemove,
	}
}

// IsValid checks if the ModerationAction value is one of the predefined constants
func (a ModerationAction) IsValid() bool {
	for _, valid := range ValidModerationActions() {
		if a == valid {
			return true
		}
	}
	return false
}

// TargetStatus returns the item status the action moves an item to. Flagging
// leaves the status untouched and reports false.
func (a ModerationAction) TargetStatus() (ItemStatus, bool) {
	switch a {
	case ModerationApprove:
		return ItemStatusActive, true
	case ModerationReject:
		return ItemStatusRejected, true
	case ModerationArchive:
		return ItemStatusArchived, true
	case ModerationRemove:
		return ItemStatusRemoved, true
	}
	return "", false
}

// DisputeStatus is the lifecycle state of a dispute
type DisputeStatus string

// Predefined DisputeStatus values
const (
	DisputeStatusOpen          DisputeStatus = "open"
	DisputeStatusInvestigating DisputeStatus = "investigating"
	DisputeStatusResolved      DisputeStatus = "resolved"
	DisputeStatusDismissed     DisputeStatus = "dismissed"
)

// DisputeStatusForAction maps an admin dispute action onto the resulting status
func DisputeStatusForAction(action string) (DisputeStatus, bool) {
	switch action {
	case "investigate":
		return DisputeStatusInvestigating, true
	case "resolve":
		return DisputeStatusResolved, true
	case "dismiss":
		return DisputeStatusDismissed, true
	case "reopen":
		return DisputeStatusOpen, true
	}
	return "", false
}
