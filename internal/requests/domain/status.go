// Package domain provides core business rules for the requests bounded context.
package domain

// Request lifecycle statuses. The set is closed: a status outside this
// vocabulary is a defect, not an input to be tolerated.
const (
	StatusNew        = "new"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusQuoteReady = "quote_ready"
	StatusQuoted     = "quoted"
	StatusClosedWon  = "closed_won"
	StatusClosedLost = "closed_lost"
	StatusArchived   = "archived"
	StatusMerged     = "merged"
)

// Priority tiers, ordered from most to least urgent.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// allowedTransitions is the structural edge set of the status machine.
// Business guards (assignee present, quote amount present, business hours)
// layer on top of this table in the status validator.
var allowedTransitions = map[string][]string{
	StatusNew:        {StatusAssigned, StatusInProgress, StatusClosedLost, StatusMerged},
	StatusAssigned:   {StatusInProgress, StatusQuoteReady, StatusClosedLost, StatusMerged},
	StatusInProgress: {StatusAssigned, StatusQuoteReady, StatusClosedLost, StatusMerged},
	StatusQuoteReady: {StatusQuoted, StatusInProgress, StatusClosedLost, StatusMerged},
	StatusQuoted:     {StatusClosedWon, StatusClosedLost, StatusQuoteReady, StatusMerged},
	StatusClosedWon:  {StatusArchived},
	StatusClosedLost: {StatusArchived},
	StatusArchived:   {},
	StatusMerged:     {},
}

// terminalStatuses are statuses from which no further transitions are allowed.
var terminalStatuses = map[string]bool{
	StatusArchived: true,
	StatusMerged:   true,
}

// assignmentRequiredStatuses require a non-null assignee on entry.
var assignmentRequiredStatuses = map[string]bool{
	StatusAssigned:   true,
	StatusInProgress: true,
}

// customerFacingStatuses are transition targets visible to the customer;
// performing them out of business hours earns a warning.
var customerFacingStatuses = map[string]bool{
	StatusQuoted:     true,
	StatusClosedWon:  true,
	StatusClosedLost: true,
}

// IsValidStatus reports whether status belongs to the defined state set.
func IsValidStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// IsTerminal returns true for statuses that accept no outgoing transitions.
func IsTerminal(status string) bool {
	return terminalStatuses[status]
}

// CanTransition reports whether the edge from → to exists structurally.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the structurally legal targets from a status.
func AllowedTargets(from string) []string {
	return append([]string(nil), allowedTransitions[from]...)
}

// RequiresAssignee reports whether entering status needs a current assignee.
func RequiresAssignee(status string) bool {
	return assignmentRequiredStatuses[status]
}

// IsCustomerFacing reports whether a transition into status is customer-visible.
func IsCustomerFacing(status string) bool {
	return customerFacingStatuses[status]
}

// IsQuotable reports whether a request in this status may receive a quote.
// quote_ready is included so a draft can be regenerated before sending.
func IsQuotable(status string) bool {
	return status == StatusAssigned || status == StatusInProgress || status == StatusQuoteReady
}

// priorityRank orders priorities; lower rank is more urgent.
var priorityRank = map[string]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// IsValidPriority reports whether priority belongs to the defined tier set.
func IsValidPriority(priority string) bool {
	_, ok := priorityRank[priority]
	return ok
}

// EscalatePriority returns the next tier up, or the input unchanged when
// already urgent or unknown.
func EscalatePriority(priority string) string {
	switch priority {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh:
		return PriorityUrgent
	default:
		return priority
	}
}

// MoreUrgent reports whether a is strictly more urgent than b.
// Unknown priorities sort last.
func MoreUrgent(a, b string) bool {
	ra, ok := priorityRank[a]
	if !ok {
		ra = len(priorityRank)
	}
	rb, ok := priorityRank[b]
	if !ok {
		rb = len(priorityRank)
	}
	return ra < rb
}
