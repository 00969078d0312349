package domain

import "time"

// Role identifies the requester class driving hour limits and auto-approval rules.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// BookingKind alters guard thresholds and the set of available transitions.
type BookingKind string

const (
	KindStandard     BookingKind = "standard"
	KindWalkIn       BookingKind = "walkIn"
	KindVIP          BookingKind = "vip"
	KindEdit         BookingKind = "edit"
	KindModification BookingKind = "modification"
)

// Service is one of the six independently-gated ancillary services.
type Service string

const (
	ServiceStaff     Service = "staff"
	ServiceEquipment Service = "equipment"
	ServiceCatering  Service = "catering"
	ServiceCleaning  Service = "cleaning"
	ServiceSecurity  Service = "security"
	ServiceSetup     Service = "setup"
)

// Services returns the fixed set of ancillary services in stable order.
func Services() []Service {
	return []Service{
		ServiceStaff,
		ServiceEquipment,
		ServiceCatering,
		ServiceCleaning,
		ServiceSecurity,
		ServiceSetup,
	}
}

// Approval is the tri-state decision for a requested service.
type Approval string

const (
	ApprovalUnset    Approval = ""
	ApprovalApproved Approval = "approved"
	ApprovalDeclined Approval = "declined"
)

// HourLimits bounds the duration of a reservation in hours.
// MaxHours <= 0 means unlimited; MinHours <= 0 means no minimum.
type HourLimits struct {
	MaxHours float64 `json:"maxHours" yaml:"maxHours" mapstructure:"maxHours"`
	MinHours float64 `json:"minHours" yaml:"minHours" mapstructure:"minHours"`
}

// Resource describes one selected room/resource and its per-role limit table.
// Limits is keyed by role plus an optional kind suffix, e.g. "student",
// "studentWalkIn", "facultyVIP".
type Resource struct {
	ID              string                `json:"id" mapstructure:"id"`
	AutoApprove     bool                  `json:"autoApprove" mapstructure:"autoApprove"`
	PairAutoApprove bool                  `json:"pairAutoApprove" mapstructure:"pairAutoApprove"`
	Limits          map[string]HourLimits `json:"limits,omitempty" mapstructure:"limits"`
}

// TimeWindow is the requested reservation interval.
type TimeWindow struct {
	Start time.Time `json:"start" mapstructure:"start"`
	End   time.Time `json:"end" mapstructure:"end"`
}

// Hours returns the window duration in hours. Inverted windows read as zero.
func (w TimeWindow) Hours() float64 {
	if w.End.Before(w.Start) {
		return 0
	}
	return w.End.Sub(w.Start).Hours()
}

// Context is the data a machine instance carries for one reservation.
type Context struct {
	Tenant             string               `json:"tenant" mapstructure:"tenant"`
	ReservationID      string               `json:"reservationId" mapstructure:"reservationId"`
	RequesterRole      Role                 `json:"requesterRole" mapstructure:"requesterRole"`
	SelectedResources  []Resource           `json:"selectedResources,omitempty" mapstructure:"selectedResources"`
	TimeWindow         TimeWindow           `json:"timeWindow" mapstructure:"timeWindow"`
	BookingKind        BookingKind          `json:"bookingKind" mapstructure:"bookingKind"`
	RequestedServices  map[Service]bool     `json:"requestedServices,omitempty" mapstructure:"requestedServices"`
	ServiceApprovals   map[Service]Approval `json:"serviceApprovals,omitempty" mapstructure:"serviceApprovals"`
	ServiceCloseouts   map[Service]bool     `json:"serviceCloseouts,omitempty" mapstructure:"serviceCloseouts"`
	DeclineReason      string               `json:"declineReason,omitempty" mapstructure:"declineReason"`
	MigratedFromLegacy bool                 `json:"migratedFromLegacyStatus" mapstructure:"migratedFromLegacyStatus"`
}

// Requested reports whether the service was asked for. Nil maps read as false,
// so guard evaluation stays total on malformed contexts.
func (c Context) Requested(s Service) bool {
	return c.RequestedServices[s]
}

// ApprovalOf returns the decision for a service, ApprovalUnset when undecided.
func (c Context) ApprovalOf(s Service) Approval {
	return c.ServiceApprovals[s]
}

// CloseoutDone reports whether a service's closeout step is complete.
// A service that was never requested, or never approved, has nothing to close
// out and reads as done (vacuous truth).
func (c Context) CloseoutDone(s Service) bool {
	if !c.Requested(s) || c.ApprovalOf(s) != ApprovalApproved {
		return true
	}
	return c.ServiceCloseouts[s]
}

// SetApproval records a service decision, allocating the map on first use.
func (c *Context) SetApproval(s Service, a Approval) {
	if c.ServiceApprovals == nil {
		c.ServiceApprovals = make(map[Service]Approval)
	}
	c.ServiceApprovals[s] = a
}

// SetCloseout marks a service's closeout step complete.
func (c *Context) SetCloseout(s Service) {
	if c.ServiceCloseouts == nil {
		c.ServiceCloseouts = make(map[Service]bool)
	}
	c.ServiceCloseouts[s] = true
}

// Clone returns a deep copy so callers can mutate without aliasing the source.
func (c Context) Clone() Context {
	out := c
	if c.SelectedResources != nil {
		out.SelectedResources = make([]Resource, len(c.SelectedResources))
		copy(out.SelectedResources, c.SelectedResources)
		for i, r := range c.SelectedResources {
			if r.Limits != nil {
				lm := make(map[string]HourLimits, len(r.Limits))
				for k, v := range r.Limits {
					lm[k] = v
				}
				out.SelectedResources[i].Limits = lm
			}
		}
	}
	if c.RequestedServices != nil {
		out.RequestedServices = make(map[Service]bool, len(c.RequestedServices))
		for k, v := range c.RequestedServices {
			out.RequestedServices[k] = v
		}
	}
	if c.ServiceApprovals != nil {
		out.ServiceApprovals = make(map[Service]Approval, len(c.ServiceApprovals))
		for k, v := range c.ServiceApprovals {
			out.ServiceApprovals[k] = v
		}
	}
	if c.ServiceCloseouts != nil {
		out.ServiceCloseouts = make(map[Service]bool, len(c.ServiceCloseouts))
		for k, v := range c.ServiceCloseouts {
			out.ServiceCloseouts[k] = v
		}
	}
	return out
}
